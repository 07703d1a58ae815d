// verify-agent sends one sample payment description to the configured model
// and prints the structured result. It touches no database.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"bookkeeping/internal/ai"
	"bookkeeping/internal/logging"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load() // Load .env if present
	logger := logging.Setup(os.Getenv("LOG_LEVEL"), logging.FormatPretty)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal().Msg("OPENAI_API_KEY not set")
	}

	agent := ai.NewAgent(apiKey, os.Getenv("OPENAI_MODEL"))
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	customers := []string{"Anna", "Boris", "Clara"}
	text := "Boris dropped off 1,250 for last week's milk yesterday."
	if len(os.Args) > 1 {
		text = strings.Join(os.Args[1:], " ")
	}

	fmt.Printf("INTERPRETING: %s\n", text)
	response, err := agent.InterpretPayment(ctx, text, customers, time.Now())
	if err != nil {
		logger.Fatal().Err(err).Msg("agent error")
	}

	if response.IsClarificationRequest {
		fmt.Printf("\n--- CLARIFICATION ---\n%s\n", response.Clarification.Message)
		return
	}

	p := response.Proposal
	fmt.Printf("\n--- PROPOSAL ---\n")
	fmt.Printf("Customer:   %s\n", p.CustomerName)
	fmt.Printf("Amount:     %s\n", p.Amount)
	fmt.Printf("Date:       %s\n", p.Date)
	fmt.Printf("Confidence: %.2f\n", p.Confidence)
	fmt.Printf("Reasoning:  %s\n", p.Reasoning)
}
