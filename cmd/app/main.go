package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"bookkeeping/internal/adapters/cli"
	"bookkeeping/internal/adapters/repl"
	"bookkeeping/internal/ai"
	"bookkeeping/internal/app"
	"bookkeeping/internal/config"
	"bookkeeping/internal/logging"
	"bookkeeping/internal/store"

	"github.com/rs/zerolog/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger := logging.Setup(cfg.LogLevel, logging.FormatPretty)

	ctx := context.Background()
	st, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("store")
	}
	defer closeStore()

	var agent ai.AgentService
	if cfg.OpenAIAPIKey != "" {
		agent = ai.NewAgent(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		logger.Warn().Msg("OPENAI_API_KEY is not set; natural language entry disabled")
	}
	svc := app.NewAppService(st, agent)

	if len(os.Args) > 1 {
		if err := cli.Run(ctx, svc, os.Args[1:], os.Stdin, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			if errors.Is(err, cli.ErrUsage) {
				return 2
			}
			return 1
		}
		return 0
	}

	repl.Run(ctx, svc, bufio.NewReader(os.Stdin), os.Stdout)
	return 0
}
