package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PaymentProposal is an AI-interpreted payment awaiting confirmation before
// it is recorded as a Debit.
type PaymentProposal struct {
	CustomerName string  `json:"customer_name" jsonschema_description:"The exact customer name from the provided customer list"`
	Amount       string  `json:"amount" jsonschema_description:"The amount paid as a whole number string (e.g. '250'). Negative only for refunds or corrections."`
	Date         string  `json:"date" jsonschema_description:"The payment date in YYYY-MM-DD format. Use today's date if unspecified."`
	Confidence   float64 `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
	Reasoning    string  `json:"reasoning" jsonschema_description:"Short explanation of how the text was interpreted"`
}

// PaymentClarification asks the user for what the text left out.
type PaymentClarification struct {
	Message string `json:"message" jsonschema_description:"A question asking the user for the missing details (e.g. 'Which customer paid, and how much?')."`
}

// PaymentResponse is the AI output: exactly one of a proposal or a clarification.
type PaymentResponse struct {
	IsClarificationRequest bool                  `json:"is_clarification_request" jsonschema_description:"Set to true ONLY if the text does not name a known customer and an amount."`
	Clarification          *PaymentClarification `json:"clarification,omitempty" jsonschema_description:"Required if is_clarification_request is true."`
	Proposal               *PaymentProposal      `json:"proposal,omitempty" jsonschema_description:"Required if is_clarification_request is false."`
}

// Normalize cleans up common formatting issues in model output.
func (p *PaymentProposal) Normalize(today time.Time) {
	p.CustomerName = strings.TrimSpace(p.CustomerName)
	p.Amount = strings.TrimSpace(p.Amount)
	p.Amount = strings.ReplaceAll(p.Amount, ",", "")
	p.Date = strings.TrimSpace(p.Date)

	if strings.EqualFold(p.Amount, "null") {
		p.Amount = ""
	}
	if p.Date == "" || strings.EqualFold(p.Date, "null") {
		p.Date = Day(today).Format(DateLayout)
	}
}

// Validate checks the proposal can be recorded as a Debit.
func (p *PaymentProposal) Validate() error {
	if p.CustomerName == "" {
		return errors.New("proposal must name a customer")
	}
	if _, err := p.ParsedAmount(); err != nil {
		return err
	}
	if _, err := ParseDate(p.Date); err != nil {
		return err
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("confidence must be between 0 and 1, got %v", p.Confidence)
	}
	return nil
}

// ParsedAmount converts Amount to whole currency units.
func (p *PaymentProposal) ParsedAmount() (int64, error) {
	return ParseAmount(p.Amount)
}
