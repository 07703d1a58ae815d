package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bookkeeping/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

type AgentService interface {
	InterpretPayment(ctx context.Context, text string, customers []string, today time.Time) (*core.PaymentResponse, error)
}

type Agent struct {
	client *openai.Client
	model  shared.ResponsesModel
}

// NewAgent builds an agent for apiKey. An empty model selects gpt-4o.
func NewAgent(apiKey, model string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	m := shared.ResponsesModel(shared.ChatModelGPT4o)
	if model != "" {
		m = shared.ResponsesModel(model)
	}
	return &Agent{client: &client, model: m}
}

func buildPrompt(text string, customers []string, today time.Time) string {
	return fmt.Sprintf(`You are a bookkeeper recording customer payments.
Interpret the text below as a single payment received from one customer.
Rules:
1. Use ONLY a customer name from the list below, spelled exactly as listed.
2. Amounts are whole currency units written as a string (e.g. "250").
3. Dates are YYYY-MM-DD. Today is %s; resolve relative dates ("yesterday") against it.
4. Provide a confidence score (0.0-1.0) and explain your reasoning.
5. If the customer or the amount cannot be determined, ask for clarification instead.

Customers:
%s

Text: %s`, today.Format(core.DateLayout), strings.Join(customers, "\n"), text)
}

func (a *Agent) InterpretPayment(ctx context.Context, text string, customers []string, today time.Time) (*core.PaymentResponse, error) {
	schemaMap, err := schemaFor(core.PaymentResponse{})
	if err != nil {
		return nil, err
	}

	params := responses.ResponseNewParams{
		Model: a.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(buildPrompt(text, customers, today)),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "payment_proposal",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A customer payment to record, or a request for clarification"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}
	return ParseResponse(content, today)
}

// ParseResponse decodes, normalises and validates the model's JSON output.
func ParseResponse(content string, today time.Time) (*core.PaymentResponse, error) {
	var out core.PaymentResponse
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}

	if out.IsClarificationRequest {
		if out.Clarification == nil || strings.TrimSpace(out.Clarification.Message) == "" {
			return nil, fmt.Errorf("clarification request without a message")
		}
		return &out, nil
	}
	if out.Proposal == nil {
		return nil, fmt.Errorf("response has neither a proposal nor a clarification")
	}
	out.Proposal.Normalize(today)
	if err := out.Proposal.Validate(); err != nil {
		return nil, fmt.Errorf("proposal validation failed: %w", err)
	}
	return &out, nil
}

// schemaFor reflects v into the strict JSON schema map the Responses API expects.
func schemaFor(v any) (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schemaJSON, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}
	return schemaMap, nil
}
