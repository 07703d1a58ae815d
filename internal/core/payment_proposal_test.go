package core_test

import (
	"testing"

	"bookkeeping/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"250", 250, false},
		{" 250 ", 250, false},
		{"250.00", 250, false},
		{"-40", -40, false},
		{"12.5", 0, true},
		{"0", 0, true},
		{"", 0, true},
		{"abc", 0, true},
		{"18446744073709551716", 0, true},
		{"1000000000000", 1000000000000, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := core.ParseAmount(tt.in)
			if tt.wantErr {
				assert.True(t, core.IsInvalid(err), "expected a validation error, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaymentProposal_NormalizeAndValidate(t *testing.T) {
	today := date("2024-05-10")

	tests := []struct {
		name      string
		proposal  core.PaymentProposal
		wantDate  string
		wantErr   bool
		wantValue int64
	}{
		{
			name:      "happy path",
			proposal:  core.PaymentProposal{CustomerName: "Anna", Amount: "150", Date: "2024-05-01", Confidence: 0.9},
			wantDate:  "2024-05-01",
			wantValue: 150,
		},
		{
			name:      "thousands separator and missing date",
			proposal:  core.PaymentProposal{CustomerName: " Anna ", Amount: "1,200", Date: "null", Confidence: 0.7},
			wantDate:  "2024-05-10",
			wantValue: 1200,
		},
		{
			name:     "null amount",
			proposal: core.PaymentProposal{CustomerName: "Anna", Amount: "null", Confidence: 0.7},
			wantDate: "2024-05-10",
			wantErr:  true,
		},
		{
			name:     "no customer",
			proposal: core.PaymentProposal{Amount: "10", Confidence: 0.7},
			wantDate: "2024-05-10",
			wantErr:  true,
		},
		{
			name:     "bad date",
			proposal: core.PaymentProposal{CustomerName: "Anna", Amount: "10", Date: "10/05/2024", Confidence: 0.7},
			wantDate: "10/05/2024",
			wantErr:  true,
		},
		{
			name:     "confidence out of range",
			proposal: core.PaymentProposal{CustomerName: "Anna", Amount: "10", Confidence: 1.5},
			wantDate: "2024-05-10",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.proposal
			p.Normalize(today)
			assert.Equal(t, tt.wantDate, p.Date)

			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			v, err := p.ParsedAmount()
			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, v)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1200.00", core.FormatAmount(1200))
	assert.Equal(t, "-5.00", core.FormatAmount(-5))
}
