package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Bounds on stored values. A full sheet of MaxQuantity lines at MaxAmount
// stays well inside int64.
const (
	MaxAmount   int64 = 1_000_000_000_000
	MaxQuantity int64 = 32767
)

var maxAmount = decimal.NewFromInt(MaxAmount)

// WholeAmount converts d to whole currency units, rejecting fractions and
// anything beyond ±MaxAmount.
func WholeAmount(field string, d decimal.Decimal) (int64, error) {
	if !d.IsInteger() {
		return 0, ValidationError{Field: field, Message: fmt.Sprintf("%s is not a whole amount", d.String())}
	}
	if d.Abs().GreaterThan(maxAmount) {
		return 0, ValidationError{Field: field, Message: fmt.Sprintf("%s is out of range (max %d)", d.String(), MaxAmount)}
	}
	return d.IntPart(), nil
}

func checkAmount(field string, v int64) error {
	if v > MaxAmount || v < -MaxAmount {
		return ValidationError{Field: field, Message: fmt.Sprintf("%d is out of range (max %d)", v, MaxAmount)}
	}
	return nil
}

// ParseAmount parses a decimal string that must hold a non-zero whole number of units.
func ParseAmount(s string) (int64, error) {
	amt, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, ValidationError{Field: "amount", Message: fmt.Sprintf("%q is not a number", s)}
	}
	v, err := WholeAmount("amount", amt)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, ValidationError{Field: "amount", Message: "must not be zero"}
	}
	return v, nil
}

// FormatAmount renders whole units with two decimals, the way amounts are printed.
func FormatAmount(v int64) string {
	return decimal.NewFromInt(v).StringFixed(2)
}
