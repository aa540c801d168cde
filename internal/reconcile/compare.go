// Package reconcile compares totals computed from the ledger with totals reported by a bank.
package reconcile

import (
	"fmt"

	"github.com/govalues/money"
	"github.com/shopspring/decimal"
)

// DefaultTolerance is the absolute difference under which two totals are considered equal.
var DefaultTolerance = decimal.RequireFromString("0.01")

// Result is the outcome of a comparison.
type Result struct {
	SystemTotal   decimal.Decimal `json:"system_total"`
	ReportedTotal decimal.Decimal `json:"reported_total"`
	Difference    decimal.Decimal `json:"difference"`
	IsReconciled  bool            `json:"is_reconciled"`
}

// Compare returns reported-system and whether its absolute value is strictly below tolerance.
func Compare(system, reported, tolerance decimal.Decimal) Result {
	diff := reported.Sub(system)
	return Result{
		SystemTotal:   system,
		ReportedTotal: reported,
		Difference:    diff,
		IsReconciled:  diff.Abs().LessThan(tolerance),
	}
}

// CompareAmount compares a ledger amount against a reported value using DefaultTolerance.
func CompareAmount(system money.Amount, reported decimal.Decimal) (Result, error) {
	sys, err := FromAmount(system)
	if err != nil {
		return Result{}, err
	}
	return Compare(sys, reported, DefaultTolerance), nil
}

// FromAmount converts a money amount into a decimal without losing precision.
func FromAmount(a money.Amount) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(a.Decimal().String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("convert amount %s: %w", a, err)
	}
	return d, nil
}

// ParseReported parses a user-entered total such as "1234.56" or "-80".
func ParseReported(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("reported total %q: %w", s, err)
	}
	return d, nil
}
