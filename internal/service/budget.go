package service

import "github.com/shopspring/decimal"

// Outcome is the signal surfaced after an expense is recorded.
type Outcome int

const (
	// OutcomeSuccess means the expense was recorded within budget.
	OutcomeSuccess Outcome = iota
	// OutcomeWarning means the recomputed total now exceeds the limit.
	OutcomeWarning
)

func (o Outcome) String() string {
	if o == OutcomeWarning {
		return "warning"
	}
	return "success"
}

// EvaluateBudget compares a spending total against an optional limit.
// Only a total strictly above a set limit is a warning.
func EvaluateBudget(total decimal.Decimal, limit *decimal.Decimal) Outcome {
	if limit != nil && total.GreaterThan(*limit) {
		return OutcomeWarning
	}
	return OutcomeSuccess
}
