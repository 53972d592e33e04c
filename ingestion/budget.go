package ingestion

import "github.com/pokhrel-dev/simplechat-sub002/core"

// Decision is the outcome of a budget check.
type Decision struct {
	// Fits is true when the content is at or below the budget.
	Fits bool

	// OveragePct is how far the content exceeds the budget, in percent.
	// Zero when Fits.
	OveragePct float64
}

// Evaluate decides whether unit fits budget. It has no side effects.
// An invalid budget returns core.ErrInvalidConfiguration.
func Evaluate(unit core.ContentUnit, budget core.ProcessingBudget) (Decision, error) {
	if err := core.ValidateBudget(budget); err != nil {
		return Decision{}, err
	}
	if unit.CharCount <= budget.MaxChars {
		return Decision{Fits: true}, nil
	}
	return Decision{OveragePct: OveragePct(unit.CharCount, budget.MaxChars)}, nil
}
