package orchestration

import "github.com/agbru/fibdispatch/internal/fibonacci"

// AllAlgorithms selects every registered backend.
const AllAlgorithms = "all"

// GetCalculatorsToRun resolves the -algo selection against factory. "all"
// yields every registered backend in name order; an unknown name yields nil.
func GetCalculatorsToRun(algo string, factory fibonacci.CalculatorFactory) []fibonacci.Calculator {
	if algo == AllAlgorithms {
		names := factory.List()
		calculators := make([]fibonacci.Calculator, 0, len(names))
		for _, name := range names {
			if calc, err := factory.Get(name); err == nil {
				calculators = append(calculators, calc)
			}
		}
		return calculators
	}
	if calc, err := factory.Get(algo); err == nil {
		return []fibonacci.Calculator{calc}
	}
	return nil
}
