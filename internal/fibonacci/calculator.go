//go:generate mockgen -source=calculator.go -destination=mocks/mock_calculator.go -package=mocks

package fibonacci

import "context"

// Calculator is the common interface of every Fibonacci dispatch backend.
// Implementations must return the same value as Dispatch for every index.
type Calculator interface {
	// Dispatch computes F(index). The context is checked before the work
	// starts; backends that can abort mid-computation also honour it while
	// running.
	Dispatch(ctx context.Context, index uint64) (uint64, error)

	// Name returns a human-readable backend name.
	Name() string
}

// NativeCalculator runs Dispatch directly in the Go process.
type NativeCalculator struct{}

// Verify interface compliance.
var _ Calculator = NativeCalculator{}

// Name returns the display name of the native backend.
func (NativeCalculator) Name() string { return "Native (Go loop)" }

// Dispatch returns F(index). The reduction itself has no suspension points,
// so cancellation is only observed before it starts.
func (NativeCalculator) Dispatch(ctx context.Context, index uint64) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return Dispatch(index), nil
}
