package fibonacci

import (
	"fmt"
	"sort"
	"sync"
)

// CalculatorFactory provides named access to Calculator implementations.
type CalculatorFactory interface {
	// Get returns the calculator registered under name.
	Get(name string) (Calculator, error)
	// List returns the registered names in sorted order.
	List() []string
	// Register adds or replaces a calculator.
	Register(name string, calc Calculator) error
	// GetAll returns every registered calculator keyed by name.
	GetAll() map[string]Calculator
}

// DefaultFactory is a concurrency-safe, map-backed CalculatorFactory.
type DefaultFactory struct {
	mu          sync.RWMutex
	calculators map[string]Calculator
}

// Verify interface compliance.
var _ CalculatorFactory = (*DefaultFactory)(nil)

// NewDefaultFactory creates a factory with the native backend registered
// under "native".
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{calculators: make(map[string]Calculator)}
	f.calculators["native"] = NativeCalculator{}
	return f
}

// Get returns the calculator registered under name.
func (f *DefaultFactory) Get(name string) (Calculator, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	calc, ok := f.calculators[name]
	if !ok {
		return nil, fmt.Errorf("unknown calculator %q", name)
	}
	return calc, nil
}

// Register adds calc under name, replacing any previous registration.
func (f *DefaultFactory) Register(name string, calc Calculator) error {
	if name == "" {
		return fmt.Errorf("calculator name must not be empty")
	}
	if calc == nil {
		return fmt.Errorf("calculator %q is nil", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calculators[name] = calc
	return nil
}

// List returns the registered names sorted alphabetically.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.calculators))
	for name := range f.calculators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAll returns a copy of the registry.
func (f *DefaultFactory) GetAll() map[string]Calculator {
	f.mu.RLock()
	defer f.mu.RUnlock()
	all := make(map[string]Calculator, len(f.calculators))
	for name, calc := range f.calculators {
		all[name] = calc
	}
	return all
}
