package fibonacci

import (
	"context"
	"testing"
)

type constCalculator struct{ value uint64 }

func (c constCalculator) Name() string { return "const" }
func (c constCalculator) Dispatch(context.Context, uint64) (uint64, error) {
	return c.value, nil
}

func TestDefaultFactory(t *testing.T) {
	t.Parallel()

	t.Run("Native is registered by default", func(t *testing.T) {
		t.Parallel()
		f := NewDefaultFactory()
		calc, err := f.Get("native")
		if err != nil {
			t.Fatalf("Get(native) failed: %v", err)
		}
		if _, ok := calc.(NativeCalculator); !ok {
			t.Errorf("Get(native) returned %T, want NativeCalculator", calc)
		}
	})

	t.Run("Unknown name is an error", func(t *testing.T) {
		t.Parallel()
		f := NewDefaultFactory()
		if _, err := f.Get("missing"); err == nil {
			t.Error("expected an error for an unknown calculator")
		}
	})

	t.Run("Register adds and List sorts", func(t *testing.T) {
		t.Parallel()
		f := NewDefaultFactory()
		if err := f.Register("alpha", constCalculator{value: 1}); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		got := f.List()
		want := []string{"alpha", "native"}
		if len(got) != len(want) {
			t.Fatalf("List() = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("List()[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("Register rejects empty name and nil calculator", func(t *testing.T) {
		t.Parallel()
		f := NewDefaultFactory()
		if err := f.Register("", constCalculator{}); err == nil {
			t.Error("expected error for empty name")
		}
		if err := f.Register("nil", nil); err == nil {
			t.Error("expected error for nil calculator")
		}
	})

	t.Run("GetAll returns a copy", func(t *testing.T) {
		t.Parallel()
		f := NewDefaultFactory()
		all := f.GetAll()
		delete(all, "native")
		if _, err := f.Get("native"); err != nil {
			t.Error("mutating GetAll result should not affect the factory")
		}
	})
}
