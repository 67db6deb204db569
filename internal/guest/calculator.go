package guest

import (
	"context"
	"sync"

	"github.com/agbru/fibdispatch/internal/fibonacci"
)

// Calculator adapts a Host to fibonacci.Calculator. The host is started on
// first use so that registering the backend costs nothing until it runs.
type Calculator struct {
	opts []Option

	mu   sync.Mutex
	host *Host
}

// Verify interface compliance.
var _ fibonacci.Calculator = (*Calculator)(nil)

// NewCalculator returns a Calculator whose host is created with opts.
func NewCalculator(opts ...Option) *Calculator {
	return &Calculator{opts: opts}
}

// Name returns the display name of the WebAssembly backend.
func (c *Calculator) Name() string { return "WASM guest (wazero)" }

// Dispatch computes F(index) inside the guest module.
func (c *Calculator) Dispatch(ctx context.Context, index uint64) (uint64, error) {
	host, err := c.ensureHost(ctx)
	if err != nil {
		return 0, err
	}
	return host.Dispatch(ctx, index)
}

// Prepare starts the host and warms an instance, so that a timed Dispatch
// measures the call alone.
func (c *Calculator) Prepare(ctx context.Context) error {
	host, err := c.ensureHost(ctx)
	if err != nil {
		return err
	}
	return host.Warm(ctx)
}

// Exports starts the host if needed and lists the guest's exported functions.
func (c *Calculator) Exports(ctx context.Context) ([]string, error) {
	host, err := c.ensureHost(ctx)
	if err != nil {
		return nil, err
	}
	return host.Exports(), nil
}

func (c *Calculator) ensureHost(ctx context.Context) (*Host, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.host != nil {
		return c.host, nil
	}
	// The runtime outlives the first request, so it must not inherit its
	// cancellation.
	host, err := New(context.WithoutCancel(ctx), c.opts...)
	if err != nil {
		return nil, err
	}
	c.host = host
	return host, nil
}

// Close shuts the host down if it was started. The calculator can be used
// again afterwards; a new host is created on the next call.
func (c *Calculator) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.host == nil {
		return nil
	}
	err := c.host.Close(ctx)
	c.host = nil
	return err
}
