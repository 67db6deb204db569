package guest

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	apperrors "github.com/agbru/fibdispatch/internal/errors"
)

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("guest: host is closed")

// Host compiles the guest module once and runs its exports in pooled,
// anonymous instances. Each instance serves one call at a time, so Host is
// safe for concurrent use.
type Host struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	// idle holds instances ready for the next call.
	idle chan api.Module

	mu     sync.RWMutex
	closed bool
}

type hostOptions struct {
	interpreter bool
}

// Option configures a Host.
type Option func(*hostOptions)

// WithInterpreter selects wazero's interpreter engine instead of the default
// (the compiler on supported platforms).
func WithInterpreter() Option {
	return func(o *hostOptions) { o.interpreter = true }
}

// New creates a wazero runtime and compiles the guest module into it.
// Calls observe their context: a canceled or expired context aborts a
// running guest loop.
func New(ctx context.Context, opts ...Option) (*Host, error) {
	var o hostOptions
	for _, opt := range opts {
		opt(&o)
	}

	rc := wazero.NewRuntimeConfig()
	if o.interpreter {
		rc = wazero.NewRuntimeConfigInterpreter()
	}
	rc = rc.WithCloseOnContextDone(true)

	r := wazero.NewRuntimeWithConfig(ctx, rc)
	compiled, err := r.CompileModule(ctx, wasmModule)
	if err != nil {
		_ = r.Close(ctx)
		return nil, apperrors.WrapError(err, "compiling guest module")
	}
	h := &Host{
		runtime:  r,
		compiled: compiled,
		idle:     make(chan api.Module, runtime.GOMAXPROCS(0)),
	}
	if err := h.Warm(ctx); err != nil {
		_ = r.Close(ctx)
		return nil, err
	}
	return h, nil
}

// Warm makes sure at least one instance is idle, so the next call does not
// pay for instantiation.
func (h *Host) Warm(ctx context.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrClosed
	}
	if len(h.idle) > 0 {
		return nil
	}
	mod, err := h.instantiate(ctx)
	if err != nil {
		return err
	}
	h.release(mod, true)
	return nil
}

// Exports returns the names of the functions exported by the guest module,
// sorted alphabetically.
func (h *Host) Exports() []string {
	defs := h.compiled.ExportedFunctions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch calls the guest's fib_dispatch export.
func (h *Host) Dispatch(ctx context.Context, index uint64) (uint64, error) {
	return h.call(ctx, ExportDispatch, index)
}

// Step calls the guest's fib export with the triple (a, b, count).
func (h *Host) Step(ctx context.Context, a, b, count uint64) (uint64, error) {
	return h.call(ctx, ExportStep, a, b, count)
}

// call borrows an instance, invokes one export and returns the instance to
// the pool. wazero functions must not be called from several goroutines at
// once, so an instance is never shared between concurrent calls.
func (h *Host) call(ctx context.Context, name string, params ...uint64) (uint64, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return 0, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	mod, err := h.acquire(ctx)
	if err != nil {
		return 0, err
	}
	results, err := callExport(ctx, mod, name, params...)
	// A failed call may have closed the instance (context done, trap).
	h.release(mod, err == nil)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, err
	}
	return results[0], nil
}

func (h *Host) instantiate(ctx context.Context) (api.Module, error) {
	// Pooled instances outlive the call that created them.
	mod, err := h.runtime.InstantiateModule(context.WithoutCancel(ctx), h.compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, apperrors.WrapError(err, "instantiating guest module")
	}
	return mod, nil
}

func (h *Host) acquire(ctx context.Context) (api.Module, error) {
	select {
	case mod := <-h.idle:
		return mod, nil
	default:
		return h.instantiate(ctx)
	}
}

// release puts mod back in the pool, or closes it when it is unhealthy or
// the pool is full.
func (h *Host) release(mod api.Module, healthy bool) {
	if healthy {
		select {
		case h.idle <- mod:
			return
		default:
		}
	}
	_ = mod.Close(context.Background())
}

func callExport(ctx context.Context, mod api.Module, name string, params ...uint64) ([]uint64, error) {
	fn := mod.ExportedFunction(name)
	if fn == nil {
		return nil, apperrors.GuestError{Export: name, Cause: errors.New("export not found")}
	}
	results, err := fn.Call(ctx, params...)
	if err != nil {
		return nil, apperrors.GuestError{Export: name, Cause: err}
	}
	if len(results) != 1 {
		return nil, apperrors.GuestError{Export: name, Cause: fmt.Errorf("returned %d values, want 1", len(results))}
	}
	return results, nil
}

// Close releases the runtime and the compiled module. Calls in flight finish
// before Close returns.
func (h *Host) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	// Closing the runtime closes every instance it created, pooled or not.
	for len(h.idle) > 0 {
		<-h.idle
	}
	return h.runtime.Close(ctx)
}
