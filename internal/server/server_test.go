package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agbru/fibdispatch/internal/fibonacci"
	"github.com/agbru/fibdispatch/internal/harness"
	"github.com/agbru/fibdispatch/internal/sysmon"
)

// blockingCalculator waits for cancellation.
type blockingCalculator struct{}

func (blockingCalculator) Name() string { return "blocking" }

func (blockingCalculator) Dispatch(ctx context.Context, _ uint64) (uint64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	factory := fibonacci.NewDefaultFactory()
	if err := factory.Register("blocking", blockingCalculator{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	var ticks uint64
	base := []Option{
		WithLogger(newTestLogger()),
		WithSampler(sysmon.SamplerFunc(func(context.Context) sysmon.Stats {
			return sysmon.Stats{CPUPercent: 12.5, MemPercent: 40, ProcessRSS: 1 << 20}
		})),
		WithClock(harness.FuncClock{
			Read:     func() uint64 { ticks += 7; return ticks },
			TickUnit: "ns",
		}),
		WithVersion("test"),
	}
	return New("127.0.0.1:0", factory, append(base, opts...)...)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, http.NoBody))
	return rec
}

func TestHandleDispatch(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		target  string
		want    uint64
		algo    string
		wrapped bool
	}{
		{"small index", "/dispatch?index=20", 6765, "native", false},
		{"base case", "/dispatch?index=1", 1, "native", false},
		{"last exact index", "/dispatch?index=93", 12200160415121876738, "native", false},
		{"wrapped", "/dispatch?index=100", 3736710778780434371, "native", true},
		{"explicit algo", "/dispatch?index=10&algo=NATIVE", 55, "native", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t)
			rec := get(t, s.Handler(), tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			var resp DispatchResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Result != tt.want {
				t.Errorf("result = %d, want %d", resp.Result, tt.want)
			}
			if resp.Algorithm != tt.algo {
				t.Errorf("algorithm = %q, want %q", resp.Algorithm, tt.algo)
			}
			if resp.Wrapped != tt.wrapped {
				t.Errorf("wrapped = %v, want %v", resp.Wrapped, tt.wrapped)
			}
			if resp.Ticks != 7 {
				t.Errorf("ticks = %d, want 7", resp.Ticks)
			}
		})
	}
}

func TestHandleDispatch_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{"missing index", http.MethodGet, "/dispatch", http.StatusBadRequest},
		{"non-numeric index", http.MethodGet, "/dispatch?index=abc", http.StatusBadRequest},
		{"negative index", http.MethodGet, "/dispatch?index=-1", http.StatusBadRequest},
		{"index above limit", http.MethodGet, "/dispatch?index=1000000001", http.StatusBadRequest},
		{"unknown algo", http.MethodGet, "/dispatch?index=5&algo=gpu", http.StatusBadRequest},
		{"post", http.MethodPost, "/dispatch?index=5", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t)
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, http.NoBody))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
			var resp ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error == "" {
				t.Error("error message should not be empty")
			}
		})
	}
}

func TestHandleDispatch_Timeout(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, WithRequestTimeout(20*time.Millisecond))
	rec := get(t, s.Handler(), "/dispatch?index=5&algo=blocking")
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusGatewayTimeout)
	}
}

func TestHandleDispatch_IndexLimit(t *testing.T) {
	t.Parallel()
	tests := []struct {
		maxIndex uint64
		index    string
		want     int
	}{
		{10, "10", http.StatusOK},
		{10, "11", http.StatusBadRequest},
		{0, "5000", http.StatusOK},
	}
	for _, tt := range tests {
		cfg := DefaultSecurityConfig()
		cfg.MaxIndex = tt.maxIndex
		s := newTestServer(t, WithSecurityConfig(cfg))
		rec := get(t, s.Handler(), "/dispatch?index="+tt.index)
		if rec.Code != tt.want {
			t.Errorf("max %d, index %s: status = %d, want %d", tt.maxIndex, tt.index, rec.Code, tt.want)
		}
	}
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	rec := get(t, s.Handler(), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Version != "test" {
		t.Errorf("status/version = %q/%q", resp.Status, resp.Version)
	}
	if resp.CPUPercent != 12.5 || resp.ProcessRSS != 1<<20 {
		t.Errorf("sysmon fields not propagated: %+v", resp)
	}
	if len(resp.Algorithms) != 2 || resp.Algorithms[0] != "blocking" || resp.Algorithms[1] != "native" {
		t.Errorf("algorithms = %v", resp.Algorithms)
	}
}

func TestHandler_AppliesMiddleware(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	h := s.Handler()
	rec := get(t, h, "/health")
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers should be applied")
	}

	metrics := get(t, h, "/metrics").Body.String()
	if !strings.Contains(metrics, `fibdispatch_requests_total{code="200",path="/health"} 1`) {
		t.Error("metrics middleware should count /health")
	}
}

func TestServe_GracefulShutdown(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/dispatch?index=10")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	var body DispatchResponse
	err = json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if err != nil || body.Result != 55 {
		t.Fatalf("result = %d, err = %v", body.Result, err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStart_InvalidAddress(t *testing.T) {
	t.Parallel()
	s := New("256.0.0.1:bad", fibonacci.NewDefaultFactory(), WithLogger(newTestLogger()))
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("Start should fail on an invalid address")
	}
}
