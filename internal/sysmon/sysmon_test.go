package sysmon

import (
	"context"
	"testing"
)

func TestSystemSampler_ValidRanges(t *testing.T) {
	s := NewSystemSampler()
	st := s.Sample(context.Background())
	if st.CPUPercent < 0 || st.CPUPercent > 100 {
		t.Errorf("CPUPercent out of range: %f", st.CPUPercent)
	}
	if st.MemPercent < 0 || st.MemPercent > 100 {
		t.Errorf("MemPercent out of range: %f", st.MemPercent)
	}
}

func TestSystemSampler_ReadsMemory(t *testing.T) {
	st := NewSystemSampler().Sample(context.Background())
	if st.MemTotal == 0 || st.MemPercent == 0 {
		t.Errorf("expected memory readings on a running system, got %+v", st)
	}
	if st.ProcessRSS == 0 {
		t.Error("expected a resident set size for the test process")
	}
}

func TestSamplerFunc(t *testing.T) {
	t.Parallel()
	var s Sampler = SamplerFunc(func(context.Context) Stats { return Stats{CPUPercent: 12.5} })
	if got := s.Sample(context.Background()); got.CPUPercent != 12.5 {
		t.Errorf("SamplerFunc returned %+v", got)
	}
}
