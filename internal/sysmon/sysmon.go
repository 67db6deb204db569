// Package sysmon samples system-wide and per-process resource usage for the
// dashboard footer and the /health endpoint.
package sysmon

import (
	"context"
	"os"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Stats holds a single resource usage snapshot. Fields that could not be
// read stay zero.
type Stats struct {
	CPUPercent float64 // system-wide, 0..100
	MemPercent float64 // system-wide, 0..100
	MemTotal   uint64  // bytes
	ProcessRSS uint64  // resident set size of this process, bytes
}

// Sampler produces snapshots.
type Sampler interface {
	Sample(ctx context.Context) Stats
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func(ctx context.Context) Stats

// Sample calls f.
func (f SamplerFunc) Sample(ctx context.Context) Stats { return f(ctx) }

// SystemSampler reads the host through gopsutil. CPU usage is the delta
// since the previous call, so the first sample may report zero.
type SystemSampler struct {
	proc *process.Process
}

// NewSystemSampler returns a sampler bound to the current process.
func NewSystemSampler() *SystemSampler {
	s := &SystemSampler{}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		s.proc = p
	}
	return s
}

// Sample collects one snapshot.
func (s *SystemSampler) Sample(ctx context.Context) Stats {
	var st Stats
	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		st.CPUPercent = pcts[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm != nil {
		st.MemPercent = vm.UsedPercent
		st.MemTotal = vm.Total
	}
	if s.proc != nil {
		if mi, err := s.proc.MemoryInfoWithContext(ctx); err == nil && mi != nil {
			st.ProcessRSS = mi.RSS
		}
	}
	return st
}
