// Package metrics reads Go runtime memory statistics around a benchmark so
// the CLI can report what a run allocated.
package metrics

import "runtime"

// MemorySnapshot holds a point-in-time memory reading.
type MemorySnapshot struct {
	HeapAlloc    uint64 // bytes of live heap objects
	TotalAlloc   uint64 // cumulative bytes allocated
	Mallocs      uint64 // cumulative heap objects allocated
	Sys          uint64 // bytes obtained from the OS
	NumGC        uint32
	PauseTotalNs uint64
}

// MemoryDelta is the difference between two snapshots.
type MemoryDelta struct {
	Allocated    uint64 // bytes allocated in between
	Objects      uint64 // heap objects allocated in between
	GCCycles     uint32
	PauseTotalNs uint64
	PeakHeap     uint64 // larger HeapAlloc of the two readings
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads the current statistics. It stops the world briefly.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		TotalAlloc:   m.TotalAlloc,
		Mallocs:      m.Mallocs,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
	}
}

// Delta returns what happened between before and after. Counters that went
// backwards yield zero.
func Delta(before, after MemorySnapshot) MemoryDelta {
	return MemoryDelta{
		Allocated:    sub(after.TotalAlloc, before.TotalAlloc),
		Objects:      sub(after.Mallocs, before.Mallocs),
		GCCycles:     uint32(sub(uint64(after.NumGC), uint64(before.NumGC))),
		PauseTotalNs: sub(after.PauseTotalNs, before.PauseTotalNs),
		PeakHeap:     max(before.HeapAlloc, after.HeapAlloc),
	}
}

func sub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
