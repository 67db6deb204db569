package harness

import "time"

// Clock is a monotonic tick source. The harness reads it immediately before
// and after a dispatch; the difference is reported as the cycle count.
type Clock interface {
	// Ticks returns the current reading. Readings only grow.
	Ticks() uint64
	// Unit names what one tick measures (e.g. "ns").
	Unit() string
}

// goClock reads Go's monotonic clock relative to its creation time.
type goClock struct {
	origin time.Time
}

func newGoClock() *goClock { return &goClock{origin: time.Now()} }

func (c *goClock) Ticks() uint64 { return uint64(time.Since(c.origin)) }

func (c *goClock) Unit() string { return "ns" }

// FuncClock adapts a function to Clock. It is mainly useful in tests, where
// a scripted sequence of readings makes reports reproducible.
type FuncClock struct {
	Read     func() uint64
	TickUnit string
}

// Ticks calls Read.
func (f FuncClock) Ticks() uint64 { return f.Read() }

// Unit returns TickUnit.
func (f FuncClock) Unit() string { return f.TickUnit }
