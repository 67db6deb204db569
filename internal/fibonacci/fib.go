// Package fibonacci computes Fibonacci values over unsigned 64-bit integers.
//
// Dispatch is the only entry point meant to be called by embedders. Values
// whose true magnitude exceeds the uint64 range wrap modulo 2^64; no overflow
// detection is performed.
package fibonacci

// MaxExactIndex is the largest index whose Fibonacci value fits in a uint64.
// Dispatch(MaxExactIndex+1) and beyond return the value modulo 2^64.
const MaxExactIndex = 93

// Step runs count iterations of the recurrence (a, b) -> (b, a+b) and returns
// the second element of the final pair. With count == 0 it returns b as is.
//
// The sum wraps modulo 2^64. Loop invariant: if a = F(k-1) and b = F(k) on
// entry, then after i iterations a = F(k+i-1) and b = F(k+i).
func Step(a, b, count uint64) uint64 {
	for count != 0 {
		a, b = b, a+b
		count--
	}
	return b
}

// Dispatch returns F(index) using the convention F(0) = 0, F(1) = 1.
// Indices below 2 are returned unchanged without entering Step.
// It is safe for concurrent use and runs in time proportional to index.
func Dispatch(index uint64) uint64 {
	if index < 2 {
		return index
	}
	return Step(0, 1, index-1)
}

// Wraps reports whether Dispatch(index) differs from the true Fibonacci value
// because of 64-bit wraparound.
func Wraps(index uint64) bool {
	return index > MaxExactIndex
}
