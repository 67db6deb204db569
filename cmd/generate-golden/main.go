// Command generate-golden writes the reference table used by the fibonacci
// package tests: F(i) mod 2^64 for every index up to -max, computed with
// math/big as an oracle independent of the uint64 loop.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"
)

const maxExactIndex = 93

type entry struct {
	Index   uint64 `json:"index"`
	Value   string `json:"value"`
	Wrapped bool   `json:"wrapped"`
}

type table struct {
	Modulus string  `json:"modulus"`
	Entries []entry `json:"entries"`
}

// modulus is 2^64.
var modulus = new(big.Int).Lsh(big.NewInt(1), 64)

// fibBig returns the exact F(n).
func fibBig(n uint64) *big.Int {
	a, b := big.NewInt(0), big.NewInt(1)
	for range n {
		a.Add(a, b)
		a, b = b, a
	}
	return a
}

// buildTable computes the entries for indexes 0..maxIndex.
func buildTable(maxIndex uint64) table {
	t := table{Modulus: modulus.String()}
	for i := uint64(0); i <= maxIndex; i++ {
		v := new(big.Int).Mod(fibBig(i), modulus)
		t.Entries = append(t.Entries, entry{Index: i, Value: v.String(), Wrapped: i > maxExactIndex})
	}
	return t
}

func main() {
	out := flag.String("out", "internal/fibonacci/testdata/golden.json", "Destination file.")
	maxIndex := flag.Uint64("max", 128, "Largest index to include.")
	flag.Parse()

	data, err := json.MarshalIndent(buildTable(*maxIndex), "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, append(data, '\n'), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d entries to %s\n", *maxIndex+1, *out)
}
