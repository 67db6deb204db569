// # Naming Conventions
//
//   - Display* functions write human-oriented output to an [io.Writer].
//   - Format* functions return strings and perform no I/O.
//   - Encode*/Decode* functions convert a [Report] to and from a wire format.
//   - Write* functions create files.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"

	"github.com/agbru/fibdispatch/internal/config"
	"github.com/agbru/fibdispatch/internal/fibonacci"
	"github.com/agbru/fibdispatch/internal/harness"
	"github.com/agbru/fibdispatch/internal/orchestration"
)

// Report is the machine-readable record of one benchmark.
type Report struct {
	Index      uint64 `json:"index" cbor:"1,keyasint"`
	Result     uint64 `json:"result" cbor:"2,keyasint"`
	Algorithm  string `json:"algorithm" cbor:"3,keyasint"`
	Wrapped    bool   `json:"wrapped" cbor:"4,keyasint"`
	Ticks      uint64 `json:"ticks" cbor:"5,keyasint"`
	Unit       string `json:"unit" cbor:"6,keyasint"`
	Runs       int    `json:"runs" cbor:"7,keyasint"`
	DurationNS int64  `json:"duration_ns" cbor:"8,keyasint"`
}

// NewReport builds the record of result for index.
func NewReport(result orchestration.CalculationResult, index uint64) Report {
	return Report{
		Index:      index,
		Result:     result.Result,
		Algorithm:  result.Name,
		Wrapped:    fibonacci.Wraps(index),
		Ticks:      result.Ticks,
		Unit:       result.Unit,
		Runs:       result.Stats.Runs,
		DurationNS: result.Duration.Nanoseconds(),
	}
}

// Measurement converts r back into the harness representation.
func (r Report) Measurement() harness.Measurement {
	return harness.Measurement{Index: r.Index, Result: r.Result, Ticks: r.Ticks, Unit: r.Unit}
}

// cborMode encodes with deterministic (core) CBOR rules.
var cborMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// EncodeReport writes r to w in the given format.
func EncodeReport(w io.Writer, formatName string, r Report) error {
	switch formatName {
	case config.FormatText:
		if _, err := fmt.Fprintf(w, "# fibdispatch report\n# Backend: %s\n# Index: %d\n# Wrapped: %t\n# Runs: %d\n\n",
			r.Algorithm, r.Index, r.Wrapped, r.Runs); err != nil {
			return err
		}
		return harness.WriteReport(w, r.Measurement())
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case config.FormatCBOR:
		return cborMode.NewEncoder(w).Encode(r)
	default:
		return fmt.Errorf("unsupported report format %q", formatName)
	}
}

// DecodeReport reads a JSON or CBOR report.
func DecodeReport(rd io.Reader, formatName string) (Report, error) {
	var r Report
	var err error
	switch formatName {
	case config.FormatJSON:
		err = json.NewDecoder(rd).Decode(&r)
	case config.FormatCBOR:
		err = cbor.NewDecoder(rd).Decode(&r)
	default:
		err = fmt.Errorf("cannot decode report format %q", formatName)
	}
	return r, err
}

// WriteResultToFile saves r to path, creating parent directories.
func WriteResultToFile(path, formatName string, r Report) (err error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()
	return EncodeReport(f, formatName, r)
}

// DisplayQuietResult prints only the two report lines.
func DisplayQuietResult(out io.Writer, result orchestration.CalculationResult, index uint64) error {
	return harness.WriteReport(out, result.Measurement(index))
}
