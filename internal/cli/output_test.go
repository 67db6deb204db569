package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agbru/fibdispatch/internal/config"
	"github.com/agbru/fibdispatch/internal/harness"
	"github.com/agbru/fibdispatch/internal/orchestration"
)

func sampleResult() orchestration.CalculationResult {
	return orchestration.CalculationResult{
		Name:     "Native (Go loop)",
		Result:   12200160415121876738,
		Ticks:    310,
		Unit:     "ns",
		Stats:    harness.Stats{Runs: 5},
		Duration: 4 * time.Microsecond,
	}
}

func TestNewReport(t *testing.T) {
	t.Parallel()
	r := NewReport(sampleResult(), 93)
	require.Equal(t, uint64(93), r.Index)
	require.Equal(t, uint64(12200160415121876738), r.Result)
	require.False(t, r.Wrapped, "F(93) still fits in 64 bits")
	require.Equal(t, 5, r.Runs)
	require.Equal(t, int64(4000), r.DurationNS)

	require.True(t, NewReport(sampleResult(), 94).Wrapped)
}

func TestEncodeReport_Text(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, EncodeReport(&buf, config.FormatText, NewReport(sampleResult(), 93)))
	out := buf.String()
	require.Contains(t, out, "# Backend: Native (Go loop)")
	require.True(t, strings.HasSuffix(out, "Result: 12200160415121876738\n In 310 cycles\n"), out)
}

func TestEncodeReport_JSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, EncodeReport(&buf, config.FormatJSON, NewReport(sampleResult(), 93)))

	// uint64 values above 2^53 must survive as exact JSON numbers.
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	require.Equal(t, "12200160415121876738", string(raw["result"]))
	require.Equal(t, `"Native (Go loop)"`, string(raw["algorithm"]))

	got, err := DecodeReport(bytes.NewReader(buf.Bytes()), config.FormatJSON)
	require.NoError(t, err)
	require.Equal(t, NewReport(sampleResult(), 93), got)
}

func TestEncodeReport_CBOR(t *testing.T) {
	t.Parallel()
	want := NewReport(sampleResult(), 93)

	var first, second bytes.Buffer
	require.NoError(t, EncodeReport(&first, config.FormatCBOR, want))
	require.NoError(t, EncodeReport(&second, config.FormatCBOR, want))
	require.Equal(t, first.Bytes(), second.Bytes(), "encoding should be deterministic")
	// A map with 8 integer keys starts with major type 5, length 8.
	require.Equal(t, byte(0xa8), first.Bytes()[0])

	got, err := DecodeReport(&first, config.FormatCBOR)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestEncodeReport_UnknownFormat(t *testing.T) {
	t.Parallel()
	require.Error(t, EncodeReport(&bytes.Buffer{}, "yaml", Report{}))
	_, err := DecodeReport(strings.NewReader(""), config.FormatText)
	require.Error(t, err)
}

func TestWriteResultToFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "dir", "report.json")
	require.NoError(t, WriteResultToFile(path, config.FormatJSON, NewReport(sampleResult(), 93)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := DecodeReport(f, config.FormatJSON)
	require.NoError(t, err)
	require.Equal(t, uint64(93), got.Index)
}

func TestWriteResultToFile_BadPath(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	require.Error(t, WriteResultToFile(filepath.Join(blocker, "report.txt"), config.FormatText, Report{}))
}

func TestDisplayQuietResult(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, DisplayQuietResult(&buf, sampleResult(), 93))
	require.Equal(t, "Result: 12200160415121876738\n In 310 cycles\n", buf.String())
}
