package app

import (
	"os"
	"testing"

	"github.com/agbru/fibdispatch/internal/cli"
)

func readReport(t *testing.T, path, format string) cli.Report {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()
	r, err := cli.DecodeReport(f, format)
	if err != nil {
		t.Fatalf("decode report: %v", err)
	}
	return r
}
