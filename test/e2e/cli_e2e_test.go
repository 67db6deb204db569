package e2e

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// buildBinary compiles cmd/fibdispatch into a temporary directory.
func buildBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping e2e build in short mode")
	}
	binName := "fibdispatch"
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}
	binPath := filepath.Join(t.TempDir(), binName)

	// go test runs in the package directory; build from the module root.
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/fibdispatch")
	cmd.Dir = filepath.Join("..", "..")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to build fibdispatch: %v", err)
	}
	return binPath
}

func TestCLI_E2E(t *testing.T) {
	binPath := buildBinary(t)

	tests := []struct {
		name     string
		args     []string
		wantOut  string // substring, case-insensitive
		wantCode int
	}{
		{"Basic dispatch", []string{"20"}, "Result: 6765", 0},
		{"Base case", []string{"-q", "1"}, "Result: 1\n In ", 0},
		{"Zero", []string{"-q", "0"}, "Result: 0\n", 0},
		{"Wrapped index", []string{"-q", "94"}, "Result: 1293530146158671551", 0},
		{"All backends", []string{"-algo", "all", "93"}, "consistent", 0},
		{"WASM interpreter", []string{"-algo", "wasm", "-wasm-engine", "interpreter", "-q", "10"}, "Result: 55", 0},
		{"JSON report", []string{"-format", "json", "10"}, `"result": 55`, 0},
		{"Help", []string{"--help"}, "usage", 0},
		{"Version", []string{"--version"}, "fibdispatch", 0},
		{"Missing index", nil, "missing index", 4},
		{"Non-numeric index", []string{"ten"}, "not a decimal integer", 4},
		{"Unknown backend", []string{"-algo", "gpu", "5"}, "unknown algorithm", 4},
		{"Repeat above limit", []string{"-repeat", "2000000000", "5"}, "repeat must be in", 4},
		{"Trace spans", []string{"-q", "-trace", "5"}, "fibdispatch.bench", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binPath, tt.args...)
			cmd.Env = append(os.Environ(), "NO_COLOR=1")
			output, err := cmd.CombinedOutput()
			outStr := string(output)

			code := 0
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				code = exitErr.ExitCode()
			} else if err != nil {
				t.Fatalf("running binary: %v", err)
			}
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nOutput: %s", code, tt.wantCode, outStr)
			}
			if !strings.Contains(strings.ToLower(outStr), strings.ToLower(tt.wantOut)) {
				t.Errorf("Output missing expected string.\nExpected: %q\nGot:\n%s", tt.wantOut, outStr)
			}
		})
	}
}

func TestCLI_E2E_QuietReportShape(t *testing.T) {
	binPath := buildBinary(t)

	out, err := exec.Command(binPath, "-q", "20").Output()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("want two lines, got %q", out)
	}
	if lines[0] != "Result: 6765" {
		t.Errorf("line 1 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], " In ") || !strings.HasSuffix(lines[1], " cycles") {
		t.Errorf("line 2 = %q", lines[1])
	}
}
