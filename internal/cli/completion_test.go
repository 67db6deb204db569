package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestGenerateCompletion(t *testing.T) {
	t.Parallel()
	algos := []string{"native", "wasm"}

	tests := []struct {
		shell    string
		contains []string
	}{
		{"bash", []string{"complete -F _fibdispatch fibdispatch", `-algo)`, `compgen -W "native wasm all"`, "-output|-o)", "compgen -f"}},
		{"zsh", []string{"#compdef fibdispatch", "'-algo[Backend to run]:backend:(native wasm all)'", "{-q,-quiet}", "':index:'"}},
		{"fish", []string{"complete -c fibdispatch -o algo", "-xa 'native wasm all'", "-o output -o o", "-rF"}},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, tt.shell, algos); err != nil {
				t.Fatalf("GenerateCompletion(%s) failed: %v", tt.shell, err)
			}
			out := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("%s script missing %q:\n%s", tt.shell, want, out)
				}
			}
		})
	}
}

func TestGenerateCompletion_UnsupportedShell(t *testing.T) {
	t.Parallel()
	if err := GenerateCompletion(&bytes.Buffer{}, "tcsh", nil); err == nil {
		t.Error("expected an error for tcsh")
	}
}

func TestFlagRegistryCoversEveryValueFlag(t *testing.T) {
	t.Parallel()
	for _, f := range flagRegistry {
		if f.Long == "" {
			t.Errorf("flag %+v has no long name", f)
		}
		if (f.IsFile || f.IsAlgo || len(f.Values) > 0) && f.Arg == "" {
			t.Errorf("value flag %q has no value label", f.Long)
		}
	}
}
