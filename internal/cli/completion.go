package cli

import (
	"fmt"
	"io"
	"strings"
)

// FlagCompletion describes one command-line flag for completion scripts.
type FlagCompletion struct {
	Long   string   // long name without dashes
	Short  string   // short alias without dash, if any
	Help   string   // description
	Values []string // suggested values; nil for booleans
	Arg    string   // value label; empty for booleans
	IsFile bool     // value is a path
	IsAlgo bool     // values are the registered backends plus "all"
}

// flagRegistry lists every flag accepted by the config package.
var flagRegistry = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help"},
	{Long: "version", Help: "Show version information"},
	{Long: "algo", Help: "Backend to run", Arg: "backend", IsAlgo: true},
	{Long: "repeat", Help: "Timed dispatches per backend", Arg: "count", Values: []string{"1", "10", "100", "1000"}},
	{Long: "timeout", Help: "Maximum duration of the run", Arg: "duration", Values: []string{"10s", "1m", "5m"}},
	{Long: "quiet", Short: "q", Help: "Print only the report lines"},
	{Long: "verbose", Short: "v", Help: "Print statistics and allocations"},
	{Long: "format", Help: "Report format", Arg: "format", Values: []string{"text", "json", "cbor"}},
	{Long: "output", Short: "o", Help: "Save the report to a file", Arg: "file", IsFile: true},
	{Long: "serve", Help: "Serve the HTTP API", Arg: "addr", Values: []string{":8080"}},
	{Long: "tui", Help: "Start the terminal interface"},
	{Long: "repl", Help: "Start an interactive session"},
	{Long: "no-color", Help: "Disable colours"},
	{Long: "trace", Help: "Write OpenTelemetry spans to stderr"},
	{Long: "log-level", Help: "Log level", Arg: "level", Values: []string{"debug", "info", "warn", "error", "disabled"}},
	{Long: "wasm-engine", Help: "wazero engine", Arg: "engine", Values: []string{"compiler", "interpreter"}},
	{Long: "completion", Help: "Print a completion script", Arg: "shell", Values: []string{"bash", "zsh", "fish"}},
}

// GenerateCompletion writes a completion script for shell to out.
func GenerateCompletion(out io.Writer, shell string, algorithms []string) error {
	var script string
	switch shell {
	case "bash":
		script = bashCompletion(algorithms)
	case "zsh":
		script = zshCompletion(algorithms)
	case "fish":
		script = fishCompletion(algorithms)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish)", shell)
	}
	if _, err := io.WriteString(out, script); err != nil {
		return fmt.Errorf("completion %s generation failed: %w", shell, err)
	}
	return nil
}

func algoValues(algorithms []string) string {
	return strings.Join(append(append([]string(nil), algorithms...), "all"), " ")
}

func bashCompletion(algorithms []string) string {
	var opts []string
	var cases strings.Builder
	for _, f := range flagRegistry {
		names := []string{"-" + f.Long}
		if f.Short != "" {
			names = append(names, "-"+f.Short)
		}
		opts = append(opts, names...)

		var body string
		switch {
		case f.IsFile:
			body = `COMPREPLY=( $(compgen -f -- "${cur}") )`
		case f.IsAlgo:
			body = fmt.Sprintf(`COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, algoValues(algorithms))
		case len(f.Values) > 0:
			body = fmt.Sprintf(`COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, strings.Join(f.Values, " "))
		default:
			continue
		}
		fmt.Fprintf(&cases, "        %s)\n            %s\n            return 0\n            ;;\n", strings.Join(names, "|"), body)
	}

	return fmt.Sprintf(`# bash completion for fibdispatch
# source this file from ~/.bashrc

_fibdispatch() {
    local cur prev
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "%s" -- "${cur}") )
    fi
}

complete -F _fibdispatch fibdispatch
`, cases.String(), strings.Join(opts, " "))
}

func zshCompletion(algorithms []string) string {
	var args []string
	for _, f := range flagRegistry {
		value := ""
		switch {
		case f.IsFile:
			value = ":" + f.Arg + ":_files"
		case f.IsAlgo:
			value = fmt.Sprintf(":%s:(%s)", f.Arg, algoValues(algorithms))
		case len(f.Values) > 0:
			value = fmt.Sprintf(":%s:(%s)", f.Arg, strings.Join(f.Values, " "))
		case f.Arg != "":
			value = ":" + f.Arg + ":"
		}
		if f.Short != "" {
			args = append(args, fmt.Sprintf("    '(-%s -%s)'{-%s,-%s}'[%s]%s'", f.Short, f.Long, f.Short, f.Long, f.Help, value))
		} else {
			args = append(args, fmt.Sprintf("    '-%s[%s]%s'", f.Long, f.Help, value))
		}
	}
	args = append(args, "    ':index:'")

	return fmt.Sprintf("#compdef fibdispatch\n\n_arguments -s \\\n%s\n", strings.Join(args, " \\\n"))
}

func fishCompletion(algorithms []string) string {
	var b strings.Builder
	b.WriteString("# fish completion for fibdispatch\ncomplete -c fibdispatch -f\n")
	for _, f := range flagRegistry {
		parts := []string{"complete -c fibdispatch", "-o " + f.Long}
		if f.Short != "" {
			parts = append(parts, "-o "+f.Short)
		}
		parts = append(parts, fmt.Sprintf("-d '%s'", f.Help))
		switch {
		case f.IsFile:
			parts = append(parts, "-rF")
		case f.IsAlgo:
			parts = append(parts, fmt.Sprintf("-xa '%s'", algoValues(algorithms)))
		case len(f.Values) > 0:
			parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
		case f.Arg != "":
			parts = append(parts, "-x")
		}
		b.WriteString(strings.Join(parts, " "))
		b.WriteByte('\n')
	}
	return b.String()
}
