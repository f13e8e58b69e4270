package cli

import (
	"fmt"
	"io"
	"strings"
)

// FlagCompletion describes a CLI flag for shell completion generation.
// All shell completion functions generate from this registry, so adding
// a new flag only requires appending to flagRegistry.
type FlagCompletion struct {
	Long      string   // long flag name without "--" (e.g., "help")
	Short     string   // short flag without "-" (e.g., "h")
	Help      string   // description text
	Values    []string // suggested completion values (nil = boolean/no suggestions)
	ValueName string   // label for the value in zsh (e.g., "duration")
	IsFile    bool     // true if the flag takes a file path
	IsBackend bool     // true if values come from the backend list
	Section   string   // fish comment header the flag is listed under
}

// flagRegistry is the central list of all CLI flags for completion generation.
var flagRegistry = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help message", Section: "Help and version"},
	{Long: "version", Short: "V", Help: "Show version information", Section: "Help and version"},
	{Long: "expr", Short: "e", Help: "Script to evaluate", ValueName: "script", Section: "Input"},
	{Long: "file", Short: "f", Help: "Script file to evaluate", IsFile: true, ValueName: "file", Section: "Input"},
	{Long: "max-digits", Help: "Maximum digits per literal", Values: []string{"0", "10000", "1000000"}, ValueName: "digits", Section: "Input"},
	{Long: "backend", Help: "Backend to use", IsBackend: true, ValueName: "backend", Section: "Evaluation"},
	{Long: "timeout", Help: "Maximum evaluation time", Values: []string{"10s", "1m", "5m", "30m"}, ValueName: "duration", Section: "Evaluation"},
	{Long: "concurrency", Help: "Scripts evaluated at once in batch mode", Values: []string{"0", "1", "2", "4", "8"}, ValueName: "count", Section: "Evaluation"},
	{Long: "quiet", Short: "q", Help: "Print only the result", Section: "Output"},
	{Long: "verbose", Short: "v", Help: "Verbose output", Section: "Output"},
	{Long: "details", Short: "d", Help: "Show result size details", Section: "Output"},
	{Long: "full", Help: "Print the full value", Section: "Output"},
	{Long: "hex", Help: "Also print hexadecimal", Section: "Output"},
	{Long: "no-color", Help: "Disable colored output", Section: "Output"},
	{Long: "output", Short: "o", Help: "Output file path", IsFile: true, ValueName: "file", Section: "Output"},
	{Long: "log-level", Help: "Log level", Values: []string{"debug", "info", "warn", "error"}, ValueName: "level", Section: "Output"},
	{Long: "repl", Help: "Start the interactive REPL", Section: "Modes"},
	{Long: "tui", Help: "Start the terminal UI", Section: "Modes"},
	{Long: "serve", Help: "Serve the HTTP API", Values: []string{":8080", "localhost:8080"}, ValueName: "address", Section: "Modes"},
	{Long: "bench", Help: "Benchmark mpi against math/big", Section: "Modes"},
	{Long: "bench-limbs", Help: "Operand sizes in limbs for -bench", Values: []string{"8,32,128,512,2048", "64,1024"}, ValueName: "sizes", Section: "Modes"},
	{Long: "completion", Help: "Generate completion script", Values: []string{"bash", "zsh", "fish"}, ValueName: "shell", Section: "Completion"},
}

// GenerateCompletion generates a shell completion script for the specified shell.
//
// Parameters:
//   - out: The writer to output the completion script.
//   - shell: The shell type ("bash", "zsh", "fish").
//   - backends: Names of the available backends.
//
// Returns:
//   - error: An error if the shell is not supported.
func GenerateCompletion(out io.Writer, shell string, backends []string) error {
	switch shell {
	case "bash":
		return generateBashCompletion(out, backends)
	case "zsh":
		return generateZshCompletion(out, backends)
	case "fish":
		return generateFishCompletion(out, backends)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish)", shell)
	}
}

func generateBashCompletion(out io.Writer, backends []string) error {
	var opts []string
	var caseBody strings.Builder
	writeCase := func(patterns []string, body string) {
		fmt.Fprintf(&caseBody, "        %s)\n            %s\n            return 0\n            ;;\n", strings.Join(patterns, "|"), body)
	}

	var filePatterns []string
	for _, f := range flagRegistry {
		var patterns []string
		if f.Long != "" {
			patterns = append(patterns, "--"+f.Long, "-"+f.Long)
			opts = append(opts, "--"+f.Long)
		}
		if f.Short != "" {
			patterns = append(patterns, "-"+f.Short)
			opts = append(opts, "-"+f.Short)
		}
		switch {
		case f.IsFile:
			filePatterns = append(filePatterns, patterns...)
		case f.IsBackend:
			writeCase(patterns, `COMPREPLY=( $(compgen -W "${backends}" -- "${cur}") )`)
		case len(f.Values) > 0:
			writeCase(patterns, fmt.Sprintf(`COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, strings.Join(f.Values, " ")))
		}
	}
	if len(filePatterns) > 0 {
		writeCase(filePatterns, `COMPREPLY=( $(compgen -f -- "${cur}") )`)
	}

	script := fmt.Sprintf(`# Bash completion script for mpicalc
# Add this to your ~/.bashrc or ~/.bash_completion

_mpicalc_completions() {
    local cur prev opts backends
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    opts="%s"
    backends="%s all"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
    COMPREPLY=( $(compgen -f -- "${cur}") )
}

complete -F _mpicalc_completions mpicalc
`, strings.Join(opts, " "), strings.Join(backends, " "), caseBody.String())

	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion bash generation failed: %w", err)
	}
	return nil
}

func generateZshCompletion(out io.Writer, backends []string) error {
	args := make([]string, 0, len(flagRegistry)+1)
	for _, f := range flagRegistry {
		args = append(args, zshArgEntry(f))
	}
	args = append(args, "        '*:script file:_files'")

	script := fmt.Sprintf(`#compdef mpicalc

# Zsh completion script for mpicalc
# Add this to your ~/.zshrc or place in $fpath

_mpicalc() {
    local -a backends
    backends=(%s all)

    _arguments -s \
%s
}

_mpicalc "$@"
`, strings.Join(backends, " "), strings.Join(args, " \\\n"))

	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion zsh generation failed: %w", err)
	}
	return nil
}

// zshArgEntry formats a single FlagCompletion as a zsh _arguments entry.
func zshArgEntry(f FlagCompletion) string {
	valueSuffix := ""
	switch {
	case f.IsFile:
		valueSuffix = fmt.Sprintf(":%s:_files", f.ValueName)
	case f.IsBackend:
		valueSuffix = fmt.Sprintf(":%s:($backends)", f.ValueName)
	case len(f.Values) > 0:
		valueSuffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(f.Values, " "))
	case f.ValueName != "":
		valueSuffix = fmt.Sprintf(":%s:", f.ValueName)
	}

	if f.Long != "" && f.Short != "" {
		return fmt.Sprintf("        '(-%s --%s)'{-%s,--%s}'[%s]%s'",
			f.Short, f.Long, f.Short, f.Long, f.Help, valueSuffix)
	}
	return fmt.Sprintf("        '--%s[%s]%s'", f.Long, f.Help, valueSuffix)
}

func generateFishCompletion(out io.Writer, backends []string) error {
	lines := []string{
		"# Fish completion script for mpicalc",
		"# Add this to ~/.config/fish/completions/mpicalc.fish",
		"",
	}

	backendList := strings.Join(backends, " ")
	section := ""
	for _, f := range flagRegistry {
		if f.Section != section {
			if section != "" {
				lines = append(lines, "")
			}
			section = f.Section
			lines = append(lines, "# "+section)
		}
		lines = append(lines, fishCompleteLine(f, backendList))
	}
	lines = append(lines, "")

	if _, err := fmt.Fprint(out, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("completion fish generation failed: %w", err)
	}
	return nil
}

// fishCompleteLine formats a single FlagCompletion as a fish complete command.
func fishCompleteLine(f FlagCompletion, backendList string) string {
	parts := []string{"complete -c mpicalc"}
	if f.Short != "" {
		parts = append(parts, "-s "+f.Short)
	}
	if f.Long != "" {
		parts = append(parts, "-l "+f.Long)
	}
	parts = append(parts, fmt.Sprintf("-d '%s'", f.Help))

	switch {
	case f.IsFile:
		parts = append(parts, "-rF")
	case f.IsBackend:
		parts = append(parts, fmt.Sprintf("-xa '%s all'", backendList))
	case len(f.Values) > 0:
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
	case f.ValueName != "":
		parts = append(parts, "-x")
	}
	return strings.Join(parts, " ")
}
