// Package config parses the command line and environment into an AppConfig.
package config

import (
	"flag"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/mpicalc/internal/errors"
	"github.com/agbru/mpicalc/internal/logging"
)

// EnvPrefix is prepended to every environment override key.
const EnvPrefix = "MPICALC_"

// Defaults.
const (
	DefaultBackend   = "mpi"
	DefaultTimeout   = 5 * time.Minute
	DefaultMaxDigits = 1_000_000
	DefaultLogLevel  = "info"
	DefaultServeAddr = ":8080"
	// DefaultTruncate is the number of leading and trailing digits shown for
	// long results unless -full is given.
	DefaultTruncate = 40
)

// AppConfig holds the resolved configuration of one run.
type AppConfig struct {
	// Expr is the script given with -e.
	Expr string
	// Files are script files given with -f or as positional arguments.
	Files []string
	// Backend is a backend name or "all".
	Backend string
	Timeout time.Duration

	Quiet   bool
	Verbose bool
	Details bool
	// ShowValue prints the full value instead of a truncated one.
	ShowValue bool
	Hex       bool
	NoColor   bool
	// OutputFile receives the result when set.
	OutputFile string

	REPL  bool
	TUI   bool
	Serve string

	Bench      bool
	BenchLimbs []int
	// Concurrency bounds batch evaluation (0 selects a value from the CPU count).
	Concurrency int

	LogLevel   string
	MaxDigits  int
	Completion string
	Version    bool
}

// Modes returns the names of the run modes selected, for conflict checks.
func (c AppConfig) Modes() []string {
	var modes []string
	if c.Expr != "" {
		modes = append(modes, "-e")
	}
	if len(c.Files) > 0 {
		modes = append(modes, "-f")
	}
	if c.REPL {
		modes = append(modes, "-repl")
	}
	if c.TUI {
		modes = append(modes, "-tui")
	}
	if c.Serve != "" {
		modes = append(modes, "-serve")
	}
	if c.Bench {
		modes = append(modes, "-bench")
	}
	return modes
}

// Validate checks the configuration against the available backends.
func (c AppConfig) Validate(availableBackends []string) error {
	if c.Backend != "all" && !slices.Contains(availableBackends, c.Backend) {
		return apperrors.NewConfigError("unknown backend %q (available: all, %s)", c.Backend, strings.Join(availableBackends, ", "))
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxDigits < 0 {
		return apperrors.NewConfigError("max-digits must be >= 0, got %d", c.MaxDigits)
	}
	if c.Concurrency < 0 {
		return apperrors.NewConfigError("concurrency must be >= 0, got %d", c.Concurrency)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if c.Completion != "" && !slices.Contains([]string{"bash", "zsh", "fish"}, c.Completion) {
		return apperrors.NewConfigError("unsupported shell %q for -completion (bash, zsh, fish)", c.Completion)
	}
	for _, n := range c.BenchLimbs {
		if n <= 0 {
			return apperrors.NewConfigError("bench-limbs entries must be positive, got %d", n)
		}
	}
	if m := c.Modes(); len(m) > 1 {
		return apperrors.NewConfigError("options %s cannot be combined", strings.Join(m, ", "))
	}
	return nil
}

// intList is a flag.Value for comma separated integers.
type intList []int

func (l *intList) String() string {
	parts := make([]string, len(*l))
	for i, n := range *l {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func (l *intList) Set(s string) error {
	v, err := parseIntList(s)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

func parseIntList(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", f)
		}
		out = append(out, n)
	}
	return out, nil
}

// ParseConfig parses args (without the program name) into an AppConfig.
// Environment overrides apply to every flag not given on the command line.
// flag.ErrHelp is returned unchanged for -h.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableBackends []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	fs.Usage = func() {
		fmt.Fprintf(errorWriter, "Usage: %s [options] [script files...]\n\n", programName)
		fmt.Fprintf(errorWriter, "Evaluates arbitrary precision unsigned integer expressions.\n\nOptions:\n")
		fs.PrintDefaults()
	}

	config := AppConfig{BenchLimbs: append([]int(nil), DefaultBenchLimbs...)}
	var file string
	fs.StringVar(&config.Expr, "e", "", "Script to evaluate.")
	fs.StringVar(&config.Expr, "expr", "", "Alias for -e.")
	fs.StringVar(&file, "f", "", "Script file to evaluate.")
	fs.StringVar(&file, "file", "", "Alias for -f.")
	fs.StringVar(&config.Backend, "backend", DefaultBackend, fmt.Sprintf("Backend to use: all, %s.", strings.Join(availableBackends, ", ")))
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum evaluation time.")
	fs.BoolVar(&config.Quiet, "q", false, "Print only the result.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Alias for -q.")
	fs.BoolVar(&config.Verbose, "v", false, "Verbose output.")
	fs.BoolVar(&config.Verbose, "verbose", false, "Alias for -v.")
	fs.BoolVar(&config.Details, "d", false, "Show result details (bits, limbs, digits).")
	fs.BoolVar(&config.Details, "details", false, "Alias for -d.")
	fs.BoolVar(&config.ShowValue, "full", false, "Print the full value instead of a truncated one.")
	fs.BoolVar(&config.Hex, "hex", false, "Also print results in hexadecimal.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&config.OutputFile, "o", "", "Write the result to this file.")
	fs.StringVar(&config.OutputFile, "output", "", "Alias for -o.")
	fs.BoolVar(&config.REPL, "repl", false, "Start the interactive REPL.")
	fs.BoolVar(&config.TUI, "tui", false, "Start the terminal UI.")
	fs.StringVar(&config.Serve, "serve", "", "Serve the HTTP API on this address (e.g. :8080).")
	fs.BoolVar(&config.Bench, "bench", false, "Benchmark mpi against math/big.")
	fs.Var((*intList)(&config.BenchLimbs), "bench-limbs", "Comma separated operand sizes in limbs for -bench.")
	fs.IntVar(&config.Concurrency, "concurrency", 0, "Scripts evaluated at once in batch mode (0 = auto).")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn, error.")
	fs.IntVar(&config.MaxDigits, "max-digits", DefaultMaxDigits, "Maximum digits per literal (0 = unlimited).")
	fs.StringVar(&config.Completion, "completion", "", "Print a completion script for bash, zsh or fish.")
	fs.BoolVar(&config.Version, "version", false, "Print version information.")
	fs.BoolVar(&config.Version, "V", false, "Alias for -version.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if file != "" {
		config.Files = append(config.Files, file)
	}
	config.Files = append(config.Files, fs.Args()...)

	applyEnvOverrides(&config, fs)

	if err := config.Validate(availableBackends); err != nil {
		fmt.Fprintln(errorWriter, "Error:", err)
		fs.Usage()
		return AppConfig{}, err
	}
	return config, nil
}
