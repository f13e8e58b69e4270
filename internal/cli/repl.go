package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/mpicalc/internal/calc"
	"github.com/agbru/mpicalc/internal/format"
	"github.com/agbru/mpicalc/internal/metrics"
	"github.com/agbru/mpicalc/internal/orchestration"
	"github.com/agbru/mpicalc/internal/sysmon"
	"github.com/agbru/mpicalc/internal/ui"
)

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// DefaultBackend is the backend used until the "backend" command.
	DefaultBackend string
	// Timeout is the maximum duration of each evaluation.
	Timeout time.Duration
	// MaxDigits limits literal length (<= 0 for no limit).
	MaxDigits int
	// HexOutput also prints results in hexadecimal.
	HexOutput bool
	// FullOutput disables truncation of long values.
	FullOutput bool
}

// REPL is an interactive session. Variables assigned by one line are visible
// to the next ones.
type REPL struct {
	config  REPLConfig
	factory calc.BackendFactory
	session *calc.Session
	current string
	mem     *metrics.MemoryCollector
	in      io.Reader
	out     io.Writer
}

// NewREPL creates a new REPL instance. An empty or "all" default backend
// selects the first registered one.
func NewREPL(factory calc.BackendFactory, config REPLConfig) *REPL {
	current := config.DefaultBackend
	if current == "" || current == "all" {
		if names := factory.List(); len(names) > 0 {
			current = names[0]
		}
	}
	return &REPL{
		config:  config,
		factory: factory,
		session: calc.NewSession(config.MaxDigits),
		current: current,
		mem:     metrics.NewMemoryCollector(),
		in:      os.Stdin,
		out:     os.Stdout,
	}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) { r.in = in }

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) { r.out = out }

// Session exposes the variables of the REPL.
func (r *REPL) Session() *calc.Session { return r.session }

// Start reads and executes lines until "exit" or end of input.
func (r *REPL) Start() {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)
	for {
		fmt.Fprint(r.out, ui.ColorGreen()+r.current+"> "+ui.ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			return
		}
		if line := strings.TrimSpace(input); line != "" {
			if !r.processCommand(line) {
				return
			}
		}
		if err != nil {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s║%s     %s🔢 mpicalc - Interactive Mode%s                         %s║%s\n",
		ui.ColorCyan(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ui.ColorCyan(), ui.ColorReset())
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %s<statements>%s     - Evaluate, e.g. x = 2 << 100; x * x\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %scalc <script>%s    - Same, when a variable shadows a command\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sbackend <name>%s   - Change backend (%s)\n", ui.ColorYellow(), ui.ColorReset(), strings.Join(r.factory.List(), ", "))
	fmt.Fprintf(r.out, "  %scompare <script>%s - Evaluate on every backend and compare\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %svars%s             - List variables\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sreset%s            - Forget all variables\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %slist%s             - List available backends\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %shex%s / %sfull%s       - Toggle hexadecimal / untruncated display\n", ui.ColorYellow(), ui.ColorReset(), ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sstatus%s           - Display configuration and resource usage\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %shelp%s             - Display this help\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sexit%s / %squit%s      - Exit interactive mode\n", ui.ColorYellow(), ui.ColorReset(), ui.ColorYellow(), ui.ColorReset())
}

// processCommand executes one line. It returns false if the REPL should exit.
func (r *REPL) processCommand(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}
	// "hex = 3" assigns a variable named hex.
	if len(parts) > 1 && strings.HasPrefix(parts[1], "=") {
		r.evaluate(input)
		return true
	}

	cmd := strings.ToLower(parts[0])
	rest := strings.TrimSpace(input[len(parts[0]):])

	switch cmd {
	case "calc", "c", "let":
		if rest == "" {
			fmt.Fprintf(r.out, "%sUsage: %s <script>%s\n", ui.ColorRed(), cmd, ui.ColorReset())
			return true
		}
		r.evaluate(rest)
	case "backend", "b":
		r.cmdBackend(parts[1:])
	case "compare", "cmp":
		r.cmdCompare(rest)
	case "vars":
		r.cmdVars()
	case "reset":
		r.session.Reset()
		fmt.Fprintf(r.out, "Variables cleared.\n")
	case "list", "ls", "backends":
		r.cmdList()
	case "hex":
		r.config.HexOutput = !r.config.HexOutput
		fmt.Fprintf(r.out, "Hexadecimal display: %s%s%s\n", ui.ColorGreen(), onOff(r.config.HexOutput), ui.ColorReset())
	case "full":
		r.config.FullOutput = !r.config.FullOutput
		fmt.Fprintf(r.out, "Full display: %s%s%s\n", ui.ColorGreen(), onOff(r.config.FullOutput), ui.ColorReset())
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ui.ColorGreen(), ui.ColorReset())
		return false
	default:
		r.evaluate(input)
	}
	return true
}

// evaluate runs src on the current backend and commits its assignments.
func (r *REPL) evaluate(src string) {
	backend, err := r.factory.Get(r.current)
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	s := newSpinner(spinner.WithWriter(r.out))
	s.UpdateSuffix(" Evaluating with " + backend.Name())
	s.Start()
	res, elapsed, err := r.session.Eval(ctx, backend, src)
	s.Stop()

	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	if res.Value != nil {
		fmt.Fprintf(r.out, "= %s%s%s\n", ui.ColorMagenta(), FormatValue(res.Value, r.config.FullOutput), ui.ColorReset())
		if r.config.HexOutput {
			fmt.Fprintf(r.out, "= %s%s%s\n", ui.ColorMagenta(), FormatHex(res.Value, r.config.FullOutput), ui.ColorReset())
		}
	}
	bits := 0
	if res.Value != nil {
		bits = res.Value.BitLen()
	}
	fmt.Fprintf(r.out, "%s(%s, %s, %d bits)%s\n", ui.ColorGrey(),
		backend.Name(), format.FormatExecutionDuration(elapsed), bits, ui.ColorReset())
}

func (r *REPL) cmdBackend(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "Current backend: %s%s%s\n", ui.ColorGreen(), r.current, ui.ColorReset())
		fmt.Fprintf(r.out, "Available backends: %s\n", strings.Join(r.factory.List(), ", "))
		return
	}
	name := strings.ToLower(args[0])
	backend, err := r.factory.Get(name)
	if err != nil {
		fmt.Fprintf(r.out, "%sUnknown backend: %s%s\n", ui.ColorRed(), name, ui.ColorReset())
		fmt.Fprintf(r.out, "Available backends: %s\n", strings.Join(r.factory.List(), ", "))
		return
	}
	r.current = name
	fmt.Fprintf(r.out, "Backend changed to: %s%s%s\n", ui.ColorGreen(), backend.Name(), ui.ColorReset())
}

// cmdCompare evaluates src on every backend against the session variables.
// Assignments are not committed.
func (r *REPL) cmdCompare(src string) {
	if src == "" {
		fmt.Fprintf(r.out, "%sUsage: compare <script>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	prog, err := calc.ParseAndValidate(src, r.config.MaxDigits)
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	backends := r.factory.GetAll()
	results := orchestration.ExecuteEvaluations(ctx, backends, prog, r.session.Env(), orchestration.NullProgressReporter{}, r.out)
	opts := orchestration.PresentationOptions{ShowValue: r.config.FullOutput, Hex: r.config.HexOutput}
	presenter := CLIResultPresenter{}
	orchestration.AnalyzeComparisonResults(results, opts, presenter, presenter, r.out)
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdVars() {
	vars := r.session.Vars()
	if len(vars) == 0 {
		fmt.Fprintf(r.out, "No variables.\n")
		return
	}
	width := 0
	for _, b := range vars {
		width = max(width, len(b.Name))
	}
	for _, b := range vars {
		fmt.Fprintf(r.out, "  %s%-*s%s = %s\n", ui.ColorYellow(), width, b.Name, ui.ColorReset(),
			FormatValue(b.Value, r.config.FullOutput))
	}
}

func (r *REPL) cmdList() {
	fmt.Fprintf(r.out, "\n%sAvailable backends:%s\n", ui.ColorBold(), ui.ColorReset())
	for _, b := range r.factory.GetAll() {
		marker := "  "
		if b.Name() == r.current {
			marker = ui.ColorGreen() + "► " + ui.ColorReset()
		}
		fmt.Fprintf(r.out, "%s%s%-6s%s - %s\n", marker, ui.ColorYellow(), b.Name(), ui.ColorReset(), b.Description())
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdStatus() {
	snap := r.mem.Snapshot()
	sys := sysmon.Sample()
	fmt.Fprintf(r.out, "\n%sCurrent configuration:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Backend:      %s%s%s\n", ui.ColorCyan(), r.current, ui.ColorReset())
	fmt.Fprintf(r.out, "  Timeout:      %s%s%s\n", ui.ColorCyan(), r.config.Timeout, ui.ColorReset())
	fmt.Fprintf(r.out, "  Hexadecimal:  %s%s%s\n", ui.ColorCyan(), onOff(r.config.HexOutput), ui.ColorReset())
	fmt.Fprintf(r.out, "  Full values:  %s%s%s\n", ui.ColorCyan(), onOff(r.config.FullOutput), ui.ColorReset())
	fmt.Fprintf(r.out, "  Variables:    %s%d%s\n", ui.ColorCyan(), len(r.session.Vars()), ui.ColorReset())
	fmt.Fprintf(r.out, "  Heap in use:  %s%s%s\n", ui.ColorCyan(), format.FormatBytes(snap.HeapAlloc), ui.ColorReset())
	fmt.Fprintf(r.out, "  System:       %sCPU %.1f%%, memory %.1f%%%s\n", ui.ColorCyan(), sys.CPUPercent, sys.MemPercent, ui.ColorReset())
	fmt.Fprintln(r.out)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
