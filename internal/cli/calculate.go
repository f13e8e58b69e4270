package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/agbru/mpicalc/internal/calc"
	"github.com/agbru/mpicalc/internal/config"
	"github.com/agbru/mpicalc/internal/sysmon"
	"github.com/agbru/mpicalc/internal/ui"
)

// PrintExecutionConfig displays the run configuration: the script source,
// timeout, literal limit and host details.
//
// Parameters:
//   - cfg: The application configuration.
//   - source: The script being evaluated, shown in abbreviated form.
//   - out: The writer for standard output.
func PrintExecutionConfig(cfg config.AppConfig, source string, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Evaluating %s%s%s with a timeout of %s%s%s.\n",
		ui.ColorMagenta(), abbreviate(source, 60), ui.ColorReset(), ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
	if feats := sysmon.Features(); len(feats) > 0 {
		fmt.Fprintf(out, "CPU features: %s%s%s.\n", ui.ColorCyan(), strings.Join(feats, ", "), ui.ColorReset())
	}
	limit := "unlimited"
	if cfg.MaxDigits > 0 {
		limit = fmt.Sprintf("%d digits", cfg.MaxDigits)
	}
	fmt.Fprintf(out, "Literal limit: %s%s%s.\n", ui.ColorCyan(), limit, ui.ColorReset())
}

// PrintExecutionMode displays the execution mode (single backend vs comparison).
//
// Parameters:
//   - backends: The backends that will evaluate the script.
//   - out: The writer for standard output.
func PrintExecutionMode(backends []calc.Backend, out io.Writer) {
	var modeDesc string
	if len(backends) > 1 {
		modeDesc = "Parallel comparison of all backends"
	} else {
		modeDesc = fmt.Sprintf("Single evaluation with the %s%s%s backend",
			ui.ColorGreen(), backends[0].Name(), ui.ColorReset())
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", modeDesc)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}

// abbreviate flattens s to one line and cuts it to at most n runes.
func abbreviate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
