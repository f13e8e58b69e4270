// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [DisplayResult], [DisplayQuietResult], [DisplayProgress].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatValue], [FormatQuietResult].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteResultToFile].

package cli

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agbru/mpicalc/internal/config"
	"github.com/agbru/mpicalc/internal/format"
	"github.com/agbru/mpicalc/internal/mpi"
	"github.com/agbru/mpicalc/internal/orchestration"
	"github.com/agbru/mpicalc/internal/ui"
)

// DisplayEdges is the number of leading and trailing digits kept when a
// value is truncated.
const DisplayEdges = config.DefaultTruncate

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the result (empty for no file output).
	OutputFile string
	// Quiet prints only the value.
	Quiet bool
	orchestration.PresentationOptions
}

// FormatValue renders v in decimal, truncated to its first and last
// DisplayEdges digits unless full is set. A nil value renders as "(none)".
func FormatValue(v *big.Int, full bool) string {
	if v == nil {
		return "(none)"
	}
	s := v.String()
	if full {
		return s
	}
	return format.TruncateDigits(s, DisplayEdges)
}

// FormatHex renders v as 0x-prefixed hexadecimal with the same truncation
// rule as FormatValue.
func FormatHex(v *big.Int, full bool) string {
	if v == nil {
		return "(none)"
	}
	s := v.Text(16)
	if !full && len(s) > 2*DisplayEdges {
		s = s[:DisplayEdges] + "..." + s[len(s)-DisplayEdges:]
	}
	return "0x" + s
}

// DisplayResult prints the value of a successful evaluation. Details adds
// the size of the value in bits, limbs and digits.
func DisplayResult(res orchestration.EvaluationResult, opts orchestration.PresentationOptions, out io.Writer) {
	full := opts.ShowValue || opts.Verbose
	fmt.Fprintf(out, "\n%s--- Result ---%s\n", ui.ColorBold(), ui.ColorReset())
	if opts.Verbose || opts.Details {
		fmt.Fprintf(out, "Backend: %s%s%s, evaluation time: %s%s%s\n",
			ui.ColorBlue(), res.Backend, ui.ColorReset(),
			ui.ColorYellow(), format.FormatExecutionDuration(res.Duration), ui.ColorReset())
	}
	if opts.Details && res.Value != nil {
		bits := res.Value.BitLen()
		fmt.Fprintf(out, "Size: %s%s%s bits, %s%s%s limbs, %s%s%s digits\n",
			ui.ColorCyan(), format.FormatNumberString(fmt.Sprint(bits)), ui.ColorReset(),
			ui.ColorCyan(), format.FormatNumberString(fmt.Sprint(mpi.LimbsFor(bits))), ui.ColorReset(),
			ui.ColorCyan(), format.FormatNumberString(fmt.Sprint(len(res.Value.String()))), ui.ColorReset())
	}
	if len(res.Assigned) > 0 && (opts.Verbose || opts.Details) {
		fmt.Fprintf(out, "Assigned: %s\n", strings.Join(res.Assigned, ", "))
	}
	fmt.Fprintf(out, "= %s%s%s\n", ui.ColorMagenta(), FormatValue(res.Value, full), ui.ColorReset())
	if opts.Hex {
		fmt.Fprintf(out, "= %s%s%s\n", ui.ColorMagenta(), FormatHex(res.Value, full), ui.ColorReset())
	}
	if !full && res.Value != nil && len(res.Value.String()) > 2*DisplayEdges {
		fmt.Fprintf(out, "%s(truncated; use -full to print every digit)%s\n", ui.ColorGrey(), ui.ColorReset())
	}
}

// FormatQuietResult formats a result for quiet mode: the bare decimal value,
// or an empty line when the program produced none.
func FormatQuietResult(v *big.Int, hex bool) string {
	switch {
	case v == nil:
		return ""
	case hex:
		return "0x" + v.Text(16)
	}
	return v.String()
}

// DisplayQuietResult outputs a result in quiet mode.
func DisplayQuietResult(out io.Writer, v *big.Int, hex bool) {
	fmt.Fprintln(out, FormatQuietResult(v, hex))
}

// WriteResultToFile writes a result with a short header to cfg.OutputFile.
// Parent directories are created as needed. An empty path is a no-op.
func WriteResultToFile(res orchestration.EvaluationResult, source string, cfg OutputConfig) error {
	if cfg.OutputFile == "" {
		return nil
	}

	dir := filepath.Dir(cfg.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "# mpicalc result\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Backend: %s\n", res.Backend)
	fmt.Fprintf(file, "# Duration: %s\n", res.Duration)
	if source != "" {
		fmt.Fprintf(file, "# Source: %s\n", strings.ReplaceAll(strings.TrimSpace(source), "\n", "; "))
	}
	if res.Value != nil {
		fmt.Fprintf(file, "# Bits: %d\n", res.Value.BitLen())
		fmt.Fprintf(file, "# Digits: %d\n", len(res.Value.String()))
	}
	fmt.Fprintln(file)
	fmt.Fprintln(file, FormatQuietResult(res.Value, false))
	if cfg.Hex && res.Value != nil {
		fmt.Fprintln(file, FormatQuietResult(res.Value, true))
	}
	return file.Close()
}

// DisplayResultWithConfig prints res according to cfg and saves it when an
// output file is configured.
func DisplayResultWithConfig(out io.Writer, res orchestration.EvaluationResult, source string, cfg OutputConfig) error {
	if cfg.Quiet {
		DisplayQuietResult(out, res.Value, cfg.Hex)
	} else {
		DisplayResult(res, cfg.PresentationOptions, out)
	}

	if cfg.OutputFile != "" {
		if err := WriteResultToFile(res, source, cfg); err != nil {
			return err
		}
		if !cfg.Quiet {
			fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorCyan(), cfg.OutputFile, ui.ColorReset())
		}
	}
	return nil
}
