package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/agbru/mpicalc/internal/calc"
	"github.com/agbru/mpicalc/internal/cli"
	apperrors "github.com/agbru/mpicalc/internal/errors"
	"github.com/agbru/mpicalc/internal/metrics"
	"github.com/agbru/mpicalc/internal/orchestration"
)

// runCalculate evaluates a single script: -e, one -f file, or standard input
// when it is not a terminal. With nothing to read it falls back to the REPL.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	source, name, err := a.scriptSource()
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	if name == "" {
		return a.runREPL(out)
	}

	prog, err := calc.ParseAndValidate(source, a.Config.MaxDigits)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "%s: %v\n", name, err)
		return apperrors.ExitCodeFor(err)
	}
	backends, err := calc.Select(a.Factory, a.Config.Backend)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	// Setup lifecycle (timeout + signals)
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, name, out)
		cli.PrintExecutionMode(backends, out)
	}

	var reporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut := out
	if a.Config.Quiet {
		reporter = orchestration.NullProgressReporter{}
		progressOut = io.Discard
	}

	var results []orchestration.EvaluationResult
	mem := metrics.NewMemoryCollector().Measure(func() {
		results = orchestration.ExecuteEvaluations(ctx, backends, prog, nil, reporter, progressOut)
	})
	for i := range results {
		results[i].Err = apperrors.AsTimeout(results[i].Err, "eval", a.Config.Timeout)
	}

	code := a.analyzeResultsWithOutput(results, source, out)
	if a.Config.Details && !a.Config.Quiet {
		cli.DisplayMemoryStats(mem, out)
	}
	return code
}

// scriptSource returns the script to evaluate and a name for messages. An
// empty name means there is no script.
func (a *Application) scriptSource() (source, name string, err error) {
	switch {
	case a.Config.Expr != "":
		return a.Config.Expr, "-e", nil
	case len(a.Config.Files) == 1:
		data, err := os.ReadFile(a.Config.Files[0])
		if err != nil {
			return "", "", apperrors.WrapError(err, "reading script")
		}
		return string(data), a.Config.Files[0], nil
	}
	if a.In == nil || isTerminal(a.In) {
		return "", "", nil
	}
	data, err := io.ReadAll(a.In)
	if err != nil {
		return "", "", apperrors.WrapError(err, "reading standard input")
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", "", apperrors.NewConfigError("nothing to evaluate: use -e, -f, -repl or pipe a script")
	}
	return string(data), "stdin", nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// analyzeResultsWithOutput reports the evaluation. In quiet mode only the
// value is printed, and only when every backend agrees.
func (a *Application) analyzeResultsWithOutput(results []orchestration.EvaluationResult, source string, out io.Writer) int {
	outputCfg := cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		PresentationOptions: orchestration.PresentationOptions{
			Verbose:   a.Config.Verbose,
			Details:   a.Config.Details,
			ShowValue: a.Config.ShowValue,
			Hex:       a.Config.Hex,
		},
	}

	if a.Config.Quiet {
		orchestration.SortResults(results)
		for _, r := range results {
			if r.Err != nil {
				return apperrors.HandleCalculationError(r.Err, r.Duration, a.ErrWriter, cli.CLIColorProvider{})
			}
		}
		if !orchestration.Consistent(results) {
			fmt.Fprintln(a.ErrWriter, "backends disagree")
			return apperrors.ExitErrorMismatch
		}
		if err := cli.DisplayResultWithConfig(out, results[0], source, outputCfg); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		return apperrors.ExitSuccess
	}

	exitCode := orchestration.AnalyzeComparisonResults(results, outputCfg.PresentationOptions, cli.CLIResultPresenter{}, cli.CLIResultPresenter{}, out)
	if exitCode != apperrors.ExitSuccess || outputCfg.OutputFile == "" {
		return exitCode
	}
	if err := cli.WriteResultToFile(results[0], source, outputCfg); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	fmt.Fprintf(out, "\nResult saved to: %s\n", outputCfg.OutputFile)
	return exitCode
}

// runBatch evaluates several script files independently on every selected
// backend and cross-checks the values file by file.
func (a *Application) runBatch(ctx context.Context, out io.Writer) int {
	scripts := make([]orchestration.Script, 0, len(a.Config.Files))
	for _, path := range a.Config.Files {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
			return apperrors.ExitErrorConfig
		}
		scripts = append(scripts, orchestration.Script{Name: path, Source: string(data)})
	}
	backends, err := calc.Select(a.Factory, a.Config.Backend)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	opts := orchestration.BatchOptions{Concurrency: a.Config.Concurrency, MaxDigits: a.Config.MaxDigits}
	perBackend := make([][]orchestration.BatchResult, len(backends))
	for i, b := range backends {
		perBackend[i] = orchestration.ExecuteBatch(ctx, b, scripts, opts)
	}

	code := apperrors.ExitSuccess
	for i, s := range scripts {
		row := make([]orchestration.EvaluationResult, len(backends))
		for j := range backends {
			row[j] = perBackend[j][i].EvaluationResult
			row[j].Err = apperrors.AsTimeout(row[j].Err, "batch", a.Config.Timeout)
		}
		fileCode := a.reportBatchFile(s.Name, row, out)
		if code == apperrors.ExitSuccess {
			code = fileCode
		}
	}
	return code
}

// reportBatchFile prints one line per file and returns its exit code.
func (a *Application) reportBatchFile(name string, results []orchestration.EvaluationResult, out io.Writer) int {
	first := results[0]
	for _, r := range results[1:] {
		if (r.Err == nil) != (first.Err == nil) || (r.Err != nil && apperrors.KindOf(r.Err) != apperrors.KindOf(first.Err)) {
			fmt.Fprintf(out, "%s: backends disagree\n", name)
			return apperrors.ExitErrorMismatch
		}
	}
	if first.Err != nil {
		fmt.Fprintf(out, "%s: error [%s]: %v\n", name, apperrors.KindOf(first.Err), first.Err)
		return apperrors.ExitCodeFor(first.Err)
	}
	if !orchestration.Consistent(results) {
		fmt.Fprintf(out, "%s: backends disagree\n", name)
		return apperrors.ExitErrorMismatch
	}
	if a.Config.Quiet {
		fmt.Fprintf(out, "%s: %s\n", name, cli.FormatQuietResult(first.Value, a.Config.Hex))
		return apperrors.ExitSuccess
	}
	fmt.Fprintf(out, "%s: %s (%s)\n", name, cli.FormatValue(first.Value, a.Config.ShowValue), cli.CLIResultPresenter{}.FormatDuration(first.Duration))
	return apperrors.ExitSuccess
}
