// Package app wires configuration, backends and the user interfaces into
// the mpicalc command.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/mpicalc/internal/calc"
	"github.com/agbru/mpicalc/internal/cli"
	"github.com/agbru/mpicalc/internal/config"
	apperrors "github.com/agbru/mpicalc/internal/errors"
	"github.com/agbru/mpicalc/internal/logging"
	"github.com/agbru/mpicalc/internal/server"
	"github.com/agbru/mpicalc/internal/tui"
	"github.com/agbru/mpicalc/internal/ui"
)

// benchMinDuration is how long -bench repeats each measured operation.
const benchMinDuration = 100 * time.Millisecond

// Application represents the mpicalc application instance.
type Application struct {
	Config    config.AppConfig
	Factory   calc.BackendFactory
	ErrWriter io.Writer
	// In supplies scripts when neither -e nor files are given, and REPL input.
	In io.Reader
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithFactory sets a custom BackendFactory for the application.
func WithFactory(f calc.BackendFactory) AppOption {
	return func(a *Application) { a.Factory = f }
}

// WithInput replaces standard input.
func WithInput(r io.Reader) AppOption {
	return func(a *Application) { a.In = r }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter, In: os.Stdin}
	for _, opt := range opts {
		opt(app)
	}
	if app.Factory == nil {
		app.Factory = calc.NewDefaultFactory()
	}

	programName := "mpicalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, app.Factory.List())
	if err != nil {
		return nil, err
	}
	app.Config = config.ApplyAdaptiveDefaults(cfg)
	return app, nil
}

// Run executes the application based on the configured mode and returns the
// process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Version {
		PrintVersion(out)
		return apperrors.ExitSuccess
	}
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	level, err := logging.ParseLevel(a.Config.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	ui.InitTheme(a.Config.NoColor)

	switch {
	case a.Config.Serve != "":
		return a.runServe(ctx)
	case a.Config.TUI:
		return a.runTUI(ctx)
	case a.Config.REPL:
		return a.runREPL(out)
	case a.Config.Bench:
		return a.runBench(ctx, out)
	case len(a.Config.Files) > 1:
		return a.runBatch(ctx, out)
	}
	return a.runCalculate(ctx, out)
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Factory.List()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runTUI launches the interactive terminal UI. The timeout applies to each
// evaluation, not to the session.
func (a *Application) runTUI(ctx context.Context) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()
	return tui.Run(ctx, a.Factory, a.Config, Version)
}

// runREPL starts the line-oriented interactive session.
func (a *Application) runREPL(out io.Writer) int {
	repl := cli.NewREPL(a.Factory, cli.REPLConfig{
		DefaultBackend: a.Config.Backend,
		Timeout:        a.Config.Timeout,
		MaxDigits:      a.Config.MaxDigits,
		HexOutput:      a.Config.Hex,
		FullOutput:     a.Config.ShowValue,
	})
	repl.SetInput(a.In)
	repl.SetOutput(out)
	repl.Start()
	return apperrors.ExitSuccess
}

// runServe serves the HTTP API until SIGINT or SIGTERM.
func (a *Application) runServe(ctx context.Context) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	level, _ := logging.ParseLevel(a.Config.LogLevel)
	logger := logging.NewConsoleLogger(a.ErrWriter, "server", level)

	security := server.DefaultSecurityConfig()
	security.MaxDigits = a.Config.MaxDigits
	srv := server.NewServer(a.Config.Serve, a.Factory,
		server.WithLogger(logger),
		server.WithDefaultBackend(a.Config.Backend),
		server.WithEvalTimeout(a.Config.Timeout),
		server.WithSecurityConfig(security),
	)
	if err := srv.Start(ctx); err != nil {
		logger.Error("server failed", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runBench times mpi against math/big and fails when they disagree.
func (a *Application) runBench(ctx context.Context, out io.Writer) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	results, err := cli.RunBenchmarkWithSpinner(ctx, cli.BenchConfig{
		Limbs:       a.Config.BenchLimbs,
		MinDuration: benchMinDuration,
		Seed:        1,
	}, out)
	if err != nil {
		return apperrors.HandleCalculationError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
	}
	if n := cli.BenchMismatches(results); n > 0 {
		fmt.Fprintf(a.ErrWriter, "%d benchmark results disagree with math/big\n", n)
		return apperrors.ExitErrorMismatch
	}
	return apperrors.ExitSuccess
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
