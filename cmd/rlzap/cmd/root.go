// Package cmd provides the CLI commands for rlzap.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jameslz/rlzap/internal/config"
	"github.com/jameslz/rlzap/internal/errors"
	"github.com/jameslz/rlzap/internal/logging"
	"github.com/jameslz/rlzap/internal/profiling"
	"github.com/jameslz/rlzap/internal/telemetry"
	"github.com/jameslz/rlzap/pkg/version"
)

// app carries the state shared by every command of one invocation.
type app struct {
	// Global flags
	configPath  string
	debug       bool
	logLevel    string
	metricsFile string
	profile     profiling.Options

	cfg      *config.Config
	logger   *slog.Logger
	metrics  *telemetry.Metrics
	profiler *profiling.Session
	cleanup  func()
}

// NewRootCmd creates the root command for the rlzap CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rlzap",
		Short: "Relative Lempel-Ziv index for LCP arrays",
		Long: `rlzap compresses integer sequences such as LCP arrays against a shared
reference and answers random-access queries on the compressed form.

A target is parsed into literal phrases, stored verbatim, and copy phrases,
which point into the reference. Copies are found on the differential form
of both sequences but always reproduce the exact target values.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("rlzap version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: .rlzap.yaml in the working directory)")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging to ~/.rlzap/logs/")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&a.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")

	cmd.PersistentFlags().StringVar(&a.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&a.profile.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&a.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return a.setup()
	}
	cmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		return a.close()
	}

	cmd.AddCommand(newBuildCmd(a))
	cmd.AddCommand(newAtCmd(a))
	cmd.AddCommand(newRangeCmd(a))
	cmd.AddCommand(newCursorCmd(a))
	cmd.AddCommand(newInfoCmd(a))
	cmd.AddCommand(newVerifyCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setup loads configuration and starts logging and metrics.
func (a *app) setup() error {
	cfg, err := config.Load(".", a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		if !logging.ValidLevel(a.logLevel) {
			return errors.Newf(errors.ErrCodeInvalidInput, "invalid log level %q", a.logLevel).
				WithSuggestion("Use one of: debug, info, warn, error")
		}
		cfg.Logging.Level = a.logLevel
	}
	if a.metricsFile != "" {
		cfg.Metrics.Textfile = a.metricsFile
	}
	a.cfg = cfg

	logCfg := logging.Config{
		Level:         cfg.Logging.Level,
		FilePath:      cfg.Logging.File,
		MaxSizeMB:     cfg.Logging.MaxSizeMB,
		MaxFiles:      cfg.Logging.MaxFiles,
		WriteToStderr: cfg.Logging.File == "",
	}
	if a.debug {
		logCfg = logging.DebugConfig()
	}
	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	a.logger = logger
	a.cleanup = cleanup
	slog.SetDefault(logger)
	if a.debug {
		logger.Info("debug_logging_enabled",
			slog.String("log_file", logCfg.FilePath),
			slog.String("version", version.Version))
	}

	a.metrics = telemetry.New()

	if a.profile.Enabled() {
		p, err := profiling.Start(a.profile)
		if err != nil {
			return err
		}
		a.profiler = p
	}
	return nil
}

// close stops profiling, exports metrics and stops logging. It is safe to
// call more than once.
func (a *app) close() error {
	var err error
	if a.profiler != nil {
		err = a.profiler.Stop()
		if a.logger != nil {
			a.logger.Debug("profiling_stopped", slog.Uint64("heap_in_use", profiling.HeapInUse()))
		}
		a.profiler = nil
	}
	if a.metrics != nil && a.cfg != nil && a.cfg.Metrics.Textfile != "" {
		if werr := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); werr != nil {
			err = errors.IOError("write metrics "+a.cfg.Metrics.Textfile, werr)
		}
	}
	a.metrics = nil
	if a.cleanup != nil {
		a.cleanup()
		a.cleanup = nil
	}
	return err
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	a := &app{}
	cmd := newRootCmd(a)
	err := cmd.Execute()
	if err != nil && a.logger != nil {
		a.logger.Error("command_failed", slog.Any("error", errors.FormatForLog(err)))
	}
	if cerr := a.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprint(os.Stderr, errors.FormatForCLI(err))
	}
	return err
}
