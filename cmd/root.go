package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/khrees2412/pathweiz/internal/app"
	"github.com/khrees2412/pathweiz/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// interactiveAnnotation marks commands that take over the terminal; their
// logs go to a file instead of stderr
const interactiveAnnotation = "interactive"

var (
	verbose     bool
	logger      *zap.Logger
	application *app.App
)

var rootCmd = &cobra.Command{
	Use:   "pathweiz",
	Short: "Find a career path that fits you",
	Long: `Pathweiz is a terminal client for the Pathweiz career recommendation service.
Take the career survey, review your recommendations and action items, track
progress on each career's milestones, and explore what others were matched with.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		var err error
		logger, err = newLogger(config.AppConfig, cmd.Annotations[interactiveAnnotation] == "true")
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		application, err = app.NewApp(cmd.Context(), config.AppConfig, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}
		cmd.SetContext(app.NewContext(cmd.Context(), application))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func newLogger(cfg *config.Config, interactive bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()

	level := zapcore.InfoLevel
	if cfg != nil && cfg.LogLevel != "" {
		if err := level.Set(cfg.LogLevel); err != nil {
			return nil, fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
		}
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	if interactive {
		dir, err := config.Dir()
		if err != nil {
			return nil, err
		}
		logFile := filepath.Join(dir, "pathweiz.log")
		zc.OutputPaths = []string{logFile}
		zc.ErrorOutputPaths = []string{logFile}
	}
	return zc.Build()
}

// appFrom returns the App set up by the root command
func appFrom(cmd *cobra.Command) (*app.App, error) {
	a, ok := app.FromContext(cmd.Context())
	if !ok {
		return nil, fmt.Errorf("app not initialized")
	}
	return a, nil
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)

	// Cleanup runs even when the command failed
	if application != nil {
		if cerr := application.Close(); cerr != nil {
			logger.Warn("Failed to close app", zap.Error(cerr))
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, app.ErrNetwork) {
			fmt.Fprintln(os.Stderr, "Check your connection and the backend_url / supabase_url settings (pathweiz config show)")
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
