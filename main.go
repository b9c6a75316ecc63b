package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"imagepet/internal/clock"
	"imagepet/internal/config"
	"imagepet/internal/highscore"
	"imagepet/internal/motion"
	"imagepet/internal/session"
	"imagepet/internal/telemetry"
	"imagepet/internal/ui"
)

var (
	configPath string
	logFormat  string
	logLevel   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "imagepet",
		Short:         "ImagePet - bouncing pictures that make friends",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.AddCommand(newScoreCmd())
	return rootCmd
}

// setupLogger installs the default slog logger writing to w
func setupLogger(w io.Writer, format, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("invalid log format %q", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newPlayCmd() *cobra.Command {
	var (
		logFile      string
		telemetryDir string
	)

	cmd := &cobra.Command{
		Use:   "play [image...]",
		Short: "Open the playground and adopt the given images",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if telemetryDir != "" {
				cfg.Telemetry.OutputDir = telemetryDir
			}

			stateDir, err := cfg.StateDir()
			if err != nil {
				return err
			}
			if logFile == "" {
				logFile = filepath.Join(stateDir, "imagepet.log")
			}
			if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
				return fmt.Errorf("failed to create log directory: %w", err)
			}
			// The terminal belongs to the UI
			f, err := tea.LogToFile(logFile, "imagepet")
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer f.Close()
			if err := setupLogger(f, logFormat, logLevel); err != nil {
				return err
			}

			return play(cfg, args)
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Log file (default imagepet.log in the state directory)")
	cmd.Flags().StringVar(&telemetryDir, "telemetry", "", "Write CSV telemetry into this directory")
	return cmd
}

func play(cfg *config.Config, images []string) error {
	scorePath, err := cfg.HighScorePath()
	if err != nil {
		return err
	}

	sess := session.New(session.Options{
		Config:   cfg,
		Store:    highscore.NewFileStore(scorePath),
		Viewport: motion.Viewport{Width: cfg.Viewport.Width, Height: cfg.Viewport.Height},
	})
	defer sess.Close()

	ticks, err := sess.StartClock(clock.NewScheduler)
	if err != nil {
		return fmt.Errorf("failed to start clock: %w", err)
	}

	writer, err := telemetry.NewWriter(cfg.Telemetry.OutputDir)
	if err != nil {
		return err
	}
	defer writer.Close()
	if err := writer.WriteConfig(cfg); err != nil {
		return err
	}
	rec := telemetry.NewRecorder(cfg.Telemetry.WindowTicks, sess.Start())

	model := ui.NewModel(ui.Options{
		Config:  cfg,
		Session: sess,
		Ticks:   ticks,
		Images:  images,
		OnTick: func(rep session.TickReport) {
			record(rec, writer, rep, sess)
		},
	})

	slog.Info("starting playground", "images", len(images), "high_score", sess.Stats().HighScore)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running playground: %w", err)
	}
	return nil
}

// record feeds one tick into telemetry. Write failures are logged and do not
// interrupt the simulation.
func record(rec *telemetry.Recorder, w *telemetry.Writer, rep session.TickReport, sess *session.Session) {
	if w == nil {
		return
	}
	rows, window, done := rec.Observe(rep, sess.Stats(), sess.Pets())
	if err := w.WriteInteractions(rows); err != nil {
		slog.Warn("telemetry write failed", "error", err)
	}
	if !done {
		return
	}
	if err := w.WriteWindow(window); err != nil {
		slog.Warn("telemetry write failed", "error", err)
	}
}
