package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"imagepet/internal/clock"
	"imagepet/internal/config"
	"imagepet/internal/highscore"
	"imagepet/internal/intake"
	"imagepet/internal/motion"
	"imagepet/internal/session"
	"imagepet/internal/telemetry"
	"imagepet/internal/ui"
)

// simOptions describes one headless run
type simOptions struct {
	Ticks    int
	Pets     int // Image-less pets on top of Images
	Seed     uint64
	Images   []string
	Realtime bool
	Store    highscore.Store
}

func newSimulateCmd() *cobra.Command {
	var (
		opts      simOptions
		outputDir string
		persist   bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the simulation without a terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogger(cmd.ErrOrStderr(), logFormat, logLevel); err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if outputDir != "" {
				cfg.Telemetry.OutputDir = outputDir
			}

			opts.Store = &highscore.MemoryStore{}
			if persist {
				path, err := cfg.HighScorePath()
				if err != nil {
					return err
				}
				opts.Store = highscore.NewFileStore(path)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			st, err := runSimulation(ctx, cfg, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Summary(st))
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Ticks, "ticks", 3600, "Number of ticks to simulate")
	cmd.Flags().IntVar(&opts.Pets, "pets", 4, "Number of image-less pets")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "Random seed")
	cmd.Flags().StringSliceVar(&opts.Images, "image", nil, "Image file or data URL to adopt (repeatable)")
	cmd.Flags().BoolVar(&opts.Realtime, "realtime", false, "Pace ticks with the wall clock instead of simulated time")
	cmd.Flags().StringVar(&outputDir, "output", "", "Write CSV telemetry into this directory")
	cmd.Flags().BoolVar(&persist, "persist", false, "Read and update the stored high score")
	return cmd
}

// runSimulation runs a headless session and returns the final scoreboard
func runSimulation(ctx context.Context, cfg *config.Config, opts simOptions) (session.Stats, error) {
	start := time.Unix(0, 0).UTC()
	if opts.Realtime {
		start = time.Now()
	}

	sess := session.New(session.Options{
		Config:   cfg,
		Store:    opts.Store,
		Rand:     rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		Start:    start,
		Viewport: motion.Viewport{Width: cfg.Viewport.Width, Height: cfg.Viewport.Height},
	})
	defer sess.Close()

	for _, ref := range opts.Images {
		img, err := intake.Probe(ref)
		if err != nil {
			slog.Warn("skipping image", "image", ref, "error", err)
			continue
		}
		p := sess.AddPet(ref)
		sess.SetNaturalSize(p.ID, float64(img.Width), float64(img.Height))
	}
	for i := 0; i < opts.Pets; i++ {
		p := sess.AddPet("")
		sess.SetNaturalSize(p.ID, cfg.Pet.DefaultWidth, cfg.Pet.DefaultHeight)
	}

	writer, err := telemetry.NewWriter(cfg.Telemetry.OutputDir)
	if err != nil {
		return session.Stats{}, err
	}
	defer writer.Close()
	if err := writer.WriteConfig(cfg); err != nil {
		return session.Stats{}, err
	}
	rec := telemetry.NewRecorder(cfg.Telemetry.WindowTicks, start)

	var ticks <-chan time.Time
	if opts.Realtime {
		ticks, err = sess.StartClock(clock.NewScheduler)
		if err != nil {
			return session.Stats{}, fmt.Errorf("failed to start clock: %w", err)
		}
	}

	slog.Info("starting headless simulation",
		"ticks", opts.Ticks,
		"pets", sess.Stats().Pets,
		"seed", opts.Seed,
		"realtime", opts.Realtime,
	)

	now := start
	for i := 0; i < opts.Ticks; i++ {
		if opts.Realtime {
			select {
			case now = <-ticks:
			case <-ctx.Done():
				slog.Info("simulation interrupted", "tick", i)
				return sess.Stats(), nil
			}
		} else {
			if ctx.Err() != nil {
				slog.Info("simulation interrupted", "tick", i)
				return sess.Stats(), nil
			}
			now = now.Add(cfg.Session.TickInterval)
		}

		rep := sess.Tick(now)
		rows, window, done := rec.Observe(rep, sess.Stats(), sess.Pets())
		if err := writer.WriteInteractions(rows); err != nil {
			return sess.Stats(), err
		}
		if done {
			if err := writer.WriteWindow(window); err != nil {
				return sess.Stats(), err
			}
			slog.Debug("window",
				"tick", window.WindowEnd,
				"counted", window.Counted,
				"happiness_mean", window.HappinessMean,
			)
		}
	}

	st := sess.Stats()
	slog.Info("simulation finished", "interactions", st.TotalInteractions, "high_score", st.HighScore)
	return st, nil
}
