package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"imagepet/internal/highscore"
	"imagepet/internal/ui"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Show or reset the stored high score",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the stored high score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := scoreStore(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			score, err := store.Load()
			if err != nil {
				return err
			}
			updated, err := store.UpdatedAt()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.ScoreCard(score, updated, store.Path()))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Forget the stored high score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := scoreStore(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := store.Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "High score reset.")
			return nil
		},
	})
	return cmd
}

func scoreStore(logTo io.Writer) (*highscore.FileStore, error) {
	if logTo == nil {
		logTo = os.Stderr
	}
	if err := setupLogger(logTo, logFormat, logLevel); err != nil {
		return nil, err
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	path, err := cfg.HighScorePath()
	if err != nil {
		return nil, err
	}
	return highscore.NewFileStore(path), nil
}
