// Package cli implements the vocabctl commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/vocab-review/internal/config"
	"github.com/phrazzld/vocab-review/internal/platform/logger"
	"github.com/spf13/cobra"
)

// app carries what the subcommands share once the root command has run.
type app struct {
	configPath string
	logLevel   string
	eventsPath string

	cfg *config.Config
	log *slog.Logger
}

// NewRootCmd builds the vocabctl command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "vocabctl",
		Short:         "Spaced repetition review scheduler for vocabulary cards",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "",
		"Config file (default: ./config.yaml if present)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "",
		"Override the configured log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&a.eventsPath, "events-out", "",
		"Append review notifications as JSON lines to this file")

	root.AddCommand(
		newMigrateCmd(a),
		newReplayCmd(a),
		newBookCmd(a),
		newCardCmd(a),
		newSessionCmd(a),
		newReviewCmd(a),
		newDueCmd(a),
		newPostponeCmd(a),
		newStatsCmd(a),
	)

	return root
}

// Execute runs the command tree with ctx and returns the first error.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.LoadFile(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	log, err := logger.SetupWithWriter(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	a.cfg = cfg
	a.log = log
	cmd.SetContext(logger.WithLogger(cmd.Context(), log))

	log.Debug("configuration loaded",
		slog.String("command", cmd.Name()),
		slog.Bool("database_configured", cfg.Database.URL != ""))
	return nil
}

// printJSON writes v to the command's output as indented JSON.
func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
