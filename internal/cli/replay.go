package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/phrazzld/vocab-review/internal/domain/srs"
	"github.com/phrazzld/vocab-review/internal/replay"
	"github.com/spf13/cobra"
)

func newReplayCmd(a *app) *cobra.Command {
	var (
		eventsPath  string
		initialPath string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Reschedule cards from a JSON lines review log without a database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			events, err := readEventsFile(cmd, eventsPath)
			if err != nil {
				return err
			}

			initial := map[uuid.UUID]domain.CardState{}
			if initialPath != "" {
				data, err := os.ReadFile(initialPath)
				if err != nil {
					return fmt.Errorf("read initial states: %w", err)
				}
				if err := json.Unmarshal(data, &initial); err != nil {
					return fmt.Errorf("decode initial states: %w", err)
				}
			}

			scheduler, err := srs.NewServiceWithParams(a.cfg.SRSParams())
			if err != nil {
				return err
			}
			if concurrency <= 0 {
				concurrency = a.cfg.Replay.Concurrency
			}
			aggregator := a.aggregator()

			result, err := replay.Run(cmd.Context(), events, initial, replay.Options{
				Concurrency: concurrency,
				Scheduler:   scheduler,
				Classifier:  a.cfg.Classifier(),
				Aggregator:  &aggregator,
				NewState:    a.cfg.NewCardState,
			})
			if err != nil {
				return fmt.Errorf("replay: %w", err)
			}

			a.log.Info("replay finished",
				slog.Int("events", len(events)),
				slog.Int("cards", len(result.States)),
				slog.Int("score", result.Summary.Score))
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVarP(&eventsPath, "events", "e", "-", "JSON lines file of review events, - for stdin")
	cmd.Flags().StringVar(&initialPath, "initial", "", "JSON object of card id to starting state")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Cards replayed at once (default from config)")

	return cmd
}

func readEventsFile(cmd *cobra.Command, path string) ([]domain.ReviewEvent, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open events: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		r = f
	}
	return replay.ReadEvents(r)
}
