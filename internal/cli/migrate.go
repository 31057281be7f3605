package cli

import (
	"fmt"

	"github.com/phrazzld/vocab-review/internal/platform/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or inspect the database schema",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := postgres.MigrationDirection(args[0])
			switch direction {
			case postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateStatus:
			default:
				return fmt.Errorf("unknown migration direction %q", args[0])
			}

			db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			return postgres.Migrate(cmd.Context(), db, direction)
		},
	}
}
