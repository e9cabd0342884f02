package admin

import (
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/spf13/cobra"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withStore(func(db *sql.DB, rm repomanager.RepositoryManager) error {
				if err := rm.RunMigrations(cmd.Context(), db); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}
}
