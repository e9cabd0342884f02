// Package admin implements todoctl, the operator CLI: schema migrations,
// user listing and registering accounts from a terminal.
package admin

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}

	newRepoManager = repomanager.NewPostgresRepositoryManager
)

type env struct {
	dsn string
	log logging.Logger
}

// withStore opens the database for the duration of fn.
func (e *env) withStore(fn func(db *sql.DB, rm repomanager.RepositoryManager) error) error {
	db, err := openDB(e.dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	return fn(db, newRepoManager())
}

// NewRootCommand builds the todoctl command tree. The DSN defaults to the
// server's configuration (defaults overlaid with TODO_* variables).
func NewRootCommand(log logging.Logger) *cobra.Command {
	e := &env{log: log}

	root := &cobra.Command{
		Use:           "todoctl",
		Short:         "Administer a todokeeper database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&e.dsn, "dsn", config.LoadEnvConfig().DatabaseDSN, "PostgreSQL connection string")

	root.AddCommand(newMigrateCmd(e))
	root.AddCommand(newUsersCmd(e))

	return root
}

// Execute runs todoctl with the process arguments.
func Execute() {
	log := logging.NewJSONLogger(os.Stderr, slog.LevelWarn)
	if err := NewRootCommand(log).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
