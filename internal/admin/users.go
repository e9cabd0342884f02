package admin

import (
	"database/sql"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"github.com/spf13/cobra"
)

func newUsersCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect and create user accounts",
	}
	cmd.AddCommand(newUsersListCmd(e))
	cmd.AddCommand(newUsersRegisterCmd(e))
	return cmd
}

func newUsersListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withStore(func(db *sql.DB, rm repomanager.RepositoryManager) error {
				res := services.NewUserService(db, rm, e.log).ListAllUsers(cmd.Context())
				if !res.Success {
					return fmt.Errorf("%s", res.ErrorDescription)
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "USER ID\tEMAIL\tNAME\tCREATED")
				for _, u := range res.Data {
					fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\n", u.UserID, u.Email, u.FirstName, u.LastName, u.CreatedAt.Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}
}

func newUsersRegisterCmd(e *env) *cobra.Command {
	var req services.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a user, prompting for the password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := GetPassword(cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			req.Password = string(pw)
			for i := range pw {
				pw[i] = 0
			}

			return e.withStore(func(db *sql.DB, rm repomanager.RepositoryManager) error {
				res := services.NewAuthService(db, rm, nil, e.log).Register(cmd.Context(), req)
				if !res.Success {
					return fmt.Errorf("register failed (code %d): %s", res.ErrorCode, res.ErrorDescription)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", res.Data)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.FirstName, "first", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last", "", "last name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")

	return cmd
}
