package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	account "github.com/goliatone/go-account"
	"github.com/spf13/cobra"
)

func newUsersCmd() *cobra.Command {
	var (
		query   string
		filter  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List the user directory.",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			directory := account.NewDirectoryController(ctx, a.service, account.WithDirectoryLogger(a.logger))
			defer directory.Close()

			loadCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			state, err := directory.AwaitLoaded(loadCtx)
			if err != nil {
				return errors.New(account.MsgDirectoryFallback)
			}
			if state.Error != "" {
				return errors.New(state.Error)
			}

			directory.SetFilter(account.ParseVerificationFilter(filter))
			directory.SetQuery(query)
			state = directory.State()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tVERIFIED\tCREATED")
			for _, u := range state.FilteredUsers {
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", u.ID, u.Name, u.Email, u.EmailVerified, u.CreatedAt.Format(time.RFC3339))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d users\n", len(state.FilteredUsers), len(state.AllUsers))
			return nil
		}),
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "search name or email")
	cmd.Flags().StringVar(&filter, "filter", string(account.FilterAll), "ALL, VERIFIED or NOT_VERIFIED")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "wait for the first snapshot")
	return cmd
}
