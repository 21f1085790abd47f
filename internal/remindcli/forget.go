package remindcli

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskfyer/internal/notifications"
	"taskfyer/internal/reminders"
)

// NewForgetCommand removes task ids from the persisted overdue set so they
// can alert again.
func NewForgetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "forget <task-id>...",
		Short:         "Allow overdue alerts for the given tasks again",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeDB, err := reminders.OpenSQLite(ctx, rootOpts.Database)
			if err != nil {
				return err
			}
			defer closeDB()

			engine := reminders.NewEngine(store, notifications.NewFeed(), rootOpts.logger(cmd))
			for _, id := range args {
				if err := engine.Forget(ctx, id); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "forgot %d task(s)\n", len(args))
			return nil
		},
	}
}
