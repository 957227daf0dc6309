package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReconcileCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Backfill missing days and retry pending completions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			res, err := a.tracker.Reconcile(ctx, a.tracker.Today())
			if err != nil {
				return err
			}
			promoted, err := a.tracker.RetryPending(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Skewed {
				fmt.Fprintf(out, "latest record %s is after today; nothing backfilled\n", res.Latest)
			} else {
				fmt.Fprintf(out, "backfilled %d day(s)\n", len(res.Inserted))
			}
			if promoted > 0 {
				fmt.Fprintf(out, "completed %d pending routine(s)\n", promoted)
			}
			return nil
		},
	}
}
