package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sandeepkv93/wird/internal/commands"
	"github.com/sandeepkv93/wird/internal/tracker"
	"github.com/spf13/cobra"
)

func newDoneCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "done <morning|evening> <item|all>",
		Short: "Mark routine items complete for today",
		Long:  "Mark one item (numbered from 1) or all items of a routine complete. The routine counts for the day once every item is marked.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := commands.Parse("done " + strings.Join(args, " "))
			if err != nil {
				return err
			}
			done := parsed.Done

			a, err := openApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if _, err := a.tracker.Open(ctx); err != nil {
				return err
			}
			routine, err := a.catalog.Routine(done.Routine)
			if err != nil {
				return err
			}
			indexes := []int{done.Index()}
			if done.All {
				indexes = make([]int, routine.RequiredCount())
				for i := range indexes {
					indexes[i] = i
				}
			}

			today := a.tracker.Today()
			var last tracker.PromotionResult
			for _, idx := range indexes {
				last, err = a.tracker.MarkItemComplete(ctx, done.Routine, today, idx)
				if err != nil {
					if errors.Is(err, tracker.ErrInvalidItem) {
						return fmt.Errorf("%s has %d items: %w", done.Routine, routine.RequiredCount(), err)
					}
					return err
				}
				if err := last.Err(); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			switch last.Status {
			case tracker.StatusPromoted:
				fmt.Fprintf(out, "%s routine complete for %s, streak %d\n", last.Routine, last.Date, last.Streak)
			case tracker.StatusAlreadyDone:
				fmt.Fprintf(out, "%s routine already complete for %s\n", last.Routine, last.Date)
			default:
				fmt.Fprintf(out, "%s %d/%d\n", last.Routine, last.Done, last.Required)
			}
			return nil
		},
	}
}
