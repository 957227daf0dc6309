package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/sandeepkv93/wird/internal/model"
	"github.com/sandeepkv93/wird/internal/tracker"
	"github.com/spf13/cobra"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show today's routines, the streak and the last 7 days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.tracker.Open(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s, %s (%s)\n", snap.Window.Greeting(), snap.Today, snap.Window)
			fmt.Fprintf(out, "streak: %d  longest: %d\n", snap.Streak, snap.Longest)
			for _, routine := range model.RoutineTypes {
				p, err := a.tracker.Progress(cmd.Context(), routine, snap.Today)
				if err != nil {
					return err
				}
				state := fmt.Sprintf("%d/%d", p.Done, p.Required)
				if p.DayDone {
					state = "done"
				}
				fmt.Fprintf(out, "%-8s %s\n", routine, state)
			}
			printWeek(out, snap.Week)
			return nil
		},
	}
}

func printWeek(out io.Writer, week []tracker.DayCell) {
	days := make([]string, 0, len(week))
	morning := make([]string, 0, len(week))
	evening := make([]string, 0, len(week))
	for _, cell := range week {
		days = append(days, cell.Date.Weekday().String()[:2])
		morning = append(morning, mark(cell.MorningDone))
		evening = append(evening, mark(cell.EveningDone))
	}
	fmt.Fprintf(out, "\n         %s\n", strings.Join(days, " "))
	fmt.Fprintf(out, "morning  %s\n", strings.Join(morning, " "))
	fmt.Fprintf(out, "evening  %s\n", strings.Join(evening, " "))
}

func mark(done bool) string {
	if done {
		return "✓ "
	}
	return "· "
}
