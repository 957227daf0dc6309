package cli

import (
	"errors"
	"fmt"

	"github.com/sandeepkv93/wird/internal/model"
	"github.com/sandeepkv93/wird/internal/reminder"
	"github.com/spf13/cobra"
)

func newRemindCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "List or change the daily reminders",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List installed reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			_, sched := a.reminders(nil)
			installed, err := sched.Installed(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(installed) == 0 {
				fmt.Fprintln(out, "no reminders installed")
				return nil
			}
			for _, r := range installed {
				fmt.Fprintf(out, "%-8s %s  %s\n", r.Routine, r.At, r.Title)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <morning|evening> <HH:MM>",
		Short: "Change a reminder time and reinstall both reminders",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			routine, err := model.ParseRoutineType(args[0])
			if err != nil {
				return err
			}
			at, err := model.ParseTimeOfDay(args[1])
			if err != nil {
				return err
			}

			a, err := openApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := a.cfg
			if routine == model.RoutineMorning {
				cfg.Reminders.Morning = at.String()
			} else {
				cfg.Reminders.Evening = at.String()
			}
			if err := a.saveConfig(cfg); err != nil {
				return err
			}
			platform, sched := a.reminders(nil)
			if err := a.reschedule(cmd.Context(), platform, sched); err != nil {
				if errors.Is(err, reminder.ErrPermissionDenied) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s reminder saved as %s; notifications are off so nothing was installed\n", routine, at)
					return nil
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s reminder set to %s\n", routine, at)
			return nil
		},
	})
	return cmd
}
