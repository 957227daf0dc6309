package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/wird/internal/config"
	"github.com/sandeepkv93/wird/internal/reminder"
	"github.com/sandeepkv93/wird/internal/scheduler"
	"github.com/sandeepkv93/wird/internal/tracker"
	"github.com/sandeepkv93/wird/internal/update"
	"github.com/spf13/cobra"
)

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	cfg, _, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logFile, err := cfg.OpenLogFile()
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	var program *tea.Program
	a, err := openApp(opts, logFile, tracker.WithListener(func(s tracker.Snapshot) {
		if program != nil {
			go program.Send(update.SnapshotMsg{Snapshot: s})
		}
	}))
	if err != nil {
		return err
	}
	defer a.Close()

	engine := scheduler.NewEngine(a.cfg.Reminders.SchedulerBuffer)
	engine.Start()
	defer engine.Stop()

	platform, sched := a.reminders(engine)
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	if n, err := platform.Restore(ctx); err != nil {
		a.logger.Warn("restore reminders failed", "err", err)
	} else if n > 0 {
		a.logger.Info("reminders restored", "count", n)
	}
	if err := a.reschedule(ctx, platform, sched); err != nil && !errors.Is(err, reminder.ErrPermissionDenied) {
		a.logger.Warn("reschedule reminders failed", "err", err)
	}
	cancel()

	m := update.NewModel(update.Deps{
		Tracker:   a.tracker,
		Content:   a.catalog,
		Reminders: sched,
		Engine:    engine,
		Notifier:  notifier(),
		Config:    a.cfg,
		SaveConfig: func(c config.Config) error {
			return a.saveConfig(c)
		},
		Logger: a.logger,
	})
	program = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("wird failed: %w", err)
	}
	return nil
}
