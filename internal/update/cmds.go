package update

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/wird/internal/content"
	"github.com/sandeepkv93/wird/internal/model"
	"github.com/sandeepkv93/wird/internal/reminder"
	"github.com/sandeepkv93/wird/internal/scheduler"
	"github.com/sandeepkv93/wird/internal/tracker"
)

const opTimeout = 5 * time.Second

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// SnapshotMsg carries freshly derived streak state.
type SnapshotMsg struct {
	Snapshot tracker.Snapshot
	Note     string
}

type ProgressMsg struct {
	Progress tracker.Progress
	Items    []model.Item
}

type ItemMarkedMsg struct {
	Result tracker.PromotionResult
}

type RemindersMsg struct {
	Installed []model.Reminder
	Note      string
	Err       error
}

type ReminderDueMsg struct {
	Event scheduler.ReminderEvent
}

// DayTickMsg fires on each wall-clock minute so a day rollover is noticed
// while the app stays open.
type DayTickMsg struct {
	At time.Time
}

func openCmd(tr *tracker.Tracker, note string) tea.Cmd {
	if tr == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		snap, err := tr.Open(ctx)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return SnapshotMsg{Snapshot: snap, Note: note}
	}
}

func snapshotCmd(tr *tracker.Tracker) tea.Cmd {
	if tr == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		snap, err := tr.Snapshot(ctx)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return SnapshotMsg{Snapshot: snap}
	}
}

func progressCmd(tr *tracker.Tracker, src content.Source, routine model.RoutineType, date model.Date) tea.Cmd {
	if tr == nil || src == nil {
		return nil
	}
	return func() tea.Msg {
		r, err := src.Routine(routine)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		p, err := tr.Progress(ctx, routine, date)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return ProgressMsg{Progress: p, Items: r.Items}
	}
}

// markItemsCmd marks each index in order and reports the last result. It
// stops at the first error or stale-day result.
func markItemsCmd(tr *tracker.Tracker, routine model.RoutineType, date model.Date, indexes []int) tea.Cmd {
	if tr == nil || len(indexes) == 0 {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		var last tracker.PromotionResult
		for _, idx := range indexes {
			res, err := tr.MarkItemComplete(ctx, routine, date, idx)
			if err != nil {
				return AppErrorMsg{Err: err}
			}
			last = res
			if res.Status == tracker.StatusStaleDay {
				break
			}
		}
		return ItemMarkedMsg{Result: last}
	}
}

func rescheduleCmd(s *reminder.Scheduler, morning, evening model.TimeOfDay) tea.Cmd {
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := s.Reschedule(ctx, morning, evening); err != nil {
			return RemindersMsg{Err: err}
		}
		installed, err := s.Installed(ctx)
		if err != nil {
			return RemindersMsg{Err: err}
		}
		return RemindersMsg{
			Installed: installed,
			Note:      fmt.Sprintf("reminders set: morning %s, evening %s", morning, evening),
		}
	}
}

func installedCmd(s *reminder.Scheduler, note string) tea.Cmd {
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		installed, err := s.Installed(ctx)
		return RemindersMsg{Installed: installed, Note: note, Err: err}
	}
}

func waitForReminderCmd(ch <-chan scheduler.ReminderEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{Event: ev}
	}
}

func dayTickCmd(now time.Time) tea.Cmd {
	return tea.Tick(untilNextMinute(now), func(t time.Time) tea.Msg { return DayTickMsg{At: t} })
}
