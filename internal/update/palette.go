package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/wird/internal/commands"
	"github.com/sandeepkv93/wird/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m, cmd
	}
	return m, nil
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var pending tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Done: func(a commands.DoneArgs) (commands.Result, error) {
			count, err := m.requiredCount(a.Routine)
			if err != nil {
				return commands.Result{}, err
			}
			indexes := []int{a.Index()}
			if a.All {
				indexes = make([]int, count)
				for i := range indexes {
					indexes[i] = i
				}
			} else if a.Index() >= count {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("%s has %d items", a.Routine, count)}
			}
			if a.Routine != m.Routine {
				m.Routine = a.Routine
				m.Cursor = 0
			}
			m.CurrentView = ViewRoutine
			pending = markItemsCmd(m.deps.Tracker, a.Routine, m.today(), indexes)
			return commands.Result{Message: fmt.Sprintf("marking %d %s item(s)", len(indexes), a.Routine)}, nil
		},
		Show: func(s commands.ShowArgs) (commands.Result, error) {
			switch s.Subject {
			case commands.SubjectStreak:
				return commands.Result{Message: fmt.Sprintf("streak %d, longest %d", m.Snapshot.Streak, m.Snapshot.Longest)}, nil
			case commands.SubjectWeek:
				m.CurrentView = ViewToday
				return commands.Result{Message: "showing the last 7 days"}, nil
			case commands.SubjectRecords:
				m.CurrentView = ViewHistory
				return commands.Result{Message: fmt.Sprintf("%d record(s)", len(m.Snapshot.Records))}, nil
			default:
				m.CurrentView = ViewToday
				pending = installedCmd(m.deps.Reminders, fmt.Sprintf("%d reminder(s) installed", len(m.Installed)))
				return commands.Result{Message: "loading reminders"}, nil
			}
		},
		Remind: func(r commands.RemindArgs) (commands.Result, error) {
			cfg := m.deps.Config
			switch r.Routine {
			case model.RoutineMorning:
				cfg.Reminders.Morning = r.At.String()
			default:
				cfg.Reminders.Evening = r.At.String()
			}
			morning, err := cfg.MorningTime()
			if err != nil {
				return commands.Result{}, err
			}
			evening, err := cfg.EveningTime()
			if err != nil {
				return commands.Result{}, err
			}
			if m.deps.SaveConfig != nil {
				if err := m.deps.SaveConfig(cfg); err != nil {
					return commands.Result{}, fmt.Errorf("save config: %w", err)
				}
			}
			m.deps.Config = cfg
			pending = rescheduleCmd(m.deps.Reminders, morning, evening)
			return commands.Result{Message: fmt.Sprintf("%s reminder moved to %s", r.Routine, r.At)}, nil
		},
		Reconcile: func() (commands.Result, error) {
			pending = openCmd(m.deps.Tracker, "records reconciled")
			return commands.Result{Message: "reconciling"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message, IsError: false}
	return m, pending
}

func (m Model) requiredCount(routine model.RoutineType) (int, error) {
	if routine == m.Routine && len(m.Items) > 0 {
		return len(m.Items), nil
	}
	if m.deps.Content == nil {
		return 0, fmt.Errorf("no routine content loaded")
	}
	r, err := m.deps.Content.Routine(routine)
	if err != nil {
		return 0, err
	}
	return r.RequiredCount(), nil
}
