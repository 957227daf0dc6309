package update

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/wird/internal/clock"
	"github.com/sandeepkv93/wird/internal/model"
	"github.com/sandeepkv93/wird/internal/reminder"
	"github.com/sandeepkv93/wird/internal/tracker"
	"github.com/sandeepkv93/wird/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		openCmd(m.deps.Tracker, ""),
		progressCmd(m.deps.Tracker, m.deps.Content, m.Routine, m.today()),
		installedCmd(m.deps.Reminders, ""),
		dayTickCmd(time.Now()),
	}
	if m.deps.Engine != nil {
		cmds = append(cmds, waitForReminderCmd(m.deps.Engine.C()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed)
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active", IsError: false}
			return m, nil
		case m.Keys.Today:
			m.CurrentView = ViewToday
			return m, nil
		case m.Keys.Routine:
			return m.openRoutine(m.Routine)
		case m.Keys.History:
			m.CurrentView = ViewHistory
			return m, nil
		case "m":
			return m.openRoutine(model.RoutineMorning)
		case "e":
			return m.openRoutine(model.RoutineEvening)
		case "r":
			return m.startBusy("reconciling", openCmd(m.deps.Tracker, "records reconciled"))
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown", IsError: false}
			} else {
				m.Status = StatusBar{Text: "help hidden", IsError: false}
			}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		switch m.CurrentView {
		case ViewToday:
			return m.handleTodayKey(typed)
		case ViewRoutine:
			return m.handleRoutineKey(typed)
		}
	case spinner.TickMsg:
		if m.Busy {
			var cmd tea.Cmd
			m.busySpinner, cmd = m.busySpinner.Update(typed)
			return m, cmd
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.Busy = false
		m.LastError = typed.Err
		if typed.Err != nil {
			m.logger.Error("operation failed", "err", typed.Err)
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	case SnapshotMsg:
		m.Busy = false
		dayChanged := !m.Snapshot.Today.IsZero() && !m.Snapshot.Today.Equal(typed.Snapshot.Today)
		m.Snapshot = typed.Snapshot
		if typed.Note != "" {
			m.Status = StatusBar{Text: typed.Note, IsError: false}
		}
		if dayChanged || m.Progress.Date.IsZero() || !m.Progress.Date.Equal(typed.Snapshot.Today) {
			return m, progressCmd(m.deps.Tracker, m.deps.Content, m.Routine, typed.Snapshot.Today)
		}
		return m, nil
	case ProgressMsg:
		m.Busy = false
		m.Progress = typed.Progress
		m.Items = typed.Items
		if m.Cursor >= len(m.Items) {
			m.Cursor = 0
		}
		return m, nil
	case ItemMarkedMsg:
		return m.onItemMarked(typed.Result)
	case RemindersMsg:
		m.Busy = false
		if typed.Err != nil {
			if errors.Is(typed.Err, reminder.ErrPermissionDenied) {
				m.Permission = string(reminder.PermissionDenied)
				m.Installed = nil
				m.Status = StatusBar{Text: "notifications are off; reminders not scheduled", IsError: false}
				return m, nil
			}
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			return m, nil
		}
		m.Installed = typed.Installed
		if len(typed.Installed) > 0 {
			m.Permission = string(reminder.PermissionGranted)
		}
		if typed.Note != "" {
			m.Status = StatusBar{Text: typed.Note, IsError: false}
		}
		return m, nil
	case ReminderDueMsg:
		m.ReminderLog = append(m.ReminderLog, typed.Event)
		if len(m.ReminderLog) > 20 {
			m.ReminderLog = m.ReminderLog[len(m.ReminderLog)-20:]
		}
		text := fmt.Sprintf("reminder: %s", typed.Event.Title)
		if routine := model.RoutineType(typed.Event.Routine); routine.IsValid() && m.Snapshot.TodayRecord().Done(routine) {
			text += " (already done today)"
		}
		m.Status = StatusBar{Text: text, IsError: false}
		m.notify(typed.Event.Title, typed.Event.Body, "reminder")
		if m.deps.Engine != nil {
			return m, waitForReminderCmd(m.deps.Engine.C())
		}
		return m, nil
	case DayTickMsg:
		return m.onDayTick(typed.At)
	}

	return m, nil
}

func (m Model) openRoutine(routine model.RoutineType) (Model, tea.Cmd) {
	m.CurrentView = ViewRoutine
	if routine != m.Routine {
		m.Routine = routine
		m.Cursor = 0
	}
	return m, progressCmd(m.deps.Tracker, m.deps.Content, routine, m.today())
}

func (m Model) handleTodayKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		active := m.Snapshot.Active
		if !active.IsValid() {
			active = clock.WindowAt(time.Now()).Routine()
		}
		return m.openRoutine(active)
	}
	return m, nil
}

func (m Model) handleRoutineKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Items)-1 {
			m.Cursor++
		}
	case " ", "enter":
		if _, ok := m.currentItem(); !ok {
			return m, nil
		}
		date := m.Progress.Date
		if date.IsZero() {
			date = m.today()
		}
		return m, markItemsCmd(m.deps.Tracker, m.Routine, date, []int{m.Cursor})
	case "pgdown":
		m.textViewport.HalfViewDown()
	case "pgup":
		m.textViewport.HalfViewUp()
	}
	return m, nil
}

func (m Model) onItemMarked(res tracker.PromotionResult) (Model, tea.Cmd) {
	m.Busy = false
	today := m.today()
	switch res.Status {
	case tracker.StatusStaleDay:
		m.Status = StatusBar{Text: fmt.Sprintf("%s has ended; showing %s", res.Date, today), IsError: true}
		return m, tea.Batch(openCmd(m.deps.Tracker, ""), progressCmd(m.deps.Tracker, m.deps.Content, m.Routine, today))
	case tracker.StatusPromoted:
		text := fmt.Sprintf("%s routine complete, streak %d", res.Routine, res.Streak)
		m.Status = StatusBar{Text: text, IsError: false}
		m.notify("Routine complete", text, "info")
	case tracker.StatusAlreadyDone:
		m.Status = StatusBar{Text: fmt.Sprintf("%s routine already complete today", res.Routine), IsError: false}
	default:
		m.Status = StatusBar{Text: fmt.Sprintf("%s %d/%d", res.Routine, res.Done, res.Required), IsError: false}
		if m.Cursor < len(m.Items)-1 {
			m.Cursor++
		}
	}
	cmds := []tea.Cmd{progressCmd(m.deps.Tracker, m.deps.Content, m.Routine, today)}
	if res.Status == tracker.StatusPromoted || res.Status == tracker.StatusAlreadyDone {
		cmds = append(cmds, snapshotCmd(m.deps.Tracker))
	}
	return m, tea.Batch(cmds...)
}

// onDayTick reloads when the calendar day or time window moved on.
func (m Model) onDayTick(at time.Time) (Model, tea.Cmd) {
	next := dayTickCmd(at)
	if m.deps.Tracker == nil {
		return m, next
	}
	now := m.deps.Tracker.Now()
	today := model.DateOf(now)
	switch {
	case !m.Snapshot.Today.IsZero() && !today.Equal(m.Snapshot.Today):
		m.logger.Info("day rollover", "from", m.Snapshot.Today.String(), "to", today.String())
		return m, tea.Batch(next, openCmd(m.deps.Tracker, "a new day has started"))
	case clock.WindowAt(now) != m.Snapshot.Window:
		return m, tea.Batch(next, snapshotCmd(m.deps.Tracker))
	}
	return m, next
}

func (m Model) startBusy(text string, cmd tea.Cmd) (Model, tea.Cmd) {
	if cmd == nil {
		return m, nil
	}
	m.Busy = true
	m.Status = StatusBar{Text: text, IsError: false}
	return m, tea.Batch(m.busySpinner.Tick, cmd)
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	if m.Busy {
		status = strings.TrimSpace(m.busySpinner.View() + " " + status)
	}

	leftPane := ""
	rightPane := ""
	switch m.CurrentView {
	case ViewToday:
		leftPane = m.renderTodayView()
		rightPane = m.renderReminderView() + m.renderCommandPalette() + m.renderHelpIfVisible()
	case ViewRoutine:
		leftPane = m.renderRoutineView()
		rightPane = m.renderItemDetail() + m.renderCommandPalette() + m.renderHelpIfVisible()
	case ViewHistory:
		leftPane = m.renderHistoryView()
		rightPane = m.renderCommandPalette() + m.renderHelpIfVisible()
	}

	notificationView := ""
	if len(m.ReminderLog) > 0 {
		last := m.ReminderLog[len(m.ReminderLog)-1]
		notificationView = fmt.Sprintf("last-reminder: %s @ %s", last.Routine, last.TriggerAt.Format("15:04"))
	}
	notificationView = strings.TrimSpace(strings.Join([]string{
		notificationView,
		strings.TrimSpace(m.renderNotificationsView()),
	}, "\n"))

	header := fmt.Sprintf("wird | view: %s | streak: %d", m.CurrentView, m.Snapshot.Streak)
	return m.styles.RenderApp(views.AppData{
		Header:       header,
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: notificationView,
		Footer: fmt.Sprintf("keys: %s today | %s routine | %s history | m/e morning/evening | r reconcile | / cmd | %s help | %s quit",
			m.Keys.Today, m.Keys.Routine, m.Keys.History, m.Keys.Help, m.Keys.Quit),
	})
}

func isKnownView(v View) bool {
	switch v {
	case ViewToday, ViewRoutine, ViewHistory:
		return true
	default:
		return false
	}
}
