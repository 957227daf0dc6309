package update

import (
	"strings"
	"time"

	"github.com/sandeepkv93/wird/internal/views"
)

// historyLimit caps the rows shown on the history screen.
const historyLimit = 14

func (m Model) renderTodayView() string {
	snap := m.Snapshot
	rec := snap.TodayRecord()
	return m.styles.RenderTodayPanel(views.TodayPanelData{
		Greeting:   snap.Window.Greeting(),
		Name:       m.deps.Config.Profile.Name,
		Date:       snap.Today.String(),
		Window:     string(snap.Window),
		Streak:     snap.Streak,
		Longest:    snap.Longest,
		Active:     string(snap.Active),
		ActiveDone: snap.ActiveDone,
		MorningOK:  rec.MorningDone,
		EveningOK:  rec.EveningDone,
		WeekView:   m.weekTable.View(),
	})
}

func (m Model) renderRoutineView() string {
	return m.styles.RenderRoutinePanel(views.RoutinePanelData{
		Routine:      string(m.Routine),
		Done:         m.Progress.Done,
		Required:     m.Progress.Required,
		DayDone:      m.Progress.DayDone,
		ListView:     m.itemList.View(),
		ProgressView: m.routineBar.ViewAs(progressRatio(m.Progress.Done, m.Progress.Required)),
	})
}

func (m Model) renderItemDetail() string {
	item, ok := m.currentItem()
	if !ok {
		return m.styles.RenderItemDetail(views.ItemDetailData{})
	}
	marked := m.Cursor < len(m.Progress.Marked) && m.Progress.Marked[m.Cursor]
	return m.styles.RenderItemDetail(views.ItemDetailData{
		Title:    item.Title,
		Repeat:   item.Repeat,
		Marked:   marked,
		TextView: m.textViewport.View(),
	})
}

func (m Model) renderHistoryView() string {
	records := m.Snapshot.Records
	rows := make([]views.HistoryRow, 0, historyLimit)
	for i := len(records) - 1; i >= 0 && len(rows) < historyLimit; i-- {
		rec := records[i]
		rows = append(rows, views.HistoryRow{
			Date:    rec.Date.String(),
			Weekday: rec.Date.Weekday().String()[:3],
			Morning: rec.MorningDone,
			Evening: rec.EveningDone,
		})
	}
	return m.styles.RenderHistoryPanel(views.HistoryPanelData{Rows: rows, Longest: m.Snapshot.Longest})
}

func (m Model) renderReminderView() string {
	rows := make([]views.ReminderRow, 0, len(m.Installed))
	for _, r := range m.Installed {
		rows = append(rows, views.ReminderRow{Routine: string(r.Routine), At: r.At.String()})
	}
	last := ""
	if len(m.ReminderLog) > 0 {
		last = m.ReminderLog[len(m.ReminderLog)-1].TriggerAt.Format("2006-01-02 15:04")
	}
	return views.RenderReminderPanel(views.ReminderPanelData{
		Installed:  rows,
		Permission: m.Permission,
		LastFired:  last,
	})
}

func (m Model) renderCommandPalette() string {
	out := views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
	if out == "" {
		return ""
	}
	return "\n\n" + out
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Level, n.Body)
}

// notify records an in-app notification. Reminders also go to the desktop
// notifier.
func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	n := Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    time.Now(),
	}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
	if level == "reminder" && m.deps.Notifier != nil {
		if err := m.deps.Notifier.Send(title, body); err != nil {
			m.logger.Warn("desktop notification failed", "err", err)
		}
	}
}
