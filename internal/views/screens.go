package views

import (
	"fmt"
	"strings"
)

type TodayPanelData struct {
	Greeting   string
	Name       string
	Date       string
	Window     string
	Streak     int
	Longest    int
	Active     string
	ActiveDone bool
	MorningOK  bool
	EveningOK  bool
	WeekView   string
}

type RoutinePanelData struct {
	Routine      string
	Done         int
	Required     int
	DayDone      bool
	ListView     string
	ProgressView string
}

type ItemDetailData struct {
	Title    string
	Repeat   int
	Marked   bool
	TextView string
}

type HistoryRow struct {
	Date    string
	Weekday string
	Morning bool
	Evening bool
}

type HistoryPanelData struct {
	Rows    []HistoryRow
	Longest int
}

type ReminderRow struct {
	Routine string
	At      string
}

type ReminderPanelData struct {
	Installed  []ReminderRow
	Permission string
	LastFired  string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func (s Styles) RenderTodayPanel(data TodayPanelData) string {
	var b strings.Builder
	greeting := data.Greeting
	if data.Name != "" {
		greeting = fmt.Sprintf("%s, %s", greeting, data.Name)
	}
	b.WriteString(s.Title.Render(greeting) + "\n")
	b.WriteString(fmt.Sprintf("today: %s (%s)\n", data.Date, data.Window))
	b.WriteString(fmt.Sprintf("streak: %d day(s) | longest: %d\n", data.Streak, data.Longest))
	b.WriteString(fmt.Sprintf("morning %s  evening %s\n", s.Mark(data.MorningOK), s.Mark(data.EveningOK)))
	if data.ActiveDone {
		b.WriteString(fmt.Sprintf("%s routine completed for today\n", data.Active))
	} else {
		b.WriteString(fmt.Sprintf("next: %s routine [enter] to begin\n", data.Active))
	}
	b.WriteString("\nlast 7 days:\n")
	b.WriteString(data.WeekView)
	return strings.TrimSpace(b.String())
}

func (s Styles) RenderRoutinePanel(data RoutinePanelData) string {
	var b strings.Builder
	b.WriteString(s.Title.Render(fmt.Sprintf("%s routine", data.Routine)) + "\n")
	state := fmt.Sprintf("%d/%d items", data.Done, data.Required)
	if data.DayDone {
		state += " " + s.Done.Render("(completed)")
	}
	b.WriteString(state + "\n")
	b.WriteString(data.ProgressView + "\n")
	b.WriteString("actions: [j/k]move [space]mark [m/e]switch routine\n")
	b.WriteString(data.ListView)
	return strings.TrimSpace(b.String())
}

func (s Styles) RenderItemDetail(data ItemDetailData) string {
	if strings.TrimSpace(data.Title) == "" {
		return "item:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s\n", s.Mark(data.Marked), s.Title.Render(data.Title)))
	if data.Repeat > 1 {
		b.WriteString(fmt.Sprintf("recite %d times\n", data.Repeat))
	}
	b.WriteString("\n" + data.TextView)
	return strings.TrimSpace(b.String())
}

func (s Styles) RenderHistoryPanel(data HistoryPanelData) string {
	var b strings.Builder
	b.WriteString(s.Title.Render("history") + "\n")
	b.WriteString(fmt.Sprintf("longest streak: %d\n", data.Longest))
	if len(data.Rows) == 0 {
		b.WriteString("(no records yet)")
		return b.String()
	}
	for _, row := range data.Rows {
		b.WriteString(fmt.Sprintf("%s %s  morning %s  evening %s\n", row.Date, row.Weekday, s.Mark(row.Morning), s.Mark(row.Evening)))
	}
	return strings.TrimSpace(b.String())
}

func RenderReminderPanel(data ReminderPanelData) string {
	var b strings.Builder
	b.WriteString("reminders:\n")
	if len(data.Installed) == 0 {
		b.WriteString("(none installed)\n")
	}
	for _, r := range data.Installed {
		b.WriteString(fmt.Sprintf("- %s at %s\n", r.Routine, r.At))
	}
	if data.Permission != "" {
		b.WriteString(fmt.Sprintf("notifications: %s\n", data.Permission))
	}
	if data.LastFired != "" {
		b.WriteString(fmt.Sprintf("last fired: %s\n", data.LastFired))
	}
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
