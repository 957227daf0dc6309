package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type AppData struct {
	Header       string
	LeftPane     string
	RightPane    string
	StatusLine   string
	StatusError  bool
	Footer       string
	Notification string
}

// Theme is the palette for one appearance setting.
type Theme struct {
	Name   string
	Accent lipgloss.Color
	OK     lipgloss.Color
	Warn   lipgloss.Color
	Error  lipgloss.Color
	Muted  lipgloss.Color
}

var (
	DarkTheme  = Theme{Name: "dark", Accent: "12", OK: "10", Warn: "11", Error: "9", Muted: "8"}
	LightTheme = Theme{Name: "light", Accent: "4", OK: "2", Warn: "3", Error: "1", Muted: "7"}
)

// ThemeByName falls back to dark for unknown names.
func ThemeByName(name string) Theme {
	if strings.EqualFold(strings.TrimSpace(name), LightTheme.Name) {
		return LightTheme
	}
	return DarkTheme
}

type Styles struct {
	Theme  Theme
	Header lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
	Panel  lipgloss.Style
	Footer lipgloss.Style
	Done   lipgloss.Style
	Todo   lipgloss.Style
	Title  lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Theme:  t,
		Header: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Status: lipgloss.NewStyle().Foreground(t.OK),
		Error:  lipgloss.NewStyle().Foreground(t.Error),
		Panel:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Muted).Padding(0, 1),
		Footer: lipgloss.NewStyle().Foreground(t.Muted),
		Done:   lipgloss.NewStyle().Foreground(t.OK),
		Todo:   lipgloss.NewStyle().Foreground(t.Warn),
		Title:  lipgloss.NewStyle().Bold(true),
	}
}

func (s Styles) RenderApp(data AppData) string {
	left := s.Panel.Width(58).Render(data.LeftPane)
	row := left
	if strings.TrimSpace(data.RightPane) != "" {
		right := s.Panel.Width(50).Render(data.RightPane)
		row = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	status := s.Status.Render(data.StatusLine)
	if data.StatusError {
		status = s.Error.Render(data.StatusLine)
	}

	lines := []string{
		s.Header.Render(data.Header),
		row,
		status,
	}
	if data.Notification != "" {
		lines = append(lines, s.Panel.Render(data.Notification))
	}
	if data.Footer != "" {
		lines = append(lines, s.Footer.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

// Mark renders a done/not-done glyph.
func (s Styles) Mark(done bool) string {
	if done {
		return s.Done.Render("✓")
	}
	return s.Todo.Render("·")
}

// RenderMarkdown renders md for the theme, wrapped at width. On renderer
// failure the raw text is returned.
func RenderMarkdown(md string, theme Theme, width int) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	if width <= 0 {
		width = 60
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme.Name),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
