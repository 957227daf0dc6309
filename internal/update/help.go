package update

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/wird/internal/views"
)

func binding(keys, desc string, extra ...string) key.Binding {
	return key.NewBinding(key.WithKeys(append([]string{keys}, extra...)...), key.WithHelp(keys, desc))
}

// globalKeys are active in every view while the palette is closed.
func (m Model) globalKeys() []key.Binding {
	return []key.Binding{
		binding(m.Keys.Today, "today"),
		binding(m.Keys.Routine, "routine"),
		binding(m.Keys.History, "history"),
		binding("m/e", "morning/evening", "m", "e"),
		binding("r", "reconcile"),
		binding("/", "command"),
		binding(m.Keys.Help, "help"),
		binding(m.Keys.Quit, "quit", "ctrl+c"),
	}
}

func (m Model) viewKeys() []key.Binding {
	switch m.CurrentView {
	case ViewToday:
		return []key.Binding{binding("enter", "open "+string(m.Snapshot.Active)+" routine")}
	case ViewRoutine:
		return []key.Binding{
			binding("j/k", "move", "j", "k", "up", "down"),
			binding("space", "mark done", " ", "enter"),
			binding("pgup/pgdn", "scroll text", "pgup", "pgdown"),
		}
	case ViewHistory:
		return []key.Binding{binding("/show records", "count records")}
	}
	return nil
}

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	global, local := m.globalKeys(), m.viewKeys()
	lines := make([]string, 0, len(local))
	for _, b := range local {
		h := b.Help()
		lines = append(lines, "- "+h.Key+": "+h.Desc)
	}
	return "\n\n" + views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    lines,
		HelpView:    m.helpModel.View(helpKeyMap{short: global, full: [][]key.Binding{global, local}}),
	})
}
