package update

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/wird/internal/clock"
	"github.com/sandeepkv93/wird/internal/config"
	"github.com/sandeepkv93/wird/internal/content"
	"github.com/sandeepkv93/wird/internal/model"
	"github.com/sandeepkv93/wird/internal/reminder"
	"github.com/sandeepkv93/wird/internal/scheduler"
	"github.com/sandeepkv93/wird/internal/storage"
	"github.com/sandeepkv93/wird/internal/tracker"
)

type recordingNotifier struct {
	titles []string
}

func (r *recordingNotifier) Send(title, _ string) error {
	r.titles = append(r.titles, title)
	return nil
}

func testDeps(t *testing.T) Deps {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "wird.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	catalog, err := content.Default()
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.NewFixed(time.Date(2024, time.January, 5, 7, 0, 0, 0, time.UTC))
	return Deps{
		Tracker: tracker.New(repo, repo, catalog, clk, tracker.WithLogger(logger)),
		Content: catalog,
		Config:  config.Default(),
		Logger:  logger,
	}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return next, cmd
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModelDefaults(t *testing.T) {
	m := NewModel(Deps{})
	if m.CurrentView != ViewToday {
		t.Fatalf("expected default view %q, got %q", ViewToday, m.CurrentView)
	}
	if m.Routine != model.RoutineMorning {
		t.Fatalf("expected morning routine selected, got %q", m.Routine)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m := NewModel(Deps{})
	next, _ := send(t, m, keys("3"))
	if next.CurrentView != ViewHistory {
		t.Fatalf("expected history view, got %q", next.CurrentView)
	}
	next, _ = send(t, next, keys("e"))
	if next.CurrentView != ViewRoutine || next.Routine != model.RoutineEvening {
		t.Fatalf("expected evening routine view, got %q %q", next.CurrentView, next.Routine)
	}
	next, _ = send(t, next, keys("1"))
	if next.CurrentView != ViewToday {
		t.Fatalf("expected today view, got %q", next.CurrentView)
	}
}

func TestUpdateSwitchViewMsg(t *testing.T) {
	m := NewModel(Deps{})
	next, _ := send(t, m, SwitchViewMsg{View: ViewHistory})
	if next.CurrentView != ViewHistory {
		t.Fatalf("expected history view, got %q", next.CurrentView)
	}
	next, _ = send(t, next, SwitchViewMsg{View: View("Unknown")})
	if next.CurrentView != ViewHistory {
		t.Fatalf("expected view unchanged for unknown view, got %q", next.CurrentView)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m := NewModel(Deps{})
	next, _ := send(t, m, SetStatusMsg{Text: "ready"})
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}
	next, _ = send(t, next, AppErrorMsg{Err: errors.New("boom")})
	if next.LastError == nil || !next.Status.IsError || next.Status.Text != "boom" {
		t.Fatalf("unexpected error state: %v %+v", next.LastError, next.Status)
	}
	next, _ = send(t, next, ClearStatusMsg{})
	if next.Status.Text != "" {
		t.Fatalf("expected cleared status, got %+v", next.Status)
	}
}

func TestPaletteRejectsUnknownCommand(t *testing.T) {
	m := NewModel(Deps{})
	next, _ := send(t, m, keys("/"))
	if !next.Palette.Active {
		t.Fatal("expected palette active")
	}
	next, _ = send(t, next, keys("bogus"))
	next, cmd := send(t, next, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("expected no command for a parse failure")
	}
	if next.Palette.Active || !next.Status.IsError {
		t.Fatalf("expected closed palette with error, got %+v %+v", next.Palette, next.Status)
	}
}

func TestPaletteDoneMarksItem(t *testing.T) {
	m := NewModel(testDeps(t))
	next, _ := send(t, m, keys("/"))
	next, _ = send(t, next, keys("done morning 1"))
	next, cmd := send(t, next, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected mark command")
	}
	if next.CurrentView != ViewRoutine {
		t.Fatalf("expected routine view, got %q", next.CurrentView)
	}
	msg, ok := cmd().(ItemMarkedMsg)
	if !ok {
		t.Fatalf("expected ItemMarkedMsg")
	}
	if msg.Result.Status != tracker.StatusRecorded || msg.Result.Done != 1 {
		t.Fatalf("unexpected result: %+v", msg.Result)
	}
	next, cmd = send(t, next, msg)
	if cmd == nil {
		t.Fatal("expected progress reload")
	}
	if !strings.Contains(next.Status.Text, "morning 1/") {
		t.Fatalf("unexpected status: %q", next.Status.Text)
	}
}

func TestPaletteDoneRejectsOutOfRangeItem(t *testing.T) {
	m := NewModel(testDeps(t))
	next, _ := send(t, m, keys("/"))
	next, _ = send(t, next, keys("done evening 99"))
	next, cmd := send(t, next, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || !next.Status.IsError {
		t.Fatalf("expected rejected item, got %+v", next.Status)
	}
}

func TestPaletteRemindSavesConfig(t *testing.T) {
	deps := testDeps(t)
	var saved config.Config
	deps.SaveConfig = func(c config.Config) error {
		saved = c
		return nil
	}
	m := NewModel(deps)
	next, _ := send(t, m, keys("/"))
	next, _ = send(t, next, keys("remind morning 06:15"))
	next, _ = send(t, next, tea.KeyMsg{Type: tea.KeyEnter})
	if next.Status.IsError {
		t.Fatalf("unexpected error: %s", next.Status.Text)
	}
	if saved.Reminders.Morning != "06:15" {
		t.Fatalf("expected morning reminder saved, got %q", saved.Reminders.Morning)
	}
	if saved.Reminders.Evening != deps.Config.Reminders.Evening {
		t.Fatalf("evening reminder changed: %q", saved.Reminders.Evening)
	}
}

func TestStaleDayResultReloads(t *testing.T) {
	m := NewModel(testDeps(t))
	res := tracker.PromotionResult{Status: tracker.StatusStaleDay, Routine: model.RoutineMorning, Date: model.MustParseDate("2024-01-04")}
	next, cmd := send(t, m, ItemMarkedMsg{Result: res})
	if cmd == nil {
		t.Fatal("expected reload commands")
	}
	if !next.Status.IsError || !strings.Contains(next.Status.Text, "2024-01-05") {
		t.Fatalf("unexpected status: %+v", next.Status)
	}
}

func TestSnapshotAndProgressRender(t *testing.T) {
	deps := testDeps(t)
	m := NewModel(deps)
	snapMsg := openCmd(deps.Tracker, "loaded")()
	next, cmd := send(t, m, snapMsg)
	if cmd == nil {
		t.Fatal("expected progress load after first snapshot")
	}
	if next.Snapshot.Today.String() != "2024-01-05" || next.Status.Text != "loaded" {
		t.Fatalf("unexpected snapshot state: %s %q", next.Snapshot.Today, next.Status.Text)
	}
	next, _ = send(t, next, cmd())
	if len(next.Items) == 0 || next.Progress.Required != len(next.Items) {
		t.Fatalf("unexpected progress: %d items, %+v", len(next.Items), next.Progress)
	}
	next, _ = send(t, next, keys("2"))
	out := next.View()
	if !strings.Contains(out, "view: Routine") {
		t.Fatalf("expected routine header in view:\n%s", out)
	}
}

func TestDayTickDetectsRollover(t *testing.T) {
	m := NewModel(testDeps(t))
	m.Snapshot = tracker.Snapshot{Today: model.MustParseDate("2024-01-04"), Window: clock.WindowEvening}
	_, cmd := send(t, m, DayTickMsg{At: time.Now()})
	if cmd == nil {
		t.Fatal("expected reload on day rollover")
	}
}

func TestReminderDueNotifiesDesktop(t *testing.T) {
	notifier := &recordingNotifier{}
	m := NewModel(Deps{Notifier: notifier})
	today := model.MustParseDate("2024-01-05")
	m.Snapshot = tracker.Snapshot{
		Today:   today,
		Records: []model.DailyRecord{{Date: today, MorningDone: true}},
	}
	ev := scheduler.ReminderEvent{ID: "r1", Routine: string(model.RoutineMorning), Title: "Morning remembrance", Body: "time"}
	next, _ := send(t, m, ReminderDueMsg{Event: ev})
	if len(next.ReminderLog) != 1 {
		t.Fatalf("expected one logged reminder, got %d", len(next.ReminderLog))
	}
	if !strings.Contains(next.Status.Text, "already done") {
		t.Fatalf("unexpected status: %q", next.Status.Text)
	}
	if len(notifier.titles) != 1 || notifier.titles[0] != "Morning remembrance" {
		t.Fatalf("unexpected desktop notifications: %v", notifier.titles)
	}
}

func TestRemindersDeniedClearsInstalled(t *testing.T) {
	m := NewModel(Deps{})
	m.Installed = []model.Reminder{{ID: "x", Routine: model.RoutineMorning}}
	next, _ := send(t, m, RemindersMsg{Err: reminder.ErrPermissionDenied})
	if next.Installed != nil || next.Permission != string(reminder.PermissionDenied) {
		t.Fatalf("unexpected reminder state: %+v %q", next.Installed, next.Permission)
	}
	if next.Status.IsError {
		t.Fatal("denied permission is not an error")
	}
}
