package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/sandeepkv93/wird/internal/scheduler"
)

type Notifier interface {
	Send(title, body string) error
}

type NoopNotifier struct{}

func (NoopNotifier) Send(string, string) error { return nil }

// ExecNotifier shells out to notify-send on Linux and osascript on macOS.
type ExecNotifier struct{}

func (ExecNotifier) Send(title, body string) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", title, body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(body), escapeAppleScript(title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

// DesktopAvailable reports whether ExecNotifier has a backend on this host.
func DesktopAvailable() bool {
	var bin string
	switch runtime.GOOS {
	case "linux":
		bin = "notify-send"
	case "darwin":
		bin = "osascript"
	default:
		return false
	}
	_, err := exec.LookPath(bin)
	return err == nil
}

// Dispatch forwards fired events to n until events is closed or ctx is done.
// onFire, when set, runs after each delivery attempt.
func Dispatch(ctx context.Context, events <-chan scheduler.ReminderEvent, n Notifier, logger *slog.Logger, onFire func(scheduler.ReminderEvent)) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "reminder")
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := n.Send(ev.Title, ev.Body); err != nil {
				logger.Warn("dispatch: notification failed", "id", ev.ID, "routine", ev.Routine, "err", err)
			} else {
				logger.Info("dispatch: reminder fired", "id", ev.ID, "routine", ev.Routine)
			}
			if onFire != nil {
				onFire(ev)
			}
		}
	}
}

var appleScriptEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// escapeAppleScript quotes s for use inside an AppleScript string literal.
func escapeAppleScript(s string) string {
	return appleScriptEscaper.Replace(s)
}
