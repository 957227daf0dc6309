package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/wird/internal/clock"
	"github.com/sandeepkv93/wird/internal/config"
	"github.com/sandeepkv93/wird/internal/model"
	"github.com/sandeepkv93/wird/internal/tracker"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return filepath.Join(dir, "config.toml")
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, setupEnv(t), "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "wird dev") {
		t.Fatalf("unexpected version output: %q", out)
	}
}

func TestDoneAllPromotesRoutine(t *testing.T) {
	cfgPath := setupEnv(t)
	out, err := run(t, cfgPath, "done", "morning", "all")
	if err != nil {
		t.Fatalf("done: %v", err)
	}
	if !strings.Contains(out, "morning routine complete") {
		t.Fatalf("unexpected output: %q", out)
	}
	out, err = run(t, cfgPath, "done", "morning", "1")
	if err != nil {
		t.Fatalf("done again: %v", err)
	}
	if !strings.Contains(out, "already complete") {
		t.Fatalf("unexpected output: %q", out)
	}
	if _, err := os.Stat(filepath.Join(os.Getenv("XDG_DATA_HOME"), "wird", "wird.db")); err != nil {
		t.Fatalf("expected database under data dir: %v", err)
	}
}

func TestDoneRejectsBadArguments(t *testing.T) {
	cfgPath := setupEnv(t)
	if _, err := run(t, cfgPath, "done", "noon", "1"); err == nil {
		t.Fatal("expected unknown routine error")
	}
	_, err := run(t, cfgPath, "done", "evening", "999")
	if err == nil || !strings.Contains(err.Error(), "items") {
		t.Fatalf("expected out of range error, got %v", err)
	}
}

func TestStatusShowsRoutines(t *testing.T) {
	cfgPath := setupEnv(t)
	if _, err := run(t, cfgPath, "done", "evening", "1"); err != nil {
		t.Fatalf("done: %v", err)
	}
	out, err := run(t, cfgPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"streak:", "morning  0/", "evening  1/"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in status output:\n%s", want, out)
		}
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	cfgPath := setupEnv(t)
	out, err := run(t, cfgPath, "reconcile")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !strings.Contains(out, "backfilled 1 day(s)") {
		t.Fatalf("unexpected first reconcile: %q", out)
	}
	out, err = run(t, cfgPath, "reconcile")
	if err != nil {
		t.Fatalf("reconcile again: %v", err)
	}
	if !strings.Contains(out, "backfilled 0 day(s)") {
		t.Fatalf("unexpected second reconcile: %q", out)
	}
}

func TestResetRequiresConfirmation(t *testing.T) {
	cfgPath := setupEnv(t)
	if _, err := run(t, cfgPath, "reset"); err == nil {
		t.Fatal("expected reset without --yes to fail")
	}
	out, err := run(t, cfgPath, "reset", "--yes")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !strings.Contains(out, "cleared") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRemindSetSavesConfigAndInstalls(t *testing.T) {
	cfgPath := setupEnv(t)
	t.Setenv("WIRD_NOTIFICATIONS", "true")
	out, err := run(t, cfgPath, "remind", "set", "morning", "06:10")
	if err != nil {
		t.Fatalf("remind set: %v", err)
	}
	if !strings.Contains(out, "morning reminder set to 06:10") {
		t.Fatalf("unexpected output: %q", out)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("load saved config: %v", err)
	}
	if cfg.Reminders.Morning != "06:10" {
		t.Fatalf("expected saved morning time, got %q", cfg.Reminders.Morning)
	}

	out, err = run(t, cfgPath, "remind", "list")
	if err != nil {
		t.Fatalf("remind list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "06:10") {
		t.Fatalf("expected two installed reminders, got:\n%s", out)
	}
}

func TestReconcileLoopStopsBeforeClose(t *testing.T) {
	a, err := openApp(&rootOptions{configPath: setupEnv(t)}, io.Discard)
	if err != nil {
		t.Fatalf("open app: %v", err)
	}
	clk := clock.NewFixed(time.Date(2024, time.January, 5, 7, 0, 0, 0, time.UTC))
	a.clock = clk
	a.tracker = tracker.New(a.repo, a.repo, a.catalog, clk)
	if _, err := a.tracker.Open(context.Background()); err != nil {
		t.Fatalf("open tracker: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wait := a.startReconcileLoop(ctx, time.Millisecond)
	clk.Advance(24 * time.Hour)

	next := model.MustParseDate("2024-01-06")
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := a.repo.GetRecord(context.Background(), next); err == nil {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			wait()
			t.Fatal("expected rollover to record 2024-01-06")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reconcile loop did not stop after cancel")
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close app: %v", err)
	}
}
