package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/wird/internal/clock"
	"github.com/sandeepkv93/wird/internal/content"
	"github.com/sandeepkv93/wird/internal/storage"
	"github.com/sandeepkv93/wird/internal/tracker"
)

type testEnv struct {
	srv   *Server
	repo  *storage.SQLiteRepository
	clock *clock.Fixed
}

func testServer(t *testing.T) *testEnv {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "wird.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	catalog, err := content.Default()
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	clk := clock.NewFixed(time.Date(2024, 1, 5, 7, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tr := tracker.New(repo, repo, catalog, clk, tracker.WithLogger(logger))
	return &testEnv{srv: New(tr, repo, "test", logger), repo: repo, clock: clk}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	e.srv.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	env := testServer(t)
	w := env.do(t, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	resp := decode(t, w)
	if resp["status"] != "ok" || resp["db"] != true || resp["today"] != "2024-01-05" {
		t.Errorf("unexpected health: %v", resp)
	}
}

func TestReconcileThenListRecords(t *testing.T) {
	env := testServer(t)
	w := env.do(t, http.MethodPost, "/api/reconcile", "")
	if w.Code != http.StatusOK {
		t.Fatalf("reconcile status = %d; body: %s", w.Code, w.Body.String())
	}
	if inserted := decode(t, w)["inserted"].([]any); len(inserted) != 1 || inserted[0] != "2024-01-05" {
		t.Fatalf("unexpected inserted dates: %v", inserted)
	}

	w = env.do(t, http.MethodGet, "/api/records?from=2024-01-01", "")
	if w.Code != http.StatusOK {
		t.Fatalf("records status = %d", w.Code)
	}
	if records := decode(t, w)["records"].([]any); len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}

	w = env.do(t, http.MethodGet, "/api/records?from=nope", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCompleteEveryItemPromotes(t *testing.T) {
	env := testServer(t)
	catalog, _ := content.Default()
	routine, err := catalog.Routine("evening")
	if err != nil {
		t.Fatalf("routine: %v", err)
	}
	var last map[string]any
	for i := range routine.Items {
		w := env.do(t, http.MethodPost, "/api/routines/evening/items/"+strconv.Itoa(i)+"/complete", "")
		if w.Code != http.StatusOK {
			t.Fatalf("item %d status = %d; body: %s", i, w.Code, w.Body.String())
		}
		last = decode(t, w)
	}
	if last["status"] != "promoted" {
		t.Fatalf("expected promotion on final item, got %v", last)
	}

	w := env.do(t, http.MethodGet, "/api/routines/evening/progress", "")
	if resp := decode(t, w); resp["day_done"] != true {
		t.Fatalf("expected evening done, got %v", resp)
	}
}

func TestCompleteRejectsBadInput(t *testing.T) {
	env := testServer(t)
	cases := []string{
		"/api/routines/noon/items/0/complete",
		"/api/routines/morning/items/x/complete",
		"/api/routines/morning/items/99/complete",
	}
	for _, path := range cases {
		if w := env.do(t, http.MethodPost, path, ""); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", path, w.Code, http.StatusBadRequest)
		}
	}
}

func TestCompleteStaleDayConflicts(t *testing.T) {
	env := testServer(t)
	w := env.do(t, http.MethodPost, "/api/routines/morning/items/0/complete", `{"date":"2024-01-04"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusConflict, w.Body.String())
	}
	if decode(t, w)["status"] != "stale_day" {
		t.Fatalf("expected stale_day status: %s", w.Body.String())
	}
}

func TestMirrorMergesWithoutReset(t *testing.T) {
	env := testServer(t)
	w := env.do(t, http.MethodPut, "/api/mirror/records/2024-01-04", `{"date":"2024-01-04","morning_done":true,"evening_done":true,"device":"phone"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	w = env.do(t, http.MethodPut, "/api/mirror/records/2024-01-04", `{"morning_done":false,"evening_done":false}`)
	resp := decode(t, w)
	if resp["morning_done"] != true || resp["evening_done"] != true {
		t.Fatalf("mirror must not reset flags: %v", resp)
	}

	w = env.do(t, http.MethodPut, "/api/mirror/records/2024-01-04", `{"date":"2024-01-03"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestMirrorRejectsFutureDate(t *testing.T) {
	env := testServer(t)
	w := env.do(t, http.MethodPut, "/api/mirror/records/2024-01-06", `{"morning_done":true,"evening_done":true}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusConflict, w.Body.String())
	}
	resp := decode(t, env.do(t, http.MethodGet, "/api/records", ""))
	for _, r := range resp["records"].([]any) {
		if r.(map[string]any)["date"] == "2024-01-06" {
			t.Fatalf("future record was stored: %v", resp)
		}
	}
}

func TestStreakAndWeek(t *testing.T) {
	env := testServer(t)
	for _, d := range []string{"2024-01-03", "2024-01-04"} {
		env.do(t, http.MethodPut, "/api/mirror/records/"+d, `{"morning_done":true,"evening_done":true}`)
	}
	resp := decode(t, env.do(t, http.MethodGet, "/api/streak", ""))
	if resp["streak"] != float64(2) || resp["active"] != "morning" {
		t.Fatalf("unexpected streak response: %v", resp)
	}
	week := decode(t, env.do(t, http.MethodGet, "/api/week", ""))["week"].([]any)
	if len(week) != 7 {
		t.Fatalf("expected 7 days, got %d", len(week))
	}
	last := week[6].(map[string]any)
	if last["date"] != "2024-01-05" || last["today"] != true || last["weekday"] != "Fri" {
		t.Fatalf("unexpected last cell: %v", last)
	}
}
