package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/wird/internal/clock"
	"github.com/sandeepkv93/wird/internal/content"
	"github.com/sandeepkv93/wird/internal/model"
	"github.com/sandeepkv93/wird/internal/storage"
)

const testRoutines = `
version: 1
routines:
  morning:
    - title: One
      repeat: 1
    - title: Two
      repeat: 3
    - title: Three
      repeat: 1
  evening:
    - title: Four
      repeat: 1
    - title: Five
      repeat: 1
`

type fixture struct {
	repo    *storage.SQLiteRepository
	clock   *clock.Fixed
	tracker *Tracker
	sink    *recordingSink
	snaps   []Snapshot
}

func newFixture(t *testing.T, now time.Time, opts ...Option) *fixture {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "wird.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return newFixtureWithRepo(t, repo, now, opts...)
}

func newFixtureWithRepo(t *testing.T, repo *storage.SQLiteRepository, now time.Time, opts ...Option) *fixture {
	t.Helper()
	catalog, err := content.Parse([]byte(testRoutines))
	if err != nil {
		t.Fatalf("parse content: %v", err)
	}
	f := &fixture{repo: repo, clock: clock.NewFixed(now), sink: &recordingSink{}}
	all := append([]Option{
		WithSink(f.sink),
		WithListener(func(s Snapshot) { f.snaps = append(f.snaps, s) }),
	}, opts...)
	f.tracker = New(repo, repo, catalog, f.clock, all...)
	return f
}

func at(t *testing.T, raw string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func day(t *testing.T, raw string) model.Date {
	t.Helper()
	d, err := model.ParseDate(raw)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return d
}

func (f *fixture) records(t *testing.T) []model.DailyRecord {
	t.Helper()
	list, err := f.repo.ListRecords(context.Background(), storage.RecordListFilter{})
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	return list
}

type recordingSink struct {
	mu     sync.Mutex
	pushed []model.DailyRecord
	err    error
}

func (s *recordingSink) Push(_ context.Context, rec model.DailyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushed = append(s.pushed, rec)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pushed)
}

// failingStore injects errors into selected repository calls.
type failingStore struct {
	*storage.SQLiteRepository
	failInsertDates bool
	failSetFlag     bool
}

var errInjected = errors.New("injected failure")

func (s *failingStore) InsertDates(ctx context.Context, dates []model.Date, at time.Time) ([]model.Date, error) {
	if s.failInsertDates {
		return nil, errInjected
	}
	return s.SQLiteRepository.InsertDates(ctx, dates, at)
}

func (s *failingStore) SetFlag(ctx context.Context, date model.Date, routine model.RoutineType, value bool, at time.Time) error {
	if s.failSetFlag {
		return errInjected
	}
	return s.SQLiteRepository.SetFlag(ctx, date, routine, value, at)
}
