// Package tracker owns the daily record invariants: gap filling, per-item
// completion with promotion into day flags, and streak derivation.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sandeepkv93/wird/internal/clock"
	"github.com/sandeepkv93/wird/internal/content"
	"github.com/sandeepkv93/wird/internal/model"
	"github.com/sandeepkv93/wird/internal/storage"
	"github.com/sandeepkv93/wird/internal/syncer"
)

// Snapshot is the derived state shown to the user. It is rebuilt from the
// store on every request.
type Snapshot struct {
	Today   model.Date
	Records []model.DailyRecord
	Streak  int
	Longest int
	Week    []DayCell
	Window  clock.Window
	// Active is the routine suggested for the current window.
	Active     model.RoutineType
	ActiveDone bool
}

func (s Snapshot) TodayRecord() model.DailyRecord {
	for i := len(s.Records) - 1; i >= 0; i-- {
		if s.Records[i].Date.Equal(s.Today) {
			return s.Records[i]
		}
	}
	return model.DailyRecord{Date: s.Today}
}

type Tracker struct {
	mu       sync.Mutex
	store    storage.RecordRepository
	kv       storage.KV
	source   content.Source
	clock    clock.Clock
	sink     syncer.Sink
	logger   *slog.Logger
	listener func(Snapshot)
	caches   map[cacheKey]*CompletionCache
	pushes   sync.WaitGroup
	pushWait time.Duration
}

type Option func(*Tracker)

func WithSink(s syncer.Sink) Option {
	return func(t *Tracker) {
		if s != nil {
			t.sink = s
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithListener registers a callback invoked with a fresh snapshot after
// every promotion or mirrored write.
func WithListener(fn func(Snapshot)) Option {
	return func(t *Tracker) { t.listener = fn }
}

func New(store storage.RecordRepository, kv storage.KV, source content.Source, clk clock.Clock, opts ...Option) *Tracker {
	t := &Tracker{
		store:    store,
		kv:       kv,
		source:   source,
		clock:    clk,
		sink:     syncer.NoopSink{},
		logger:   slog.Default(),
		caches:   make(map[cacheKey]*CompletionCache),
		pushWait: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With("component", "tracker")
	return t
}

func (t *Tracker) Today() model.Date {
	return clock.Today(t.clock)
}

func (t *Tracker) Now() time.Time {
	return t.clock.Now()
}

// Open runs the foreground sequence: backfill to today, then retry any
// promotion left pending by an earlier failure.
func (t *Tracker) Open(ctx context.Context) (Snapshot, error) {
	if _, err := t.Reconcile(ctx, t.Today()); err != nil {
		return Snapshot{}, err
	}
	if _, err := t.RetryPending(ctx); err != nil {
		t.logger.Warn("open: retry pending promotion failed", "err", err)
	}
	return t.Snapshot(ctx)
}

func (t *Tracker) Snapshot(ctx context.Context) (Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked(ctx)
}

func (t *Tracker) snapshotLocked(ctx context.Context) (Snapshot, error) {
	records, err := t.store.ListRecords(ctx, storage.RecordListFilter{})
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: list records: %w", ErrPersistence, err)
	}
	now := t.clock.Now()
	today := model.DateOf(now)
	window := clock.WindowAt(now)
	snap := Snapshot{
		Today:   today,
		Records: records,
		Streak:  ComputeStreak(records, today),
		Longest: LongestStreak(records),
		Week:    WeekGrid(records, today),
		Window:  window,
		Active:  window.Routine(),
	}
	snap.ActiveDone = snap.TodayRecord().Done(snap.Active)
	return snap, nil
}

// ApplyMirror merges a record received from another device. Flags are OR-ed
// so a completed day is never undone. Records dated after today are
// rejected with ErrFutureDate.
func (t *Tracker) ApplyMirror(ctx context.Context, rec model.DailyRecord) (model.DailyRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if today := t.Today(); rec.Date.After(today) {
		t.logger.Warn("mirror: rejecting future record", "date", rec.Date.String(), "today", today.String())
		return model.DailyRecord{}, fmt.Errorf("%w: %s (today %s)", ErrFutureDate, rec.Date, today)
	}

	merged, err := t.store.MergeRecord(ctx, rec)
	if err != nil {
		return model.DailyRecord{}, fmt.Errorf("%w: merge %s: %w", ErrPersistence, rec.Date, err)
	}
	if snap, err := t.snapshotLocked(ctx); err == nil {
		t.publish(snap)
	}
	return merged, nil
}

// Wipe clears every record and cached item. It is the only way a completed
// flag is ever cleared.
func (t *Tracker) Wipe(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.store.Wipe(ctx); err != nil {
		return fmt.Errorf("%w: wipe: %w", ErrPersistence, err)
	}
	t.caches = make(map[cacheKey]*CompletionCache)
	t.logger.Warn("wipe: all completion data cleared")
	return nil
}

// Flush waits for in-flight mirror pushes.
func (t *Tracker) Flush() {
	t.pushes.Wait()
}

func (t *Tracker) publish(snap Snapshot) {
	if t.listener != nil {
		t.listener(snap)
	}
}

// mirror pushes rec to the sync sink without blocking the caller.
func (t *Tracker) mirror(rec model.DailyRecord) {
	if _, ok := t.sink.(syncer.NoopSink); ok {
		return
	}
	t.pushes.Add(1)
	go func() {
		defer t.pushes.Done()
		ctx, cancel := context.WithTimeout(context.Background(), t.pushWait)
		defer cancel()
		if err := t.sink.Push(ctx, rec); err != nil {
			t.logger.Warn("sync: mirror push failed", "date", rec.Date.String(), "err", err)
		}
	}()
}
