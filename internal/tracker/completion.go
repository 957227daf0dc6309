package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/sandeepkv93/wird/internal/model"
	"github.com/sandeepkv93/wird/internal/storage"
)

// CompletionCache tracks which items of one routine were marked on one day.
type CompletionCache struct {
	Routine  model.RoutineType
	Date     model.Date
	Required int
	items    map[int]bool
}

func NewCompletionCache(routine model.RoutineType, date model.Date, required int) *CompletionCache {
	return &CompletionCache{Routine: routine, Date: date, Required: required, items: make(map[int]bool)}
}

// Mark sets the item and reports whether it changed.
func (c *CompletionCache) Mark(index int) (bool, error) {
	if index < 0 || index >= c.Required {
		return false, fmt.Errorf("%w: %s index %d out of range [0,%d)", ErrInvalidItem, c.Routine, index, c.Required)
	}
	if c.items[index] {
		return false, nil
	}
	c.items[index] = true
	return true, nil
}

func (c *CompletionCache) IsMarked(index int) bool {
	return c.items[index]
}

func (c *CompletionCache) Count() int {
	n := 0
	for _, done := range c.items {
		if done {
			n++
		}
	}
	return n
}

func (c *CompletionCache) Complete() bool {
	return c.Required > 0 && c.Count() == c.Required
}

// ValidFor reports whether the cache may still be written on today.
func (c *CompletionCache) ValidFor(today model.Date) bool {
	return c.Date.Equal(today)
}

func (c *CompletionCache) marked() []int {
	out := make([]int, 0, len(c.items))
	for idx, done := range c.items {
		if done {
			out = append(out, idx)
		}
	}
	sort.Ints(out)
	return out
}

type cacheState struct {
	Routine  model.RoutineType `json:"routine"`
	Date     model.Date        `json:"date"`
	Required int               `json:"required"`
	Items    []int             `json:"items"`
}

type cacheKey struct {
	routine model.RoutineType
	date    model.Date
}

func (k cacheKey) String() string {
	return fmt.Sprintf("completion:%s:%s", k.routine, k.date)
}

type PromotionStatus string

const (
	StatusRecorded    PromotionStatus = "recorded"
	StatusPromoted    PromotionStatus = "promoted"
	StatusAlreadyDone PromotionStatus = "already_done"
	StatusStaleDay    PromotionStatus = "stale_day"
)

type PromotionResult struct {
	Status   PromotionStatus
	Routine  model.RoutineType
	Date     model.Date
	Done     int
	Required int
	Streak   int
}

// Err maps a stale-day result onto ErrStaleDay.
func (r PromotionResult) Err() error {
	if r.Status == StatusStaleDay {
		return fmt.Errorf("%w: %s", ErrStaleDay, r.Date)
	}
	return nil
}

// Progress is a read-only view of a routine's cache for the UI.
type Progress struct {
	Routine  model.RoutineType
	Date     model.Date
	Done     int
	Required int
	Marked   []bool
	DayDone  bool
}

// MarkItemComplete records one item of routine on date. Once every item of
// the routine is marked the day's flag is set and listeners receive a fresh
// snapshot. A date other than today is rejected with StatusStaleDay.
func (t *Tracker) MarkItemComplete(ctx context.Context, routine model.RoutineType, date model.Date, index int) (PromotionResult, error) {
	if !routine.IsValid() {
		return PromotionResult{}, fmt.Errorf("%w: %w", ErrInvalidItem, model.ErrInvalidRoutine)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	today := t.Today()
	res := PromotionResult{Routine: routine, Date: date}
	if !date.Equal(today) {
		t.logger.Warn("completion: dropping stale write", "routine", string(routine), "date", date.String(), "today", today.String())
		res.Status = StatusStaleDay
		return res, nil
	}

	cache, err := t.cacheFor(ctx, routine, today)
	if err != nil {
		return res, err
	}
	changed, err := cache.Mark(index)
	if err != nil {
		return res, err
	}
	if changed {
		if err := t.saveCache(ctx, cache); err != nil {
			return res, err
		}
	}
	res.Status = StatusRecorded
	res.Done = cache.Count()
	res.Required = cache.Required
	if !cache.Complete() {
		return res, nil
	}

	promoted, err := t.promoteLocked(ctx, routine, today)
	if err != nil {
		return res, err
	}
	if promoted {
		res.Status = StatusPromoted
	} else {
		res.Status = StatusAlreadyDone
	}
	snap, err := t.snapshotLocked(ctx)
	if err != nil {
		t.logger.Warn("completion: snapshot after promotion failed", "err", err)
		return res, nil
	}
	res.Streak = snap.Streak
	t.publish(snap)
	return res, nil
}

// Progress reports the marked items of routine for date. Dates other than
// today always report an empty cache.
func (t *Tracker) Progress(ctx context.Context, routine model.RoutineType, date model.Date) (Progress, error) {
	r, err := t.source.Routine(routine)
	if err != nil {
		return Progress{}, fmt.Errorf("%w: %w", ErrInvalidItem, err)
	}
	out := Progress{Routine: routine, Date: date, Required: r.RequiredCount(), Marked: make([]bool, r.RequiredCount())}

	t.mu.Lock()
	defer t.mu.Unlock()

	if rec, err := t.store.GetRecord(ctx, date); err == nil {
		out.DayDone = rec.Done(routine)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return out, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if !date.Equal(t.Today()) {
		return out, nil
	}
	cache, err := t.cacheFor(ctx, routine, date)
	if err != nil {
		return out, err
	}
	for _, idx := range cache.marked() {
		out.Marked[idx] = true
	}
	out.Done = cache.Count()
	return out, nil
}

// RetryPending re-attempts promotion for today's caches that are already
// complete, covering a promotion write that failed earlier.
func (t *Tracker) RetryPending(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	today := t.Today()
	promoted := 0
	for _, routine := range model.RoutineTypes {
		cache, err := t.cacheFor(ctx, routine, today)
		if err != nil {
			return promoted, err
		}
		if !cache.Complete() {
			continue
		}
		ok, err := t.promoteLocked(ctx, routine, today)
		if err != nil {
			return promoted, err
		}
		if ok {
			promoted++
		}
	}
	if promoted > 0 {
		if snap, err := t.snapshotLocked(ctx); err == nil {
			t.publish(snap)
		}
	}
	return promoted, nil
}

// promoteLocked sets the routine flag on today's record, creating the record
// when gap filling has not run yet. It reports false if the flag was set.
func (t *Tracker) promoteLocked(ctx context.Context, routine model.RoutineType, today model.Date) (bool, error) {
	now := t.clock.Now()
	rec, err := t.store.GetRecord(ctx, today)
	if errors.Is(err, storage.ErrNotFound) {
		if _, insErr := t.store.InsertDate(ctx, today, now); insErr != nil {
			return false, fmt.Errorf("%w: insert %s: %w", ErrPersistence, today, insErr)
		}
		rec = model.DailyRecord{Date: today}
	} else if err != nil {
		return false, fmt.Errorf("%w: get %s: %w", ErrPersistence, today, err)
	}
	if rec.Done(routine) {
		return false, nil
	}
	if err := t.store.SetFlag(ctx, today, routine, true, now); err != nil {
		return false, fmt.Errorf("%w: promote %s %s: %w", ErrPersistence, routine, today, err)
	}
	t.logger.Info("completion: routine promoted", "routine", string(routine), "date", today.String())

	if updated, err := t.store.GetRecord(ctx, today); err == nil {
		t.mirror(updated)
	}
	return true, nil
}

// cacheFor returns the cache for (routine, today), loading it from the key
// value store on first use. Caches for earlier days are discarded.
func (t *Tracker) cacheFor(ctx context.Context, routine model.RoutineType, today model.Date) (*CompletionCache, error) {
	r, err := t.source.Routine(routine)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidItem, err)
	}
	key := cacheKey{routine: routine, date: today}
	if c, ok := t.caches[key]; ok && c.Required == r.RequiredCount() {
		return c, nil
	}
	for k := range t.caches {
		if k.routine == routine && !k.date.Equal(today) {
			delete(t.caches, k)
			if err := t.kv.DeleteValue(ctx, k.String()); err != nil {
				t.logger.Debug("completion: drop stale cache failed", "key", k.String(), "err", err)
			}
		}
	}

	cache := NewCompletionCache(routine, today, r.RequiredCount())
	raw, err := t.kv.GetValue(ctx, key.String())
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("%w: load cache %s: %w", ErrPersistence, key, err)
	default:
		var state cacheState
		if jsonErr := json.Unmarshal([]byte(raw), &state); jsonErr != nil {
			t.logger.Warn("completion: ignoring corrupt cache", "key", key.String(), "err", jsonErr)
			break
		}
		if !state.Date.Equal(today) || state.Routine != routine || state.Required != cache.Required {
			t.logger.Info("completion: discarding outdated cache", "key", key.String())
			break
		}
		for _, idx := range state.Items {
			_, _ = cache.Mark(idx)
		}
	}
	t.caches[key] = cache
	return cache, nil
}

func (t *Tracker) saveCache(ctx context.Context, c *CompletionCache) error {
	raw, err := json.Marshal(cacheState{Routine: c.Routine, Date: c.Date, Required: c.Required, Items: c.marked()})
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	key := cacheKey{routine: c.Routine, date: c.Date}
	if err := t.kv.SetValue(ctx, key.String(), string(raw)); err != nil {
		return fmt.Errorf("%w: save cache %s: %w", ErrPersistence, key, err)
	}
	return nil
}
