package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandeepkv93/wird/internal/model"
	"github.com/sandeepkv93/wird/internal/storage"
)

type ReconcileResult struct {
	Inserted []model.Date
	// Skewed is set when the latest record is after today.
	Skewed bool
	Latest model.Date
}

// MissingDates lists every date after latest up to and including today.
func MissingDates(latest, today model.Date) []model.Date {
	out := make([]model.Date, 0)
	for d := latest.AddDays(1); !d.After(today); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

// Reconcile backfills zero records so the sequence is contiguous up to
// today. The batch commits atomically and skips dates that already exist,
// so a retry after a failure or a repeated run inserts nothing twice.
func (t *Tracker) Reconcile(ctx context.Context, today model.Date) (ReconcileResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reconcileLocked(ctx, today)
}

func (t *Tracker) reconcileLocked(ctx context.Context, today model.Date) (ReconcileResult, error) {
	now := t.clock.Now()
	latest, err := t.store.LatestRecord(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		inserted, insErr := t.store.InsertDate(ctx, today, now)
		if insErr != nil {
			return ReconcileResult{}, fmt.Errorf("%w: insert %s: %w", ErrPersistence, today, insErr)
		}
		res := ReconcileResult{Latest: today}
		if inserted {
			res.Inserted = []model.Date{today}
			t.mirrorDates(res.Inserted)
		}
		t.logger.Info("reconcile: first record", "date", today.String())
		return res, nil
	}
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("%w: latest record: %w", ErrPersistence, err)
	}

	switch {
	case latest.Date.Equal(today):
		return ReconcileResult{Latest: latest.Date}, nil
	case latest.Date.After(today):
		t.logger.Warn("reconcile: latest record is in the future, skipping backfill",
			"latest", latest.Date.String(), "today", today.String())
		return ReconcileResult{Skewed: true, Latest: latest.Date}, nil
	}

	missing := MissingDates(latest.Date, today)
	inserted, err := t.store.InsertDates(ctx, missing, now)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("%w: backfill %s..%s: %w", ErrPersistence, missing[0], today, err)
	}
	if skipped := len(missing) - len(inserted); skipped > 0 {
		t.logger.Debug("reconcile: skipped existing dates", "skipped", skipped, "err", ErrDuplicateDate)
	}
	t.logger.Info("reconcile: backfilled", "from", latest.Date.String(), "to", today.String(), "inserted", len(inserted))
	t.mirrorDates(inserted)
	return ReconcileResult{Inserted: inserted, Latest: today}, nil
}

func (t *Tracker) mirrorDates(dates []model.Date) {
	for _, d := range dates {
		t.mirror(model.DailyRecord{Date: d, UpdatedAt: t.clock.Now()})
	}
}
