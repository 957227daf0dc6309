package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sandeepkv93/wird/internal/clock"
	"github.com/sandeepkv93/wird/internal/model"
	"github.com/sandeepkv93/wird/internal/scheduler"
	"github.com/sandeepkv93/wird/internal/storage"
)

// LocalPlatform stores reminders in SQLite and arms them on an in-process
// engine that repeats each one daily.
type LocalPlatform struct {
	mu         sync.Mutex
	repo       storage.ReminderRepository
	engine     *scheduler.Engine
	clock      clock.Clock
	permission Permission
	canRequest bool
}

var _ Platform = (*LocalPlatform)(nil)

// NewLocalPlatform builds a platform with an initial permission. A request on
// an undetermined permission is granted when canRequest is set.
func NewLocalPlatform(repo storage.ReminderRepository, engine *scheduler.Engine, clk clock.Clock, permission Permission, canRequest bool) *LocalPlatform {
	if !permission.IsValid() {
		permission = PermissionUndetermined
	}
	return &LocalPlatform{repo: repo, engine: engine, clock: clk, permission: permission, canRequest: canRequest}
}

func (p *LocalPlatform) CancelAll(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.repo.DeleteAllReminders(ctx); err != nil {
		return err
	}
	if p.engine != nil {
		p.engine.CancelAll()
	}
	return nil
}

func (p *LocalPlatform) ScheduleDaily(ctx context.Context, hour, minute int, payload Payload) (string, error) {
	rem := model.Reminder{
		ID:      uuid.NewString(),
		Routine: payload.Routine,
		At:      model.TimeOfDay{Hour: hour, Minute: minute},
		Title:   payload.Title,
		Body:    payload.Body,
	}
	if err := rem.Validate(); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	row := storage.Reminder{
		ID:        rem.ID,
		Routine:   string(rem.Routine),
		Hour:      hour,
		Minute:    minute,
		Title:     rem.Title,
		Body:      rem.Body,
		CreatedAt: p.clock.Now(),
	}
	if err := p.repo.CreateReminder(ctx, row); err != nil {
		return "", fmt.Errorf("persist reminder: %w", err)
	}
	if err := p.arm(rem); err != nil {
		return "", err
	}
	return rem.ID, nil
}

func (p *LocalPlatform) Permission(context.Context) (Permission, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.permission, nil
}

func (p *LocalPlatform) RequestPermission(context.Context) (Permission, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.permission == PermissionUndetermined {
		if p.canRequest {
			p.permission = PermissionGranted
		} else {
			p.permission = PermissionDenied
		}
	}
	return p.permission, nil
}

func (p *LocalPlatform) Installed(ctx context.Context) ([]model.Reminder, error) {
	rows, err := p.repo.ListReminders(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Reminder, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Model())
	}
	return out, nil
}

// Restore arms the engine with every persisted reminder. It is called once at
// startup and returns how many reminders were armed.
func (p *LocalPlatform) Restore(ctx context.Context) (int, error) {
	reminders, err := p.Installed(ctx)
	if err != nil {
		return 0, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.engine == nil {
		return 0, nil
	}
	for _, rem := range reminders {
		p.engine.Cancel(rem.ID)
		if err := p.arm(rem); err != nil {
			return 0, err
		}
	}
	return len(reminders), nil
}

func (p *LocalPlatform) arm(rem model.Reminder) error {
	if p.engine == nil {
		return nil
	}
	return p.engine.Schedule(scheduler.ReminderEvent{
		ID:          rem.ID,
		Routine:     string(rem.Routine),
		Title:       rem.Title,
		Body:        rem.Body,
		TriggerAt:   NextFire(rem, p.clock.Now()),
		RepeatDaily: true,
	})
}

// NextFire returns when rem fires next relative to now.
func NextFire(rem model.Reminder, now time.Time) time.Time {
	return rem.At.NextAfter(now)
}
