// Package reminder keeps exactly one daily reminder per routine installed on
// a notification platform.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sandeepkv93/wird/internal/model"
)

var ErrPermissionDenied = errors.New("reminder: notification permission denied")

type Permission string

const (
	PermissionGranted      Permission = "granted"
	PermissionDenied       Permission = "denied"
	PermissionUndetermined Permission = "undetermined"
)

func (p Permission) IsValid() bool {
	switch p {
	case PermissionGranted, PermissionDenied, PermissionUndetermined:
		return true
	default:
		return false
	}
}

// PermissionFromSetting maps an optional on/off setting to a permission.
func PermissionFromSetting(enabled *bool) Permission {
	switch {
	case enabled == nil:
		return PermissionUndetermined
	case *enabled:
		return PermissionGranted
	default:
		return PermissionDenied
	}
}

// Payload names the routine a reminder opens.
type Payload struct {
	Routine model.RoutineType
	Title   string
	Body    string
}

func DefaultPayload(routine model.RoutineType) Payload {
	switch routine {
	case model.RoutineMorning:
		return Payload{Routine: routine, Title: "Morning remembrance", Body: "Time for your morning routine."}
	default:
		return Payload{Routine: routine, Title: "Evening remembrance", Body: "Time for your evening routine."}
	}
}

// Platform is the notification backend reminders are installed on.
type Platform interface {
	CancelAll(ctx context.Context) error
	ScheduleDaily(ctx context.Context, hour, minute int, payload Payload) (string, error)
	Permission(ctx context.Context) (Permission, error)
	RequestPermission(ctx context.Context) (Permission, error)
	Installed(ctx context.Context) ([]model.Reminder, error)
}

type Scheduler struct {
	platform Platform
	logger   *slog.Logger
}

func NewScheduler(platform Platform, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{platform: platform, logger: logger.With("component", "reminder")}
}

// Reschedule replaces every installed reminder with one daily reminder per
// routine. Calling it repeatedly always leaves exactly two reminders. When
// permission is denied all reminders are removed and ErrPermissionDenied is
// returned.
func (s *Scheduler) Reschedule(ctx context.Context, morning, evening model.TimeOfDay) error {
	for _, at := range []model.TimeOfDay{morning, evening} {
		if err := at.Validate(); err != nil {
			return err
		}
	}

	perm, err := s.platform.Permission(ctx)
	if err != nil {
		return fmt.Errorf("reminder: query permission: %w", err)
	}
	if perm == PermissionUndetermined {
		perm, err = s.platform.RequestPermission(ctx)
		if err != nil {
			return fmt.Errorf("reminder: request permission: %w", err)
		}
		s.logger.Info("reschedule: permission requested", "result", string(perm))
	}
	if perm != PermissionGranted {
		if err := s.platform.CancelAll(ctx); err != nil {
			s.logger.Warn("reschedule: cancel after denial failed", "err", err)
		}
		return ErrPermissionDenied
	}

	if err := s.platform.CancelAll(ctx); err != nil {
		return fmt.Errorf("reminder: cancel existing: %w", err)
	}
	plan := []struct {
		routine model.RoutineType
		at      model.TimeOfDay
	}{
		{model.RoutineMorning, morning},
		{model.RoutineEvening, evening},
	}
	for _, p := range plan {
		id, err := s.platform.ScheduleDaily(ctx, p.at.Hour, p.at.Minute, DefaultPayload(p.routine))
		if err != nil {
			if cancelErr := s.platform.CancelAll(ctx); cancelErr != nil {
				s.logger.Error("reschedule: rollback failed", "err", cancelErr)
			}
			return fmt.Errorf("reminder: schedule %s at %s: %w", p.routine, p.at, err)
		}
		s.logger.Info("reschedule: installed", "routine", string(p.routine), "at", p.at.String(), "id", id)
	}
	return nil
}

func (s *Scheduler) Installed(ctx context.Context) ([]model.Reminder, error) {
	return s.platform.Installed(ctx)
}
