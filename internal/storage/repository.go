package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sandeepkv93/wird/internal/model"
)

var (
	ErrNotFound  = errors.New("storage: not found")
	ErrFlagReset = errors.New("storage: completed flag cannot be reset")
)

// RecordRepository is the durable table of one record per calendar date.
type RecordRepository interface {
	// ListRecords returns records in ascending date order.
	ListRecords(ctx context.Context, filter RecordListFilter) ([]model.DailyRecord, error)
	GetRecord(ctx context.Context, date model.Date) (model.DailyRecord, error)
	LatestRecord(ctx context.Context) (model.DailyRecord, error)
	// InsertDate creates a zero record and reports false when the date exists.
	InsertDate(ctx context.Context, date model.Date, at time.Time) (bool, error)
	// InsertDates inserts zero records atomically, skipping existing dates.
	InsertDates(ctx context.Context, dates []model.Date, at time.Time) ([]model.Date, error)
	SetFlag(ctx context.Context, date model.Date, routine model.RoutineType, value bool, at time.Time) error
	// MergeRecord inserts rec or ORs its flags into the existing row.
	MergeRecord(ctx context.Context, rec model.DailyRecord) (model.DailyRecord, error)
	Wipe(ctx context.Context) error
}

// KV is the local key-value cache.
type KV interface {
	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value string) error
	DeleteValue(ctx context.Context, key string) error
}

type ReminderRepository interface {
	CreateReminder(ctx context.Context, in Reminder) error
	ListReminders(ctx context.Context) ([]Reminder, error)
	DeleteAllReminders(ctx context.Context) (int, error)
}

type Repository interface {
	RecordRepository
	KV
	ReminderRepository
}
