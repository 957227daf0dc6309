package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sandeepkv93/wird/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	// One connection keeps writes serialised and avoids SQLITE_BUSY between
	// the gap-fill transaction and promotion updates.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens the database at path, creating its directory, and
// applies migrations.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ListRecords(ctx context.Context, filter RecordListFilter) ([]model.DailyRecord, error) {
	query := `SELECT date, morning_done, evening_done, updated_at FROM daily_records`
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if !filter.From.IsZero() {
		clauses = append(clauses, "date >= ?")
		args = append(args, filter.From.String())
	}
	if !filter.To.IsZero() {
		clauses = append(clauses, "date <= ?")
		args = append(args, filter.To.String())
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY date ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.DailyRecord, 0)
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetRecord(ctx context.Context, date model.Date) (model.DailyRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT date, morning_done, evening_done, updated_at
		FROM daily_records WHERE date = ?`, date.String())
	return scanRecordRow(row)
}

func (r *SQLiteRepository) LatestRecord(ctx context.Context) (model.DailyRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT date, morning_done, evening_done, updated_at
		FROM daily_records ORDER BY date DESC LIMIT 1`)
	return scanRecordRow(row)
}

func (r *SQLiteRepository) InsertDate(ctx context.Context, date model.Date, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO daily_records (date, morning_done, evening_done, updated_at)
		VALUES (?, 0, 0, ?)
		ON CONFLICT(date) DO NOTHING`,
		date.String(), mustTime(at),
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *SQLiteRepository) InsertDates(ctx context.Context, dates []model.Date, at time.Time) ([]model.Date, error) {
	if len(dates) == 0 {
		return []model.Date{}, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_records (date, morning_done, evening_done, updated_at)
		VALUES (?, 0, 0, ?)
		ON CONFLICT(date) DO NOTHING`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := make([]model.Date, 0, len(dates))
	stamp := mustTime(at)
	for _, d := range dates {
		res, execErr := stmt.ExecContext(ctx, d.String(), stamp)
		if execErr != nil {
			return nil, fmt.Errorf("insert %s: %w", d, execErr)
		}
		affected, affErr := res.RowsAffected()
		if affErr != nil {
			return nil, affErr
		}
		if affected > 0 {
			inserted = append(inserted, d)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func (r *SQLiteRepository) SetFlag(ctx context.Context, date model.Date, routine model.RoutineType, value bool, at time.Time) error {
	column, err := flagColumn(routine)
	if err != nil {
		return err
	}
	if !value {
		return fmt.Errorf("%w: %s %s", ErrFlagReset, date, routine)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE daily_records SET `+column+` = 1, updated_at = ? WHERE date = ?`,
		mustTime(at), date.String(),
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// MergeRecord ORs the flags into any existing row. updated_at only moves
// forward, so an older push cannot rewind it.
func (r *SQLiteRepository) MergeRecord(ctx context.Context, rec model.DailyRecord) (model.DailyRecord, error) {
	if err := rec.Validate(); err != nil {
		return model.DailyRecord{}, err
	}
	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO daily_records (date, morning_done, evening_done, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			morning_done = MAX(morning_done, excluded.morning_done),
			evening_done = MAX(evening_done, excluded.evening_done),
			updated_at = CASE
				WHEN julianday(excluded.updated_at) > julianday(updated_at) THEN excluded.updated_at
				ELSE updated_at
			END`,
		rec.Date.String(), boolInt(rec.MorningDone), boolInt(rec.EveningDone), mustTime(updated),
	)
	if err != nil {
		return model.DailyRecord{}, err
	}
	return r.GetRecord(ctx, rec.Date)
}

func (r *SQLiteRepository) Wipe(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, table := range []string{"daily_records", "kv"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("wipe %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) GetValue(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (r *SQLiteRepository) SetValue(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, mustTime(time.Now()),
	)
	return err
}

func (r *SQLiteRepository) DeleteValue(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

func (r *SQLiteRepository) CreateReminder(ctx context.Context, in Reminder) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reminders (id, routine, hour, minute, title, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Routine, in.Hour, in.Minute, in.Title, in.Body, mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) ListReminders(ctx context.Context) ([]Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, routine, hour, minute, title, body, created_at
		FROM reminders ORDER BY hour ASC, minute ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Reminder, 0)
	for rows.Next() {
		item, scanErr := scanReminder(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteAllReminders(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminders`)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func flagColumn(routine model.RoutineType) (string, error) {
	switch routine {
	case model.RoutineMorning:
		return "morning_done", nil
	case model.RoutineEvening:
		return "evening_done", nil
	default:
		return "", fmt.Errorf("%w: %q", model.ErrInvalidRoutine, routine)
	}
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecordRow(s scanner) (model.DailyRecord, error) {
	rec, err := scanRecord(s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.DailyRecord{}, ErrNotFound
		}
		return model.DailyRecord{}, err
	}
	return rec, nil
}

func scanRecord(s scanner) (model.DailyRecord, error) {
	var out model.DailyRecord
	var date string
	var morning, evening int
	var updated string
	if err := s.Scan(&date, &morning, &evening, &updated); err != nil {
		return model.DailyRecord{}, err
	}
	d, err := model.ParseDate(date)
	if err != nil {
		return model.DailyRecord{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return model.DailyRecord{}, err
	}
	out.Date = d
	out.MorningDone = morning == 1
	out.EveningDone = evening == 1
	out.UpdatedAt = updatedAt
	return out, nil
}

func scanReminder(s scanner) (Reminder, error) {
	var out Reminder
	var created string
	if err := s.Scan(&out.ID, &out.Routine, &out.Hour, &out.Minute, &out.Title, &out.Body, &created); err != nil {
		return Reminder{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Reminder{}, err
	}
	out.CreatedAt = createdAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
