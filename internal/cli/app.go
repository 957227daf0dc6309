package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sandeepkv93/wird/internal/clock"
	"github.com/sandeepkv93/wird/internal/config"
	"github.com/sandeepkv93/wird/internal/content"
	"github.com/sandeepkv93/wird/internal/reminder"
	"github.com/sandeepkv93/wird/internal/scheduler"
	"github.com/sandeepkv93/wird/internal/storage"
	"github.com/sandeepkv93/wird/internal/syncer"
	"github.com/sandeepkv93/wird/internal/tracker"
)

// app holds the services shared by every command.
type app struct {
	cfg     config.Config
	cfgPath string
	logger  *slog.Logger
	repo    *storage.SQLiteRepository
	catalog *content.Catalog
	clock   clock.Clock
	tracker *tracker.Tracker
}

func loadConfig(opts *rootOptions) (config.Config, string, error) {
	path := strings.TrimSpace(opts.configPath)
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Config{}, "", err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", err
	}
	cfg = config.FromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, "", err
	}
	return cfg, path, nil
}

// openApp opens the database and builds the tracker. Callers must Close it.
func openApp(opts *rootOptions, logOut io.Writer, trackerOpts ...tracker.Option) (*app, error) {
	cfg, path, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger := cfg.NewLogger(logOut)

	catalog, err := loadContent(cfg)
	if err != nil {
		return nil, err
	}
	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve db path: %w", err)
	}
	repo, err := storage.OpenSQLite(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	all := []tracker.Option{tracker.WithLogger(logger)}
	if cfg.Sync.URL != "" {
		sink, sinkErr := syncer.NewHTTPSink(cfg.Sync.URL, cfg.Sync.DeviceID, cfg.SyncTimeout())
		if sinkErr != nil {
			_ = repo.Close()
			return nil, sinkErr
		}
		all = append(all, tracker.WithSink(sink))
	}
	all = append(all, trackerOpts...)

	clk := clock.System{}
	return &app{
		cfg:     cfg,
		cfgPath: path,
		logger:  logger,
		repo:    repo,
		catalog: catalog,
		clock:   clk,
		tracker: tracker.New(repo, repo, catalog, clk, all...),
	}, nil
}

func loadContent(cfg config.Config) (*content.Catalog, error) {
	if cfg.Content.Path == "" {
		return content.Default()
	}
	return content.LoadFile(cfg.Content.Path)
}

// Close waits for pending mirror pushes before closing the database.
func (a *app) Close() error {
	a.tracker.Flush()
	return a.repo.Close()
}

func (a *app) saveConfig(cfg config.Config) error {
	if err := config.Save(a.cfgPath, cfg); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// reminders builds the reminder scheduler on the local platform. engine may
// be nil when nothing in this process delivers reminders.
func (a *app) reminders(engine *scheduler.Engine) (*reminder.LocalPlatform, *reminder.Scheduler) {
	perm := reminder.PermissionFromSetting(a.cfg.Reminders.Notifications)
	platform := reminder.NewLocalPlatform(a.repo, engine, a.clock, perm, reminder.DesktopAvailable())
	return platform, reminder.NewScheduler(platform, a.logger)
}

// reschedule installs both reminders from config and records the permission
// answer the first time it is given.
func (a *app) reschedule(ctx context.Context, platform *reminder.LocalPlatform, s *reminder.Scheduler) error {
	morning, err := a.cfg.MorningTime()
	if err != nil {
		return err
	}
	evening, err := a.cfg.EveningTime()
	if err != nil {
		return err
	}
	schedErr := s.Reschedule(ctx, morning, evening)
	if a.cfg.Reminders.Notifications == nil {
		if perm, permErr := platform.Permission(ctx); permErr == nil && perm != reminder.PermissionUndetermined {
			granted := perm == reminder.PermissionGranted
			cfg := a.cfg
			cfg.Reminders.Notifications = &granted
			if err := a.saveConfig(cfg); err != nil {
				a.logger.Warn("save notification permission failed", "err", err)
			}
		}
	}
	return schedErr
}

func notifier() reminder.Notifier {
	if reminder.DesktopAvailable() {
		return reminder.ExecNotifier{}
	}
	return reminder.NoopNotifier{}
}
