package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sandeepkv93/wird/internal/model"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds all wird configuration.
type Config struct {
	Profile   ProfileConfig   `toml:"profile"`
	Reminders RemindersConfig `toml:"reminders"`
	Database  DatabaseConfig  `toml:"database"`
	Server    ServerConfig    `toml:"server"`
	Sync      SyncConfig      `toml:"sync"`
	Content   ContentConfig   `toml:"content"`
	Log       LogConfig       `toml:"log"`
}

type ProfileConfig struct {
	Name  string `toml:"name"`
	Theme string `toml:"theme"` // "dark" or "light"
}

type RemindersConfig struct {
	Morning string `toml:"morning"` // HH:MM
	Evening string `toml:"evening"` // HH:MM
	// Notifications is unset until the user answers the permission prompt.
	Notifications   *bool `toml:"notifications,omitempty"`
	SchedulerBuffer int   `toml:"scheduler_buffer"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type ServerConfig struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
}

type SyncConfig struct {
	URL      string `toml:"url"`
	DeviceID string `toml:"device_id"`
	Timeout  int    `toml:"timeout"` // seconds
}

type ContentConfig struct {
	Path string `toml:"path"` // optional routine YAML override
}

type LogConfig struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

// Default returns a Config with sensible defaults. Empty paths are resolved
// at runtime under the user's data directory.
func Default() Config {
	return Config{
		Profile: ProfileConfig{Theme: "dark"},
		Reminders: RemindersConfig{
			Morning:         model.DefaultMorningTime.String(),
			Evening:         model.DefaultEveningTime.String(),
			SchedulerBuffer: 64,
		},
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37778,
		},
		Sync: SyncConfig{Timeout: 10},
		Log:  LogConfig{Level: "info"},
	}
}

// Load reads the TOML file at path over the defaults. A missing file is not
// an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Save writes cfg to path, creating the directory.
func Save(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("config: create: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		_ = f.Close()
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// FromEnv applies WIRD_* environment overrides to base.
func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvString("WIRD_DB_PATH"); ok {
		cfg.Database.Path = v
	}
	if v, ok := getEnvString("WIRD_MORNING_TIME"); ok {
		cfg.Reminders.Morning = v
	}
	if v, ok := getEnvString("WIRD_EVENING_TIME"); ok {
		cfg.Reminders.Evening = v
	}
	if v, ok := getEnvBool("WIRD_NOTIFICATIONS"); ok {
		cfg.Reminders.Notifications = &v
	}
	if v, ok := getEnvInt("WIRD_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.Reminders.SchedulerBuffer = v
	}
	if v, ok := getEnvString("WIRD_SYNC_URL"); ok {
		cfg.Sync.URL = v
	}
	if v, ok := getEnvString("WIRD_LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := getEnvString("WIRD_NAME"); ok {
		cfg.Profile.Name = v
	}
	if v, ok := getEnvString("WIRD_THEME"); ok {
		cfg.Profile.Theme = v
	}
	return cfg
}

func (c Config) Validate() error {
	if _, err := c.MorningTime(); err != nil {
		return fmt.Errorf("%w: reminders.morning: %w", ErrInvalidConfig, err)
	}
	if _, err := c.EveningTime(); err != nil {
		return fmt.Errorf("%w: reminders.evening: %w", ErrInvalidConfig, err)
	}
	switch c.Profile.Theme {
	case "", "dark", "light":
	default:
		return fmt.Errorf("%w: profile.theme %q", ErrInvalidConfig, c.Profile.Theme)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d", ErrInvalidConfig, c.Server.Port)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// MorningTime returns the configured morning reminder, defaulting to 05:30.
func (c Config) MorningTime() (model.TimeOfDay, error) {
	return timeOrDefault(c.Reminders.Morning, model.DefaultMorningTime)
}

// EveningTime returns the configured evening reminder, defaulting to 16:30.
func (c Config) EveningTime() (model.TimeOfDay, error) {
	return timeOrDefault(c.Reminders.Evening, model.DefaultEveningTime)
}

// ListenAddr returns the bind:port address string.
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

func (c Config) SyncTimeout() time.Duration {
	if c.Sync.Timeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Sync.Timeout) * time.Second
}

// DBPath resolves the database path, falling back to the data directory.
func (c Config) DBPath() (string, error) {
	if c.Database.Path != "" {
		return expandHome(c.Database.Path)
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "wird.db"), nil
}

func (c Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return expandHome(c.Log.Path)
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "wird.log"), nil
}

// DefaultPath is ~/.config/wird/config.toml on Linux.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve config dir: %w", err)
	}
	return filepath.Join(dir, "wird", "config.toml"), nil
}

// DataDir is ~/.local/share/wird unless XDG_DATA_HOME is set.
func DataDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" {
		return filepath.Join(xdg, "wird"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home: %w", err)
	}
	return filepath.Join(home, ".local", "share", "wird"), nil
}

func timeOrDefault(raw string, def model.TimeOfDay) (model.TimeOfDay, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	return model.ParseTimeOfDay(raw)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
