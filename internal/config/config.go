package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"

	"github.com/julianstephens/habitforge/internal/constants"
	"github.com/julianstephens/habitforge/internal/logger"
	"github.com/julianstephens/habitforge/internal/utils"
)

// Config keeps runtime settings loaded from the TOML config file.
type Config struct {
	Timezone        string `toml:"timezone"`
	Database        string `toml:"database"`
	SweepSchedule   string `toml:"sweep_schedule"`
	SweepMaxRetries int    `toml:"sweep_max_retries"`
	DigestSchedule  string `toml:"digest_schedule"`
	MetricsAddr     string `toml:"metrics_addr"`
	Notifier        string `toml:"notifier"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Timezone:        constants.DefaultTimezone,
		Database:        constants.DefaultDBPath,
		SweepSchedule:   constants.DefaultSweepSchedule,
		SweepMaxRetries: constants.DefaultSweepMaxRetries,
		DigestSchedule:  constants.DefaultDigestSchedule,
		MetricsAddr:     constants.DefaultMetricsAddr,
		Notifier:        constants.DefaultNotifier,
	}
}

// Load reads the TOML file at path on top of the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	path, err := ExpandHome(path)
	if err != nil {
		return cfg, err
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("Config file not found, using defaults", "path", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	for _, key := range md.Undecoded() {
		logger.Warn("Unknown config key", "key", key.String(), "path", path)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	path, err := ExpandHome(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if strings.TrimSpace(cfg.Timezone) == "" {
		cfg.Timezone = def.Timezone
	}
	if strings.TrimSpace(cfg.Database) == "" {
		cfg.Database = def.Database
	}
	if strings.TrimSpace(cfg.SweepSchedule) == "" {
		cfg.SweepSchedule = def.SweepSchedule
	}
	if strings.TrimSpace(cfg.DigestSchedule) == "" {
		cfg.DigestSchedule = def.DigestSchedule
	}
	if cfg.SweepMaxRetries <= 0 {
		cfg.SweepMaxRetries = def.SweepMaxRetries
	}
	if strings.TrimSpace(cfg.Notifier) == "" {
		cfg.Notifier = def.Notifier
	}
}

// Validate checks values that cannot be corrected with a default.
func (c Config) Validate() error {
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid %s %q", constants.SettingTimezone, c.Timezone)
	}
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("%s cannot be empty", constants.SettingDatabase)
	}
	if c.SweepMaxRetries < 1 {
		return fmt.Errorf("invalid %s %d (must be at least 1)", constants.SettingSweepMaxRetries, c.SweepMaxRetries)
	}
	if c.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.MetricsAddr); err != nil {
			return fmt.Errorf("invalid %s %q: %w", constants.SettingMetricsAddr, c.MetricsAddr, err)
		}
	}
	if _, err := ParseSchedule(c.SweepSchedule); err != nil {
		return fmt.Errorf("invalid %s %q: %w", constants.SettingSweepSchedule, c.SweepSchedule, err)
	}
	if c.DigestEnabled() {
		if _, err := ParseSchedule(c.DigestSchedule); err != nil {
			return fmt.Errorf("invalid %s %q: %w", constants.SettingDigestSchedule, c.DigestSchedule, err)
		}
	}
	switch c.Notifier {
	case constants.NotifierLog, constants.NotifierTray:
	default:
		return fmt.Errorf("invalid %s %q (expected %q or %q)", constants.SettingNotifier, c.Notifier, constants.NotifierLog, constants.NotifierTray)
	}
	return nil
}

// DigestEnabled reports whether the daily open-habits digest should run.
func (c Config) DigestEnabled() bool {
	return c.DigestSchedule != constants.ScheduleOff
}

// ParseSchedule parses a six-field cron spec (seconds first) or a descriptor such as @daily.
func ParseSchedule(spec string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return parser.Parse(spec)
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	return utils.LoadLocation(c.Timezone)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
