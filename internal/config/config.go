// Package config loads taskmaster settings from an optional YAML file with
// TASKMASTER_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/abatilo/taskmaster/internal/calendar"
	tmerrors "github.com/abatilo/taskmaster/internal/errors"
	"github.com/abatilo/taskmaster/internal/task"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"

	defaultDataDir = "~/.taskmaster"
	redacted       = "<redacted>"
)

type Config struct {
	DataDir  string         `yaml:"data_dir" env:"TASKMASTER_DATA_DIR" env-default:"~/.taskmaster"`
	Storage  StorageConfig  `yaml:"storage"`
	AI       AIConfig       `yaml:"ai"`
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
	Calendar CalendarConfig `yaml:"calendar"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

type StorageConfig struct {
	Backend     string `yaml:"backend" env:"TASKMASTER_STORAGE_BACKEND" env-default:"file"`
	Key         string `yaml:"key" env:"TASKMASTER_STORAGE_KEY" env-default:"taskmaster_pro_tasks"`
	RedisURL    string `yaml:"redis_url" env:"TASKMASTER_REDIS_URL" env-default:"redis://localhost:6379/0"`
	RedisPrefix string `yaml:"redis_prefix" env:"TASKMASTER_REDIS_PREFIX" env-default:"taskmaster:"`
}

type AIConfig struct {
	APIKey      string        `yaml:"api_key" env:"TASKMASTER_AI_API_KEY"`
	AccessToken string        `yaml:"access_token" env:"TASKMASTER_AI_ACCESS_TOKEN"`
	Model       string        `yaml:"model" env:"TASKMASTER_AI_MODEL" env-default:"gemini-3-flash-preview"`
	Timeout     time.Duration `yaml:"timeout" env:"TASKMASTER_AI_TIMEOUT" env-default:"30s"`
	Endpoint    string        `yaml:"endpoint" env:"TASKMASTER_AI_ENDPOINT"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"TASKMASTER_LOG_LEVEL" env-default:"warn"`
	Format string `yaml:"format" env:"TASKMASTER_LOG_FORMAT" env-default:"text"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" env:"TASKMASTER_SERVER_ADDR" env-default:":8080"`
}

type CalendarConfig struct {
	WeekStart string `yaml:"week_start" env:"TASKMASTER_WEEK_START" env-default:"sunday"`
}

type DefaultsConfig struct {
	Priority string `yaml:"priority" env:"TASKMASTER_DEFAULT_PRIORITY" env-default:"Low"`
	Category string `yaml:"category" env:"TASKMASTER_DEFAULT_CATEGORY" env-default:"Personal"`
}

// DefaultPath returns the config file location used when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "taskmaster", "config.yaml")
}

// Load reads the config file at path, then applies environment overrides
// and defaults. An empty path means DefaultPath, which may be absent; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := new(Config)
	var err error
	switch _, statErr := os.Stat(path); {
	case path != "" && statErr == nil:
		err = cleanenv.ReadConfig(path, cfg)
	case explicit:
		return nil, fmt.Errorf("config: %w", statErr)
	default:
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	cfg.DataDir = expandHome(cfg.DataDir)

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendRedis:
	default:
		return tmerrors.UnknownBackendError{Name: c.Storage.Backend}
	}
	if _, ok := calendar.ParseWeekday(c.Calendar.WeekStart); !ok {
		return fmt.Errorf("config: invalid calendar.week_start %q", c.Calendar.WeekStart)
	}
	if _, ok := task.ParsePriority(c.Defaults.Priority); !ok {
		return tmerrors.InvalidPriorityError{Value: c.Defaults.Priority}
	}
	if _, ok := task.ParseCategory(c.Defaults.Category); !ok {
		return tmerrors.InvalidCategoryError{Value: c.Defaults.Category}
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: invalid log.format %q", c.Log.Format)
	}
	if c.AI.Timeout < 0 {
		return errors.New("config: ai.timeout must not be negative")
	}
	return nil
}

// WeekStart returns the first column of the calendar grid.
func (c *Config) WeekStart() time.Weekday {
	d, ok := calendar.ParseWeekday(c.Calendar.WeekStart)
	if !ok {
		return time.Sunday
	}
	return d
}

// DefaultPriority returns the priority given to tasks created without one.
func (c *Config) DefaultPriority() task.Priority {
	p, _ := task.ParsePriority(c.Defaults.Priority)
	return p
}

// DefaultCategory returns the category given to tasks created without one.
func (c *Config) DefaultCategory() task.Category {
	cat, _ := task.ParseCategory(c.Defaults.Category)
	return cat
}

// AIEnabled reports whether any model credential is configured.
func (c *Config) AIEnabled() bool {
	return c.AI.APIKey != "" || c.AI.AccessToken != ""
}

// YAML renders the effective configuration with secrets redacted.
func (c *Config) YAML() (string, error) {
	shown := *c
	if shown.AI.APIKey != "" {
		shown.AI.APIKey = redacted
	}
	if shown.AI.AccessToken != "" {
		shown.AI.AccessToken = redacted
	}
	data, err := yaml.Marshal(&shown)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NewLogger builds a logrus logger writing to w at the configured level and format.
func (l LogConfig) NewLogger(w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	logger := log.New()
	logger.SetOutput(w)
	logger.SetLevel(level)
	if l.Format == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

func expandHome(path string) string {
	if path == "" {
		path = defaultDataDir
	}
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
