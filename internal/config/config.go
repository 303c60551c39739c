package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"

	fileName = "config.yaml"
)

// Config is the user-level configuration in config.yaml.
type Config struct {
	TaskTextDebounce Duration    `yaml:"task_text_debounce,omitempty"`
	TitleDebounce    Duration    `yaml:"title_debounce,omitempty"`
	LogLevel         string      `yaml:"log_level,omitempty"`
	Store            StoreConfig `yaml:"store"`
}

type StoreConfig struct {
	Backend     string `yaml:"backend,omitempty"` // "sqlite" (default) or "redis"
	RedisURL    string `yaml:"redis_url,omitempty"`
	RedisPrefix string `yaml:"redis_prefix,omitempty"`
	BoardFile   string `yaml:"board_file,omitempty"`
}

// Duration reads Go duration strings ("3s", "750ms") from YAML.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*d = Duration(v)
	return nil
}

// ValidationError reports a config field with an unusable value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func Default() Config {
	return Config{
		TaskTextDebounce: Duration(3 * time.Second),
		TitleDebounce:    Duration(time.Second),
		LogLevel:         "info",
		Store: StoreConfig{
			Backend:     BackendSQLite,
			RedisPrefix: "kanban",
			BoardFile:   ".kanban.json",
		},
	}
}

// applyDefaults fills fields left empty in the file.
func (c *Config) applyDefaults() {
	d := Default()
	if c.TaskTextDebounce == 0 {
		c.TaskTextDebounce = d.TaskTextDebounce
	}
	if c.TitleDebounce == 0 {
		c.TitleDebounce = d.TitleDebounce
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = d.LogLevel
	}
	if strings.TrimSpace(c.Store.Backend) == "" {
		c.Store.Backend = d.Store.Backend
	}
	if strings.TrimSpace(c.Store.RedisPrefix) == "" {
		c.Store.RedisPrefix = d.Store.RedisPrefix
	}
	if strings.TrimSpace(c.Store.BoardFile) == "" {
		c.Store.BoardFile = d.Store.BoardFile
	}
}

func (c Config) Validate() error {
	if c.TaskTextDebounce < 0 {
		return ValidationError{Field: "task_text_debounce", Reason: "must not be negative"}
	}
	if c.TitleDebounce < 0 {
		return ValidationError{Field: "title_debounce", Reason: "must not be negative"}
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return ValidationError{Field: "log_level", Reason: err.Error()}
	}
	switch c.Store.Backend {
	case BackendSQLite:
	case BackendRedis:
		if strings.TrimSpace(c.Store.RedisURL) == "" {
			return ValidationError{Field: "store.redis_url", Reason: "required when store.backend is redis"}
		}
	default:
		return ValidationError{Field: "store.backend", Reason: fmt.Sprintf("unknown backend %q (must be %q or %q)", c.Store.Backend, BackendSQLite, BackendRedis)}
	}
	bf := c.Store.BoardFile
	if bf != filepath.Base(bf) || bf == "." || bf == ".." {
		return ValidationError{Field: "store.board_file", Reason: "must be a plain file name"}
	}
	return nil
}

func Dir() (string, error) {
	// Keeps unit tests from touching the real user config.
	if v := strings.TrimSpace(os.Getenv("KANBAN_CONFIG_DIR")); v != "" {
		return v, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "kanban"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads config.yaml from Dir. A missing file yields Default().
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(path)
}

func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "config.yaml.*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
