// Package config loads server configuration: baked-in defaults, overlaid
// by an optional YAML file, overlaid by TYPETRACE_* environment variables
// (TYPETRACE_HTTP_ADDR, TYPETRACE_DB_PATH, ...).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	HTTP   HTTPConfig   `mapstructure:"http"`
	DB     DBConfig     `mapstructure:"db"`
	Static StaticConfig `mapstructure:"static"`
	Exam   ExamConfig   `mapstructure:"exam"`
	Replay ReplayConfig `mapstructure:"replay"`
}

// HTTPConfig configures the listener and CORS allow list.
type HTTPConfig struct {
	Addr                string   `mapstructure:"addr"`
	ReadTimeoutSeconds  int      `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `mapstructure:"write_timeout_seconds"`
	IdleTimeoutSeconds  int      `mapstructure:"idle_timeout_seconds"`
	AllowedOrigins      []string `mapstructure:"allowed_origins"`
}

// ReadTimeout returns the read timeout as a duration.
func (c HTTPConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the write timeout as a duration.
func (c HTTPConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// IdleTimeout returns the idle timeout as a duration.
func (c HTTPConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSeconds) * time.Second
}

// DBConfig locates the SQLite database.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// StaticConfig configures static UI file serving. Empty dir disables it.
type StaticConfig struct {
	Dir string `mapstructure:"dir"`
}

// ExamConfig locates the CUE exam definitions. Empty dir disables the
// /exam endpoint and question metadata.
type ExamConfig struct {
	SpecsDir string `mapstructure:"specs_dir"`
}

// ReplayConfig bounds live replay behavior.
type ReplayConfig struct {
	DefaultSpeed float64 `mapstructure:"default_speed"`
	// MaxEventDelayMS caps every replay wait server-side so a hostile log
	// cannot hold a connection for hours.
	MaxEventDelayMS int64 `mapstructure:"max_event_delay_ms"`
}

// MaxEventDelay returns the per-event delay cap as a duration.
func (c ReplayConfig) MaxEventDelay() time.Duration {
	return time.Duration(c.MaxEventDelayMS) * time.Millisecond
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 15,
			IdleTimeoutSeconds:  60,
			AllowedOrigins:      []string{"http://localhost:8080", "http://127.0.0.1:8080"},
		},
		DB:     DBConfig{Path: "./typetrace.db"},
		Static: StaticConfig{Dir: ""},
		Exam:   ExamConfig{SpecsDir: ""},
		Replay: ReplayConfig{DefaultSpeed: 1.0, MaxEventDelayMS: 30_000},
	}
}

// Load reads configuration. With an empty path only defaults and
// environment overrides apply; with a path the file must exist and parse.
func Load(path string) (Config, error) {
	def := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("http.addr", def.HTTP.Addr)
	v.SetDefault("http.read_timeout_seconds", def.HTTP.ReadTimeoutSeconds)
	v.SetDefault("http.write_timeout_seconds", def.HTTP.WriteTimeoutSeconds)
	v.SetDefault("http.idle_timeout_seconds", def.HTTP.IdleTimeoutSeconds)
	v.SetDefault("http.allowed_origins", def.HTTP.AllowedOrigins)
	v.SetDefault("db.path", def.DB.Path)
	v.SetDefault("static.dir", def.Static.Dir)
	v.SetDefault("exam.specs_dir", def.Exam.SpecsDir)
	v.SetDefault("replay.default_speed", def.Replay.DefaultSpeed)
	v.SetDefault("replay.max_event_delay_ms", def.Replay.MaxEventDelayMS)

	v.SetEnvPrefix("TYPETRACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the loaded values for internal consistency.
func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("config: http.addr must not be empty")
	}
	if c.HTTP.ReadTimeoutSeconds <= 0 || c.HTTP.WriteTimeoutSeconds <= 0 || c.HTTP.IdleTimeoutSeconds <= 0 {
		return fmt.Errorf("config: http timeouts must be positive")
	}
	if c.DB.Path == "" {
		return fmt.Errorf("config: db.path must not be empty")
	}
	if c.Replay.DefaultSpeed <= 0 {
		return fmt.Errorf("config: replay.default_speed must be positive")
	}
	if c.Replay.MaxEventDelayMS < 0 {
		return fmt.Errorf("config: replay.max_event_delay_ms must not be negative")
	}
	return nil
}
