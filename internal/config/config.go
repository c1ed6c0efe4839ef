package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	PidFile        string        `yaml:"pid_file"`
	LogFile        string        `yaml:"log_file"`
	BasePath       string        `yaml:"base_path"`
	CommandTimeout time.Duration `yaml:"command_timeout"`

	Process ProcessConfig `yaml:"process"`
	Calls   CallsConfig   `yaml:"calls"`
	History HistoryConfig `yaml:"history"`

	// Parsed from command line (not YAML)
	ConfigPath string `yaml:"-"`
}

// ProcessConfig configures the process/INVITE dashboard.
type ProcessConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Listen      string        `yaml:"listen"`
	Interval    time.Duration `yaml:"interval"`
	ProcessName string        `yaml:"process_name"`
	CPUSample   time.Duration `yaml:"cpu_sample"`
	LogPath     string        `yaml:"log_path"`
	Markers     []string      `yaml:"markers"`
	History     int           `yaml:"history"`
}

// CallsConfig configures the CLI statistics dashboard.
type CallsConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Listen      string        `yaml:"listen"`
	Interval    time.Duration `yaml:"interval"`
	AsteriskBin string        `yaml:"asterisk_bin"`
}

// HistoryConfig configures the optional sample database.
type HistoryConfig struct {
	Database       string `yaml:"database"`
	RetentionHours int    `yaml:"retention_hours"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		PidFile:        "astermon.pid",
		LogFile:        "astermon.log",
		BasePath:       "/",
		CommandTimeout: 4 * time.Second,
		Process: ProcessConfig{
			Enabled:     true,
			Listen:      "127.0.0.1:8050",
			Interval:    time.Second,
			ProcessName: "asterisk",
			CPUSample:   500 * time.Millisecond,
			LogPath:     "/var/log/asterisk/full",
			Markers:     []string{"INVITE", "180 Ringing", "200 OK"},
			History:     100,
		},
		Calls: CallsConfig{
			Enabled:     true,
			Listen:      "0.0.0.0:8051",
			Interval:    5 * time.Second,
			AsteriskBin: "asterisk",
		},
		History: HistoryConfig{
			RetentionHours: 24,
		},
		ConfigPath: "astermon.yaml",
	}
}

// Load reads configuration with priority: defaults < config file < env vars < flags.
// args are the command-line arguments with the program name and subcommand
// already stripped.
func Load(args []string) (*Config, error) {
	cfg := DefaultConfig()

	// 1) Pre-scan for -config so we know which file to read
	configPath, explicit := findConfigFlag(args)
	if configPath == "" {
		configPath = cfg.ConfigPath
	}

	// 2) YAML file; a missing default file is fine, a missing explicit one is not
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath, err)
		}
		log.Printf("[config] loaded %s", configPath)
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read %s: %w", configPath, err)
	}
	cfg.ConfigPath = configPath

	// 3) Environment variables override YAML
	applyEnv(cfg)

	// 4) Flags override everything
	fs := flag.NewFlagSet("astermon", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "Path to astermon.yaml")
	fs.StringVar(&cfg.Process.Listen, "process-listen", cfg.Process.Listen, "Process dashboard listen address (host:port)")
	fs.StringVar(&cfg.Calls.Listen, "calls-listen", cfg.Calls.Listen, "Calls dashboard listen address (host:port)")
	fs.StringVar(&cfg.History.Database, "db", cfg.History.Database, "SQLite history database path (empty disables history)")
	fs.StringVar(&cfg.BasePath, "base-path", cfg.BasePath, "Base URL path for reverse proxy")
	fs.StringVar(&cfg.PidFile, "pid-file", cfg.PidFile, "PID file path")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Log file path")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.BasePath = normalizeBasePath(cfg.BasePath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration can run.
func (c *Config) Validate() error {
	if !c.Process.Enabled && !c.Calls.Enabled {
		return errors.New("config: both dashboards are disabled")
	}
	if c.Process.Enabled {
		if c.Process.Listen == "" {
			return errors.New("config: process.listen is required")
		}
		if c.Process.Interval <= 0 {
			return errors.New("config: process.interval must be positive")
		}
		if c.Process.ProcessName == "" {
			return errors.New("config: process.process_name is required")
		}
	}
	if c.Calls.Enabled {
		if c.Calls.Listen == "" {
			return errors.New("config: calls.listen is required")
		}
		if c.Calls.Interval <= 0 {
			return errors.New("config: calls.interval must be positive")
		}
	}
	if c.Process.Enabled && c.Calls.Enabled && c.Process.Listen == c.Calls.Listen {
		return fmt.Errorf("config: process and calls dashboards both listen on %s", c.Process.Listen)
	}
	if c.History.Database != "" && c.History.RetentionHours <= 0 {
		return errors.New("config: history.retention_hours must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ASTERMON_PROCESS_LISTEN"); v != "" {
		cfg.Process.Listen = v
	}
	if v := os.Getenv("ASTERMON_CALLS_LISTEN"); v != "" {
		cfg.Calls.Listen = v
	}
	if v := os.Getenv("ASTERMON_DB"); v != "" {
		cfg.History.Database = v
	}
	if v := os.Getenv("ASTERMON_BASE_PATH"); v != "" {
		cfg.BasePath = v
	}
	if v := os.Getenv("ASTERMON_LOG_PATH"); v != "" {
		cfg.Process.LogPath = v
	}
	if v := os.Getenv("ASTERMON_ASTERISK_BIN"); v != "" {
		cfg.Calls.AsteriskBin = v
	}
}

// findConfigFlag returns the value of -config/--config if present.
func findConfigFlag(args []string) (string, bool) {
	for i, arg := range args {
		switch {
		case arg == "-config" || arg == "--config":
			if i+1 < len(args) {
				return args[i+1], true
			}
		case strings.HasPrefix(arg, "-config=") || strings.HasPrefix(arg, "--config="):
			return strings.SplitN(arg, "=", 2)[1], true
		}
	}
	return "", false
}

// normalizeBasePath ensures the base path starts with "/" and has no trailing "/".
// Returns "/" for empty or root paths.
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = strings.TrimRight(p, "/")
	return p
}
