// Package config provides reading and writing of chinookd configuration.
// Supports both global (~/.chinookd/config.yaml) and local
// (.chinookd/config.yaml) scopes. Reading: uses local if it exists,
// otherwise global. Environment variables override file values, and CLI
// flags override both, so a containerised deployment can run without any
// config file at all.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoConfigPath is returned when the config path cannot be determined.
	ErrNoConfigPath = errors.New("cannot determine config path")
	// ErrInvalidValue is returned when a config value is out of bounds.
	ErrInvalidValue = errors.New("invalid config value")
)

// Scope represents the configuration scope (global or local).
type Scope int

const (
	// ScopeGlobal is user-wide config in ~/.chinookd/config.yaml (default)
	ScopeGlobal Scope = iota
	// ScopeLocal is repository-specific config in .chinookd/config.yaml
	ScopeLocal
)

// Defaults applied when a value is not configured anywhere.
const (
	DefaultPort         = 8787
	DefaultMCPPath      = "/mcp"
	DefaultBasePath     = "chinook.db"
	DefaultWorkingDir   = ".chinookd/working"
	DefaultLogLevel     = "info"
	DefaultMaxWriteRows = 10000
)

// Validation bounds for configured values.
const (
	MinPort         = 1
	MaxPort         = 65535
	MinMaxWriteRows = 1
	MaxMaxWriteRows = 1000000
)

// Server holds transport and auth configuration.
type Server struct {
	Port  *int   `yaml:"port,omitempty"`
	Path  string `yaml:"path,omitempty"`
	Token string `yaml:"token,omitempty"`
}

// Database holds base/working dataset configuration.
type Database struct {
	Base       string `yaml:"base,omitempty"`
	WorkingDir string `yaml:"working_dir,omitempty"`
	Persist    *bool  `yaml:"persist,omitempty"`
}

// Limits holds guard-rail configuration for the write path.
type Limits struct {
	MaxWriteRows *int64 `yaml:"max_write_rows,omitempty"`
}

// Config contains configuration for chinookd.
type Config struct {
	Server        Server   `yaml:"server,omitempty"`
	Database      Database `yaml:"database,omitempty"`
	Limits        Limits   `yaml:"limits,omitempty"`
	ValidateEmail *bool    `yaml:"validate_email,omitempty"`
	LogLevel      string   `yaml:"log_level,omitempty"`

	// path is the file this config was loaded from (for Save)
	path  string
	scope Scope
}

// Validate checks that all configured values are within acceptable bounds.
// Returns nil if values are valid or unset (defaults will be used).
func (c *Config) Validate() error {
	if c.Server.Port != nil {
		v := *c.Server.Port
		if v < MinPort || v > MaxPort {
			return fmt.Errorf("%w: port must be between %d and %d, got %d",
				ErrInvalidValue, MinPort, MaxPort, v)
		}
	}
	if c.Server.Path != "" && !strings.HasPrefix(c.Server.Path, "/") {
		return fmt.Errorf("%w: path must start with '/', got %q", ErrInvalidValue, c.Server.Path)
	}
	if c.Limits.MaxWriteRows != nil {
		v := *c.Limits.MaxWriteRows
		if v < MinMaxWriteRows || v > MaxMaxWriteRows {
			return fmt.Errorf("%w: max_write_rows must be between %d and %d, got %d",
				ErrInvalidValue, MinMaxWriteRows, MaxMaxWriteRows, v)
		}
	}
	if c.LogLevel != "" {
		switch strings.ToLower(c.LogLevel) {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("%w: log_level must be debug, info, warn or error, got %q",
				ErrInvalidValue, c.LogLevel)
		}
	}
	return nil
}

// Port returns the listening port (defaults to 8787).
func (c *Config) Port() int {
	if c.Server.Port == nil {
		return DefaultPort
	}
	return *c.Server.Port
}

// MCPPath returns the HTTP mount path for the MCP endpoint (defaults to /mcp).
func (c *Config) MCPPath() string {
	if c.Server.Path == "" {
		return DefaultMCPPath
	}
	return c.Server.Path
}

// Token returns the bearer token, empty when auth is disabled.
func (c *Config) Token() string {
	return c.Server.Token
}

// BasePath returns the path to the immutable base database file.
func (c *Config) BasePath() string {
	if c.Database.Base == "" {
		return DefaultBasePath
	}
	return c.Database.Base
}

// WorkingDir returns the directory holding the working copy.
func (c *Config) WorkingDir() string {
	if c.Database.WorkingDir == "" {
		return DefaultWorkingDir
	}
	return c.Database.WorkingDir
}

// Persist reports whether the working copy survives restarts (defaults to
// false: every start re-seeds from the base file).
func (c *Config) Persist() bool {
	if c.Database.Persist == nil {
		return false
	}
	return *c.Database.Persist
}

// MaxWriteRows returns the affected-row ceiling for guarded writes.
func (c *Config) MaxWriteRows() int64 {
	if c.Limits.MaxWriteRows == nil {
		return DefaultMaxWriteRows
	}
	return *c.Limits.MaxWriteRows
}

// EmailValidation reports whether customer email format validation is
// enabled (defaults to true). The reference schema does not enforce email
// shape, so this is deployment policy rather than a data invariant.
func (c *Config) EmailValidation() bool {
	if c.ValidateEmail == nil {
		return true
	}
	return *c.ValidateEmail
}

// Level returns the configured log verbosity (defaults to "info").
func (c *Config) Level() string {
	if c.LogLevel == "" {
		return DefaultLogLevel
	}
	return strings.ToLower(c.LogLevel)
}

// LocalPath returns the path to the local (repository) config file.
func LocalPath() string {
	return filepath.Join(".chinookd", "config.yaml")
}

// GlobalPath returns the path to the global (user) config file:
// ~/.chinookd/config.yaml
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".chinookd", "config.yaml")
}

// Load reads configuration: local scope if present, otherwise global, then
// applies environment overrides. The result is validated.
func Load() (*Config, error) {
	var cfg *Config
	var err error
	if _, statErr := os.Stat(LocalPath()); statErr == nil {
		cfg, err = LoadScope(ScopeLocal)
	} else {
		cfg, err = LoadScope(ScopeGlobal)
	}
	if err != nil {
		return nil, err
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadScope reads configuration from a specific scope without environment
// overrides. A missing file yields an empty config, not an error.
func LoadScope(scope Scope) (*Config, error) {
	path := pathForScope(scope)
	if path == "" {
		return &Config{scope: scope}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{path: path, scope: scope}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed config file %s: %w", path, err)
	}
	cfg.path = path
	cfg.scope = scope

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// applyEnv overlays CHINOOKD_* environment variables onto the config.
// Unparseable numeric or boolean values are ignored rather than fatal, so a
// stray variable cannot stop the server from reading its file config.
func (c *Config) applyEnv() {
	if v := os.Getenv("CHINOOKD_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = &port
		}
	}
	if v := os.Getenv("CHINOOKD_PATH"); v != "" {
		c.Server.Path = v
	}
	if v := os.Getenv("CHINOOKD_TOKEN"); v != "" {
		c.Server.Token = v
	}
	if v := os.Getenv("CHINOOKD_BASE"); v != "" {
		c.Database.Base = v
	}
	if v := os.Getenv("CHINOOKD_WORKING_DIR"); v != "" {
		c.Database.WorkingDir = v
	}
	if v := os.Getenv("CHINOOKD_PERSIST"); v != "" {
		b := asBool(v)
		c.Database.Persist = &b
	}
	if v := os.Getenv("CHINOOKD_MAX_WRITE_ROWS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Limits.MaxWriteRows = &n
		}
	}
	if v := os.Getenv("CHINOOKD_VALIDATE_EMAIL"); v != "" {
		b := asBool(v)
		c.ValidateEmail = &b
	}
	if v := os.Getenv("CHINOOKD_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// asBool parses the usual truthy spellings: 1, true, yes, on.
func asBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Scope returns which scope this config was loaded from.
func (c *Config) Scope() Scope {
	return c.scope
}

// Save writes the configuration to its original location.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = pathForScope(c.scope)
	}
	if c.path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(c.path)
}

// SaveScope writes the configuration to the specified scope.
func (c *Config) SaveScope(scope Scope) error {
	path := pathForScope(scope)
	if path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(path)
}

// saveToPath writes configuration to a specific filesystem path, creating
// parent directories as needed.
func (c *Config) saveToPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// pathForScope returns the filesystem path for a given scope.
func pathForScope(scope Scope) string {
	switch scope {
	case ScopeLocal:
		return LocalPath()
	case ScopeGlobal:
		return GlobalPath()
	default:
		return ""
	}
}
