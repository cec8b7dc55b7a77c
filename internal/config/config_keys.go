// config_keys.go provides key-value access to configuration settings.
//
// Separated from config.go to isolate the key enumeration and string-based
// get/set logic. config.go handles YAML structure and loading; this file
// handles the CLI interface where config is accessed by string keys
// (e.g., "server.port").

package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrUnknownKey is returned when a config key is not recognised.
var ErrUnknownKey = fmt.Errorf("unknown config key")

// ValidKeys returns all valid configuration keys.
func ValidKeys() []string {
	return []string{
		"server.port", "server.path", "server.token",
		"database.base", "database.working_dir", "database.persist",
		"limits.max_write_rows",
		"validate_email", "log_level",
	}
}

// IsValidKey returns true if the key is a valid configuration key.
func IsValidKey(key string) bool {
	return slices.Contains(ValidKeys(), key)
}

// Get returns the value of a configuration key as a string.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "server.port":
		return strconv.Itoa(c.Port()), nil
	case "server.path":
		return c.MCPPath(), nil
	case "server.token":
		return c.Server.Token, nil
	case "database.base":
		return c.BasePath(), nil
	case "database.working_dir":
		return c.WorkingDir(), nil
	case "database.persist":
		return strconv.FormatBool(c.Persist()), nil
	case "limits.max_write_rows":
		return strconv.FormatInt(c.MaxWriteRows(), 10), nil
	case "validate_email":
		return strconv.FormatBool(c.EmailValidation()), nil
	case "log_level":
		return c.Level(), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set sets the value of a configuration key. Values are validated here so a
// bad set never reaches the file.
func (c *Config) Set(key, value string) error {
	switch key {
	case "server.port":
		n, err := strconv.Atoi(value)
		if err != nil || n < MinPort || n > MaxPort {
			return fmt.Errorf("%w: server.port must be between %d and %d", ErrInvalidValue, MinPort, MaxPort)
		}
		c.Server.Port = &n
	case "server.path":
		if !strings.HasPrefix(value, "/") {
			return fmt.Errorf("%w: server.path must start with '/'", ErrInvalidValue)
		}
		c.Server.Path = value
	case "server.token":
		c.Server.Token = value
	case "database.base":
		c.Database.Base = value
	case "database.working_dir":
		c.Database.WorkingDir = value
	case "database.persist":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("%w: database.persist must be true or false", ErrInvalidValue)
		}
		c.Database.Persist = &b
	case "limits.max_write_rows":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < MinMaxWriteRows || n > MaxMaxWriteRows {
			return fmt.Errorf("%w: limits.max_write_rows must be between %d and %d", ErrInvalidValue, MinMaxWriteRows, MaxMaxWriteRows)
		}
		c.Limits.MaxWriteRows = &n
	case "validate_email":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("%w: validate_email must be true or false", ErrInvalidValue)
		}
		c.ValidateEmail = &b
	case "log_level":
		v := strings.ToLower(value)
		switch v {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("%w: log_level must be debug, info, warn or error", ErrInvalidValue)
		}
		c.LogLevel = v
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// All returns all configuration values as a map.
func (c *Config) All() map[string]string {
	return map[string]string{
		"server.port":           strconv.Itoa(c.Port()),
		"server.path":           c.MCPPath(),
		"server.token":          redact(c.Server.Token),
		"database.base":         c.BasePath(),
		"database.working_dir":  c.WorkingDir(),
		"database.persist":      strconv.FormatBool(c.Persist()),
		"limits.max_write_rows": strconv.FormatInt(c.MaxWriteRows(), 10),
		"validate_email":        strconv.FormatBool(c.EmailValidation()),
		"log_level":             c.Level(),
	}
}

// IsSet returns true if the key has an explicit value (not just defaults).
func (c *Config) IsSet(key string) bool {
	switch key {
	case "server.port":
		return c.Server.Port != nil
	case "server.path":
		return c.Server.Path != ""
	case "server.token":
		return c.Server.Token != ""
	case "database.base":
		return c.Database.Base != ""
	case "database.working_dir":
		return c.Database.WorkingDir != ""
	case "database.persist":
		return c.Database.Persist != nil
	case "limits.max_write_rows":
		return c.Limits.MaxWriteRows != nil
	case "validate_email":
		return c.ValidateEmail != nil
	case "log_level":
		return c.LogLevel != ""
	default:
		return false
	}
}

// parseBool accepts only the canonical spellings for a set, unlike the
// forgiving env parsing.
func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %s", value)
	}
}

// redact masks a token for display. Listing config must never print the
// bearer token itself.
func redact(token string) string {
	if token == "" {
		return ""
	}
	return "********"
}
