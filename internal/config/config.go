// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for webquery.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.webquery/config.toml
//   - ~/.webquery/config.json
//   - Built-in defaults
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete webquery configuration.
type Config struct {
	// Endpoint configuration
	Endpoint EndpointConfig `toml:"endpoint" json:"endpoint"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Stream configuration
	Stream StreamConfig `toml:"stream" json:"stream"`

	// Log configuration
	Log LogConfig `toml:"log" json:"log"`
}

// EndpointConfig describes the server prompts are sent to.
type EndpointConfig struct {
	// URL is the full generate endpoint
	URL string `toml:"url" json:"url"`
	// TrackConversation sends conversation_id with each prompt
	TrackConversation bool `toml:"track_conversation" json:"track_conversation"`
	// ResetOnClear deletes the server-side conversation when the chat is cleared
	ResetOnClear bool `toml:"reset_on_clear" json:"reset_on_clear"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "forest", "dark", "light"
	Theme string `toml:"theme" json:"theme"`
	// ClearDelayMs is the length of the clearing transition
	ClearDelayMs int `toml:"clear_delay_ms" json:"clear_delay_ms"`
	// InputMaxLines caps the visible height of the input box
	InputMaxLines int `toml:"input_max_lines" json:"input_max_lines"`
	// Hyperlinks wraps bare URLs in terminal hyperlinks
	Hyperlinks bool `toml:"hyperlinks" json:"hyperlinks"`
	// Markdown renders message content as Markdown
	Markdown bool `toml:"markdown" json:"markdown"`
	// Placeholder is shown in the empty input box
	Placeholder string `toml:"placeholder" json:"placeholder"`
}

// StreamConfig controls in-flight answers.
type StreamConfig struct {
	// CancelOnResubmit stops earlier answers when a new prompt is sent
	CancelOnResubmit bool `toml:"cancel_on_resubmit" json:"cancel_on_resubmit"`
	// CancelOnClear stops all answers when the chat is cleared
	CancelOnClear bool `toml:"cancel_on_clear" json:"cancel_on_clear"`
	// RequestTimeoutSecs bounds one answer; 0 disables the limit
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs"`
	// MaxRequestsPerMinute throttles prompts sent to the endpoint; 0 disables it
	MaxRequestsPerMinute int `toml:"max_requests_per_minute" json:"max_requests_per_minute"`
}

// LogConfig controls the log file.
type LogConfig struct {
	// File is the log path; empty disables logging
	File string `toml:"file" json:"file"`
	// Level is one of debug, info, warn, error
	Level string `toml:"level" json:"level"`
}

// Theme names.
const (
	ThemeForest = "forest"
	ThemeDark   = "dark"
	ThemeLight  = "light"
)

// Themes lists the valid theme names in cycling order.
var Themes = []string{ThemeForest, ThemeDark, ThemeLight}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	logFile := ""
	if dir, err := ConfigDir(); err == nil {
		logFile = filepath.Join(dir, "webquery.log")
	}

	return &Config{
		Endpoint: EndpointConfig{
			URL:               "http://127.0.0.1:8000/generate",
			TrackConversation: true,
			ResetOnClear:      true,
		},
		UI: UIConfig{
			Theme:         ThemeForest,
			ClearDelayMs:  300,
			InputMaxLines: 8,
			Hyperlinks:    true,
			Markdown:      true,
			Placeholder:   "Chat with Internet",
		},
		Stream: StreamConfig{
			CancelOnResubmit:   true,
			CancelOnClear:      true,
			RequestTimeoutSecs: 0,
		},
		Log: LogConfig{
			File:  logFile,
			Level: "info",
		},
	}
}

// ClearDelay returns the clearing transition as a duration.
func (c *Config) ClearDelay() time.Duration {
	return time.Duration(c.UI.ClearDelayMs) * time.Millisecond
}

// RequestTimeout returns the per-answer limit, zero meaning none.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Stream.RequestTimeoutSecs) * time.Second
}

// RequestContext derives the context for one answer from parent, bounded
// by RequestTimeout when it is set.
func (c *Config) RequestContext(parent context.Context) (context.Context, context.CancelFunc) {
	if timeout := c.RequestTimeout(); timeout > 0 {
		return context.WithTimeout(parent, timeout)
	}
	return context.WithCancel(parent)
}

// RequestRate returns the prompt rate limit as requests per minute.
func (c *Config) RequestRate() int {
	return c.Stream.MaxRequestsPerMinute
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the webquery configuration directory path.
// WEBQUERY_HOME overrides the default of ~/.webquery.
func ConfigDir() (string, error) {
	if dir := os.Getenv("WEBQUERY_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".webquery"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last. When a file exists but cannot be
// read, the defaults are returned together with the error.
func Load() (*Config, error) {
	var loadErr error

	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		cfg, err := LoadFromPath(path)
		if err == nil {
			return cfg, nil
		}
		if loadErr == nil {
			loadErr = err
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return Default(), errors.Join(loadErr, fmt.Errorf("invalid config: %w", err))
	}
	return cfg, loadErr
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
// Keys missing from the file keep their default values.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in values a file set to their zero value but that
// have no meaningful zero.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Endpoint.URL == "" {
		cfg.Endpoint.URL = defaults.Endpoint.URL
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.UI.InputMaxLines == 0 {
		cfg.UI.InputMaxLines = defaults.UI.InputMaxLines
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# webquery configuration file")
	fmt.Fprintln(file, "# Changes are picked up while webquery is running.")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Endpoint.URL == "" {
		errs = append(errs, ValidationError{Field: "endpoint.url", Message: "must not be empty"})
	} else if u, err := url.Parse(c.Endpoint.URL); err != nil {
		errs = append(errs, ValidationError{Field: "endpoint.url", Message: fmt.Sprintf("invalid URL: %v", err)})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{Field: "endpoint.url", Message: "scheme must be http or https"})
	} else if u.Host == "" {
		errs = append(errs, ValidationError{Field: "endpoint.url", Message: "missing host"})
	}

	if !IsValidTheme(c.UI.Theme) {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("unknown theme %q (valid: %s)", c.UI.Theme, strings.Join(Themes, ", ")),
		})
	}
	if c.UI.ClearDelayMs < 0 || c.UI.ClearDelayMs > 5000 {
		errs = append(errs, ValidationError{Field: "ui.clear_delay_ms", Message: "must be between 0 and 5000"})
	}
	if c.UI.InputMaxLines < 1 || c.UI.InputMaxLines > 50 {
		errs = append(errs, ValidationError{Field: "ui.input_max_lines", Message: "must be between 1 and 50"})
	}
	if c.Stream.RequestTimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "stream.request_timeout_secs", Message: "must not be negative"})
	}
	if c.Stream.MaxRequestsPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "stream.max_requests_per_minute", Message: "must not be negative"})
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{Field: "log.level", Message: fmt.Sprintf("unknown level %q", c.Log.Level)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// IsValidTheme reports whether name is a known theme.
func IsValidTheme(name string) bool {
	for _, t := range Themes {
		if t == name {
			return true
		}
	}
	return false
}

// NextTheme returns the theme after name in cycling order.
func NextTheme(name string) string {
	for i, t := range Themes {
		if t == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - WEBQUERY_ENDPOINT: overrides endpoint.url
//   - WEBQUERY_THEME: overrides ui.theme
//   - WEBQUERY_CLEAR_DELAY_MS: overrides ui.clear_delay_ms
//   - WEBQUERY_REQUEST_TIMEOUT: overrides stream.request_timeout_secs
//   - WEBQUERY_LOG_FILE: overrides log.file
//   - WEBQUERY_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if endpoint := os.Getenv("WEBQUERY_ENDPOINT"); endpoint != "" {
		c.Endpoint.URL = endpoint
	}

	if theme := os.Getenv("WEBQUERY_THEME"); theme != "" {
		c.UI.Theme = strings.ToLower(theme)
	}

	if delay := os.Getenv("WEBQUERY_CLEAR_DELAY_MS"); delay != "" {
		if ms, err := strconv.Atoi(delay); err == nil {
			c.UI.ClearDelayMs = ms
		}
	}

	if timeout := os.Getenv("WEBQUERY_REQUEST_TIMEOUT"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil {
			c.Stream.RequestTimeoutSecs = secs
		}
	}

	if file, ok := os.LookupEnv("WEBQUERY_LOG_FILE"); ok {
		c.Log.File = file
	}

	if level := os.Getenv("WEBQUERY_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the configuration as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
