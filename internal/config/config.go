// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/chatfeed/internal/util"
)

// ErrInvalidConfig is matched by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete chatfeed configuration.
type Config struct {
	Version string `toml:"version" yaml:"version"`

	// User identifies the local participant; their messages render as
	// outgoing bubbles.
	User UserConfig `toml:"user" yaml:"user"`

	Feed    FeedConfig    `toml:"feed" yaml:"feed"`
	Store   StoreConfig   `toml:"store" yaml:"store"`
	UI      UIConfig      `toml:"ui" yaml:"ui"`
	Log     LogConfig     `toml:"log" yaml:"log"`
	Metrics MetricsConfig `toml:"metrics" yaml:"metrics"`
}

// UserConfig names the current user.
type UserConfig struct {
	ID   string `toml:"id" yaml:"id"`
	Name string `toml:"name" yaml:"name"`
}

// FeedConfig tunes scroll anchoring and history paging.
type FeedConfig struct {
	// BottomTolerance is how many lines from the end still count as
	// "at bottom".
	BottomTolerance int `toml:"bottom_tolerance" yaml:"bottom_tolerance"`
	// PreserveWindowMS is how long reaching the top waits for an older page.
	PreserveWindowMS int `toml:"preserve_window_ms" yaml:"preserve_window_ms"`
	// SettleDelayMS coalesces growth events into one correction.
	SettleDelayMS int `toml:"settle_delay_ms" yaml:"settle_delay_ms"`
	// PageSize is the number of messages loaded per history page.
	PageSize int `toml:"page_size" yaml:"page_size"`
	// PageIntervalMS is the minimum gap between older-page requests.
	PageIntervalMS int `toml:"page_interval_ms" yaml:"page_interval_ms"`
}

// PreserveWindow returns PreserveWindowMS as a duration.
func (f FeedConfig) PreserveWindow() time.Duration {
	return time.Duration(f.PreserveWindowMS) * time.Millisecond
}

// SettleDelay returns SettleDelayMS as a duration.
func (f FeedConfig) SettleDelay() time.Duration {
	return time.Duration(f.SettleDelayMS) * time.Millisecond
}

// PageInterval returns PageIntervalMS as a duration.
func (f FeedConfig) PageInterval() time.Duration {
	return time.Duration(f.PageIntervalMS) * time.Millisecond
}

// StoreConfig locates persisted conversations.
type StoreConfig struct {
	// Path is the sqlite database (empty = ~/.chatfeed/chatfeed.db).
	Path string `toml:"path" yaml:"path"`
	// TranscriptDir is watched for *.jsonl transcripts when Watch is set.
	TranscriptDir string `toml:"transcript_dir" yaml:"transcript_dir"`
	Watch         bool   `toml:"watch" yaml:"watch"`
}

// UIConfig contains display preferences.
type UIConfig struct {
	Theme          string `toml:"theme" yaml:"theme"`
	Markdown       bool   `toml:"markdown" yaml:"markdown"`
	ShowTimestamps bool   `toml:"show_timestamps" yaml:"show_timestamps"`
	SidebarWidth   int    `toml:"sidebar_width" yaml:"sidebar_width"`
	CompactMode    bool   `toml:"compact_mode" yaml:"compact_mode"`
}

// LogConfig selects the log level and sink. Sink is "" (discard),
// "stderr", or "file:<path>".
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
	Sink  string `toml:"sink" yaml:"sink"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		User: UserConfig{
			ID: "me",
		},
		Feed: FeedConfig{
			BottomTolerance:  1,
			PreserveWindowMS: 1000,
			SettleDelayMS:    16,
			PageSize:         30,
			PageIntervalMS:   500,
		},
		UI: UIConfig{
			Theme:          "dark",
			Markdown:       true,
			ShowTimestamps: true,
			SidebarWidth:   28,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Limits applied by SetDefaults.
const (
	maxBottomTolerance = 10
	maxPageSize        = 500
	minSidebarWidth    = 16
	maxSidebarWidth    = 60
	maxPreserveMS      = 10_000
	maxSettleMS        = 1_000
)

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the chatfeed configuration directory. CHATFEED_HOME
// overrides the default ~/.chatfeed.
func ConfigDir() (string, error) {
	if dir := os.Getenv("CHATFEED_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chatfeed"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	return inConfigDir("config.toml")
}

// ConfigPathYAML returns the path to the YAML config file.
func ConfigPathYAML() (string, error) {
	return inConfigDir("config.yaml")
}

func inConfigDir(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// DatabasePath returns Store.Path, or chatfeed.db in the config directory.
func (c *Config) DatabasePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	return inConfigDir("chatfeed.db")
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored; with no arguments ".env" is tried.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load loads configuration from the config directory. TOML is tried first,
// then YAML, then the built-in defaults. Environment overrides are applied
// last, followed by defaults for zero values and validation.
func Load() (*Config, error) {
	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathYAML} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return LoadFromPath(path)
		}
	}
	cfg := Default()
	return cfg, cfg.finish()
}

// LoadFromPath loads configuration from a specific file. Files ending in
// .yaml or .yml are parsed as YAML, anything else as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = LoadYAML(cfg, path)
	default:
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadYAML decodes a YAML file over cfg.
func LoadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode YAML file: %w", err)
	}
	return nil
}

func (c *Config) finish() error {
	c.ApplyEnvOverrides()
	c.SetDefaults()
	return c.Validate()
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg as TOML with owner-only permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# chatfeed configuration file\n")
	buf.WriteString("# Generated by chatfeed - edit with care\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveYAML writes cfg as YAML with owner-only permissions.
func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
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
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Is makes errors.Is(err, ErrInvalidConfig) hold.
func (e ValidateErrors) Is(target error) bool {
	return target == ErrInvalidConfig
}

var (
	validThemes    = []string{"dark", "light", "auto"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

// Validate reports values that cannot be repaired by SetDefaults.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if strings.TrimSpace(c.User.ID) == "" {
		errs = append(errs, ValidationError{"user.id", "must not be empty"})
	}
	if !contains(validThemes, c.UI.Theme) {
		errs = append(errs, ValidationError{"ui.theme",
			fmt.Sprintf("must be one of %s, got %q", strings.Join(validThemes, ", "), c.UI.Theme)})
	}
	if !contains(validLogLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, ValidationError{"log.level",
			fmt.Sprintf("must be one of %s, got %q", strings.Join(validLogLevels, ", "), c.Log.Level)})
	}
	switch {
	case c.Log.Sink == "", c.Log.Sink == "stderr":
	case strings.HasPrefix(c.Log.Sink, "file:") && len(c.Log.Sink) > len("file:"):
	default:
		errs = append(errs, ValidationError{"log.sink",
			fmt.Sprintf(`must be "", "stderr" or "file:<path>", got %q`, c.Log.Sink)})
	}
	if c.Store.Watch && c.Store.TranscriptDir == "" {
		errs = append(errs, ValidationError{"store.transcript_dir", "required when store.watch is enabled"})
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// SetDefaults fills zero values from Default and clamps numeric settings
// into their supported ranges.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.User.ID == "" {
		c.User.ID = d.User.ID
	}
	if c.User.Name == "" {
		c.User.Name = c.User.ID
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}

	c.Feed.BottomTolerance = clampInt(c.Feed.BottomTolerance, 0, maxBottomTolerance)
	if c.Feed.PreserveWindowMS <= 0 {
		c.Feed.PreserveWindowMS = d.Feed.PreserveWindowMS
	}
	c.Feed.PreserveWindowMS = clampInt(c.Feed.PreserveWindowMS, 1, maxPreserveMS)
	c.Feed.SettleDelayMS = clampInt(c.Feed.SettleDelayMS, 0, maxSettleMS)
	if c.Feed.PageSize <= 0 {
		c.Feed.PageSize = d.Feed.PageSize
	}
	c.Feed.PageSize = clampInt(c.Feed.PageSize, 1, maxPageSize)
	if c.Feed.PageIntervalMS < 0 {
		c.Feed.PageIntervalMS = d.Feed.PageIntervalMS
	}
	if c.UI.SidebarWidth == 0 {
		c.UI.SidebarWidth = d.UI.SidebarWidth
	}
	c.UI.SidebarWidth = clampInt(c.UI.SidebarWidth, minSidebarWidth, maxSidebarWidth)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - CHATFEED_USER: overrides user.id
//   - CHATFEED_USER_NAME: overrides user.name
//   - CHATFEED_DB: overrides store.path
//   - CHATFEED_TRANSCRIPTS: sets store.transcript_dir and enables watching
//   - CHATFEED_THEME: overrides ui.theme
//   - CHATFEED_PAGE_SIZE: overrides feed.page_size
//   - CHATFEED_LOG_LEVEL, CHATFEED_LOG_SINK: override log.level, log.sink
//   - CHATFEED_METRICS_ADDR: overrides metrics.addr
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CHATFEED_USER"); v != "" {
		c.User.ID = v
	}
	if v := os.Getenv("CHATFEED_USER_NAME"); v != "" {
		c.User.Name = v
	}
	if v := os.Getenv("CHATFEED_DB"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("CHATFEED_TRANSCRIPTS"); v != "" {
		c.Store.TranscriptDir = v
		c.Store.Watch = true
	}
	if v := os.Getenv("CHATFEED_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("CHATFEED_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Feed.PageSize = n
		}
	}
	if v := os.Getenv("CHATFEED_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CHATFEED_LOG_SINK"); v != "" {
		c.Log.Sink = v
	}
	if v := os.Getenv("CHATFEED_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation
// (e.g. "feed.page_size").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
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
	if strings.TrimSpace(key) == "" {
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
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("field '%s' is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts snake_case or kebab-case to the Go field
// name, e.g. "page_interval_ms" -> "PageIntervalMs" (matched EqualFold).
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	var result strings.Builder
	for _, part := range parts {
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			n, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %w", err)
			}
			field.SetInt(n)
			return nil
		case reflect.Bool:
			switch strings.ToLower(strVal) {
			case "1", "true", "yes", "on":
				field.SetBool(true)
			case "0", "false", "no", "off":
				field.SetBool(false)
			default:
				return fmt.Errorf("invalid boolean value: %q", strVal)
			}
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
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"user.id",
		"user.name",
		"feed.bottom_tolerance",
		"feed.preserve_window_ms",
		"feed.settle_delay_ms",
		"feed.page_size",
		"feed.page_interval_ms",
		"store.path",
		"store.transcript_dir",
		"store.watch",
		"ui.theme",
		"ui.markdown",
		"ui.show_timestamps",
		"ui.sidebar_width",
		"ui.compact_mode",
		"log.level",
		"log.sink",
		"metrics.addr",
	}
}

// String returns the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
