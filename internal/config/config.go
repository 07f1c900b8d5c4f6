// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // business timezone must load on hosts without a zone database

	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/vendas/internal/commission"
	"github.com/javiermolinar/vendas/internal/logging"
	"github.com/javiermolinar/vendas/internal/tui/theme"
)

// Config holds the application configuration.
type Config struct {
	Business   BusinessConfig   `toml:"business"`
	Schedule   ScheduleConfig   `toml:"schedule"`
	Storage    StorageConfig    `toml:"storage"`
	Commission CommissionConfig `toml:"commission"`
	Scoring    ScoringConfig    `toml:"scoring"`
	Cache      CacheConfig      `toml:"cache"`
	Refresh    RefreshConfig    `toml:"refresh"`
	Linker     LinkerConfig     `toml:"linker"`
	Log        LogConfig        `toml:"log"`
	UI         UIConfig         `toml:"ui"`
}

// BusinessConfig holds institution-wide settings.
type BusinessConfig struct {
	Timezone string `toml:"timezone"` // IANA name, e.g. "America/Sao_Paulo"
}

// ScheduleConfig holds meeting scheduling settings.
type ScheduleConfig struct {
	Workdays       []string `toml:"workdays"`        // e.g., ["monday", "tuesday", ...]
	DayStart       string   `toml:"day_start"`       // e.g., "09:00"
	DayEnd         string   `toml:"day_end"`         // e.g., "18:00"
	MeetingMinutes int      `toml:"meeting_minutes"` // default meeting length
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// CommissionConfig holds the commission tiers.
type CommissionConfig struct {
	Tiers []TierConfig `toml:"tiers"`
}

// TierConfig is one commission tier. Percent is a decimal string such as "2.5".
type TierConfig struct {
	MinRate float64 `toml:"min_rate"`
	Percent string  `toml:"percent"`
}

// ScoringConfig holds the weekly score rules.
type ScoringConfig struct {
	PerConversion int     `toml:"per_conversion"`
	PerRecord     int     `toml:"per_record"`
	BonusRate     float64 `toml:"bonus_rate"`
	BonusPoints   int     `toml:"bonus_points"`
}

// CacheConfig holds weekly report cache settings.
type CacheConfig struct {
	Size      int    `toml:"size"`
	Freshness string `toml:"freshness"` // Go duration, e.g. "5m"
}

// RefreshConfig holds invalidation settings.
type RefreshConfig struct {
	Debounce string `toml:"debounce"`
}

// LinkerConfig holds auto-link job settings.
type LinkerConfig struct {
	MinInterval string `toml:"min_interval"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // auto, console, json
}

// UIConfig holds dashboard settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "latte"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Business: BusinessConfig{
			Timezone: "America/Sao_Paulo",
		},
		Schedule: ScheduleConfig{
			Workdays:       []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
			DayStart:       "09:00",
			DayEnd:         "18:00",
			MeetingMinutes: 30,
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		Commission: CommissionConfig{
			Tiers: []TierConfig{
				{MinRate: 0, Percent: "1"},
				{MinRate: 0.3, Percent: "2.5"},
				{MinRate: 0.5, Percent: "4"},
			},
		},
		Scoring: ScoringConfig{
			PerConversion: 10,
			PerRecord:     1,
			BonusRate:     0.5,
			BonusPoints:   20,
		},
		Cache: CacheConfig{
			Size:      256,
			Freshness: "5m",
		},
		Refresh: RefreshConfig{
			Debounce: "500ms",
		},
		Linker: LinkerConfig{
			MinInterval: "15m",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		UI: UIConfig{
			Theme: "mocha",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "vendas.db"
	}
	return filepath.Join(home, ".local", "share", "vendas", "vendas.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "vendas", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	// Tiers from the file replace the default tiers instead of extending them.
	var declared struct {
		Commission CommissionConfig `toml:"commission"`
	}
	if err := toml.Unmarshal(data, &declared); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	if len(declared.Commission.Tiers) > 0 {
		cfg.Commission.Tiers = nil
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("VENDAS_TIMEZONE"); v != "" {
		cfg.Business.Timezone = v
	}

	if v := os.Getenv("VENDAS_DAY_START"); v != "" {
		cfg.Schedule.DayStart = v
	}
	if v := os.Getenv("VENDAS_DAY_END"); v != "" {
		cfg.Schedule.DayEnd = v
	}
	if v := os.Getenv("VENDAS_WORKDAYS"); v != "" {
		cfg.Schedule.Workdays = strings.Split(v, ",")
	}
	if v := os.Getenv("VENDAS_MEETING_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VENDAS_MEETING_MINUTES: %w", err)
		}
		cfg.Schedule.MeetingMinutes = n
	}

	if v := os.Getenv("VENDAS_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}

	if v := os.Getenv("VENDAS_CACHE_FRESHNESS"); v != "" {
		cfg.Cache.Freshness = v
	}
	if v := os.Getenv("VENDAS_REFRESH_DEBOUNCE"); v != "" {
		cfg.Refresh.Debounce = v
	}
	if v := os.Getenv("VENDAS_LINK_INTERVAL"); v != "" {
		cfg.Linker.MinInterval = v
	}

	if v := os.Getenv("VENDAS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("VENDAS_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("VENDAS_UI_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}

	if err := validateTime(c.Schedule.DayStart, "day_start"); err != nil {
		return err
	}
	if err := validateTime(c.Schedule.DayEnd, "day_end"); err != nil {
		return err
	}
	if c.Schedule.DayStart >= c.Schedule.DayEnd {
		return errors.New("day_start must be before day_end")
	}
	if c.Schedule.MeetingMinutes <= 0 {
		return errors.New("meeting_minutes must be positive")
	}
	if len(c.Schedule.Workdays) == 0 {
		return errors.New("at least one workday must be configured")
	}
	for _, day := range c.Schedule.Workdays {
		if !isValidWeekday(day) {
			return fmt.Errorf("invalid workday: %s", day)
		}
	}

	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}

	if _, err := c.Plan(); err != nil {
		return fmt.Errorf("commission: %w", err)
	}

	if c.Cache.Size <= 0 {
		return errors.New("cache size must be positive")
	}
	durations := []struct{ value, field string }{
		{c.Cache.Freshness, "cache.freshness"},
		{c.Refresh.Debounce, "refresh.debounce"},
		{c.Linker.MinInterval, "linker.min_interval"},
	}
	for _, d := range durations {
		if _, err := parseDuration(d.value, d.field); err != nil {
			return err
		}
	}

	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return err
	}
	if c.UI.Theme != "" && !theme.IsAvailable(c.UI.Theme) {
		return fmt.Errorf("unknown theme %q (available: %s)", c.UI.Theme, strings.Join(theme.Available(), ", "))
	}
	return nil
}

// Location loads the business timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Business.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Business.Timezone, err)
	}
	return loc, nil
}

// Plan builds the commission plan from the configured tiers.
func (c *Config) Plan() (*commission.Plan, error) {
	tiers := make([]commission.Tier, 0, len(c.Commission.Tiers))
	for _, tc := range c.Commission.Tiers {
		t, err := commission.ParseTier(tc.MinRate, tc.Percent)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	return commission.NewPlan(tiers)
}

// ScoreRules returns the configured score rules.
func (c *Config) ScoreRules() commission.ScoreRules {
	return commission.ScoreRules{
		PerConversion: c.Scoring.PerConversion,
		PerRecord:     c.Scoring.PerRecord,
		BonusRate:     c.Scoring.BonusRate,
		BonusPoints:   c.Scoring.BonusPoints,
	}
}

// MeetingDuration returns the default meeting length.
func (c *Config) MeetingDuration() time.Duration {
	return time.Duration(c.Schedule.MeetingMinutes) * time.Minute
}

// CacheFreshness returns how long cached weekly reports stay valid.
func (c *Config) CacheFreshness() time.Duration {
	d, _ := parseDuration(c.Cache.Freshness, "cache.freshness")
	return d
}

// RefreshDebounce returns the invalidation debounce delay.
func (c *Config) RefreshDebounce() time.Duration {
	d, _ := parseDuration(c.Refresh.Debounce, "refresh.debounce")
	return d
}

// LinkInterval returns the minimum interval between auto-link runs.
func (c *Config) LinkInterval() time.Duration {
	d, _ := parseDuration(c.Linker.MinInterval, "linker.min_interval")
	return d
}

func parseDuration(s, field string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like \"5m\", got %q", field, s)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s cannot be negative", field)
	}
	return d, nil
}

// validateTime checks if a time string is in HH:MM format.
func validateTime(t, field string) error {
	if len(t) != 5 || t[2] != ':' {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	hour := t[0:2]
	min := t[3:5]
	if !isDigits(hour) || !isDigits(min) {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	return nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

var validWeekdays = map[string]bool{
	"monday":    true,
	"tuesday":   true,
	"wednesday": true,
	"thursday":  true,
	"friday":    true,
	"saturday":  true,
	"sunday":    true,
}

func isValidWeekday(day string) bool {
	return validWeekdays[strings.ToLower(strings.TrimSpace(day))]
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
