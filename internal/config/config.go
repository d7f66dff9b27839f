// Package config loads phaseline settings: regional holiday presets, the
// designation rate table, planner limits and timeline thresholds.
//
// Settings come from code defaults, then an optional YAML file, then
// PHASELINE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/phaseline/internal/calendar"
	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/alexanderramin/phaseline/internal/ledger"
	"github.com/alexanderramin/phaseline/internal/planner"
	"github.com/alexanderramin/phaseline/internal/schedule"
	"github.com/alexanderramin/phaseline/internal/timeline"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfig       = "PHASELINE_CONFIG"
	EnvDB           = "PHASELINE_DB"
	EnvUndoDepth    = "PHASELINE_UNDO_DEPTH"
	EnvContainment  = "PHASELINE_CONTAINMENT"
	EnvLogUseCases  = "PHASELINE_LOG_USE_CASES"
	defaultDirName  = ".phaseline"
	defaultFileName = "config.yaml"
	defaultDBName   = "phaseline.db"
)

// Config is the full phaseline configuration.
type Config struct {
	DBPath      string         `yaml:"db_path"`
	LogUseCases bool           `yaml:"log_use_cases"`
	Calendar    CalendarConfig `yaml:"calendar"`
	Rates       RatesConfig    `yaml:"rates"`
	Planner     PlannerConfig  `yaml:"planner"`
	Timeline    TimelineConfig `yaml:"timeline"`
}

type CalendarConfig struct {
	Presets []PresetConfig `yaml:"presets" validate:"dive"`
}

// PresetConfig is the public holiday list of one region.
type PresetConfig struct {
	Region   string          `yaml:"region" validate:"required,alphanum"`
	Holidays []HolidayConfig `yaml:"holidays" validate:"dive"`
}

type HolidayConfig struct {
	Date string `yaml:"date" validate:"required,datetime=2006-01-02"`
	Name string `yaml:"name" validate:"required"`
}

// RatesConfig maps designations to multiples of a base hourly rate.
type RatesConfig struct {
	Base   float64            `yaml:"base" validate:"gt=0"`
	Ratios map[string]float64 `yaml:"ratios" validate:"min=1,dive,keys,required,endkeys,gt=0"`
}

type PlannerConfig struct {
	UndoDepth   int    `yaml:"undo_depth" validate:"gte=1,lte=1000"`
	Containment string `yaml:"containment" validate:"oneof=reject clamp"`
}

type TimelineConfig struct {
	MinMarkerPx       float64 `yaml:"min_marker_px" validate:"gt=0"`
	MaxMarkerPx       float64 `yaml:"max_marker_px" validate:"gtfield=MinMarkerPx"`
	SupportOffsetDays int     `yaml:"support_offset_days" validate:"gte=0"`
	SupportWidthPct   float64 `yaml:"support_width_pct" validate:"gt=0,lte=100"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// DefaultPresets lists the regions shipped with phaseline.
func DefaultPresets() []PresetConfig {
	return []PresetConfig{
		{Region: "MY", Holidays: []HolidayConfig{
			{Date: "2026-01-01", Name: "New Year's Day"},
			{Date: "2026-05-01", Name: "Labour Day"},
			{Date: "2026-08-31", Name: "National Day"},
			{Date: "2026-09-16", Name: "Malaysia Day"},
			{Date: "2026-12-25", Name: "Christmas Day"},
		}},
		{Region: "US", Holidays: []HolidayConfig{
			{Date: "2026-01-01", Name: "New Year's Day"},
			{Date: "2026-07-04", Name: "Independence Day"},
			{Date: "2026-11-26", Name: "Thanksgiving Day"},
			{Date: "2026-12-25", Name: "Christmas Day"},
		}},
	}
}

// DefaultDBPath returns ~/.phaseline/phaseline.db, or a relative
// phaseline.db when the home directory is unknown.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultDBName
	}
	return filepath.Join(home, defaultDirName, defaultDBName)
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML, fills unset fields with defaults and validates the
// result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv resolves the config file (PHASELINE_CONFIG, else
// ~/.phaseline/config.yaml if present), then applies environment
// overrides. A missing default file is not an error; a missing explicit
// one is.
func LoadFromEnv() (*Config, error) {
	path, explicit := os.Getenv(EnvConfig), true
	if path == "" {
		explicit = false
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, defaultDirName, defaultFileName)
		}
	}

	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		switch {
		case err == nil:
			cfg = loaded
		case !explicit && errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath()
	}
	if len(c.Calendar.Presets) == 0 {
		c.Calendar.Presets = DefaultPresets()
	}
	if c.Rates.Base == 0 {
		c.Rates.Base = ledger.DefaultRateTable().Base
	}
	if len(c.Rates.Ratios) == 0 {
		c.Rates.Ratios = ledger.DefaultRateTable().Ratios
	}
	if c.Planner.UndoDepth == 0 {
		c.Planner.UndoDepth = planner.DefaultUndoDepth
	}
	if c.Planner.Containment == "" {
		c.Planner.Containment = schedule.PolicyReject.String()
	}
	tl := timeline.DefaultConfig()
	if c.Timeline.MinMarkerPx == 0 {
		c.Timeline.MinMarkerPx = tl.MinMarkerPx
	}
	if c.Timeline.MaxMarkerPx == 0 {
		c.Timeline.MaxMarkerPx = tl.MaxMarkerPx
	}
	if c.Timeline.SupportOffsetDays == 0 {
		c.Timeline.SupportOffsetDays = tl.SupportOffsetDays
	}
	if c.Timeline.SupportWidthPct == 0 {
		c.Timeline.SupportWidthPct = tl.SupportWidthPct
	}
}

// applyEnv overrides fields from PHASELINE_* variables. Unparseable
// numbers and booleans are ignored.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDB); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(EnvLogUseCases); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.LogUseCases = b
		}
	}
	if v := os.Getenv(EnvUndoDepth); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Planner.UndoDepth = n
		}
	}
	if v := os.Getenv(EnvContainment); v != "" {
		c.Planner.Containment = strings.ToLower(strings.TrimSpace(v))
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks struct tags and the cross-field rules tags cannot
// express. All problems are reported in one error.
func (c *Config) Validate() error {
	var errs []string
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("config: validate: %w", err)
		}
		for _, fe := range verrs {
			errs = append(errs, describe(fe))
		}
	}

	seen := make(map[string]bool, len(c.Calendar.Presets))
	for i, p := range c.Calendar.Presets {
		key := strings.ToUpper(p.Region)
		if key != "" && seen[key] {
			errs = append(errs, fmt.Sprintf("calendar.presets[%d].region: duplicate region %q", i, p.Region))
		}
		seen[key] = true
	}
	lower := make(map[string]string, len(c.Rates.Ratios))
	for name := range c.Rates.Ratios {
		k := strings.ToLower(name)
		if other, ok := lower[k]; ok {
			a, b := min(name, other), max(name, other)
			errs = append(errs, fmt.Sprintf("rates.ratios: designations %q and %q differ only in case", a, b))
		}
		lower[k] = name
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s: failed %s", field, fe.Tag())
}

// Presets converts the calendar section into calendar presets. Dates were
// checked by Validate.
func (c *Config) Presets() (calendar.Presets, error) {
	out := make(calendar.Presets, len(c.Calendar.Presets))
	for _, p := range c.Calendar.Presets {
		region := strings.ToUpper(p.Region)
		for _, h := range p.Holidays {
			d, err := time.Parse(domain.DateLayout, h.Date)
			if err != nil {
				return nil, domain.Invalid("calendar.presets."+region, domain.RuleDateRange, "bad holiday date %q", h.Date)
			}
			out[region] = append(out[region], domain.Holiday{Date: d, Name: h.Name, RegionTag: region})
		}
		if _, ok := out[region]; !ok {
			out[region] = nil
		}
	}
	return out, nil
}

// NewCalendar builds a calendar over the configured presets.
func (c *Config) NewCalendar() (*calendar.Calendar, error) {
	presets, err := c.Presets()
	if err != nil {
		return nil, err
	}
	return calendar.New(presets), nil
}

// RateTable returns the configured designation ladder.
func (c *Config) RateTable() ledger.RateTable {
	ratios := make(map[string]float64, len(c.Rates.Ratios))
	for k, v := range c.Rates.Ratios {
		ratios[k] = v
	}
	return ledger.RateTable{Base: c.Rates.Base, Ratios: ratios}
}

// Containment returns the task date containment policy.
func (c *Config) Containment() schedule.ContainmentPolicy {
	p, err := schedule.ParsePolicy(c.Planner.Containment)
	if err != nil {
		return schedule.PolicyReject
	}
	return p
}

// TimelineConfig returns the adaptive zoom and support marker settings.
func (c *Config) TimelineConfig() timeline.Config {
	return timeline.Config{
		MinMarkerPx:       c.Timeline.MinMarkerPx,
		MaxMarkerPx:       c.Timeline.MaxMarkerPx,
		SupportOffsetDays: c.Timeline.SupportOffsetDays,
		SupportWidthPct:   c.Timeline.SupportWidthPct,
	}
}
