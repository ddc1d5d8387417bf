package framegov

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration with TOML-friendly string parsing. Supports
// standard Go duration strings: "16ms", "2s", "5m", etc.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if parsed < 0 {
		return fmt.Errorf("negative duration %q not allowed", s)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML serialization.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds the scheduler's tuning knobs. It is constructed once at
// startup, validated, and never mutated afterwards; the zero value is not
// usable, start from [DefaultConfig].
type Config struct {
	// QualityFrameBudget is the shared per-tick budget in Quality mode.
	QualityFrameBudget Duration `toml:"quality_frame_budget"`

	// PerformanceFrameBudget is the shared per-tick budget in Performance
	// mode.
	PerformanceFrameBudget Duration `toml:"performance_frame_budget"`

	// GovernorWindow is the per-consumer observation window between
	// adaptive interval adjustments.
	GovernorWindow Duration `toml:"governor_window"`

	// GovernorOverBudgetThreshold is the number of over-interval executions
	// within one window that triggers interval expansion.
	GovernorOverBudgetThreshold int `toml:"governor_over_budget_threshold"`

	// GovernorHeadroomRatio is the fraction of the global budget that must
	// remain unused (sustained) before the governor contracts an interval
	// back toward its ideal.
	GovernorHeadroomRatio float64 `toml:"governor_headroom_ratio"`

	// GovernorExpandFactor multiplies a consumer's interval on expansion.
	GovernorExpandFactor float64 `toml:"governor_expand_factor"`

	// GovernorContractFactor multiplies a consumer's interval on
	// contraction (floored at the ideal interval).
	GovernorContractFactor float64 `toml:"governor_contract_factor"`

	// MaxFrameInterval caps governor expansion.
	MaxFrameInterval Duration `toml:"max_frame_interval"`

	// ModeCooldown is the minimum time between performance-mode
	// evaluations.
	ModeCooldown Duration `toml:"mode_cooldown"`

	// EnterPerformanceDropRate and EnterPerformanceFrameTime are the
	// thresholds (either suffices) for switching Quality → Performance.
	EnterPerformanceDropRate  float64  `toml:"enter_performance_drop_rate"`
	EnterPerformanceFrameTime Duration `toml:"enter_performance_frame_time"`

	// RestoreQualityDropRate and RestoreQualityFrameTime are the thresholds
	// (both required) for switching Performance → Quality.
	RestoreQualityDropRate  float64  `toml:"restore_quality_drop_rate"`
	RestoreQualityFrameTime Duration `toml:"restore_quality_frame_time"`

	// BackgroundFloorInterval is the minimum interval imposed on Background
	// consumers when entering Performance mode.
	BackgroundFloorInterval Duration `toml:"background_floor_interval"`

	// DropFrameFactor defines a dropped frame: total tick time exceeding
	// DropFrameFactor × the frame budget counts as dropped.
	DropFrameFactor float64 `toml:"drop_frame_factor"`

	// TickRate is the rate of the default ticker source, used only when no
	// tick source is supplied.
	TickRate Duration `toml:"tick_rate"`
}

// DefaultConfig returns the standard tuning: 16ms/12ms budgets, 2s
// governance windows, 5s mode cooldown.
func DefaultConfig() *Config {
	return &Config{
		QualityFrameBudget:          Duration{16 * time.Millisecond},
		PerformanceFrameBudget:      Duration{12 * time.Millisecond},
		GovernorWindow:              Duration{2 * time.Second},
		GovernorOverBudgetThreshold: 3,
		GovernorHeadroomRatio:       0.4,
		GovernorExpandFactor:        1.5,
		GovernorContractFactor:      0.8,
		MaxFrameInterval:            Duration{time.Second},
		ModeCooldown:                Duration{5 * time.Second},
		EnterPerformanceDropRate:    0.1,
		EnterPerformanceFrameTime:   Duration{20 * time.Millisecond},
		RestoreQualityDropRate:      0.02,
		RestoreQualityFrameTime:     Duration{10 * time.Millisecond},
		BackgroundFloorInterval:     Duration{33 * time.Millisecond},
		DropFrameFactor:             1.5,
		TickRate:                    Duration{time.Second / 60},
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	switch {
	case c.QualityFrameBudget.Duration <= 0:
		return fmt.Errorf("framegov: quality_frame_budget must be positive, got %v", c.QualityFrameBudget.Duration)
	case c.PerformanceFrameBudget.Duration <= 0:
		return fmt.Errorf("framegov: performance_frame_budget must be positive, got %v", c.PerformanceFrameBudget.Duration)
	case c.PerformanceFrameBudget.Duration > c.QualityFrameBudget.Duration:
		return fmt.Errorf("framegov: performance_frame_budget (%v) must not exceed quality_frame_budget (%v)",
			c.PerformanceFrameBudget.Duration, c.QualityFrameBudget.Duration)
	case c.GovernorWindow.Duration <= 0:
		return fmt.Errorf("framegov: governor_window must be positive, got %v", c.GovernorWindow.Duration)
	case c.GovernorOverBudgetThreshold < 1:
		return fmt.Errorf("framegov: governor_over_budget_threshold must be at least 1, got %d", c.GovernorOverBudgetThreshold)
	case c.GovernorHeadroomRatio <= 0 || c.GovernorHeadroomRatio >= 1:
		return fmt.Errorf("framegov: governor_headroom_ratio must be in (0, 1), got %v", c.GovernorHeadroomRatio)
	case c.GovernorExpandFactor <= 1:
		return fmt.Errorf("framegov: governor_expand_factor must exceed 1, got %v", c.GovernorExpandFactor)
	case c.GovernorContractFactor <= 0 || c.GovernorContractFactor >= 1:
		return fmt.Errorf("framegov: governor_contract_factor must be in (0, 1), got %v", c.GovernorContractFactor)
	case c.MaxFrameInterval.Duration <= 0:
		return fmt.Errorf("framegov: max_frame_interval must be positive, got %v", c.MaxFrameInterval.Duration)
	case c.ModeCooldown.Duration <= 0:
		return fmt.Errorf("framegov: mode_cooldown must be positive, got %v", c.ModeCooldown.Duration)
	case c.EnterPerformanceDropRate <= c.RestoreQualityDropRate:
		return fmt.Errorf("framegov: enter_performance_drop_rate (%v) must exceed restore_quality_drop_rate (%v)",
			c.EnterPerformanceDropRate, c.RestoreQualityDropRate)
	case c.EnterPerformanceFrameTime.Duration <= c.RestoreQualityFrameTime.Duration:
		return fmt.Errorf("framegov: enter_performance_frame_time (%v) must exceed restore_quality_frame_time (%v)",
			c.EnterPerformanceFrameTime.Duration, c.RestoreQualityFrameTime.Duration)
	case c.BackgroundFloorInterval.Duration <= 0:
		return fmt.Errorf("framegov: background_floor_interval must be positive, got %v", c.BackgroundFloorInterval.Duration)
	case c.DropFrameFactor < 1:
		return fmt.Errorf("framegov: drop_frame_factor must be at least 1, got %v", c.DropFrameFactor)
	case c.TickRate.Duration <= 0:
		return fmt.Errorf("framegov: tick_rate must be positive, got %v", c.TickRate.Duration)
	}
	return nil
}

// LoadConfig reads configuration from a TOML file. Unset keys keep their
// defaults; a missing file yields DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	defer f.Close()
	return LoadConfigReader(f)
}

// LoadConfigReader reads TOML configuration from an io.Reader, applied on
// top of DefaultConfig, and validates the result.
func LoadConfigReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
