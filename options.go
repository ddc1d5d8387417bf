package framegov

import (
	"github.com/joeycumines/logiface"
)

// schedulerOptions holds configuration resolved during Scheduler creation.
type schedulerOptions struct {
	cfg          *Config
	logger       *logiface.Logger[logiface.Event]
	source       TickSource
	tierProvider TierProvider
	flushSink    Flusher
}

// Option configures a Scheduler instance.
type Option interface {
	apply(*schedulerOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyFunc func(*schedulerOptions) error
}

func (o *optionImpl) apply(opts *schedulerOptions) error {
	return o.applyFunc(opts)
}

// WithConfig supplies a validated configuration. The config is copied;
// later mutation of the argument has no effect.
func WithConfig(cfg *Config) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		if cfg == nil {
			return nil
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		c := *cfg
		opts.cfg = &c
		return nil
	}}
}

// WithLogger attaches a structured logger. The scheduler logs duplicate
// registrations and budget overruns at warning level, consumer panics at
// error level, and mode transitions at info level. A nil logger disables
// logging (the default).
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithTickSource supplies the host tick source. The default is a
// [TickerSource] at the configured tick rate.
func WithTickSource(source TickSource) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.source = source
		return nil
	}}
}

// WithTierProvider supplies the device capability hint consulted once per
// tick; see [Scheduler.SetTierProvider].
func WithTierProvider(provider TierProvider) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.tierProvider = provider
		return nil
	}}
}

// WithFlushSink supplies the sink flushed once per tick after all consumers
// ran; see [Scheduler.SetFlushSink].
func WithFlushSink(sink Flusher) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.flushSink = sink
		return nil
	}}
}

// resolveOptions applies Option instances over the defaults.
func resolveOptions(opts []Option) (*schedulerOptions, error) {
	cfg := &schedulerOptions{
		cfg: DefaultConfig(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue // skip nil options gracefully
		}
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
