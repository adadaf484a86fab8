package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/wau-ai/wau-cli/internal/registry"
	"github.com/wau-ai/wau-cli/internal/telemetry"
)

// Default poll timing.
const (
	DefaultPollInterval  = 1500 * time.Millisecond
	DefaultRetryInterval = 3000 * time.Millisecond
	DefaultPollDeadline  = 15 * time.Minute
)

// StatusFetcher reads the state of an audit task.
type StatusFetcher interface {
	Status(ctx context.Context, taskID string) (registry.TaskStatus, error)
}

// PollConfig controls poll timing. A zero Deadline polls until the task
// finishes or the context is cancelled.
type PollConfig struct {
	Interval      time.Duration
	RetryInterval time.Duration
	Deadline      time.Duration
}

// DefaultPollConfig returns the standard timing.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		Interval:      DefaultPollInterval,
		RetryInterval: DefaultRetryInterval,
		Deadline:      DefaultPollDeadline,
	}
}

// Poller follows one audit task to a terminal status.
type Poller struct {
	fetcher StatusFetcher
	cfg     PollConfig
	after   func(time.Duration) <-chan time.Time
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithAfter replaces time.After, for tests.
func WithAfter(after func(time.Duration) <-chan time.Time) PollerOption {
	return func(p *Poller) {
		if after != nil {
			p.after = after
		}
	}
}

// WithPollMetrics counts poll attempts by result.
func WithPollMetrics(m *telemetry.Metrics) PollerOption {
	return func(p *Poller) {
		p.metrics = m
	}
}

// WithPollLogger sets the logger for transient failures.
func WithPollLogger(logger *slog.Logger) PollerOption {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPoller creates a poller. Non-positive intervals take their defaults.
func NewPoller(fetcher StatusFetcher, cfg PollConfig, opts ...PollerOption) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}
	if cfg.Deadline < 0 {
		cfg.Deadline = 0
	}
	p := &Poller{
		fetcher: fetcher,
		cfg:     cfg,
		after:   time.After,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the effective timing.
func (p *Poller) Config() PollConfig {
	return p.cfg
}

// Run polls taskID and hands every status response to emit, in order.
// Failed queries are never passed to emit. Transport, parse, 429 and 5xx
// failures are retried after RetryInterval, or after the server's
// Retry-After when that is longer; other API errors after Interval. Run
// returns nil after a terminal status, ErrPollDeadline when the deadline
// passes, or the context error on cancellation.
func (p *Poller) Run(ctx context.Context, taskID string, emit func(registry.TaskStatus)) error {
	var deadline <-chan time.Time
	if p.cfg.Deadline > 0 {
		deadline = p.after(p.cfg.Deadline)
	}

	for attempt := 1; ; attempt++ {
		status, err := p.fetcher.Status(ctx, taskID)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		wait := p.cfg.Interval
		if err != nil {
			wait = p.retryDelay(err)
			p.metrics.ObservePoll("transient_error")
			p.logger.Debug("status poll failed, retrying",
				"task_id", taskID,
				"attempt", attempt,
				"retry_in", wait,
				"error", err,
			)
		} else {
			p.metrics.ObservePoll(pollResult(status))
			emit(status)
			if status.IsTerminal() {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return ErrPollDeadline
		case <-p.after(wait):
		}
	}
}

func (p *Poller) retryDelay(err error) time.Duration {
	var apiErr *registry.APIError
	if !errors.As(err, &apiErr) {
		return p.cfg.RetryInterval
	}
	if !apiErr.Transient() {
		return p.cfg.Interval
	}
	return max(p.cfg.RetryInterval, apiErr.RetryAfter)
}

func pollResult(s registry.TaskStatus) string {
	switch s.Status {
	case registry.StatusPending, registry.StatusProcessing,
		registry.StatusSuccess, registry.StatusFailed, registry.StatusError:
		return s.Status
	}
	return "other"
}
