package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/wau-ai/wau-cli/internal/agentcard"
	"github.com/wau-ai/wau-cli/internal/registry"
	"github.com/wau-ai/wau-cli/internal/telemetry"
)

// Registry is the remote API the controller drives.
type Registry interface {
	StatusFetcher
	Discover(ctx context.Context, agentURL string) (agentcard.Form, error)
	Register(ctx context.Context, reg agentcard.Registration) (string, error)
}

// Controller owns the workflow state. All mutations go through Transition
// under one mutex; observers registered with OnChange receive snapshots in
// the order the changes were made.
type Controller struct {
	mu        sync.Mutex
	state     State
	registry  Registry
	poller    *Poller
	listeners []func(State)
	metrics   *telemetry.Metrics
	logger    *slog.Logger
	now       func() time.Time

	// notifyMu is taken before mu is released so listeners see changes in
	// order without holding mu.
	notifyMu sync.Mutex

	cancelPoll context.CancelFunc
	pollDone   chan struct{}
	pollErr    error
}

// Option configures a Controller.
type Option func(*Controller)

// WithPoller replaces the default poller.
func WithPoller(p *Poller) Option {
	return func(c *Controller) {
		c.poller = p
	}
}

// WithMetrics records registration outcomes.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithLogger sets the logger for transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock replaces time.Now for log timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// NewController creates a controller in the discovery step.
func NewController(reg Registry, opts ...Option) *Controller {
	c := &Controller{
		state:    NewState(),
		registry: reg,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.poller == nil {
		c.poller = NewPoller(reg, DefaultPollConfig(), WithPollMetrics(c.metrics), WithPollLogger(c.logger))
	}
	return c
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// OnChange registers fn to receive a snapshot after every change. fn runs
// on the goroutine that made the change and must not call mutating
// Controller methods.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Discover fetches the card at agentURL through the registry and moves to
// the confirm step on success.
func (c *Controller) Discover(ctx context.Context, agentURL string) error {
	st, err := c.apply(DiscoverStarted{URL: agentURL})
	if err != nil {
		return err
	}

	form, err := c.registry.Discover(ctx, st.URL)
	if err != nil {
		c.apply(DiscoverFailed{Generation: st.Generation, Message: errorMessage(err)})
		return err
	}
	c.apply(DiscoverSucceeded{Generation: st.Generation, Form: form})
	return nil
}

// Load skips discovery and places form in the confirm step. source is
// SourceFile or SourceAgent. A form with neither name nor URL is rejected.
func (c *Controller) Load(form agentcard.Form, source string) error {
	if strings.TrimSpace(form.URL) == "" && strings.TrimSpace(form.Name) == "" {
		return agentcard.ErrRequiredFields
	}
	_, err := c.apply(FormLoaded{Form: form, Source: source})
	return err
}

// Edit sets one form field. Only allowed in the confirm step.
func (c *Controller) Edit(key, value string) error {
	_, err := c.apply(FieldEdited{Key: key, Value: value})
	return err
}

// Cancel discards the form and returns to discovery.
func (c *Controller) Cancel() error {
	_, err := c.apply(Cancelled{})
	return err
}

// Submit registers the confirmed form. It returns once the registry has
// answered; on acceptance the task is polled in the background until it
// finishes, ctx is cancelled, or Close is called. Use Wait to block on
// the polling.
func (c *Controller) Submit(ctx context.Context) error {
	st, err := c.apply(SubmitStarted{AttemptID: newAttemptID(c.now()), At: c.now()})
	if err != nil {
		return err
	}
	gen := st.Generation
	logger := c.logger.With("attempt_id", st.AttemptID)
	logger.Info("submitting registration", "name", st.Form.Name, "url", st.Form.URL)

	taskID, err := c.registry.Register(ctx, st.Form.Registration())
	switch {
	case registry.IsDuplicate(err):
		c.apply(SubmitDuplicate{Generation: gen, At: c.now()})
		return err
	case err != nil:
		c.apply(SubmitFailed{Generation: gen, Message: errorMessage(err), At: c.now()})
		return err
	}

	if _, err := c.apply(SubmitAccepted{Generation: gen, TaskID: taskID, At: c.now()}); err != nil {
		return err
	}
	logger.Info("registration accepted", "task_id", taskID)
	c.startPolling(ctx, gen, taskID)
	return nil
}

// Back returns from a failed attempt to the confirm step.
func (c *Controller) Back() error {
	_, err := c.apply(BackRequested{})
	return err
}

// StartOver resets the workflow after a successful registration.
func (c *Controller) StartOver() error {
	_, err := c.apply(StartOverRequested{})
	return err
}

// Wait blocks until the current poll chain ends and returns its error:
// nil for a terminal status, ErrPollDeadline, or a context error. It
// returns nil immediately when nothing is being polled.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.pollDone
	c.mu.Unlock()
	if done == nil {
		return nil
	}

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pollErr
}

// Close stops any polling and waits for it to exit.
func (c *Controller) Close() {
	c.mu.Lock()
	cancel, done := c.cancelPoll, c.pollDone
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (c *Controller) startPolling(ctx context.Context, gen uint64, taskID string) {
	pollCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	c.mu.Lock()
	if c.cancelPoll != nil {
		c.cancelPoll()
	}
	c.cancelPoll = cancel
	c.pollDone = done
	c.pollErr = nil
	c.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()

		err := c.poller.Run(pollCtx, taskID, func(status registry.TaskStatus) {
			if _, err := c.apply(StatusReceived{Generation: gen, Status: status, At: c.now()}); errors.Is(err, ErrStaleEvent) {
				// A newer attempt owns the state; stop this chain.
				cancel()
			}
		})
		if errors.Is(err, ErrPollDeadline) {
			c.apply(PollTimedOut{Generation: gen, At: c.now()})
		}

		c.mu.Lock()
		if c.pollDone == done {
			c.pollErr = err
		}
		c.mu.Unlock()
	}()
}

// apply runs Transition under the lock and notifies listeners when the
// state was updated.
func (c *Controller) apply(ev Event) (State, error) {
	c.mu.Lock()
	prev := c.state
	next, err := Transition(prev, ev)
	updated := err == nil || errors.Is(err, ErrURLRequired) || errors.Is(err, agentcard.ErrRequiredFields)
	if !updated {
		c.mu.Unlock()
		c.logger.Debug("workflow event rejected", "event", fmt.Sprintf("%T", ev), "step", prev.Step, "error", err)
		return prev.Clone(), err
	}

	c.state = next
	if next.Generation != prev.Generation && c.cancelPoll != nil {
		// A new attempt or a reset supersedes the running poll chain.
		c.cancelPoll()
		c.cancelPoll = nil
	}
	listeners := append([]func(State){}, c.listeners...)
	snapshot := next.Clone()
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	c.logger.Debug("workflow transition",
		"event", fmt.Sprintf("%T", ev),
		"from", prev.Step,
		"to", next.Step,
		"generation", next.Generation,
		"attempt_id", next.AttemptID,
	)
	c.observe(prev, next, ev)

	for _, fn := range listeners {
		fn(snapshot.Clone())
	}
	return snapshot, err
}

// observe records the outcome when an attempt finishes.
func (c *Controller) observe(prev, next State, ev Event) {
	if !prev.Registering || next.Registering {
		return
	}
	outcome := "failed"
	switch {
	case next.Success:
		outcome = "success"
	case next.Duplicate:
		outcome = "duplicate"
	default:
		if _, ok := ev.(PollTimedOut); ok {
			outcome = "timeout"
		}
	}
	c.metrics.ObserveRegistration(outcome)
}

// errorMessage extracts the text shown to the operator. Registry errors
// without a detail yield "" so the generic message is used.
func errorMessage(err error) string {
	var apiErr *registry.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	var invalid *agentcard.InvalidCardError
	if errors.As(err, &invalid) {
		return invalid.Error()
	}
	return err.Error()
}

func newAttemptID(t time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
