package workflow

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wau-ai/wau-cli/internal/agentcard"
	"github.com/wau-ai/wau-cli/internal/registry"
	"github.com/wau-ai/wau-cli/internal/telemetry"
)

func newTestController(t *testing.T, reg *fakeRegistry, timer *fakeTimer, opts ...Option) *Controller {
	t.Helper()
	if timer == nil {
		timer = &fakeTimer{deadline: time.Hour}
	}
	poller := NewPoller(reg, testPollConfig(), WithAfter(timer.after), WithPollLogger(telemetry.Discard()))
	opts = append([]Option{
		WithPoller(poller),
		WithLogger(telemetry.Discard()),
		WithClock(func() time.Time { return testTime }),
	}, opts...)
	c := NewController(reg, opts...)
	t.Cleanup(c.Close)
	return c
}

func discoverAndSubmit(t *testing.T, c *Controller) error {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, c.Discover(ctx, "https://foo.example.com"))
	if err := c.Submit(ctx); err != nil {
		return err
	}
	return c.Wait(ctx)
}

func TestController_Transcript(t *testing.T) {
	reg := &fakeRegistry{
		form:   testForm(),
		taskID: "t1",
		replies: []reply{
			{status: registry.TaskStatus{Status: "processing", Progress: "scanning"}},
			{status: registry.TaskStatus{Status: "success", TrustScore: score(87)}},
		},
	}
	c := newTestController(t, reg, nil)

	require.NoError(t, discoverAndSubmit(t, c))

	s := c.State()
	assert.True(t, s.Success)
	assert.False(t, s.Registering)
	assert.Equal(t, "t1", s.TaskID)
	assert.Len(t, s.AttemptID, 26)
	assert.Equal(t, []string{
		"Starting registration for Foo",
		"Task created: t1",
		"Added to audit queue",
		"Processing: scanning...",
		"Registration successful! Trust Score: 87",
	}, messages(s.Logs))

	registered, statusCalls := reg.calls()
	assert.Equal(t, 1, registered)
	assert.Equal(t, 2, statusCalls)
}

func TestController_DefaultsSubmitted(t *testing.T) {
	form := agentcard.NewForm()
	form.Name = "Foo"
	form.Description = "Bar"
	reg := &fakeRegistry{form: form, taskID: "t1", replies: []reply{{status: registry.TaskStatus{Status: "success"}}}}
	c := newTestController(t, reg, nil)

	require.NoError(t, discoverAndSubmit(t, c))

	require.Len(t, reg.registered, 1)
	got := reg.registered[0]
	assert.Equal(t, []string{}, got.Capabilities)
	assert.Equal(t, []string{}, got.Tags)
	assert.Equal(t, 0.0, got.Price)
	assert.Equal(t, 0.99, got.SLA)
	assert.Equal(t, "USD", got.Currency)
	assert.Equal(t, "General", got.Domain)
}

func TestController_Duplicate(t *testing.T) {
	reg := &fakeRegistry{
		form:        testForm(),
		registerErr: &registry.APIError{Op: "register", StatusCode: http.StatusConflict, Err: registry.ErrDuplicate},
	}
	c := newTestController(t, reg, nil)

	err := discoverAndSubmit(t, c)
	assert.True(t, registry.IsDuplicate(err))

	s := c.State()
	assert.True(t, s.Duplicate)
	assert.False(t, s.Registering)
	assert.Equal(t, "This agent has already been registered", s.Error)

	_, statusCalls := reg.calls()
	assert.Zero(t, statusCalls)
	assert.NoError(t, c.Wait(context.Background()))
}

func TestController_RegisterFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"detail", &registry.APIError{Op: "register", StatusCode: 400, Detail: "name is required"}, "name is required"},
		{"no detail", &registry.APIError{Op: "register", StatusCode: 500}, "Registration failed"},
		{"transport", errors.New("register request failed: connection refused"), "register request failed: connection refused"},
		{"missing task id", registry.ErrMissingTaskID, registry.ErrMissingTaskID.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &fakeRegistry{form: testForm(), registerErr: tt.err}
			c := newTestController(t, reg, nil)

			err := discoverAndSubmit(t, c)
			assert.ErrorIs(t, err, tt.err)

			s := c.State()
			assert.Equal(t, tt.want, s.Error)
			assert.False(t, s.Registering)
			assert.False(t, s.Duplicate)
			require.NoError(t, c.Back())
			assert.Equal(t, StepConfirm, c.State().Step)
		})
	}
}

func TestController_SubmitRequiresFields(t *testing.T) {
	form := testForm()
	form.Description = " "
	reg := &fakeRegistry{form: form, taskID: "t1"}
	c := newTestController(t, reg, nil)

	require.NoError(t, c.Discover(context.Background(), "https://foo.example.com"))
	err := c.Submit(context.Background())
	assert.ErrorIs(t, err, agentcard.ErrRequiredFields)

	registered, _ := reg.calls()
	assert.Zero(t, registered)
	assert.Equal(t, StepConfirm, c.State().Step)
	assert.Equal(t, "Name and description are required", c.State().Error)
}

func TestController_TransientStatusError(t *testing.T) {
	reg := &fakeRegistry{
		form:   testForm(),
		taskID: "t1",
		replies: []reply{
			{err: errors.New("status request failed: connection reset")},
			{status: registry.TaskStatus{Status: "success", TrustScore: score(87)}},
		},
	}
	timer := &fakeTimer{deadline: time.Hour}
	var snapshots []State
	var mu sync.Mutex
	c := newTestController(t, reg, timer)
	c.OnChange(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		snapshots = append(snapshots, s)
	})

	require.NoError(t, discoverAndSubmit(t, c))

	assert.True(t, c.State().Success)
	assert.Equal(t, []time.Duration{3000 * time.Millisecond}, timer.recorded())

	mu.Lock()
	defer mu.Unlock()
	for _, s := range snapshots {
		assert.NotContains(t, s.Error, "connection reset")
		for _, l := range s.Logs {
			assert.NotContains(t, l.Message, "connection reset")
		}
	}
}

func TestController_Deadline(t *testing.T) {
	reg := &fakeRegistry{form: testForm(), taskID: "t1"}
	timer := &fakeTimer{deadline: time.Hour, fireDeadline: true}
	metrics := telemetry.NewMetrics()
	c := newTestController(t, reg, timer, WithMetrics(metrics))

	err := discoverAndSubmit(t, c)
	assert.ErrorIs(t, err, ErrPollDeadline)

	s := c.State()
	assert.False(t, s.Registering)
	assert.Equal(t, "Registration is taking longer than expected", s.Error)

	path := t.TempDir() + "/metrics.prom"
	require.NoError(t, metrics.WriteFile(path))
	assert.FileExists(t, path)
}

func TestController_CancelStopsPolling(t *testing.T) {
	reg := &fakeRegistry{form: testForm(), taskID: "t1", block: make(chan struct{})}
	c := newTestController(t, reg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Discover(ctx, "https://foo.example.com"))
	require.NoError(t, c.Submit(ctx))
	cancel()

	err := c.Wait(context.Background())
	assert.ErrorIs(t, err, context.Canceled)

	// Nothing was received, so the attempt is still open
	assert.True(t, c.State().Registering)
}

func TestController_StaleChainDropped(t *testing.T) {
	// Status blocks until released, then reports a failure
	block := make(chan struct{})
	reg := &fakeRegistry{form: testForm(), taskID: "t1", block: block,
		replies: []reply{{status: registry.TaskStatus{Status: "failed", Error: "late"}}}}
	c := newTestController(t, reg, nil)

	ctx := context.Background()
	require.NoError(t, c.Discover(ctx, "https://foo.example.com"))
	require.NoError(t, c.Submit(ctx))

	// A newer generation owns the state before the response arrives
	c.mu.Lock()
	c.state.Generation++
	c.mu.Unlock()
	before := c.State()
	close(block)

	require.NoError(t, c.Wait(ctx))
	after := c.State()
	assert.Equal(t, before, after)
	assert.Empty(t, after.Error)
	assert.True(t, after.Registering)
}

func TestController_OnChangeOrder(t *testing.T) {
	reg := &fakeRegistry{
		form:    testForm(),
		taskID:  "t1",
		replies: []reply{{status: registry.TaskStatus{Status: "success"}}},
	}
	c := newTestController(t, reg, nil)

	var mu sync.Mutex
	var steps []string
	c.OnChange(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		label := string(s.Step)
		switch {
		case s.Discovering:
			label += "+discovering"
		case s.Registering:
			label += "+registering"
		case s.Success:
			label += "+success"
		}
		steps = append(steps, label)
	})

	require.NoError(t, discoverAndSubmit(t, c))
	require.NoError(t, c.StartOver())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"discovery+discovering",
		"confirm",
		"processing+registering",
		"processing+registering",
		"processing+success",
		"discovery",
	}, steps)
}

func TestController_DiscoverErrors(t *testing.T) {
	c := newTestController(t, &fakeRegistry{}, nil)
	assert.ErrorIs(t, c.Discover(context.Background(), ""), ErrURLRequired)
	assert.Equal(t, "Please enter the agent URL", c.State().Error)

	reg := &fakeRegistry{discoverErr: &registry.APIError{Op: "discover", StatusCode: 404, Detail: "no agent card at that URL"}}
	c = newTestController(t, reg, nil)
	err := c.Discover(context.Background(), "https://foo.example.com")
	require.Error(t, err)
	s := c.State()
	assert.Equal(t, StepDiscovery, s.Step)
	assert.False(t, s.Discovering)
	assert.Equal(t, "no agent card at that URL", s.Error)

	reg = &fakeRegistry{discoverErr: &agentcard.InvalidCardError{Violations: []string{"name: Invalid type"}}}
	c = newTestController(t, reg, nil)
	require.Error(t, c.Discover(context.Background(), "https://foo.example.com"))
	assert.True(t, strings.HasPrefix(c.State().Error, "invalid agent card"))
}

func TestController_EditCancelLoad(t *testing.T) {
	c := newTestController(t, &fakeRegistry{}, nil)

	assert.ErrorIs(t, c.Edit("name", "x"), ErrInvalidTransition)
	assert.ErrorIs(t, c.Load(agentcard.NewForm(), SourceFile), agentcard.ErrRequiredFields)

	require.NoError(t, c.Load(testForm(), SourceFile))
	require.NoError(t, c.Edit("price", "0.05"))
	assert.Equal(t, "0.05", c.State().Form.Price)
	assert.Equal(t, StepConfirm, c.State().Step)

	require.NoError(t, c.Cancel())
	assert.Equal(t, StepDiscovery, c.State().Step)
	assert.Equal(t, agentcard.NewForm(), c.State().Form)
}

func TestController_LoadWithoutURL(t *testing.T) {
	c := newTestController(t, &fakeRegistry{}, nil)

	form := testForm()
	form.URL = ""
	require.NoError(t, c.Load(form, SourceFile))

	st := c.State()
	assert.Equal(t, StepConfirm, st.Step)
	assert.Empty(t, st.URL)
	assert.Equal(t, SourceFile, st.Source)
	assert.Equal(t, form.Name, st.Form.Name)
}
