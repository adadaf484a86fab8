package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/wau-ai/wau-cli/internal/agentcard"
	"github.com/wau-ai/wau-cli/internal/registry"
)

// reply is one scripted Status response.
type reply struct {
	status registry.TaskStatus
	err    error
}

// fakeRegistry serves scripted responses and records calls.
type fakeRegistry struct {
	mu sync.Mutex

	form        agentcard.Form
	discoverErr error

	taskID      string
	registerErr error
	registered  []agentcard.Registration

	replies     []reply
	statusCalls int
	block       chan struct{} // when set, Status waits on it or ctx
}

func (f *fakeRegistry) Discover(ctx context.Context, agentURL string) (agentcard.Form, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.discoverErr != nil {
		return agentcard.Form{}, f.discoverErr
	}
	form := f.form
	form.URL = agentURL
	return form, nil
}

func (f *fakeRegistry) Register(ctx context.Context, reg agentcard.Registration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, reg)
	if f.registerErr != nil {
		return "", f.registerErr
	}
	return f.taskID, nil
}

func (f *fakeRegistry) Status(ctx context.Context, taskID string) (registry.TaskStatus, error) {
	f.mu.Lock()
	block := f.block
	f.statusCalls++
	var r reply
	switch {
	case len(f.replies) == 0:
		r = reply{status: registry.TaskStatus{Status: registry.StatusPending}}
	case len(f.replies) == 1:
		r = f.replies[0]
	default:
		r = f.replies[0]
		f.replies = f.replies[1:]
	}
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return registry.TaskStatus{}, ctx.Err()
		}
	}
	return r.status, r.err
}

func (f *fakeRegistry) calls() (registered, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.registered), f.statusCalls
}

// fakeTimer replaces time.After. Waits fire immediately and are recorded;
// the deadline fires only when fireDeadline is set, and then waits never
// fire.
type fakeTimer struct {
	mu           sync.Mutex
	deadline     time.Duration
	fireDeadline bool
	waits        []time.Duration
}

func (f *fakeTimer) after(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d == f.deadline {
		if f.fireDeadline {
			ch <- time.Time{}
		}
		return ch
	}
	f.waits = append(f.waits, d)
	if !f.fireDeadline {
		ch <- time.Time{}
	}
	return ch
}

func (f *fakeTimer) recorded() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.waits...)
}

func testPollConfig() PollConfig {
	return PollConfig{
		Interval:      DefaultPollInterval,
		RetryInterval: DefaultRetryInterval,
		Deadline:      time.Hour,
	}
}
