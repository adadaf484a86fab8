// Package workflow drives agent registration: discovery, confirmation,
// submission and status polling. State changes go through the pure
// Transition function; the Controller serializes them and runs the I/O.
package workflow

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/wau-ai/wau-cli/internal/agentcard"
	"github.com/wau-ai/wau-cli/internal/i18n"
	"github.com/wau-ai/wau-cli/internal/registry"
)

// Step is a page of the registration workflow.
type Step string

const (
	StepDiscovery  Step = "discovery"
	StepConfirm    Step = "confirm"
	StepProcessing Step = "processing"
)

// Steps lists the workflow steps in display order.
var Steps = []Step{StepDiscovery, StepConfirm, StepProcessing}

var (
	// ErrInvalidTransition is returned for events the current step does not
	// accept. The state is left unchanged.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrBusy is returned while a discovery or registration is in flight.
	ErrBusy = errors.New("operation already in progress")

	// ErrURLRequired is returned when discovery is started without a URL.
	ErrURLRequired = errors.New("agent url is required")

	// ErrStaleEvent marks an event from a superseded attempt. It is dropped.
	ErrStaleEvent = errors.New("stale event")

	// ErrPollDeadline is returned when an audit task does not finish within
	// the configured deadline.
	ErrPollDeadline = errors.New("poll deadline exceeded")
)

// Where the form came from.
const (
	SourceRegistry = "registry"
	SourceAgent    = "agent"
	SourceFile     = "file"
)

// Severity classifies a log entry.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarn    Severity = "warn"
	SeverityError   Severity = "error"
)

// LogEntry is one line of the processing transcript.
type LogEntry struct {
	Time     time.Time `json:"time"`
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
}

// Timestamp renders the entry time as local wall-clock time.
func (e LogEntry) Timestamp() string {
	return e.Time.Local().Format("15:04:05")
}

// State is a snapshot of the workflow.
type State struct {
	Step        Step                 `json:"step"`
	URL         string               `json:"url"`
	Source      string               `json:"source,omitempty"`
	Form        agentcard.Form       `json:"form"`
	Logs        []LogEntry           `json:"logs"`
	TaskID      string               `json:"task_id,omitempty"`
	Status      *registry.TaskStatus `json:"status,omitempty"`
	Discovering bool                 `json:"discovering"`
	Registering bool                 `json:"registering"`
	Success     bool                 `json:"success"`
	Duplicate   bool                 `json:"duplicate"`
	Error       string               `json:"error,omitempty"`
	Generation  uint64               `json:"generation"`
	AttemptID   string               `json:"attempt_id,omitempty"`
}

// NewState returns the initial workflow state.
func NewState() State {
	return State{
		Step: StepDiscovery,
		Form: agentcard.NewForm(),
		Logs: []LogEntry{},
	}
}

// Clone returns a deep copy that shares nothing with s.
func (s State) Clone() State {
	out := s
	out.Form = s.Form.Clone()
	out.Logs = append([]LogEntry(nil), s.Logs...)
	if out.Logs == nil {
		out.Logs = []LogEntry{}
	}
	if s.Status != nil {
		status := *s.Status
		if s.Status.TrustScore != nil {
			score := *s.Status.TrustScore
			status.TrustScore = &score
		}
		out.Status = &status
	}
	return out
}

// Terminal reports whether the current attempt has finished.
func (s State) Terminal() bool {
	return s.Step == StepProcessing && !s.Registering
}

// StepIndex returns the 1-based position of the current step.
func (s State) StepIndex() int {
	for i, step := range Steps {
		if step == s.Step {
			return i + 1
		}
	}
	return 0
}

func (s *State) log(at time.Time, severity Severity, msg string) {
	s.Logs = append(s.Logs, LogEntry{Time: at, Message: msg, Severity: severity})
}

// Event is an input to Transition. Events that carry a Generation are
// dropped with ErrStaleEvent when it no longer matches the state.
type Event interface {
	event()
}

// DiscoverStarted begins discovery of URL.
type DiscoverStarted struct {
	URL string
}

// DiscoverSucceeded delivers the decoded card.
type DiscoverSucceeded struct {
	Generation uint64
	Form       agentcard.Form
}

// DiscoverFailed ends discovery. An empty Message uses the generic text.
type DiscoverFailed struct {
	Generation uint64
	Message    string
}

// FormLoaded places a card obtained outside the registry in the confirm
// step. Source tells where it came from.
type FormLoaded struct {
	Form   agentcard.Form
	Source string
}

// FieldEdited sets one form field by key.
type FieldEdited struct {
	Key   string
	Value string
}

// Cancelled discards the form and returns to discovery.
type Cancelled struct{}

// SubmitStarted begins a registration attempt.
type SubmitStarted struct {
	AttemptID string
	At        time.Time
}

// SubmitAccepted records the audit task id.
type SubmitAccepted struct {
	Generation uint64
	TaskID     string
	At         time.Time
}

// SubmitDuplicate reports a 409 from the registry.
type SubmitDuplicate struct {
	Generation uint64
	At         time.Time
}

// SubmitFailed reports any other registration failure.
type SubmitFailed struct {
	Generation uint64
	Message    string
	At         time.Time
}

// StatusReceived carries one poll result.
type StatusReceived struct {
	Generation uint64
	Status     registry.TaskStatus
	At         time.Time
}

// PollTimedOut ends an attempt whose task outlived the poll deadline.
type PollTimedOut struct {
	Generation uint64
	At         time.Time
}

// BackRequested returns from a failed attempt to the form.
type BackRequested struct{}

// StartOverRequested resets the workflow after a success.
type StartOverRequested struct{}

func (DiscoverStarted) event()    {}
func (DiscoverSucceeded) event()  {}
func (DiscoverFailed) event()     {}
func (FormLoaded) event()         {}
func (FieldEdited) event()        {}
func (Cancelled) event()          {}
func (SubmitStarted) event()      {}
func (SubmitAccepted) event()     {}
func (SubmitDuplicate) event()    {}
func (SubmitFailed) event()       {}
func (StatusReceived) event()     {}
func (PollTimedOut) event()       {}
func (BackRequested) event()      {}
func (StartOverRequested) event() {}

// Transition applies ev to s. ErrInvalidTransition, ErrBusy and
// ErrStaleEvent leave the state unchanged. Validation errors
// (ErrURLRequired, agentcard.ErrRequiredFields) return the state with its
// Error message set. The input state is never modified.
func Transition(s State, ev Event) (State, error) {
	next := s.Clone()

	switch ev := ev.(type) {
	case DiscoverStarted:
		if s.Step != StepDiscovery {
			return s, ErrInvalidTransition
		}
		if s.Discovering {
			return s, ErrBusy
		}
		url := strings.TrimSpace(ev.URL)
		if url == "" {
			next.Error = i18n.T(i18n.MsgURLRequired)
			return next, ErrURLRequired
		}
		next.URL = url
		next.Source = SourceRegistry
		next.Error = ""
		next.Discovering = true
		next.Generation++

	case DiscoverSucceeded:
		if err := checkDiscovering(s, ev.Generation); err != nil {
			return s, err
		}
		next.Form = ev.Form.Clone()
		next.Discovering = false
		next.Error = ""
		next.Step = StepConfirm

	case DiscoverFailed:
		if err := checkDiscovering(s, ev.Generation); err != nil {
			return s, err
		}
		next.Discovering = false
		next.Error = ev.Message
		if next.Error == "" {
			next.Error = i18n.T(i18n.MsgDiscoverFailed)
		}

	case FormLoaded:
		if s.Step != StepDiscovery {
			return s, ErrInvalidTransition
		}
		if s.Discovering {
			return s, ErrBusy
		}
		next.URL = strings.TrimSpace(ev.Form.URL)
		next.Source = ev.Source
		next.Form = ev.Form.Clone()
		next.Error = ""
		next.Step = StepConfirm
		next.Generation++

	case FieldEdited:
		if s.Step != StepConfirm {
			return s, ErrInvalidTransition
		}
		if err := next.Form.Set(ev.Key, ev.Value); err != nil {
			return s, err
		}

	case Cancelled:
		if s.Step != StepConfirm {
			return s, ErrInvalidTransition
		}
		next.Step = StepDiscovery
		next.Form = agentcard.NewForm()
		next.Error = ""
		next.Generation++

	case SubmitStarted:
		if s.Step != StepConfirm {
			return s, ErrInvalidTransition
		}
		if s.Registering {
			return s, ErrBusy
		}
		if err := s.Form.Validate(); err != nil {
			next.Error = i18n.T(i18n.MsgRequiredFields)
			return next, err
		}
		next.Logs = []LogEntry{}
		next.log(ev.At, SeverityInfo, i18n.T(i18n.MsgStartRegistration, strings.TrimSpace(s.Form.Name)))
		next.Generation++
		next.AttemptID = ev.AttemptID
		next.Step = StepProcessing
		next.Registering = true
		next.Success = false
		next.Duplicate = false
		next.Error = ""
		next.TaskID = ""
		next.Status = nil

	case SubmitAccepted:
		if err := checkRegistering(s, ev.Generation); err != nil {
			return s, err
		}
		if strings.TrimSpace(ev.TaskID) == "" {
			failRegistration(&next, ev.At, "")
			break
		}
		next.TaskID = ev.TaskID
		next.log(ev.At, SeverityInfo, i18n.T(i18n.MsgTaskCreated, ev.TaskID))
		next.log(ev.At, SeverityInfo, i18n.T(i18n.MsgAuditQueued))

	case SubmitDuplicate:
		if err := checkRegistering(s, ev.Generation); err != nil {
			return s, err
		}
		next.log(ev.At, SeverityWarn, i18n.T(i18n.MsgDuplicateLog))
		next.Error = i18n.T(i18n.MsgDuplicate)
		next.Duplicate = true
		next.Registering = false

	case SubmitFailed:
		if err := checkRegistering(s, ev.Generation); err != nil {
			return s, err
		}
		failRegistration(&next, ev.At, ev.Message)

	case StatusReceived:
		if s.Step != StepProcessing {
			return s, ErrInvalidTransition
		}
		if ev.Generation != s.Generation {
			return s, ErrStaleEvent
		}
		if !s.Registering {
			// Terminal states absorb late or repeated responses.
			return s, nil
		}
		status := ev.Status
		next.Status = &status
		switch {
		case status.IsSuccess():
			next.Success = true
			next.Registering = false
			next.log(ev.At, SeveritySuccess, i18n.T(i18n.MsgRegistered, formatScore(status.TrustScore)))
		case status.IsFailure():
			failRegistration(&next, ev.At, status.Error)
		case status.Progress != "":
			next.log(ev.At, SeverityInfo, i18n.T(i18n.MsgProcessing, status.Progress))
		}

	case PollTimedOut:
		if s.Step != StepProcessing {
			return s, ErrInvalidTransition
		}
		if ev.Generation != s.Generation {
			return s, ErrStaleEvent
		}
		if !s.Registering {
			return s, nil
		}
		next.Error = i18n.T(i18n.MsgPollTimeout)
		next.Registering = false
		next.log(ev.At, SeverityError, next.Error)

	case BackRequested:
		if s.Step != StepProcessing || s.Registering || s.Duplicate || s.Success || s.Error == "" {
			return s, ErrInvalidTransition
		}
		next.Step = StepConfirm
		next.Error = ""
		next.Generation++

	case StartOverRequested:
		if s.Step != StepProcessing || !s.Success {
			return s, ErrInvalidTransition
		}
		next = NewState()
		next.Generation = s.Generation + 1

	default:
		return s, ErrInvalidTransition
	}

	return next, nil
}

func checkDiscovering(s State, generation uint64) error {
	if generation != s.Generation {
		return ErrStaleEvent
	}
	if s.Step != StepDiscovery || !s.Discovering {
		return ErrInvalidTransition
	}
	return nil
}

func checkRegistering(s State, generation uint64) error {
	if generation != s.Generation {
		return ErrStaleEvent
	}
	if s.Step != StepProcessing || !s.Registering {
		return ErrInvalidTransition
	}
	return nil
}

// failRegistration ends the attempt with msg, or the generic message when
// msg is empty.
func failRegistration(s *State, at time.Time, msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		s.Error = i18n.T(i18n.MsgRegisterFailed)
		s.log(at, SeverityError, s.Error)
	} else {
		s.Error = msg
		s.log(at, SeverityError, i18n.T(i18n.MsgRegisterFailedWith, msg))
	}
	s.Registering = false
}

func formatScore(score *float64) string {
	if score == nil {
		return i18n.T(i18n.MsgTrustScoreNA)
	}
	return strconv.FormatFloat(*score, 'f', -1, 64)
}
