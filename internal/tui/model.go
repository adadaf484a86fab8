// Package tui is the interactive registration wizard. It renders
// workflow snapshots and forwards key presses to a workflow.Controller.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wau-ai/wau-cli/internal/agentcard"
	"github.com/wau-ai/wau-cli/internal/i18n"
	"github.com/wau-ai/wau-cli/internal/workflow"
)

// stateMsg carries a new workflow snapshot into the update loop.
type stateMsg workflow.State

// Controller is the part of workflow.Controller the wizard drives.
type Controller interface {
	State() workflow.State
	Discover(ctx context.Context, url string) error
	Edit(key, value string) error
	Cancel() error
	Submit(ctx context.Context) error
	Back() error
	StartOver() error
}

// Model is the root bubbletea model of the wizard.
type Model struct {
	ctx     context.Context
	ctrl    Controller
	state   workflow.State
	fields  []agentcard.Field
	cursor  int
	editing bool

	url     textinput.Model
	edit    textinput.Model
	spinner spinner.Model

	width     int
	cancelled bool
}

// New creates the wizard model over ctrl. Operations run with ctx.
func New(ctx context.Context, ctrl Controller) Model {
	url := textinput.New()
	url.Placeholder = i18n.T(i18n.UIURLPlaceholder)
	url.Width = 50
	url.PromptStyle = infoStyle
	url.Focus()

	edit := textinput.New()
	edit.Width = 50
	edit.PromptStyle = infoStyle

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = infoStyle

	m := Model{
		ctx:     ctx,
		ctrl:    ctrl,
		url:     url,
		edit:    edit,
		spinner: s,
	}
	m.setState(ctrl.State())
	return m
}

// State returns the last snapshot the wizard rendered.
func (m Model) State() workflow.State {
	return m.state
}

// Cancelled reports whether the user quit the wizard.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case stateMsg:
		m.setState(workflow.State(msg))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			return m, tea.Quit
		}
		switch m.state.Step {
		case workflow.StepDiscovery:
			return m.updateDiscovery(msg)
		case workflow.StepConfirm:
			return m.updateConfirm(msg)
		case workflow.StepProcessing:
			return m.updateProcessing(msg)
		}
	}
	return m, nil
}

func (m Model) updateDiscovery(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.cancelled = true
		return m, tea.Quit
	case tea.KeyEnter:
		if m.state.Discovering {
			return m, nil
		}
		url := m.url.Value()
		return m, m.run(func() error { return m.ctrl.Discover(m.ctx, url) })
	}

	var cmd tea.Cmd
	m.url, cmd = m.url.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		switch msg.Type {
		case tea.KeyEsc:
			m.editing = false
			m.edit.Blur()
			return m, nil
		case tea.KeyEnter:
			m.editing = false
			m.edit.Blur()
			key, value := m.fields[m.cursor].Key, m.edit.Value()
			return m, m.run(func() error { return m.ctrl.Edit(key, value) })
		}
		var cmd tea.Cmd
		m.edit, cmd = m.edit.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.fields)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.fields) == 0 {
			return m, nil
		}
		m.editing = true
		m.edit.SetValue(m.fields[m.cursor].Value)
		m.edit.CursorEnd()
		return m, m.edit.Focus()
	case "ctrl+s":
		return m, m.run(func() error { return m.ctrl.Submit(m.ctx) })
	case "esc":
		return m, m.run(m.ctrl.Cancel)
	}
	return m, nil
}

func (m Model) updateProcessing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.state
	switch msg.Type {
	case tea.KeyEnter:
		if s.Success {
			return m, m.run(m.ctrl.StartOver)
		}
	case tea.KeyEsc:
		if s.Error != "" && !s.Duplicate && !s.Registering {
			return m, m.run(m.ctrl.Back)
		}
	}
	return m, nil
}

// run executes a controller operation off the update loop. Its effects
// arrive as stateMsg through the controller's change listener; errors are
// already reflected in the state.
func (m Model) run(op func() error) tea.Cmd {
	return func() tea.Msg {
		_ = op()
		return nil
	}
}

func (m *Model) setState(s workflow.State) {
	prev := m.state.Step
	m.state = s
	m.fields = s.Form.Fields()
	if m.cursor >= len(m.fields) {
		m.cursor = 0
	}

	if s.Step == workflow.StepDiscovery {
		if prev != workflow.StepDiscovery && s.URL == "" {
			m.url.SetValue("")
		}
		m.url.Focus()
	} else {
		m.url.Blur()
	}
	if s.Step != workflow.StepConfirm {
		m.editing = false
		m.edit.Blur()
	}
}

// View renders the wizard.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(i18n.T(i18n.UITitle)))
	b.WriteString("\n")
	b.WriteString(stepStyle.Render(i18n.T(i18n.UIStepCounter, m.state.StepIndex(), len(workflow.Steps), stepName(m.state.Step))))
	b.WriteString("\n\n")

	switch m.state.Step {
	case workflow.StepDiscovery:
		b.WriteString(m.viewDiscovery())
	case workflow.StepConfirm:
		b.WriteString(m.viewConfirm())
	case workflow.StepProcessing:
		b.WriteString(m.viewProcessing())
	}

	if m.state.Error != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("✗ " + m.state.Error))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render(m.hint()))
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewDiscovery() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(i18n.T(i18n.UIURLPrompt)))
	b.WriteString("\n")
	b.WriteString(m.url.View())
	b.WriteString("\n")
	if m.state.Discovering {
		b.WriteString("\n")
		b.WriteString(m.spinner.View() + " " + i18n.T(i18n.UIDiscovering))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewConfirm() string {
	var rows []string
	for i, f := range m.fields {
		value := f.Value
		if m.editing && i == m.cursor {
			value = m.edit.View()
		}
		label := fmt.Sprintf("%-28s", f.Key)
		if f.Required {
			value += " " + mutedStyle.Render("("+i18n.T(i18n.UIRequiredMarker)+")")
		}
		if i == m.cursor {
			rows = append(rows, selectedStyle.Render("› ")+selectedStyle.Render(label)+" "+value)
			continue
		}
		rows = append(rows, "  "+mutedStyle.Render(label)+" "+value)
	}

	panel := panelStyle
	if m.width > 4 {
		panel = panel.Width(m.width - 4)
	}
	body := panel.Render(strings.Join(rows, "\n"))
	if m.editing {
		body += "\n" + infoStyle.Render(i18n.T(i18n.UIEditingField, m.fields[m.cursor].Key))
	}
	return body + "\n"
}

func (m Model) viewProcessing() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(m.state.Form.Name))
	if m.state.TaskID != "" {
		b.WriteString(mutedStyle.Render("  " + m.state.TaskID))
	}
	b.WriteString("\n\n")

	for _, entry := range m.state.Logs {
		b.WriteString(mutedStyle.Render("["+entry.Timestamp()+"]") + " " + renderEntry(entry))
		b.WriteString("\n")
	}
	if m.state.Registering {
		b.WriteString(m.spinner.View() + " " + i18n.T(i18n.UIRegistering))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) hint() string {
	s := m.state
	switch s.Step {
	case workflow.StepConfirm:
		return i18n.T(i18n.UIConfirmHint)
	case workflow.StepProcessing:
		switch {
		case s.Success:
			return i18n.T(i18n.UISuccessHint)
		case s.Duplicate:
			return i18n.T(i18n.UIDuplicateHint)
		case s.Error != "" && !s.Registering:
			return i18n.T(i18n.UIErrorHint)
		}
	}
	return i18n.T(i18n.UIQuitHint)
}

func renderEntry(e workflow.LogEntry) string {
	switch e.Severity {
	case workflow.SeveritySuccess:
		return successStyle.Render("✓ " + e.Message)
	case workflow.SeverityWarn:
		return warnStyle.Render("⚠ " + e.Message)
	case workflow.SeverityError:
		return errorStyle.Render("✗ " + e.Message)
	}
	return infoStyle.Render("• " + e.Message)
}

func stepName(s workflow.Step) string {
	switch s {
	case workflow.StepConfirm:
		return i18n.T(i18n.UIStepConfirm)
	case workflow.StepProcessing:
		return i18n.T(i18n.UIStepProcessing)
	}
	return i18n.T(i18n.UIStepDiscovery)
}
