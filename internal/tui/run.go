package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wau-ai/wau-cli/internal/workflow"
)

// Run shows the wizard until the user quits or ctx is cancelled. It
// returns the last workflow snapshot.
func Run(ctx context.Context, ctrl *workflow.Controller, opts ...tea.ProgramOption) (workflow.State, error) {
	model := New(ctx, ctrl)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(model, opts...)

	// Listeners run in controller goroutines, never inside Update.
	ctrl.OnChange(func(s workflow.State) { p.Send(stateMsg(s)) })

	final, err := p.Run()
	if err != nil && ctx.Err() == nil {
		return ctrl.State(), fmt.Errorf("wizard failed: %w", err)
	}
	if m, ok := final.(Model); ok && m.Cancelled() {
		return m.State(), nil
	}
	return ctrl.State(), nil
}
