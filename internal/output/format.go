package output

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wau-ai/wau-cli/internal/agentcard"
	"github.com/wau-ai/wau-cli/internal/currency"
	"github.com/wau-ai/wau-cli/internal/i18n"
	"github.com/wau-ai/wau-cli/internal/registry"
	"github.com/wau-ai/wau-cli/internal/workflow"
)

// DiscoverResult contains the outcome of discovering one agent card.
type DiscoverResult struct {
	URL      string          `json:"url"`
	Source   string          `json:"source"`
	Path     string          `json:"path,omitempty"`
	Form     *agentcard.Form `json:"form,omitempty"`
	ExitCode int             `json:"exitCode"`
	Error    string          `json:"error,omitempty"`
}

// RegisterResult contains the outcome of one registration attempt.
type RegisterResult struct {
	URL       string               `json:"url,omitempty"`
	Name      string               `json:"name"`
	Source    string               `json:"source,omitempty"`
	AttemptID string               `json:"attemptId,omitempty"`
	TaskID    string               `json:"taskId,omitempty"`
	Status    *registry.TaskStatus `json:"status,omitempty"`
	Success   bool                 `json:"success"`
	Duplicate bool                 `json:"duplicate"`
	Logs      []workflow.LogEntry  `json:"logs"`
	Warnings  []string             `json:"warnings,omitempty"`
	Form      *agentcard.Form      `json:"form,omitempty"`
	ExitCode  int                  `json:"exitCode"`
	Error     string               `json:"error,omitempty"`
}

// StatusResult contains one or more status snapshots of an audit task.
type StatusResult struct {
	TaskID   string                `json:"taskId"`
	Statuses []registry.TaskStatus `json:"statuses"`
	ExitCode int                   `json:"exitCode"`
	Error    string                `json:"error,omitempty"`
}

// Latest returns the most recent snapshot, or nil.
func (r *StatusResult) Latest() *registry.TaskStatus {
	if len(r.Statuses) == 0 {
		return nil
	}
	return &r.Statuses[len(r.Statuses)-1]
}

// PrintDiscoverResult outputs a discovery result in human-readable format.
func PrintDiscoverResult(w io.Writer, result *DiscoverResult, verbose bool) {
	if result.Error != "" || result.Form == nil {
		fmt.Fprintf(w, "✗ %s\n", result.URL)
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Error: %s\n", result.Error)
		return
	}

	fmt.Fprintf(w, "✓ %s\n", result.URL)
	if verbose {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Source:   %s\n", result.Source)
		if result.Path != "" {
			fmt.Fprintf(w, "  Path:     %s\n", result.Path)
		}
	}
	fmt.Fprintln(w)
	PrintForm(w, result.Form, verbose)
}

// PrintForm outputs the agent card summary. Verbose mode lists every
// editable field by key.
func PrintForm(w io.Writer, form *agentcard.Form, verbose bool) {
	title := form.Name
	if form.Version != "" {
		title += " v" + form.Version
	}
	fmt.Fprintf(w, "  Agent:    %s\n", title)
	if form.Description != "" {
		fmt.Fprintf(w, "            %s\n", truncateText(form.Description, 72))
	}
	if form.URL != "" {
		fmt.Fprintf(w, "  URL:      %s\n", form.URL)
	}
	fmt.Fprintf(w, "  Domain:   %s\n", form.Domain)
	fmt.Fprintf(w, "  Price:    %s\n", currency.FormatPrice(agentcard.CoercePrice(form.Price), form.Currency))
	fmt.Fprintf(w, "  SLA:      %s\n", formatSLA(agentcard.CoerceSLA(form.SLA)))
	if len(form.Tags) > 0 {
		fmt.Fprintf(w, "  Tags:     %s\n", strings.Join(form.Tags, ", "))
	}
	if len(form.Capabilities) > 0 {
		fmt.Fprintf(w, "  Capabilities: %s\n", strings.Join(form.Capabilities, ", "))
	}

	fmt.Fprintln(w)
	if len(form.Skills) == 0 {
		fmt.Fprintln(w, "  Skills:   none")
	} else {
		fmt.Fprintln(w, "  Skills:")
		for _, skill := range form.Skills {
			fmt.Fprintf(w, "    • %s\n", skill.Name)
			if skill.Description != "" {
				fmt.Fprintf(w, "      %s\n", truncateText(skill.Description, 60))
			}
		}
	}

	if verbose {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  Fields:")
		for _, f := range form.Fields() {
			marker := ""
			if f.Required {
				marker = " *"
			}
			fmt.Fprintf(w, "    %-28s %s%s\n", f.Key, f.Value, marker)
		}
	}
}

// PrintRegisterResult outputs the transcript and outcome of a registration.
func PrintRegisterResult(w io.Writer, result *RegisterResult) {
	for _, warning := range result.Warnings {
		PrintWarning(warning)
	}

	switch {
	case result.Success:
		fmt.Fprintf(w, "✓ %s\n", result.Name)
	case result.Error != "" || result.Duplicate:
		fmt.Fprintf(w, "✗ %s\n", result.Name)
	default:
		fmt.Fprintf(w, "• %s\n", result.Name)
	}

	fmt.Fprintln(w)
	if result.TaskID != "" {
		fmt.Fprintf(w, "  Task:     %s\n", result.TaskID)
	}
	if s := result.Status; s != nil {
		fmt.Fprintf(w, "  Status:   %s\n", s.Status)
		if s.TrustScore != nil {
			fmt.Fprintf(w, "  Score:    %s\n", strconv.FormatFloat(*s.TrustScore, 'f', -1, 64))
		}
	}

	if len(result.Logs) > 0 {
		fmt.Fprintln(w)
		PrintTranscript(w, result.Logs)
	}

	if result.Error != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Error: %s\n", result.Error)
	}
}

// PrintTranscript outputs workflow log entries with timestamps.
func PrintTranscript(w io.Writer, logs []workflow.LogEntry) {
	for _, entry := range logs {
		fmt.Fprintf(w, "  [%s] %s %s\n", entry.Timestamp(), severityIcon(entry.Severity), entry.Message)
	}
}

// PrintStatusResult outputs audit task snapshots. Only the latest one is
// shown unless verbose is set.
func PrintStatusResult(w io.Writer, result *StatusResult, verbose bool) {
	latest := result.Latest()
	if latest == nil {
		fmt.Fprintf(w, "✗ %s\n", result.TaskID)
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Error: %s\n", result.Error)
		return
	}

	icon := "•"
	switch {
	case latest.IsSuccess():
		icon = "✓"
	case latest.IsFailure():
		icon = "✗"
	}
	fmt.Fprintf(w, "%s %s\n", icon, result.TaskID)
	fmt.Fprintln(w)

	statuses := result.Statuses
	if !verbose {
		statuses = statuses[len(statuses)-1:]
	}
	for _, s := range statuses {
		fmt.Fprintf(w, "  %s\n", FormatStatus(s))
	}

	if result.Error != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Error: %s\n", result.Error)
	}
}

// FormatStatus renders one status snapshot on a single line.
func FormatStatus(s registry.TaskStatus) string {
	var b strings.Builder
	b.WriteString(s.Status)
	if s.Progress != "" {
		b.WriteString(": " + s.Progress)
	}
	if s.TrustScore != nil {
		b.WriteString(" (trust score " + strconv.FormatFloat(*s.TrustScore, 'f', -1, 64) + ")")
	}
	if s.Error != "" {
		b.WriteString(" - " + s.Error)
	}
	return b.String()
}

// PrintPage outputs one translated informational page.
func PrintPage(w io.Writer, page i18n.Page) {
	fmt.Fprintln(w, page.Title)
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(page.Title)))
	if page.Subtitle != "" {
		fmt.Fprintln(w, page.Subtitle)
	}
	if page.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, page.Description)
	}
	for _, section := range page.Sections {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s\n", section.Title)
		for _, item := range section.Items {
			fmt.Fprintf(w, "  • %s\n", item.Title)
			if item.Detail != "" {
				fmt.Fprintf(w, "    %s\n", item.Detail)
			}
		}
	}
}

// PrintCurrencies outputs the known currency table.
func PrintCurrencies(w io.Writer, list []currency.Info) {
	fmt.Fprintf(w, "%-6s %-16s %-6s %s\n", "CODE", "NAME", "SYMBOL", "DECIMALS")
	for _, c := range list {
		symbol := c.Symbol
		if symbol == "" {
			symbol = "-"
		}
		fmt.Fprintf(w, "%-6s %-16s %-6s %d\n", c.Code, c.Name, symbol, c.Decimals)
	}
}

// PrintError outputs an error message to stderr.
func PrintError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// PrintWarning outputs a warning message to stderr.
func PrintWarning(msg string) {
	fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
}

// PrintInfo outputs an info message to stderr (for TTY vs pipe awareness).
func PrintInfo(msg string) {
	fmt.Fprintf(os.Stderr, "%s\n", msg)
}

// PromptConfirm prompts the user for yes/no confirmation on r.
// Returns true if user enters y/Y/yes.
func PromptConfirm(r io.Reader, prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)

	var response string
	fmt.Fscanln(r, &response)

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

func severityIcon(s workflow.Severity) string {
	switch s {
	case workflow.SeveritySuccess:
		return "✓"
	case workflow.SeverityWarn:
		return "⚠"
	case workflow.SeverityError:
		return "✗"
	default:
		return "•"
	}
}

func formatSLA(sla float64) string {
	return strconv.FormatFloat(math.Round(sla*10000)/100, 'f', -1, 64) + "%"
}

// truncateText truncates a string to maxLen runes, adding "..." if truncated.
func truncateText(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(r[:maxLen-3]) + "..."
}
