package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/taskplanner/internal/scheduler"
)

// ProgressPaneModel shows status counts for the selected goal.
type ProgressPaneModel struct {
	progress scheduler.Progress
	ready    int
	cyclic   bool
	width    int
	height   int
	focused  bool
}

// NewProgressPaneModel creates an empty progress pane.
func NewProgressPaneModel() ProgressPaneModel {
	return ProgressPaneModel{}
}

// SetSchedule replaces the displayed counts.
func (m *ProgressPaneModel) SetSchedule(s scheduler.Schedule) {
	m.progress = s.Progress
	m.ready = len(s.Ready)
	m.cyclic = s.Cyclic
}

// View renders the progress pane.
func (m ProgressPaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	title := StyleTitle.Render("Progress")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", lipgloss.Width(title)))
	b.WriteString("\n\n")

	p := m.progress
	b.WriteString(fmt.Sprintf("Total:       %d\n", p.Total))
	b.WriteString(fmt.Sprintf("Completed:   %s\n", StyleStatusComplete.Render(fmt.Sprintf("%d", p.Completed))))
	b.WriteString(fmt.Sprintf("In progress: %s\n", StyleStatusInProgress.Render(fmt.Sprintf("%d", p.InProgress))))
	b.WriteString(fmt.Sprintf("Blocked:     %s\n", StyleStatusBlocked.Render(fmt.Sprintf("%d", p.Blocked))))
	b.WriteString(fmt.Sprintf("Pending:     %s\n", StyleStatusPending.Render(fmt.Sprintf("%d", p.Pending))))
	b.WriteString(fmt.Sprintf("Ready:       %d\n", m.ready))
	if m.cyclic {
		b.WriteString(StyleError.Render("dependency cycle detected"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(progressBar(p, min(m.width-4, 40)))

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}

	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(b.String())
}

// progressBar draws a bar of the given width. It is empty when there are no
// tasks.
func progressBar(p scheduler.Progress, width int) string {
	if p.Total == 0 || width <= 0 {
		return ""
	}
	completedWidth := (p.Completed * width) / p.Total
	blockedWidth := (p.Blocked * width) / p.Total
	inProgressWidth := (p.InProgress * width) / p.Total
	pendingWidth := width - completedWidth - blockedWidth - inProgressWidth

	bar := StyleStatusComplete.Render(strings.Repeat("=", max(0, completedWidth)))
	bar += StyleStatusBlocked.Render(strings.Repeat("!", max(0, blockedWidth)))
	bar += StyleStatusInProgress.Render(strings.Repeat("-", max(0, inProgressWidth)))
	bar += StyleStatusPending.Render(strings.Repeat(".", max(0, pendingWidth)))

	return fmt.Sprintf("[%s]  %d/%d\n", bar, p.Completed, p.Total)
}

// SetSize updates the pane dimensions.
func (m *ProgressPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused updates the focus state.
func (m *ProgressPaneModel) SetFocused(focused bool) {
	m.focused = focused
}
