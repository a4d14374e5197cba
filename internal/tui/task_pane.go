package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/taskplanner/internal/model"
)

const taskListWidth = 30

// TaskPaneModel lists a goal's tasks and shows the selected one in a
// scrollable detail viewport.
type TaskPaneModel struct {
	goal        *model.Goal
	tasks       []*model.Task // dependency order
	ready       map[string]bool
	selectedIdx int
	viewport    viewport.Model
	width       int
	height      int
	focused     bool
}

// NewTaskPaneModel creates an empty task pane.
func NewTaskPaneModel() TaskPaneModel {
	return TaskPaneModel{
		ready:    make(map[string]bool),
		viewport: viewport.New(0, 0),
	}
}

// SetGoal replaces the displayed tasks. The selection follows the previously
// selected task when it is still present.
func (m *TaskPaneModel) SetGoal(goal *model.Goal, tasks []*model.Task, ready map[string]bool) {
	prev := m.Selected()
	m.goal = goal
	m.tasks = tasks
	m.ready = ready
	m.selectedIdx = 0
	if prev != nil {
		for i, t := range tasks {
			if t.ID == prev.ID {
				m.selectedIdx = i
				break
			}
		}
	}
	m.updateViewportContent()
}

// Selected returns the highlighted task, or nil.
func (m TaskPaneModel) Selected() *model.Task {
	if m.selectedIdx >= 0 && m.selectedIdx < len(m.tasks) {
		return m.tasks[m.selectedIdx]
	}
	return nil
}

// Update handles navigation keys.
func (m TaskPaneModel) Update(msg tea.Msg) (TaskPaneModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewport()

	case tea.KeyMsg:
		if !m.focused {
			break
		}

		switch msg.String() {
		case KeyJ, KeyDown:
			if m.selectedIdx < len(m.tasks)-1 {
				m.selectedIdx++
				m.updateViewportContent()
			}
		case KeyK, KeyUp:
			if m.selectedIdx > 0 {
				m.selectedIdx--
				m.updateViewportContent()
			}
		default:
			m.viewport, cmd = m.viewport.Update(msg)
		}
	}

	return m, cmd
}

// View renders the task pane.
func (m TaskPaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	detailWidth := m.width - taskListWidth - 4

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTaskList(taskListWidth),
		lipgloss.NewStyle().
			Width(detailWidth).
			Height(m.height-2).
			Render(m.viewport.View()),
	)

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}

	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(content)
}

func (m TaskPaneModel) renderTaskList(width int) string {
	var b strings.Builder

	title := StyleTitle.Render("Tasks")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", min(width, lipgloss.Width(title))))
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		b.WriteString(StyleStatusPending.Render("No tasks"))
	} else {
		for i, task := range m.tasks {
			name := task.Title
			if len(name) > width-6 {
				name = name[:width-9] + "..."
			}
			marker := " "
			if m.ready[task.ID] {
				marker = "»"
			}

			line := fmt.Sprintf("%s%s %s", marker, StatusIcon(task.Status), name)
			if i == m.selectedIdx {
				line = StyleSelected.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(m.height - 2).
		Render(b.String())
}

func (m *TaskPaneModel) updateViewportContent() {
	task := m.Selected()
	if task == nil {
		m.viewport.SetContent("No task selected")
		return
	}
	m.viewport.SetContent(RenderTaskDetail(task, m.ready[task.ID]))
	m.viewport.GotoTop()
}

// RenderTaskDetail formats every field of a task for display.
func RenderTaskDetail(task *model.Task, ready bool) string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(task.Title))
	b.WriteString("\n\n")

	field := func(label, value string) {
		b.WriteString(StyleLabel.Render(fmt.Sprintf("%-10s", label)))
		b.WriteString(" ")
		b.WriteString(value)
		b.WriteString("\n")
	}

	field("Status", StatusStyle(task.Status).Render(string(task.Status)))
	field("Priority", string(task.Priority))
	if task.EstimatedHours != nil {
		field("Estimate", fmt.Sprintf("%gh", *task.EstimatedHours))
	}
	if task.StartDate != nil {
		field("Start", task.StartDate.Format(time.DateOnly))
	}
	if task.EndDate != nil {
		field("End", task.EndDate.Format(time.DateOnly))
	}
	if ready {
		field("Ready", "yes")
	}

	if len(task.Dependencies) > 0 {
		b.WriteString("\n")
		b.WriteString(StyleLabel.Render("Depends on"))
		b.WriteString("\n")
		for _, dep := range task.Dependencies {
			b.WriteString("  - ")
			b.WriteString(dep.TaskTitle)
			b.WriteString("\n")
		}
	}

	if task.Description != "" {
		b.WriteString("\n")
		b.WriteString(task.Description)
		b.WriteString("\n")
	}

	return b.String()
}

func (m *TaskPaneModel) resizeViewport() {
	viewportWidth := m.width - taskListWidth - 4
	viewportHeight := m.height - 4

	if viewportWidth < 10 {
		viewportWidth = 10
	}
	if viewportHeight < 5 {
		viewportHeight = 5
	}

	m.viewport.Width = viewportWidth
	m.viewport.Height = viewportHeight
}

// SetSize updates the pane dimensions.
func (m *TaskPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.resizeViewport()
}

// SetFocused updates the focus state.
func (m *TaskPaneModel) SetFocused(focused bool) {
	m.focused = focused
}
