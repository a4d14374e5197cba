// Package tui is the terminal browser for stored goals: it lists a goal's
// tasks in dependency order, shows task detail and progress, and lets the
// user cycle a task's status.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/taskplanner/internal/config"
	"github.com/aristath/taskplanner/internal/events"
	"github.com/aristath/taskplanner/internal/model"
	"github.com/aristath/taskplanner/internal/orchestrator"
	"github.com/aristath/taskplanner/internal/scheduler"
)

// Service is the planner surface the browser needs.
type Service interface {
	ListGoals(ctx context.Context) ([]*model.Goal, error)
	GetGoalWithTasks(ctx context.Context, goalID string) (*orchestrator.GoalWithTasks, error)
	UpdateTaskStatus(ctx context.Context, taskID, status string) (*model.Task, error)
}

// PaneID identifies which pane is focused.
type PaneID int

const (
	PaneTasks PaneID = iota
	PaneProgress
	paneCount
)

// Messages produced by the load and update commands.
type (
	goalsLoadedMsg struct {
		goals []*model.Goal
		err   error
	}

	goalLoadedMsg struct {
		goal     *model.Goal
		tasks    []*model.Task
		schedule scheduler.Schedule
		err      error
	}

	statusUpdatedMsg struct {
		task *model.Task
		err  error
	}
)

// Model is the root Bubble Tea model for the browser.
type Model struct {
	ctx          context.Context
	svc          Service
	taskPane     TaskPaneModel
	progressPane ProgressPaneModel
	settingsPane SettingsPaneModel
	focusedPane  PaneID
	eventSub     <-chan events.Event
	goals        []*model.Goal
	goalIdx      int
	pendingGoal  string // selected once the goal list arrives
	notice       string
	err          error
	width        int
	height       int
	quitting     bool
	showSettings bool
}

// New creates the browser model. When bus is non-nil the view reloads on
// goal and task events.
func New(ctx context.Context, svc Service, bus *events.EventBus, cfg *config.Config, globalPath, projectPath string) Model {
	m := Model{
		ctx:          ctx,
		svc:          svc,
		taskPane:     NewTaskPaneModel(),
		progressPane: NewProgressPaneModel(),
		settingsPane: NewSettingsPaneModel(cfg, globalPath, projectPath),
		focusedPane:  PaneTasks,
	}
	if bus != nil {
		m.eventSub = bus.SubscribeAll(256)
	}
	m.updateFocusStates()
	return m
}

// SelectGoal opens the browser on goalID instead of the first goal.
func (m Model) SelectGoal(goalID string) Model {
	m.pendingGoal = goalID
	return m
}

// Init loads the goal list and starts listening for events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(loadGoals(m.ctx, m.svc), waitForEvent(m.eventSub))
}

// waitForEvent returns a command that waits for the next event from the event bus.
func waitForEvent(sub <-chan events.Event) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-sub
		if !ok {
			return nil // bus closed
		}
		return event
	}
}

func loadGoals(ctx context.Context, svc Service) tea.Cmd {
	return func() tea.Msg {
		goals, err := svc.ListGoals(ctx)
		return goalsLoadedMsg{goals: goals, err: err}
	}
}

func loadGoal(ctx context.Context, svc Service, goalID string) tea.Cmd {
	return func() tea.Msg {
		gwt, err := svc.GetGoalWithTasks(ctx, goalID)
		if err != nil {
			return goalLoadedMsg{err: err}
		}
		return goalLoadedMsg{
			goal:     gwt.Goal,
			tasks:    gwt.Tasks,
			schedule: scheduler.FromTasks(gwt.Tasks).Schedule(),
		}
	}
}

func updateStatus(ctx context.Context, svc Service, taskID string, next model.TaskStatus) tea.Cmd {
	return func() tea.Msg {
		task, err := svc.UpdateTaskStatus(ctx, taskID, string(next))
		return statusUpdatedMsg{task: task, err: err}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showSettings {
			var cmd tea.Cmd
			m.settingsPane, cmd = m.settingsPane.Update(msg)
			cmds = append(cmds, cmd)
			if !m.settingsPane.IsVisible() {
				m.showSettings = false
				if m.settingsPane.Saved() {
					m.notice = "settings saved; restart to apply"
				}
			}
			return m, tea.Batch(cmds...)
		}

		switch msg.String() {
		case KeyQuit, KeyCtrlC:
			m.quitting = true
			return m, tea.Quit

		case KeySettings:
			m.showSettings = true
			m.settingsPane.SetVisible(true)
			m.settingsPane.SetSize(m.width, m.height)
			cmds = append(cmds, m.settingsPane.Init())

		case KeyTab:
			m.focusedPane = (m.focusedPane + 1) % paneCount
			m.updateFocusStates()

		case KeyShiftTab:
			m.focusedPane = (m.focusedPane + paneCount - 1) % paneCount
			m.updateFocusStates()

		case KeyPane1:
			m.focusedPane = PaneTasks
			m.updateFocusStates()

		case KeyPane2:
			m.focusedPane = PaneProgress
			m.updateFocusStates()

		case KeyNextGoal, KeyPrevGoal:
			if len(m.goals) > 1 {
				step := 1
				if msg.String() == KeyPrevGoal {
					step = len(m.goals) - 1
				}
				m.goalIdx = (m.goalIdx + step) % len(m.goals)
				cmds = append(cmds, loadGoal(m.ctx, m.svc, m.goals[m.goalIdx].ID))
			}

		case KeyReload:
			cmds = append(cmds, loadGoals(m.ctx, m.svc))

		case KeyStatus:
			if task := m.taskPane.Selected(); task != nil {
				cmds = append(cmds, updateStatus(m.ctx, m.svc, task.ID, task.Status.Next()))
			}

		default:
			var cmd tea.Cmd
			m.taskPane, cmd = m.taskPane.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.computeLayout()
		m.settingsPane.SetSize(msg.Width, msg.Height)

	case goalsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			break
		}
		m.err = nil
		m.goals = msg.goals
		if len(m.goals) == 0 {
			m.goalIdx = 0
			m.taskPane.SetGoal(nil, nil, nil)
			m.progressPane.SetSchedule(scheduler.Schedule{})
			break
		}
		if m.pendingGoal != "" {
			for i, g := range m.goals {
				if g.ID == m.pendingGoal {
					m.goalIdx = i
				}
			}
			m.pendingGoal = ""
		}
		if m.goalIdx >= len(m.goals) {
			m.goalIdx = len(m.goals) - 1
		}
		cmds = append(cmds, loadGoal(m.ctx, m.svc, m.goals[m.goalIdx].ID))

	case goalLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			break
		}
		m.err = nil
		// Tasks are listed in the same order as the schedule.
		byID := make(map[string]*model.Task, len(msg.tasks))
		for _, t := range msg.tasks {
			byID[t.ID] = t
		}
		ordered := make([]*model.Task, 0, len(msg.tasks))
		for _, n := range msg.schedule.Order {
			ordered = append(ordered, byID[n.ID])
		}
		ready := make(map[string]bool, len(msg.schedule.Ready))
		for _, n := range msg.schedule.Ready {
			ready[n.ID] = true
		}
		m.taskPane.SetGoal(msg.goal, ordered, ready)
		m.progressPane.SetSchedule(msg.schedule)

	case statusUpdatedMsg:
		if msg.err != nil {
			m.err = msg.err
			break
		}
		m.err = nil
		m.notice = fmt.Sprintf("%s → %s", msg.task.Title, msg.task.Status)
		cmds = append(cmds, loadGoal(m.ctx, m.svc, msg.task.GoalID))

	case events.TaskStatusChangedEvent:
		if g := m.currentGoal(); g != nil && g.ID == msg.GoalID() {
			cmds = append(cmds, loadGoal(m.ctx, m.svc, g.ID))
		}
		cmds = append(cmds, waitForEvent(m.eventSub))

	case events.GoalGeneratedEvent, events.GoalFailedEvent:
		cmds = append(cmds, loadGoals(m.ctx, m.svc), waitForEvent(m.eventSub))

	case events.Event:
		cmds = append(cmds, waitForEvent(m.eventSub))

	default:
		if m.showSettings {
			var cmd tea.Cmd
			m.settingsPane, cmd = m.settingsPane.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) currentGoal() *model.Goal {
	if m.goalIdx >= 0 && m.goalIdx < len(m.goals) {
		return m.goals[m.goalIdx]
	}
	return nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if m.showSettings {
		return m.settingsPane.View()
	}

	header := StyleTitle.Render(m.headerText())
	main := lipgloss.JoinHorizontal(lipgloss.Top, m.taskPane.View(), m.progressPane.View())

	footer := HelpView()
	if m.err != nil {
		footer = StyleError.Render("error: "+m.err.Error()) + "  " + footer
	} else if m.notice != "" {
		footer = StyleHelp.Render(m.notice) + "  " + footer
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, main, footer)
}

func (m Model) headerText() string {
	g := m.currentGoal()
	if g == nil {
		return "No goals yet. Create one with `planner plan`."
	}
	text := fmt.Sprintf("Goal %d/%d: %s", m.goalIdx+1, len(m.goals), g.Title)
	if g.Deadline != nil {
		text += "  (due " + g.Deadline.Format("2006-01-02") + ")"
	}
	return text
}

// computeLayout calculates pane dimensions and updates all child models.
func (m *Model) computeLayout() {
	availableHeight := m.height - 2 // header and help bar
	leftWidth := (m.width * 70) / 100
	rightWidth := m.width - leftWidth

	m.taskPane.SetSize(leftWidth, availableHeight)
	m.progressPane.SetSize(rightWidth, availableHeight)

	m.updateFocusStates()
}

func (m *Model) updateFocusStates() {
	m.taskPane.SetFocused(m.focusedPane == PaneTasks)
	m.progressPane.SetFocused(m.focusedPane == PaneProgress)
}
