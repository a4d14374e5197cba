package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/taskplanner/internal/model"
	"github.com/aristath/taskplanner/internal/orchestrator"
	"github.com/aristath/taskplanner/internal/tui"
)

var (
	styleHeading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleBox     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

func renderGoalLine(g *model.Goal) string {
	line := fmt.Sprintf("%s  %s", styleMuted.Render(g.ID), g.Title)
	if g.TotalEstimatedHours != nil {
		line += styleMuted.Render(fmt.Sprintf("  (%gh)", *g.TotalEstimatedHours))
	}
	if g.Deadline != nil {
		line += styleMuted.Render("  due " + g.Deadline.Format(time.DateOnly))
	}
	return line
}

func renderTaskLine(t *model.Task, ready bool) string {
	marker := " "
	if ready {
		marker = "»"
	}
	line := fmt.Sprintf("%s%s %s", marker, tui.StatusIcon(t.Status), t.Title)
	var meta []string
	meta = append(meta, string(t.Priority))
	if t.EstimatedHours != nil {
		meta = append(meta, fmt.Sprintf("%gh", *t.EstimatedHours))
	}
	if t.EndDate != nil {
		meta = append(meta, "by "+t.EndDate.Format(time.DateOnly))
	}
	line += styleMuted.Render("  [" + strings.Join(meta, ", ") + "]")
	if len(t.Dependencies) > 0 {
		titles := make([]string, len(t.Dependencies))
		for i, d := range t.Dependencies {
			titles[i] = d.TaskTitle
		}
		line += styleMuted.Render("  after: " + strings.Join(titles, ", "))
	}
	return line + styleMuted.Render("  "+t.ID)
}

// renderPlan prints a freshly generated plan.
func renderPlan(res *orchestrator.Result) string {
	var b strings.Builder
	b.WriteString(styleHeading.Render("✓ " + res.Goal.Title))
	b.WriteString("\n")
	b.WriteString(styleMuted.Render("goal " + res.Goal.ID))
	b.WriteString("\n\n")
	for _, t := range res.Tasks {
		b.WriteString(renderTaskLine(t, false))
		b.WriteString("\n")
	}
	if res.Insights.TotalEstimatedHours != nil {
		b.WriteString(fmt.Sprintf("\nTotal estimate: %gh", *res.Insights.TotalEstimatedHours))
	}
	if res.Insights.SuggestedTimeline != "" {
		b.WriteString("\nTimeline: " + res.Insights.SuggestedTimeline)
	}
	return styleBox.Render(b.String())
}

// renderGoal prints a stored goal with its tasks in schedule order.
func renderGoal(gwt *orchestrator.GoalWithTasks, schedule *orchestrator.GoalSchedule) string {
	byID := make(map[string]*model.Task, len(gwt.Tasks))
	for _, t := range gwt.Tasks {
		byID[t.ID] = t
	}
	ready := make(map[string]bool, len(schedule.Ready))
	for _, n := range schedule.Ready {
		ready[n.ID] = true
	}

	var b strings.Builder
	b.WriteString(styleHeading.Render(gwt.Goal.Title))
	b.WriteString("\n")
	b.WriteString(renderGoalLine(gwt.Goal))
	b.WriteString("\n")
	if gwt.Goal.Description != "" {
		b.WriteString("\n" + gwt.Goal.Description + "\n")
	}
	b.WriteString("\n")
	for _, n := range schedule.Order {
		if t, ok := byID[n.ID]; ok {
			b.WriteString(renderTaskLine(t, ready[t.ID]))
			b.WriteString("\n")
		}
	}

	p := schedule.Progress
	b.WriteString(fmt.Sprintf("\n%d/%d completed, %d in progress, %d blocked, %d ready",
		p.Completed, p.Total, p.InProgress, p.Blocked, len(schedule.Ready)))
	if schedule.Cyclic {
		b.WriteString("\n" + styleError.Render("dependency cycle detected; showing stored order"))
	}
	return styleBox.Render(b.String())
}
