// Package scheduler derives a read-only execution view of a goal's tasks:
// a dependency-respecting order, the tasks that can start now, and progress.
// It never changes task state.
package scheduler

import "github.com/aristath/taskplanner/internal/model"

// Node is the scheduling view of one task.
type Node struct {
	ID        string
	Title     string
	Status    model.TaskStatus
	DependsOn []string // task IDs that must complete first
}

// NodeFromTask projects a stored task onto a Node.
func NodeFromTask(t *model.Task) *Node {
	deps := make([]string, 0, len(t.Dependencies))
	for _, dep := range t.Dependencies {
		deps = append(deps, dep.TaskID)
	}
	return &Node{ID: t.ID, Title: t.Title, Status: t.Status, DependsOn: deps}
}

func cloneNode(n *Node) *Node {
	if n == nil {
		return nil
	}
	cp := *n
	if n.DependsOn != nil {
		cp.DependsOn = append([]string(nil), n.DependsOn...)
	}
	return &cp
}
