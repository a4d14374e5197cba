package scheduler

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gammazero/toposort"

	"github.com/aristath/taskplanner/internal/model"
)

// DAG is the dependency graph of one goal's tasks. Insertion order is kept
// so that every listing is stable.
type DAG struct {
	mu         sync.RWMutex
	nodes      map[string]*Node
	order      []string            // insertion order
	dependents map[string][]string // taskID -> tasks that depend on it
}

// NewDAG creates an empty DAG.
func NewDAG() *DAG {
	return &DAG{
		nodes:      make(map[string]*Node),
		dependents: make(map[string][]string),
	}
}

// FromTasks builds a DAG from a goal's tasks. Dependencies that point outside
// the set are dropped, since they cannot constrain ordering.
func FromTasks(tasks []*model.Task) *DAG {
	known := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		known[t.ID] = true
	}

	d := NewDAG()
	for _, t := range tasks {
		n := NodeFromTask(t)
		kept := n.DependsOn[:0]
		for _, dep := range n.DependsOn {
			if known[dep] {
				kept = append(kept, dep)
			}
		}
		n.DependsOn = kept
		_ = d.AddNode(n)
	}
	return d
}

// AddNode adds a node. Returns error if the ID already exists.
func (d *DAG) AddNode(n *Node) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.nodes[n.ID]; exists {
		return fmt.Errorf("task with ID %q already exists", n.ID)
	}

	d.nodes[n.ID] = cloneNode(n)
	d.order = append(d.order, n.ID)
	for _, depID := range n.DependsOn {
		d.dependents[depID] = append(d.dependents[depID], n.ID)
	}
	return nil
}

// Validate runs a topological sort and returns task IDs with every task after
// all of its dependencies. It fails on cycles and on dependencies that are not
// in the graph.
func (d *DAG) Validate() ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, id := range d.order {
		for _, depID := range d.nodes[id].DependsOn {
			if _, exists := d.nodes[depID]; !exists {
				return nil, fmt.Errorf("task %q depends on non-existent task %q", id, depID)
			}
		}
	}

	var edges []toposort.Edge
	for _, id := range d.order {
		n := d.nodes[id]
		if len(n.DependsOn) == 0 {
			// An edge from nil keeps roots in the result.
			edges = append(edges, toposort.Edge{nil, id})
			continue
		}
		for _, depID := range n.DependsOn {
			edges = append(edges, toposort.Edge{depID, id})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("task graph contains cycle: %w", err)
	}

	order := make([]string, 0, len(sorted))
	for _, id := range sorted {
		if id != nil {
			order = append(order, id.(string))
		}
	}

	if len(order) != len(d.nodes) {
		found := make(map[string]bool, len(order))
		for _, id := range order {
			found[id] = true
		}
		var missing []string
		for _, id := range d.order {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		return nil, fmt.Errorf("task graph contains cycle through: %s", strings.Join(missing, ", "))
	}
	return order, nil
}

// Order returns topologically sorted task IDs (calls Validate).
func (d *DAG) Order() ([]string, error) {
	return d.Validate()
}

// Ready returns pending tasks whose dependencies are all completed, in
// insertion order.
func (d *DAG) Ready() []*Node {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ready := []*Node{}
	for _, id := range d.order {
		n := d.nodes[id]
		if n.Status != model.StatusPending {
			continue
		}
		if d.dependenciesCompleted(n) {
			ready = append(ready, cloneNode(n))
		}
	}
	return ready
}

func (d *DAG) dependenciesCompleted(n *Node) bool {
	for _, depID := range n.DependsOn {
		dep, ok := d.nodes[depID]
		if !ok || dep.Status != model.StatusCompleted {
			return false
		}
	}
	return true
}

// Dependents returns the IDs of tasks that list taskID as a dependency.
func (d *DAG) Dependents(taskID string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.dependents[taskID]...)
}

// SetStatus updates a node's status.
func (d *DAG) SetStatus(taskID string, status model.TaskStatus) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, exists := d.nodes[taskID]
	if !exists {
		return fmt.Errorf("task %q not found", taskID)
	}
	n.Status = status
	return nil
}

// Get returns node by ID.
func (d *DAG) Get(taskID string) (*Node, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n, exists := d.nodes[taskID]
	if !exists {
		return nil, false
	}
	return cloneNode(n), true
}

// Nodes returns all nodes in insertion order.
func (d *DAG) Nodes() []*Node {
	d.mu.RLock()
	defer d.mu.RUnlock()

	nodes := make([]*Node, 0, len(d.order))
	for _, id := range d.order {
		nodes = append(nodes, cloneNode(d.nodes[id]))
	}
	return nodes
}

// Progress counts tasks by status.
type Progress struct {
	Total      int
	Pending    int
	InProgress int
	Completed  int
	Blocked    int
}

// Progress returns the current status counts.
func (d *DAG) Progress() Progress {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p := Progress{Total: len(d.nodes)}
	for _, n := range d.nodes {
		switch n.Status {
		case model.StatusPending:
			p.Pending++
		case model.StatusInProgress:
			p.InProgress++
		case model.StatusCompleted:
			p.Completed++
		case model.StatusBlocked:
			p.Blocked++
		}
	}
	return p
}

// Schedule is a snapshot of a goal's execution view.
type Schedule struct {
	Order    []*Node // dependency-respecting; insertion order when Cyclic
	Ready    []*Node
	Progress Progress
	Cyclic   bool
}

// Schedule assembles the full view. A cyclic graph still yields a schedule:
// Order falls back to insertion order and Cyclic is set.
func (d *DAG) Schedule() Schedule {
	s := Schedule{Ready: d.Ready(), Progress: d.Progress()}

	ids, err := d.Order()
	if err != nil {
		s.Cyclic = true
		s.Order = d.Nodes()
		return s
	}

	s.Order = make([]*Node, 0, len(ids))
	for _, id := range ids {
		n, _ := d.Get(id)
		s.Order = append(s.Order, n)
	}
	return s
}
