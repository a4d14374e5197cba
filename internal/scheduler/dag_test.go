package scheduler

import (
	"strings"
	"testing"

	"github.com/aristath/taskplanner/internal/model"
)

func node(id string, status model.TaskStatus, deps ...string) *Node {
	return &Node{ID: id, Title: "Task " + id, Status: status, DependsOn: deps}
}

func indexOf(ids []string) map[string]int {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	return pos
}

// TestDAGValidate tests DAG validation with various graph structures.
func TestDAGValidate(t *testing.T) {
	tests := []struct {
		name        string
		nodes       []*Node
		wantErr     bool
		errContains string
	}{
		{
			name:  "valid linear chain",
			nodes: []*Node{node("A", model.StatusPending), node("B", model.StatusPending, "A"), node("C", model.StatusPending, "B")},
		},
		{
			name:  "valid diamond",
			nodes: []*Node{node("A", model.StatusPending), node("B", model.StatusPending, "A"), node("C", model.StatusPending, "A"), node("D", model.StatusPending, "B", "C")},
		},
		{
			name:  "single task no deps",
			nodes: []*Node{node("A", model.StatusPending)},
		},
		{
			name:        "direct cycle",
			nodes:       []*Node{node("A", model.StatusPending, "B"), node("B", model.StatusPending, "A")},
			wantErr:     true,
			errContains: "cycle",
		},
		{
			name:        "transitive cycle",
			nodes:       []*Node{node("A", model.StatusPending, "C"), node("B", model.StatusPending, "A"), node("C", model.StatusPending, "B")},
			wantErr:     true,
			errContains: "cycle",
		},
		{
			name:        "missing dependency",
			nodes:       []*Node{node("A", model.StatusPending, "ghost")},
			wantErr:     true,
			errContains: "non-existent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dag := NewDAG()
			for _, n := range tt.nodes {
				if err := dag.AddNode(n); err != nil {
					t.Fatalf("AddNode(%s) failed: %v", n.ID, err)
				}
			}

			order, err := dag.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got order %v", order)
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(order) != len(tt.nodes) {
				t.Fatalf("expected %d ids, got %v", len(tt.nodes), order)
			}
			pos := indexOf(order)
			for _, n := range tt.nodes {
				for _, dep := range n.DependsOn {
					if pos[dep] >= pos[n.ID] {
						t.Errorf("%s ordered before its dependency %s: %v", n.ID, dep, order)
					}
				}
			}
		})
	}
}

func TestAddNodeDuplicate(t *testing.T) {
	dag := NewDAG()
	if err := dag.AddNode(node("A", model.StatusPending)); err != nil {
		t.Fatalf("first AddNode failed: %v", err)
	}
	if err := dag.AddNode(node("A", model.StatusPending)); err == nil {
		t.Error("expected duplicate id error")
	}
}

func TestReady(t *testing.T) {
	dag := NewDAG()
	dag.AddNode(node("A", model.StatusCompleted))
	dag.AddNode(node("B", model.StatusPending, "A"))
	dag.AddNode(node("C", model.StatusPending, "B"))
	dag.AddNode(node("D", model.StatusPending))
	dag.AddNode(node("E", model.StatusInProgress))
	dag.AddNode(node("F", model.StatusPending, "E"))

	ready := dag.Ready()
	var ids []string
	for _, n := range ready {
		ids = append(ids, n.ID)
	}
	if strings.Join(ids, ",") != "B,D" {
		t.Errorf("Ready() = %v, want [B D]", ids)
	}

	if err := dag.SetStatus("B", model.StatusCompleted); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	ids = ids[:0]
	for _, n := range dag.Ready() {
		ids = append(ids, n.ID)
	}
	if strings.Join(ids, ",") != "C,D" {
		t.Errorf("Ready() after completing B = %v, want [C D]", ids)
	}
}

func TestSetStatusUnknown(t *testing.T) {
	if err := NewDAG().SetStatus("missing", model.StatusCompleted); err == nil {
		t.Error("expected error for unknown task")
	}
}

func TestDependents(t *testing.T) {
	dag := NewDAG()
	dag.AddNode(node("A", model.StatusPending))
	dag.AddNode(node("B", model.StatusPending, "A"))
	dag.AddNode(node("C", model.StatusPending, "A"))

	deps := dag.Dependents("A")
	if strings.Join(deps, ",") != "B,C" {
		t.Errorf("Dependents(A) = %v, want [B C]", deps)
	}
	if len(dag.Dependents("C")) != 0 {
		t.Errorf("expected no dependents for C")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	dag := NewDAG()
	dag.AddNode(node("A", model.StatusPending))
	dag.AddNode(node("B", model.StatusPending, "A"))

	n, ok := dag.Get("B")
	if !ok {
		t.Fatal("expected B to exist")
	}
	n.DependsOn[0] = "mutated"
	n.Status = model.StatusBlocked

	again, _ := dag.Get("B")
	if again.DependsOn[0] != "A" || again.Status != model.StatusPending {
		t.Errorf("Get returned shared state: %+v", again)
	}
	if _, ok := dag.Get("missing"); ok {
		t.Error("expected missing node to be absent")
	}
}

func TestProgress(t *testing.T) {
	dag := NewDAG()
	dag.AddNode(node("A", model.StatusCompleted))
	dag.AddNode(node("B", model.StatusCompleted))
	dag.AddNode(node("C", model.StatusInProgress))
	dag.AddNode(node("D", model.StatusBlocked))
	dag.AddNode(node("E", model.StatusPending))

	got := dag.Progress()
	want := Progress{Total: 5, Pending: 1, InProgress: 1, Completed: 2, Blocked: 1}
	if got != want {
		t.Errorf("Progress() = %+v, want %+v", got, want)
	}
}

func TestFromTasksDropsForeignDependencies(t *testing.T) {
	tasks := []*model.Task{
		{ID: "a", Title: "Design", Status: model.StatusPending},
		{ID: "b", Title: "Build", Status: model.StatusPending, Dependencies: []model.TaskDependency{
			{TaskID: "a", TaskTitle: "Design"},
			{TaskID: "other-goal-task", TaskTitle: "Elsewhere"},
		}},
	}

	dag := FromTasks(tasks)
	b, ok := dag.Get("b")
	if !ok {
		t.Fatal("expected task b in graph")
	}
	if len(b.DependsOn) != 1 || b.DependsOn[0] != "a" {
		t.Errorf("DependsOn = %v, want [a]", b.DependsOn)
	}
	if len(tasks[1].Dependencies) != 2 {
		t.Error("FromTasks must not modify the input tasks")
	}
	if _, err := dag.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestSchedule(t *testing.T) {
	dag := NewDAG()
	dag.AddNode(node("C", model.StatusPending, "B"))
	dag.AddNode(node("B", model.StatusPending, "A"))
	dag.AddNode(node("A", model.StatusCompleted))

	s := dag.Schedule()
	if s.Cyclic {
		t.Fatal("expected acyclic schedule")
	}
	var ids []string
	for _, n := range s.Order {
		ids = append(ids, n.ID)
	}
	if strings.Join(ids, ",") != "A,B,C" {
		t.Errorf("Order = %v, want [A B C]", ids)
	}
	if len(s.Ready) != 1 || s.Ready[0].ID != "B" {
		t.Errorf("Ready = %v, want [B]", s.Ready)
	}
	if s.Progress.Total != 3 || s.Progress.Completed != 1 {
		t.Errorf("Progress = %+v", s.Progress)
	}
}

func TestScheduleCyclicFallsBackToInsertionOrder(t *testing.T) {
	dag := NewDAG()
	dag.AddNode(node("X", model.StatusPending, "Y"))
	dag.AddNode(node("Y", model.StatusPending, "X"))
	dag.AddNode(node("Z", model.StatusPending))

	s := dag.Schedule()
	if !s.Cyclic {
		t.Fatal("expected cyclic flag")
	}
	var ids []string
	for _, n := range s.Order {
		ids = append(ids, n.ID)
	}
	if strings.Join(ids, ",") != "X,Y,Z" {
		t.Errorf("Order = %v, want insertion order [X Y Z]", ids)
	}
	if len(s.Ready) != 1 || s.Ready[0].ID != "Z" {
		t.Errorf("Ready = %v, want [Z]", s.Ready)
	}
}
