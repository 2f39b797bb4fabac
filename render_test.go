package taskflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTreatment_DistinctPerStatus(t *testing.T) {
	type look struct{ icon, color string }
	seen := map[look]TaskStatus{}
	for _, s := range Statuses {
		tr := StatusTreatment(s)
		key := look{tr.Icon, tr.Color}
		if prev, dup := seen[key]; dup {
			t.Fatalf("statuses %s and %s share treatment %+v", prev, s, key)
		}
		seen[key] = s
		assert.Equal(t, s == StatusRunning, tr.Animated, "status %s", s)
	}
	assert.Equal(t, "Unknown", StatusTreatment("mystery").Label)
}

func TestAffordances_ViewMode(t *testing.T) {
	n := GraphNode{ID: "a", Data: NodeData{Task: Task{Type: TypeBuild, Status: StatusPending}}}
	assert.Empty(t, Affordances(n, false))

	n.Data.Task = Task{Type: TypeApproval, Status: StatusWaitingApproval}
	assert.Equal(t, []Affordance{AffordanceApprove}, Affordances(n, false))
}

func TestAffordances_EditMode(t *testing.T) {
	n := GraphNode{ID: "a", Data: NodeData{IsEditMode: true, Task: Task{Type: TypeSleep}}}
	assert.Equal(t, []Affordance{AffordanceConnect, AffordanceDelete, AffordanceEditParams}, Affordances(n, false))

	n.Data.IsFirst = true
	assert.Equal(t,
		[]Affordance{AffordanceConnect, AffordanceDelete, AffordanceEditParams, AffordanceMoveDown},
		Affordances(n, true))

	n.Data.IsFirst, n.Data.IsLast = false, true
	assert.Contains(t, Affordances(n, true), AffordanceMoveUp)
	assert.NotContains(t, Affordances(n, true), AffordanceMoveDown)
}

func TestRenderGraph(t *testing.T) {
	tasks := []Task{
		{ID: "s", Name: "Cool down", Type: TypeSleep, Status: StatusRunning, Duration: 12, Params: SleepParams{Duration: 30}},
		{ID: "d", Name: "Ship", Type: TypeDeploy, Status: StatusPending,
			Params: DeployParams{Image: "app:1.2", Replicas: 3, Strategy: "rolling"}},
	}
	views := RenderGraph(Layout(tasks, DefaultLayoutOptions()))

	assert.Len(t, views, 2)
	assert.Equal(t, "Cool down", views[0].Title)
	assert.Equal(t, "12s", views[0].Duration)
	assert.True(t, views[0].Progress)
	assert.Equal(t, "wait 30s", views[0].Summary)
	assert.Equal(t, "deploy app:1.2 x3 (rolling)", views[1].Summary)
	assert.False(t, views[1].Progress)
	assert.Empty(t, views[1].Duration)
}
