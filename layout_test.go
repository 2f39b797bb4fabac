package taskflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout_Diamond(t *testing.T) {
	g := Layout(diamond(), DefaultLayoutOptions())

	require.Len(t, g.Nodes, 4)
	assert.False(t, g.Chain)

	want := map[string]Position{
		"t1": {X: 0, Y: 150},
		"t2": {X: 320, Y: 60},
		"t3": {X: 320, Y: 240},
		"t4": {X: 640, Y: 150},
	}
	for _, n := range g.Nodes {
		assert.Equal(t, want[n.ID], n.Position, "node %s", n.ID)
	}

	t2, _ := g.Node("t2")
	t3, _ := g.Node("t3")
	assert.Equal(t, t2.Data.Level, t3.Data.Level)
	assert.NotEqual(t, t2.Position, t3.Position)

	assert.Equal(t, [][2]string{{"t1", "t2"}, {"t1", "t3"}, {"t2", "t4"}, {"t3", "t4"}}, edgePairs(g))
	_, ok := g.Edge("et2-t4")
	assert.True(t, ok)
}

func TestLayout_OneNodePerTaskOneEdgePerDependency(t *testing.T) {
	tasks := []Task{
		{ID: "a", Dependencies: []string{}},
		{ID: "b", Dependencies: []string{"a"}},
		{ID: "c", Dependencies: []string{"a", "b"}},
		{ID: "d", Dependencies: []string{"c", "b", "a"}},
		{ID: "e", Dependencies: []string{}},
		{ID: "f", Dependencies: []string{"e", "d"}},
	}
	g := Layout(tasks, DefaultLayoutOptions())

	assert.Len(t, g.Nodes, len(tasks))
	total := 0
	for _, task := range tasks {
		total += len(task.Dependencies)
		for _, dep := range task.Dependencies {
			_, ok := g.Edge(EdgeID(dep, task.ID))
			assert.True(t, ok, "missing edge %s -> %s", dep, task.ID)
		}
	}
	assert.Len(t, g.Edges, total)
}

func TestLayout_RankIsCentred(t *testing.T) {
	tasks := []Task{
		{ID: "a", Dependencies: []string{}},
		{ID: "b", Dependencies: []string{}},
		{ID: "c", Dependencies: []string{}},
	}
	g := Layout(tasks, DefaultLayoutOptions())

	ys := []float64{g.Nodes[0].Position.Y, g.Nodes[1].Position.Y, g.Nodes[2].Position.Y}
	assert.Equal(t, []float64{-30, 150, 330}, ys)
	assert.Empty(t, g.Edges)
	assert.False(t, g.Chain)
}

func TestLayout_EdgeStyleFollowsEndpointStatus(t *testing.T) {
	tasks := []Task{
		{ID: "ok", Status: StatusSuccess, Dependencies: []string{}},
		{ID: "run", Status: StatusRunning, Dependencies: []string{"ok"}},
		{ID: "bad", Status: StatusFailed, Dependencies: []string{"ok"}},
		{ID: "wait", Status: StatusPending, Dependencies: []string{"run", "bad"}},
		{ID: "down", Status: StatusFailed, Dependencies: []string{"wait"}},
	}
	g := Layout(tasks, DefaultLayoutOptions())

	style := func(src, dst string) EdgeStyle {
		e, ok := g.Edge(EdgeID(src, dst))
		require.True(t, ok, "edge %s -> %s", src, dst)
		return e.Style
	}

	assert.Equal(t, EdgeStyle{Color: EdgeSuccess, Animated: true}, style("ok", "run"))
	assert.Equal(t, EdgeStyle{Color: EdgeSuccess}, style("ok", "bad"))
	assert.Equal(t, EdgeStyle{Color: EdgeNeutral, Animated: true}, style("run", "wait"))
	assert.Equal(t, EdgeStyle{Color: EdgeFailed}, style("bad", "wait"))
	assert.Equal(t, EdgeStyle{Color: EdgeFailed}, style("wait", "down"))
}

func TestLayout_DuplicateDependenciesCollapse(t *testing.T) {
	tasks := []Task{
		{ID: "a", Dependencies: []string{}},
		{ID: "b", Dependencies: []string{"a", "a"}},
	}
	g := Layout(tasks, DefaultLayoutOptions())
	assert.Len(t, g.Edges, 1)
}

func TestLayout_MissingDependencyHasNoEdge(t *testing.T) {
	g := Layout([]Task{{ID: "a", Dependencies: []string{"ghost"}}}, DefaultLayoutOptions())

	require.Len(t, g.Nodes, 1)
	assert.Empty(t, g.Edges)
	assert.Equal(t, 1, g.Nodes[0].Data.Level)
}

func TestLayout_ChainWhenNoDependencyInformation(t *testing.T) {
	g := Layout(chain("a", "b", "c"), DefaultLayoutOptions())

	require.True(t, g.Chain)
	require.Len(t, g.Nodes, 3)
	for i, n := range g.Nodes {
		assert.Equal(t, Position{X: 250, Y: float64(i) * 150}, n.Position)
	}
	assert.True(t, g.Nodes[0].Data.IsFirst)
	assert.False(t, g.Nodes[0].Data.IsLast)
	assert.True(t, g.Nodes[2].Data.IsLast)
	assert.Equal(t, [][2]string{{"a", "b"}, {"b", "c"}}, edgePairs(g))
}

func TestLayout_EmptyDependenciesAreNotChain(t *testing.T) {
	tasks := chain("a", "b")
	tasks[1].Dependencies = []string{}

	g := Layout(tasks, DefaultLayoutOptions())
	assert.False(t, g.Chain)
	assert.Empty(t, g.Edges)
}

func TestLayout_EmptyList(t *testing.T) {
	g := Layout(nil, DefaultLayoutOptions())
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
	assert.False(t, g.Chain)
}

func TestLayout_DoesNotAliasInput(t *testing.T) {
	tasks := diamond()
	g := Layout(tasks, DefaultLayoutOptions())

	g.Nodes[3].Data.Task.Dependencies[0] = "changed"
	assert.Equal(t, "t2", tasks[3].Dependencies[0])
}
