package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/taskflow"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "taskflow.db"))
	require.NoError(t, err)
	require.NoError(t, s.CreateSchema(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sample() *taskflow.Workflow {
	return &taskflow.Workflow{
		DeploymentID: "dep-1",
		Status:       "pending",
		Tasks: []taskflow.Task{
			{ID: "build", Name: "Build", Type: taskflow.TypeBuild, Status: taskflow.StatusSuccess,
				Dependencies: []string{}, Params: taskflow.BuildParams{TargetImage: "app:1"}},
			{ID: "gate", Name: "Gate", Type: taskflow.TypeApproval, Status: taskflow.StatusWaitingApproval,
				Dependencies: []string{"build"}, Params: taskflow.ApprovalParams{Note: "ok?"}},
			{ID: "ship", Name: "Ship", Type: taskflow.TypeDeploy, Status: taskflow.StatusPending,
				Dependencies: []string{"gate"}, Logs: []string{"queued"}},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.GetWorkflow(ctx, "dep-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.SaveWorkflow(ctx, sample()))

	got, err = s.GetWorkflow(ctx, "dep-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "pending", got.Status)
	require.Len(t, got.Tasks, 3)
	assert.Equal(t, []string{"build", "gate", "ship"}, []string{got.Tasks[0].ID, got.Tasks[1].ID, got.Tasks[2].ID})
	assert.Equal(t, []string{}, got.Tasks[0].Dependencies)
	assert.Equal(t, []string{"gate"}, got.Tasks[2].Dependencies)
	assert.Equal(t, taskflow.ApprovalParams{Note: "ok?"}, got.Tasks[1].Params)
	assert.Equal(t, []string{"queued"}, got.Tasks[2].Logs)
	assert.Nil(t, got.Tasks[2].Params)
}

func TestSaveReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveWorkflow(ctx, sample()))

	w := sample()
	w.Status = "running"
	w.Tasks = w.Tasks[:1]
	require.NoError(t, s.SaveWorkflow(ctx, w))

	got, err := s.GetWorkflow(ctx, "dep-1")
	require.NoError(t, err)
	assert.Equal(t, "running", got.Status)
	assert.Len(t, got.Tasks, 1)
}

func TestSaveRejectsInvalid(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := sample()
	w.Tasks[0].Dependencies = []string{"ship"}
	assert.ErrorIs(t, s.SaveWorkflow(ctx, w), taskflow.ErrCycleDetected)

	w = sample()
	w.Tasks[1].Dependencies = []string{"ghost"}
	assert.ErrorIs(t, s.SaveWorkflow(ctx, w), taskflow.ErrInvalidWorkflow)

	got, err := s.GetWorkflow(ctx, "dep-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestChainTasksKeepNilDependencies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := &taskflow.Workflow{DeploymentID: "dep-2", Tasks: []taskflow.Task{
		{ID: "a", Type: taskflow.TypeBuild, Status: taskflow.StatusPending},
		{ID: "b", Type: taskflow.TypeDeploy, Status: taskflow.StatusPending},
	}}
	require.NoError(t, s.SaveWorkflow(ctx, w))

	tasks, err := s.ListTasks(ctx, "dep-2")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Nil(t, tasks[0].Dependencies)
	assert.True(t, taskflow.IsChain(tasks))
}

func TestUpdateTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveWorkflow(ctx, sample()))

	gate := taskflow.Task{
		ID: "gate", Name: "Gate", Type: taskflow.TypeApproval, Status: taskflow.StatusSuccess,
		Dependencies: []string{"build"},
		Params:       taskflow.ApprovalParams{Note: "ok?", Approved: true, Approver: "alice"},
	}
	require.NoError(t, s.UpdateTask(ctx, "dep-1", &gate))

	tasks, err := s.ListTasks(ctx, "dep-1")
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "gate", tasks[1].ID)
	assert.Equal(t, taskflow.StatusSuccess, tasks[1].Status)
	assert.Equal(t, "alice", tasks[1].Params.(taskflow.ApprovalParams).Approver)

	ghost := taskflow.Task{ID: "ghost"}
	assert.ErrorIs(t, s.UpdateTask(ctx, "dep-1", &ghost), taskflow.ErrTaskNotFound)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveWorkflow(ctx, sample()))
	require.NoError(t, s.DeleteWorkflow(ctx, "dep-1"))
	require.NoError(t, s.DeleteWorkflow(ctx, "dep-1"))

	got, err := s.GetWorkflow(ctx, "dep-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	tasks, err := s.ListTasks(ctx, "dep-1")
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}
