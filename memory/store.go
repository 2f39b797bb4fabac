// Package memory implements taskflow.Store in process memory.
package memory

import (
	"context"
	"sync"

	"github.com/meikuraledutech/taskflow"
)

// Store keeps workflows in a map. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	workflows map[string]taskflow.Workflow
}

// New creates an empty Store.
func New() *Store {
	return &Store{workflows: make(map[string]taskflow.Workflow)}
}

func (s *Store) CreateSchema(ctx context.Context) error { return nil }

// DropSchema removes every workflow.
func (s *Store) DropSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows = make(map[string]taskflow.Workflow)
	return nil
}

// SaveWorkflow validates and stores w, replacing any previous version.
func (s *Store) SaveWorkflow(ctx context.Context, w *taskflow.Workflow) error {
	if err := taskflow.Validate(w.Tasks); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[w.DeploymentID] = taskflow.Workflow{
		DeploymentID: w.DeploymentID,
		Status:       w.Status,
		Tasks:        taskflow.CloneTasks(w.Tasks),
	}
	return nil
}

// GetWorkflow returns nil, nil if the deployment has no workflow.
func (s *Store) GetWorkflow(ctx context.Context, deploymentID string) (*taskflow.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workflows[deploymentID]
	if !ok {
		return nil, nil
	}
	w.Tasks = taskflow.CloneTasks(w.Tasks)
	return &w, nil
}

func (s *Store) DeleteWorkflow(ctx context.Context, deploymentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workflows, deploymentID)
	return nil
}

// UpdateTask replaces a single task, keeping its position in the list.
func (s *Store) UpdateTask(ctx context.Context, deploymentID string, task *taskflow.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workflows[deploymentID]
	if !ok {
		return taskflow.ErrTaskNotFound
	}
	for i := range w.Tasks {
		if w.Tasks[i].ID == task.ID {
			w.Tasks[i] = task.Clone()
			return nil
		}
	}
	return taskflow.ErrTaskNotFound
}

// ListTasks returns an empty slice (not nil) if none found.
func (s *Store) ListTasks(ctx context.Context, deploymentID string) ([]taskflow.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workflows[deploymentID]
	if !ok || len(w.Tasks) == 0 {
		return []taskflow.Task{}, nil
	}
	return taskflow.CloneTasks(w.Tasks), nil
}

func (s *Store) Close() error { return nil }
