package taskflow

import (
	"context"
	"errors"
)

var (
	ErrCycleDetected   = errors.New("taskflow: cycle detected, graph is not acyclic")
	ErrInvalidWorkflow = errors.New("taskflow: invalid workflow")
	ErrNodeNotFound    = errors.New("taskflow: node not found")
	ErrEdgeNotFound    = errors.New("taskflow: edge not found")
	ErrTaskNotFound    = errors.New("taskflow: task not found")
	ErrReadOnly        = errors.New("taskflow: graph is read-only outside edit mode")
	ErrEditNotAllowed  = errors.New("taskflow: editing is not allowed for this workflow")
	ErrNotChainMode    = errors.New("taskflow: reordering requires chain layout")
	ErrNotApprovable   = errors.New("taskflow: task is not waiting for approval")
	ErrIDExhausted     = errors.New("taskflow: no unused node id generated")
	ErrUnknownEvent    = errors.New("taskflow: unknown event kind")
)

// Workflow is the task graph of one deployment as the backend stores it.
type Workflow struct {
	DeploymentID string `json:"deployment_id"`
	Status       string `json:"status"`
	Tasks        []Task `json:"tasks"`
}

// Store defines the contract for persisting and retrieving deployment workflows.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Workflow (bulk operations)
	SaveWorkflow(ctx context.Context, w *Workflow) error
	GetWorkflow(ctx context.Context, deploymentID string) (*Workflow, error)
	DeleteWorkflow(ctx context.Context, deploymentID string) error

	// Tasks
	UpdateTask(ctx context.Context, deploymentID string, task *Task) error
	ListTasks(ctx context.Context, deploymentID string) ([]Task, error)

	Close() error
}
