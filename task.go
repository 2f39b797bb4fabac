package taskflow

import (
	"encoding/json"
	"fmt"
	"time"
)

// TaskType tags the kind of work a task performs. The set is open: unknown
// types are carried through unchanged with CustomParams.
type TaskType string

const (
	TypeBuild       TaskType = "build"
	TypeSleep       TaskType = "sleep"
	TypeDeploy      TaskType = "deploy"
	TypeTest        TaskType = "test"
	TypeApproval    TaskType = "approval"
	TypeCustom      TaskType = "custom"
	TypePrepare     TaskType = "prepare"
	TypeHealthCheck TaskType = "health_check"
)

// TaskStatus is the execution status reported by the deployment backend.
type TaskStatus string

const (
	StatusPending         TaskStatus = "pending"
	StatusRunning         TaskStatus = "running"
	StatusSuccess         TaskStatus = "success"
	StatusFailed          TaskStatus = "failed"
	StatusBlocked         TaskStatus = "blocked"
	StatusCancelled       TaskStatus = "cancelled"
	StatusWaitingApproval TaskStatus = "waiting_approval"
)

// Statuses lists every known status in display order.
var Statuses = []TaskStatus{
	StatusPending,
	StatusRunning,
	StatusSuccess,
	StatusFailed,
	StatusBlocked,
	StatusCancelled,
	StatusWaitingApproval,
}

// Task is one unit of deployment work.
//
// Dependencies distinguishes nil (no dependency information at all) from an
// empty slice (an explicit root). Layout falls back to chain mode only when
// every task in a list has nil Dependencies.
type Task struct {
	ID           string
	Name         string
	Type         TaskType
	Status       TaskStatus
	Dependencies []string
	Params       Params
	Duration     int // seconds
	StartedAt    *time.Time
	CompletedAt  *time.Time
	Logs         []string
}

type taskJSON struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Type         TaskType        `json:"type"`
	Status       TaskStatus      `json:"status"`
	Dependencies *[]string       `json:"dependencies,omitempty"`
	Params       json.RawMessage `json:"params,omitempty"`
	Duration     int             `json:"duration,omitempty"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	Logs         []string        `json:"logs,omitempty"`
}

// MarshalJSON encodes the task with its params as a nested object.
func (t Task) MarshalJSON() ([]byte, error) {
	out := taskJSON{
		ID:          t.ID,
		Name:        t.Name,
		Type:        t.Type,
		Status:      t.Status,
		Duration:    t.Duration,
		StartedAt:   t.StartedAt,
		CompletedAt: t.CompletedAt,
		Logs:        t.Logs,
	}
	if t.Dependencies != nil {
		deps := t.Dependencies
		out.Dependencies = &deps
	}
	if t.Params != nil {
		raw, err := json.Marshal(t.Params)
		if err != nil {
			return nil, fmt.Errorf("taskflow: encode params of %s: %w", t.ID, err)
		}
		out.Params = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a task, resolving params by the task type.
func (t *Task) UnmarshalJSON(data []byte) error {
	var in taskJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	params, err := DecodeParams(in.Type, in.Params)
	if err != nil {
		return fmt.Errorf("taskflow: decode params of %s: %w", in.ID, err)
	}
	*t = Task{
		ID:          in.ID,
		Name:        in.Name,
		Type:        in.Type,
		Status:      in.Status,
		Params:      params,
		Duration:    in.Duration,
		StartedAt:   in.StartedAt,
		CompletedAt: in.CompletedAt,
		Logs:        in.Logs,
	}
	if in.Dependencies != nil {
		t.Dependencies = *in.Dependencies
		if t.Dependencies == nil {
			t.Dependencies = []string{}
		}
	}
	return nil
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	if t.Dependencies != nil {
		out.Dependencies = append([]string{}, t.Dependencies...)
	}
	if t.Logs != nil {
		out.Logs = append([]string{}, t.Logs...)
	}
	if t.StartedAt != nil {
		ts := *t.StartedAt
		out.StartedAt = &ts
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		out.CompletedAt = &ts
	}
	out.Params = cloneParams(t.Params)
	return out
}

// CloneTasks deep-copies a task list. A nil list stays nil.
func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// indexTasks builds the id lookup used by level assignment and layout.
// When ids repeat, the first occurrence wins.
func indexTasks(tasks []Task) map[string]Task {
	index := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		if _, ok := index[t.ID]; !ok {
			index[t.ID] = t
		}
	}
	return index
}
