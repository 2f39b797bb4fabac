package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meikuraledutech/taskflow"
)

// taskRow is a task in column form. JSONB columns are raw bytes; nil maps
// to SQL NULL.
type taskRow struct {
	id           string
	name         string
	typ          string
	status       string
	dependencies []byte
	params       []byte
	duration     int
	startedAt    *time.Time
	completedAt  *time.Time
	logs         []byte
}

func encodeTask(t taskflow.Task) (taskRow, error) {
	r := taskRow{
		id:          t.ID,
		name:        t.Name,
		typ:         string(t.Type),
		status:      string(t.Status),
		duration:    t.Duration,
		startedAt:   t.StartedAt,
		completedAt: t.CompletedAt,
	}
	var err error
	if r.dependencies, err = encodeList(t.Dependencies); err != nil {
		return r, fmt.Errorf("taskflow: encode dependencies of %s: %w", t.ID, err)
	}
	if r.logs, err = encodeList(t.Logs); err != nil {
		return r, fmt.Errorf("taskflow: encode logs of %s: %w", t.ID, err)
	}
	if r.params, err = taskflow.EncodeParams(t.Params); err != nil {
		return r, fmt.Errorf("taskflow: encode params of %s: %w", t.ID, err)
	}
	return r, nil
}

func (r taskRow) decode() (taskflow.Task, error) {
	t := taskflow.Task{
		ID:          r.id,
		Name:        r.name,
		Type:        taskflow.TaskType(r.typ),
		Status:      taskflow.TaskStatus(r.status),
		Duration:    r.duration,
		StartedAt:   r.startedAt,
		CompletedAt: r.completedAt,
	}
	var err error
	if t.Dependencies, err = decodeList(r.dependencies); err != nil {
		return t, fmt.Errorf("taskflow: decode dependencies of %s: %w", r.id, err)
	}
	if t.Logs, err = decodeList(r.logs); err != nil {
		return t, fmt.Errorf("taskflow: decode logs of %s: %w", r.id, err)
	}
	if t.Params, err = taskflow.DecodeParams(t.Type, r.params); err != nil {
		return t, fmt.Errorf("taskflow: decode params of %s: %w", r.id, err)
	}
	return t, nil
}

func encodeList(v []string) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func decodeList(b []byte) ([]string, error) {
	if b == nil {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTask overwrites a stored task, keeping its position.
// Returns ErrTaskNotFound if the task doesn't exist.
func (s *PGStore) UpdateTask(ctx context.Context, deploymentID string, task *taskflow.Task) error {
	r, err := encodeTask(*task)
	if err != nil {
		return err
	}
	ct, err := s.db.Exec(ctx,
		`UPDATE workflow_tasks
		    SET name = $3, type = $4, status = $5, dependencies = $6, params = $7,
		        duration = $8, started_at = $9, completed_at = $10, logs = $11
		  WHERE deployment_id = $1 AND id = $2`,
		deploymentID, r.id, r.name, r.typ, r.status, r.dependencies, r.params,
		r.duration, r.startedAt, r.completedAt, r.logs,
	)
	if err != nil {
		return fmt.Errorf("taskflow: update task: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return taskflow.ErrTaskNotFound
	}
	return nil
}

// ListTasks returns the tasks of a deployment in their saved order.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListTasks(ctx context.Context, deploymentID string) ([]taskflow.Task, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, type, status, dependencies, params, duration, started_at, completed_at, logs
		   FROM workflow_tasks WHERE deployment_id = $1 ORDER BY seq`, deploymentID)
	if err != nil {
		return nil, fmt.Errorf("taskflow: list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []taskflow.Task{}
	for rows.Next() {
		var r taskRow
		if err := rows.Scan(&r.id, &r.name, &r.typ, &r.status, &r.dependencies, &r.params,
			&r.duration, &r.startedAt, &r.completedAt, &r.logs); err != nil {
			return nil, fmt.Errorf("taskflow: scan task: %w", err)
		}
		t, err := r.decode()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("taskflow: rows tasks: %w", err)
	}

	return tasks, nil
}
