package postgres

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/taskflow"
)

// SaveWorkflow saves a full workflow (status + tasks) in one transaction,
// replacing whatever was stored for the deployment. The task list is
// validated first.
func (s *PGStore) SaveWorkflow(ctx context.Context, w *taskflow.Workflow) error {
	if err := taskflow.Validate(w.Tasks); err != nil {
		return err
	}

	rows := make([]taskRow, 0, len(w.Tasks))
	for _, t := range w.Tasks {
		r, err := encodeTask(t)
		if err != nil {
			return err
		}
		rows = append(rows, r)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("taskflow: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM workflow_tasks WHERE deployment_id = $1`, w.DeploymentID); err != nil {
		return fmt.Errorf("taskflow: delete tasks: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO workflows (deployment_id, status, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (deployment_id) DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()`,
		w.DeploymentID, w.Status,
	); err != nil {
		return fmt.Errorf("taskflow: upsert workflow: %w", err)
	}

	for i, r := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO workflow_tasks
			   (deployment_id, id, seq, name, type, status, dependencies, params, duration, started_at, completed_at, logs)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			w.DeploymentID, r.id, i, r.name, r.typ, r.status, r.dependencies, r.params,
			r.duration, r.startedAt, r.completedAt, r.logs,
		); err != nil {
			return fmt.Errorf("taskflow: insert task %s: %w", r.id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("taskflow: commit: %w", err)
	}
	return nil
}

// GetWorkflow retrieves a workflow by deployment id.
// Returns nil, nil if the deployment has no workflow.
func (s *PGStore) GetWorkflow(ctx context.Context, deploymentID string) (*taskflow.Workflow, error) {
	w := &taskflow.Workflow{DeploymentID: deploymentID}

	err := s.db.QueryRow(ctx,
		`SELECT status FROM workflows WHERE deployment_id = $1`, deploymentID,
	).Scan(&w.Status)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("taskflow: get workflow: %w", err)
	}

	tasks, err := s.ListTasks(ctx, deploymentID)
	if err != nil {
		return nil, err
	}
	w.Tasks = tasks
	return w, nil
}

// DeleteWorkflow removes a workflow and its tasks.
// No error if the deployment doesn't exist.
func (s *PGStore) DeleteWorkflow(ctx context.Context, deploymentID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("taskflow: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM workflow_tasks WHERE deployment_id = $1`, deploymentID); err != nil {
		return fmt.Errorf("taskflow: delete tasks: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM workflows WHERE deployment_id = $1`, deploymentID); err != nil {
		return fmt.Errorf("taskflow: delete workflow: %w", err)
	}

	return tx.Commit(ctx)
}
