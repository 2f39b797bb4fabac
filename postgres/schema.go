package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS workflows (
    deployment_id TEXT PRIMARY KEY,
    status        TEXT NOT NULL DEFAULT '',
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS workflow_tasks (
    deployment_id TEXT NOT NULL REFERENCES workflows(deployment_id) ON DELETE CASCADE,
    id            TEXT NOT NULL,
    seq           INTEGER NOT NULL,
    name          TEXT NOT NULL DEFAULT '',
    type          TEXT NOT NULL,
    status        TEXT NOT NULL,
    dependencies  JSONB,
    params        JSONB,
    duration      INTEGER NOT NULL DEFAULT 0,
    started_at    TIMESTAMPTZ,
    completed_at  TIMESTAMPTZ,
    logs          JSONB,
    PRIMARY KEY (deployment_id, id)
);

CREATE INDEX IF NOT EXISTS idx_workflow_tasks_seq ON workflow_tasks(deployment_id, seq);
`

// CreateSchema creates the workflows and workflow_tasks tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the workflow_tasks and workflows tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS workflow_tasks, workflows CASCADE;`)
	return err
}
