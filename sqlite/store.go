// Package sqlite implements taskflow.Store on an embedded SQLite file
// through gorm.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	gsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/meikuraledutech/taskflow"
)

type workflowRow struct {
	DeploymentID string `gorm:"primaryKey"`
	Status       string
	UpdatedAt    time.Time
}

func (workflowRow) TableName() string { return "workflows" }

type taskRow struct {
	DeploymentID string `gorm:"primaryKey"`
	ID           string `gorm:"primaryKey"`
	Seq          int    `gorm:"index"`
	Name         string
	Type         string
	Status       string
	Dependencies []string `gorm:"serializer:json"`
	Params       []byte
	Duration     int
	StartedAt    *time.Time
	CompletedAt  *time.Time
	Logs         []string `gorm:"serializer:json"`
}

func (taskRow) TableName() string { return "workflow_tasks" }

// Store implements taskflow.Store on SQLite.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database file at path.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(gsqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &Store{db: db}, nil
}

// CreateSchema migrates the workflows and workflow_tasks tables.
func (s *Store) CreateSchema(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&workflowRow{}, &taskRow{}); err != nil {
		return fmt.Errorf("auto migrating tables: %w", err)
	}
	return nil
}

// DropSchema drops both tables.
func (s *Store) DropSchema(ctx context.Context) error {
	return s.db.WithContext(ctx).Migrator().DropTable(&taskRow{}, &workflowRow{})
}

// SaveWorkflow validates w and replaces the stored version in one transaction.
func (s *Store) SaveWorkflow(ctx context.Context, w *taskflow.Workflow) error {
	if err := taskflow.Validate(w.Tasks); err != nil {
		return err
	}

	rows := make([]taskRow, 0, len(w.Tasks))
	for i, t := range w.Tasks {
		r, err := toRow(w.DeploymentID, i, t)
		if err != nil {
			return err
		}
		rows = append(rows, r)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("deployment_id = ?", w.DeploymentID).Delete(&taskRow{}).Error; err != nil {
			return fmt.Errorf("deleting tasks: %w", err)
		}
		if err := tx.Save(&workflowRow{DeploymentID: w.DeploymentID, Status: w.Status}).Error; err != nil {
			return fmt.Errorf("saving workflow: %w", err)
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("inserting tasks: %w", err)
			}
		}
		return nil
	})
}

// GetWorkflow returns nil, nil when the deployment has no workflow.
func (s *Store) GetWorkflow(ctx context.Context, deploymentID string) (*taskflow.Workflow, error) {
	var wr workflowRow
	err := s.db.WithContext(ctx).First(&wr, "deployment_id = ?", deploymentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying workflow: %w", err)
	}

	tasks, err := s.ListTasks(ctx, deploymentID)
	if err != nil {
		return nil, err
	}
	return &taskflow.Workflow{DeploymentID: wr.DeploymentID, Status: wr.Status, Tasks: tasks}, nil
}

// DeleteWorkflow removes a workflow and its tasks.
func (s *Store) DeleteWorkflow(ctx context.Context, deploymentID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("deployment_id = ?", deploymentID).Delete(&taskRow{}).Error; err != nil {
			return fmt.Errorf("deleting tasks: %w", err)
		}
		if err := tx.Where("deployment_id = ?", deploymentID).Delete(&workflowRow{}).Error; err != nil {
			return fmt.Errorf("deleting workflow: %w", err)
		}
		return nil
	})
}

// UpdateTask overwrites one stored task, keeping its position.
func (s *Store) UpdateTask(ctx context.Context, deploymentID string, task *taskflow.Task) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing taskRow
		err := tx.First(&existing, "deployment_id = ? AND id = ?", deploymentID, task.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return taskflow.ErrTaskNotFound
		}
		if err != nil {
			return fmt.Errorf("querying task: %w", err)
		}

		r, err := toRow(deploymentID, existing.Seq, *task)
		if err != nil {
			return err
		}
		if err := tx.Save(&r).Error; err != nil {
			return fmt.Errorf("updating task: %w", err)
		}
		return nil
	})
}

// ListTasks returns the tasks of a deployment in saved order, never nil.
func (s *Store) ListTasks(ctx context.Context, deploymentID string) ([]taskflow.Task, error) {
	var rows []taskRow
	if err := s.db.WithContext(ctx).
		Where("deployment_id = ?", deploymentID).
		Order("seq").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}

	tasks := make([]taskflow.Task, 0, len(rows))
	for _, r := range rows {
		t, err := r.task()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

func toRow(deploymentID string, seq int, t taskflow.Task) (taskRow, error) {
	params, err := taskflow.EncodeParams(t.Params)
	if err != nil {
		return taskRow{}, fmt.Errorf("encoding params of %s: %w", t.ID, err)
	}
	return taskRow{
		DeploymentID: deploymentID,
		ID:           t.ID,
		Seq:          seq,
		Name:         t.Name,
		Type:         string(t.Type),
		Status:       string(t.Status),
		Dependencies: t.Dependencies,
		Params:       params,
		Duration:     t.Duration,
		StartedAt:    t.StartedAt,
		CompletedAt:  t.CompletedAt,
		Logs:         t.Logs,
	}, nil
}

func (r taskRow) task() (taskflow.Task, error) {
	typ := taskflow.TaskType(r.Type)
	params, err := taskflow.DecodeParams(typ, r.Params)
	if err != nil {
		return taskflow.Task{}, fmt.Errorf("decoding params of %s: %w", r.ID, err)
	}
	return taskflow.Task{
		ID:           r.ID,
		Name:         r.Name,
		Type:         typ,
		Status:       taskflow.TaskStatus(r.Status),
		Dependencies: r.Dependencies,
		Params:       params,
		Duration:     r.Duration,
		StartedAt:    r.StartedAt,
		CompletedAt:  r.CompletedAt,
		Logs:         r.Logs,
	}, nil
}
