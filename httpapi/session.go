package httpapi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/meikuraledutech/taskflow"
)

var errWorkflowNotFound = errors.New("workflow not found")

// persistTimeout bounds store writes made from editor callbacks, which run
// without a request context.
const persistTimeout = 10 * time.Second

// session is the editor of one deployment plus the outcome of the last
// store write triggered by one of its callbacks.
type session struct {
	editor *taskflow.Editor

	mu     sync.Mutex
	status string
	err    error
}

func (s *session) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// takeErr returns and clears the last callback error.
func (s *session) takeErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.err
	s.err = nil
	return err
}

// session returns the editor of a deployment, loading the workflow from the
// store the first time.
func (s *Server) session(ctx context.Context, deploymentID string) (*session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[deploymentID]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}

	w, err := s.store.GetWorkflow(ctx, deploymentID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, errWorkflowNotFound
	}

	sess = &session{status: w.Status}
	sess.editor = taskflow.NewEditor(w.Tasks, taskflow.EditorOptions{
		AllowEdit: s.cfg.Editable(w.Status),
		Layout:    s.cfg.Layout,
		Reporter:  taskflow.LogReporter{Log: s.log.With().Str("deployment", deploymentID).Logger()},
		OnSave: func(tasks []taskflow.Task) {
			sess.setErr(s.persist(deploymentID, sess, tasks))
		},
		OnApprove: func(req taskflow.ApproveRequest) {
			sess.setErr(s.approve(deploymentID, sess, req))
		},
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have loaded it meanwhile.
	if existing, ok := s.sessions[deploymentID]; ok {
		return existing, nil
	}
	s.sessions[deploymentID] = sess
	return sess, nil
}

// refresh reloads the workflow from the store into an existing session.
// Edit sessions buffer the new list until they end.
func (s *Server) refresh(ctx context.Context, deploymentID string, sess *session) error {
	w, err := s.store.GetWorkflow(ctx, deploymentID)
	if err != nil {
		return err
	}
	if w == nil {
		s.drop(deploymentID)
		return errWorkflowNotFound
	}
	sess.mu.Lock()
	sess.status = w.Status
	sess.mu.Unlock()
	sess.editor.SetAllowEdit(s.cfg.Editable(w.Status))
	sess.editor.SetTasks(w.Tasks)
	return nil
}

func (s *Server) drop(deploymentID string) {
	s.mu.Lock()
	delete(s.sessions, deploymentID)
	s.mu.Unlock()
}

func (s *Server) persist(deploymentID string, sess *session, tasks []taskflow.Task) error {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	sess.mu.Lock()
	status := sess.status
	sess.mu.Unlock()

	err := s.store.SaveWorkflow(ctx, &taskflow.Workflow{
		DeploymentID: deploymentID,
		Status:       status,
		Tasks:        tasks,
	})
	if err != nil {
		return fmt.Errorf("saving workflow: %w", err)
	}
	s.log.Info().Str("deployment", deploymentID).Int("tasks", len(tasks)).Msg("workflow saved")
	return nil
}

// approve marks an approval task as approved and successful, then pushes
// the stored list back into the editor.
func (s *Server) approve(deploymentID string, sess *session, req taskflow.ApproveRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	tasks, err := s.store.ListTasks(ctx, deploymentID)
	if err != nil {
		return err
	}
	var task *taskflow.Task
	for i := range tasks {
		if tasks[i].ID == req.TaskID {
			task = &tasks[i]
			break
		}
	}
	if task == nil {
		return fmt.Errorf("%w: %s", taskflow.ErrTaskNotFound, req.TaskID)
	}

	params, _ := task.Params.(taskflow.ApprovalParams)
	params.Approved = true
	params.Approver = req.Approver
	now := time.Now().UTC()
	task.Params = params
	task.Status = taskflow.StatusSuccess
	task.CompletedAt = &now

	if err := s.store.UpdateTask(ctx, deploymentID, task); err != nil {
		return fmt.Errorf("approving task: %w", err)
	}
	s.log.Info().
		Str("deployment", deploymentID).
		Str("task", req.TaskID).
		Str("approver", req.Approver).
		Msg("task approved")

	sess.editor.SetTasks(tasks)
	return nil
}
