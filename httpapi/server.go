// Package httpapi exposes workflows and their graph editors over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/meikuraledutech/taskflow"
	"github.com/meikuraledutech/taskflow/config"
)

// Server holds one editor session per deployment.
type Server struct {
	store taskflow.Store
	cfg   *config.Config
	log   zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// New creates a Server on top of store.
func New(store taskflow.Store, cfg *config.Config, log zerolog.Logger) *Server {
	return &Server{
		store:    store,
		cfg:      cfg,
		log:      log,
		sessions: make(map[string]*session),
	}
}

// App builds the fiber application with every route registered.
func (s *Server) App() *fiber.App {
	app := fiber.New()

	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	d := app.Group("/deployments/:id")

	// ── Workflow ──────────────────────────────────────────────────────
	d.Put("/workflow", s.putWorkflow)
	d.Get("/workflow", s.getWorkflow)
	d.Delete("/workflow", s.deleteWorkflow)

	// ── Graph ─────────────────────────────────────────────────────────
	d.Get("/graph", s.getGraph)
	d.Get("/nodes", s.getNodes)
	d.Post("/events", s.postEvent)

	// ── Edit session ──────────────────────────────────────────────────
	d.Post("/edit", s.enterEdit)
	d.Post("/edit/cancel", s.cancelEdit)
	d.Post("/edit/save", s.saveEdit)
	d.Post("/edit/nodes", s.addNode)
	d.Delete("/edit/nodes/:nodeID", s.deleteNode)
	d.Put("/edit/nodes/:nodeID/position", s.moveNode)
	d.Post("/edit/edges", s.addEdge)
	d.Delete("/edit/edges/:edgeID", s.deleteEdge)

	return app
}

type workflowRequest struct {
	Status string          `json:"status"`
	Tasks  []taskflow.Task `json:"tasks"`
}

type edgeRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type eventRequest struct {
	Kind     taskflow.EventKind `json:"kind"`
	NodeID   string             `json:"node_id"`
	Params   json.RawMessage    `json:"params"`
	Approver string             `json:"approver"`
}

type graphResponse struct {
	Mode string `json:"mode"`
	taskflow.Graph
}

func (s *Server) putWorkflow(c fiber.Ctx) error {
	var req workflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	id := c.Params("id")
	w := &taskflow.Workflow{DeploymentID: id, Status: req.Status, Tasks: req.Tasks}
	if err := s.store.SaveWorkflow(c.Context(), w); err != nil {
		return s.fail(c, err)
	}

	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if ok {
		if err := s.refresh(c.Context(), id, sess); err != nil {
			return s.fail(c, err)
		}
	}
	return c.JSON(w)
}

func (s *Server) getWorkflow(c fiber.Ctx) error {
	w, err := s.store.GetWorkflow(c.Context(), c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	if w == nil {
		return s.fail(c, errWorkflowNotFound)
	}
	return c.JSON(w)
}

func (s *Server) deleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if err := s.store.DeleteWorkflow(c.Context(), id); err != nil {
		return s.fail(c, err)
	}
	s.drop(id)
	return c.SendStatus(204)
}

// getGraph reloads the stored workflow before answering, so polling this
// route keeps statuses current.
func (s *Server) getGraph(c fiber.Ctx) error {
	id := c.Params("id")
	sess, err := s.session(c.Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	if err := s.refresh(c.Context(), id, sess); err != nil {
		return s.fail(c, err)
	}
	return s.graph(c, sess)
}

func (s *Server) getNodes(c fiber.Ctx) error {
	sess, err := s.session(c.Context(), c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(taskflow.RenderGraph(sess.editor.Graph()))
}

func (s *Server) postEvent(c fiber.Ctx) error {
	var req eventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	sess, err := s.session(c.Context(), c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}

	ev := taskflow.Event{Kind: req.Kind, NodeID: req.NodeID, Approver: req.Approver}
	if req.Kind == taskflow.EventEditParams {
		node, ok := sess.editor.Node(req.NodeID)
		if !ok {
			return s.fail(c, taskflow.ErrNodeNotFound)
		}
		ev.Params, err = taskflow.DecodeParams(node.Data.Task.Type, req.Params)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid params"})
		}
	}

	if err := sess.editor.Dispatch(ev); err != nil {
		return s.fail(c, err)
	}
	if err := sess.takeErr(); err != nil {
		return s.fail(c, err)
	}
	return s.graph(c, sess)
}

func (s *Server) enterEdit(c fiber.Ctx) error {
	return s.withEditor(c, func(ed *taskflow.Editor) error { return ed.EnterEdit() })
}

func (s *Server) cancelEdit(c fiber.Ctx) error {
	return s.withEditor(c, func(ed *taskflow.Editor) error {
		ed.Cancel()
		return nil
	})
}

func (s *Server) saveEdit(c fiber.Ctx) error {
	sess, err := s.session(c.Context(), c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	tasks, err := sess.editor.Save()
	if err != nil {
		return s.fail(c, err)
	}
	if err := sess.takeErr(); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"tasks": tasks})
}

func (s *Server) addNode(c fiber.Ctx) error {
	sess, err := s.session(c.Context(), c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	id, err := sess.editor.AddNode()
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"id": id})
}

func (s *Server) deleteNode(c fiber.Ctx) error {
	return s.withEditor(c, func(ed *taskflow.Editor) error { return ed.DeleteNode(c.Params("nodeID")) })
}

func (s *Server) moveNode(c fiber.Ctx) error {
	var pos taskflow.Position
	if err := c.Bind().JSON(&pos); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	return s.withEditor(c, func(ed *taskflow.Editor) error { return ed.MoveNode(c.Params("nodeID"), pos) })
}

func (s *Server) addEdge(c fiber.Ctx) error {
	var req edgeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	sess, err := s.session(c.Context(), c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	if err := sess.editor.Connect(req.Source, req.Target); err != nil {
		return s.fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"id": taskflow.EdgeID(req.Source, req.Target)})
}

func (s *Server) deleteEdge(c fiber.Ctx) error {
	return s.withEditor(c, func(ed *taskflow.Editor) error { return ed.DeleteEdge(c.Params("edgeID")) })
}

// withEditor runs fn on the deployment's editor and answers with the
// resulting graph.
func (s *Server) withEditor(c fiber.Ctx, fn func(ed *taskflow.Editor) error) error {
	sess, err := s.session(c.Context(), c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	if err := fn(sess.editor); err != nil {
		return s.fail(c, err)
	}
	return s.graph(c, sess)
}

func (s *Server) graph(c fiber.Ctx, sess *session) error {
	return c.JSON(graphResponse{
		Mode:  sess.editor.Mode().String(),
		Graph: sess.editor.Graph(),
	})
}

// fail maps domain errors to status codes.
func (s *Server) fail(c fiber.Ctx, err error) error {
	status := 500
	switch {
	case errors.Is(err, errWorkflowNotFound),
		errors.Is(err, taskflow.ErrNodeNotFound),
		errors.Is(err, taskflow.ErrEdgeNotFound),
		errors.Is(err, taskflow.ErrTaskNotFound):
		status = 404
	case errors.Is(err, taskflow.ErrUnknownEvent):
		status = 400
	case errors.Is(err, taskflow.ErrEditNotAllowed):
		status = 403
	case errors.Is(err, taskflow.ErrReadOnly),
		errors.Is(err, taskflow.ErrNotChainMode),
		errors.Is(err, taskflow.ErrNotApprovable):
		status = 409
	case errors.Is(err, taskflow.ErrCycleDetected),
		errors.Is(err, taskflow.ErrInvalidWorkflow):
		status = 422
	}
	if status == 500 {
		s.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
