package taskflow

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// Mode is the state of an Editor.
type Mode int

const (
	// ModeView mirrors the current task list and rejects structural edits.
	ModeView Mode = iota
	// ModeEdit owns an independent working copy of the graph.
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeView:
		return "view"
	case ModeEdit:
		return "edit"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// SaveFunc receives the task list rebuilt from an edit session.
type SaveFunc func(tasks []Task)

// ApproveRequest asks the deployment backend to approve a waiting task.
type ApproveRequest struct {
	TaskID   string `json:"task_id"`
	Approver string `json:"approver,omitempty"`
}

// ApproveFunc forwards an approval to the deployment backend.
type ApproveFunc func(req ApproveRequest)

// EditorOptions configures an Editor.
type EditorOptions struct {
	// AllowEdit gates EnterEdit. It is typically derived from the
	// deployment status.
	AllowEdit bool
	Layout    LayoutOptions
	OnSave    SaveFunc
	OnApprove ApproveFunc
	Reporter  Reporter
	// NewID generates ids for added nodes. Defaults to "task-<uuid>".
	NewID func() string
}

// Editor is the interactive graph editor. In view mode its graph is the
// layout of the latest task list; in edit mode it owns a working copy whose
// edge set is the authoritative dependency relation until Save or Cancel.
//
// An Editor is safe for concurrent use.
type Editor struct {
	mu       sync.Mutex
	opts     EditorOptions
	mode     Mode
	tasks    []Task
	pending  []Task
	buffered bool
	graph    Graph
}

// NewEditor creates an editor in view mode for tasks.
func NewEditor(tasks []Task, opts EditorOptions) *Editor {
	if opts.Reporter == nil {
		opts.Reporter = nopReporter{}
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return "task-" + uuid.NewString() }
	}
	e := &Editor{opts: opts, tasks: CloneTasks(tasks)}
	e.graph = Layout(e.tasks, opts.Layout)
	return e
}

// Mode returns the current mode.
func (e *Editor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// AllowEdit reports whether EnterEdit is permitted.
func (e *Editor) AllowEdit() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts.AllowEdit
}

// SetAllowEdit changes whether future edit sessions may be opened. An open
// session is not affected.
func (e *Editor) SetAllowEdit(allow bool) {
	e.mu.Lock()
	e.opts.AllowEdit = allow
	e.mu.Unlock()
}

// Graph returns a copy of the graph currently shown.
func (e *Editor) Graph() Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.Clone()
}

// Node returns a copy of the node with the given id.
func (e *Editor) Node(id string) (GraphNode, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.graph.Node(id)
	if ok {
		n.Data.Task = n.Data.Task.Clone()
	}
	return n, ok
}

// Tasks returns a copy of the current task list.
func (e *Editor) Tasks() []Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return CloneTasks(e.tasks)
}

// SetTasks replaces the task list from outside. In view mode the graph is
// laid out again immediately. In edit mode the list is held back until the
// session ends so it never interleaves with the working copy.
func (e *Editor) SetTasks(tasks []Task) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == ModeEdit {
		e.pending = CloneTasks(tasks)
		e.buffered = true
		return
	}
	e.tasks = CloneTasks(tasks)
	e.graph = Layout(e.tasks, e.opts.Layout)
}

// EnterEdit opens an edit session on a copy of the current graph.
func (e *Editor) EnterEdit() error {
	e.mu.Lock()
	var err error
	switch {
	case !e.opts.AllowEdit:
		err = ErrEditNotAllowed
	case e.mode == ModeEdit:
	default:
		e.mode = ModeEdit
		e.graph = e.graph.Clone()
		for i := range e.graph.Nodes {
			e.graph.Nodes[i].Data.IsEditMode = true
		}
	}
	e.mu.Unlock()
	if err != nil {
		e.opts.Reporter.Report("enter_edit", err)
	}
	return err
}

// Cancel ends the edit session and discards every change made in it. The
// graph is laid out again from the latest task list, including one that
// arrived during the session. Cancel in view mode does nothing.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModeEdit {
		return
	}
	e.mode = ModeView
	if e.buffered {
		e.tasks = e.pending
		e.pending, e.buffered = nil, false
	}
	e.graph = Layout(e.tasks, e.opts.Layout)
}

// Save ends the edit session and rebuilds the task list from the working
// copy: one task per node, with dependencies taken from the edges that
// target it. The list becomes the editor's current list and is passed to
// OnSave after the editor is unlocked.
//
// A list buffered during the session contributes the run state of every
// task still in the graph: status, timing and logs, plus params the
// session left untouched. Its structure is dropped.
func (e *Editor) Save() ([]Task, error) {
	e.mu.Lock()
	if e.mode != ModeEdit {
		e.mu.Unlock()
		e.opts.Reporter.Report("save", ErrReadOnly)
		return nil, ErrReadOnly
	}

	deps := make(map[string][]string, len(e.graph.Nodes))
	for _, edge := range e.graph.Edges {
		if indexOf(deps[edge.Target], edge.Source) < 0 {
			deps[edge.Target] = append(deps[edge.Target], edge.Source)
		}
	}

	var base, latest map[string]Task
	if e.buffered {
		base, latest = indexTasks(e.tasks), indexTasks(e.pending)
	}

	out := make([]Task, 0, len(e.graph.Nodes))
	for _, n := range e.graph.Nodes {
		t := n.Data.Task.Clone()
		if l, ok := latest[n.ID]; ok {
			carryRunState(&t, base[n.ID], l)
		}
		t.Dependencies = deps[n.ID]
		if t.Dependencies == nil {
			t.Dependencies = []string{}
		}
		out = append(out, t)
	}

	e.mode = ModeView
	e.tasks = out
	e.pending, e.buffered = nil, false
	e.graph = Layout(e.tasks, e.opts.Layout)
	onSave := e.opts.OnSave
	e.mu.Unlock()

	if onSave != nil {
		onSave(CloneTasks(out))
	}
	return CloneTasks(out), nil
}

// carryRunState copies into t what changed outside the session. Params are
// only taken from latest when t still holds the pre-session params.
func carryRunState(t *Task, base, latest Task) {
	latest = latest.Clone()
	t.Status = latest.Status
	t.Duration = latest.Duration
	t.StartedAt = latest.StartedAt
	t.CompletedAt = latest.CompletedAt
	t.Logs = latest.Logs
	if reflect.DeepEqual(t.Params, base.Params) {
		t.Params = latest.Params
	}
}

const maxNewIDAttempts = 16

// AddNode appends a new pending custom task without dependencies and
// returns its id.
func (e *Editor) AddNode() (string, error) {
	var id string
	err := e.edit("add_node", func(g *Graph) error {
		id = ""
		for attempt := 0; attempt < maxNewIDAttempts; attempt++ {
			candidate := e.opts.NewID()
			if _, taken := g.Node(candidate); !taken {
				id = candidate
				break
			}
		}
		if id == "" {
			return fmt.Errorf("%w after %d attempts", ErrIDExhausted, maxNewIDAttempts)
		}
		task := Task{
			ID:           id,
			Name:         fmt.Sprintf("New task %d", len(g.Nodes)+1),
			Type:         TypeCustom,
			Status:       StatusPending,
			Dependencies: []string{},
		}
		node := GraphNode{
			ID:   id,
			Data: NodeData{Task: task, IsEditMode: true},
		}
		if g.Chain {
			g.Nodes = append(g.Nodes, node)
			g.relayoutChain(e.opts.Layout)
			return nil
		}
		node.Position = nextRootSlot(g.Nodes, e.opts.Layout)
		node.Data.IsFirst = true
		g.Nodes = append(g.Nodes, node)
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// nextRootSlot returns the first free position below the nodes of the
// leftmost column.
func nextRootSlot(nodes []GraphNode, opts LayoutOptions) Position {
	pos := Position{X: 0, Y: opts.BaseOffset}
	found := false
	for _, n := range nodes {
		if n.Position.X != 0 {
			continue
		}
		if !found || n.Position.Y+opts.IntraLevelSpacing > pos.Y {
			pos.Y = n.Position.Y + opts.IntraLevelSpacing
			found = true
		}
	}
	return pos
}

// Connect adds the edge source -> target, making target depend on source.
// Connecting an existing pair does nothing. An edge that would close a
// cycle is rejected with ErrCycleDetected.
func (e *Editor) Connect(source, target string) error {
	return e.edit("connect", func(g *Graph) error {
		src, ok := g.Node(source)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, source)
		}
		dst, ok := g.Node(target)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, target)
		}
		id := EdgeID(source, target)
		if _, exists := g.Edge(id); exists {
			return nil
		}

		adj := make(map[string][]string, len(g.Nodes))
		for _, edge := range g.Edges {
			adj[edge.Source] = append(adj[edge.Source], edge.Target)
		}
		if reachable(adj, target, source) {
			return &GraphError{
				Kind: ErrCycleDetected,
				Msg:  fmt.Sprintf("edge %s -> %s closes a cycle", source, target),
			}
		}

		g.Edges = append(g.Edges, newEdge(src.Data.Task, dst.Data.Task))
		g.Chain = false
		return nil
	})
}

// DeleteNode removes a node and every edge touching it.
func (e *Editor) DeleteNode(id string) error {
	return e.edit("delete_node", func(g *Graph) error {
		idx := nodeIndex(g.Nodes, id)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		}
		g.Nodes = append(g.Nodes[:idx], g.Nodes[idx+1:]...)
		if g.Chain {
			g.relayoutChain(e.opts.Layout)
			return nil
		}
		kept := g.Edges[:0]
		for _, edge := range g.Edges {
			if edge.Source != id && edge.Target != id {
				kept = append(kept, edge)
			}
		}
		g.Edges = kept
		return nil
	})
}

// DeleteEdge removes a single dependency relation.
func (e *Editor) DeleteEdge(id string) error {
	return e.edit("delete_edge", func(g *Graph) error {
		for i, edge := range g.Edges {
			if edge.ID == id {
				g.Edges = append(g.Edges[:i], g.Edges[i+1:]...)
				g.Chain = false
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrEdgeNotFound, id)
	})
}

// MoveNode changes the position of a node. Edges are not affected.
func (e *Editor) MoveNode(id string, pos Position) error {
	return e.edit("move_node", func(g *Graph) error {
		idx := nodeIndex(g.Nodes, id)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		}
		g.Nodes[idx].Position = pos
		return nil
	})
}

// MoveUp swaps a node with its predecessor in a chain layout.
func (e *Editor) MoveUp(id string) error {
	return e.reorder("move_up", id, -1)
}

// MoveDown swaps a node with its successor in a chain layout.
func (e *Editor) MoveDown(id string) error {
	return e.reorder("move_down", id, 1)
}

func (e *Editor) reorder(op, id string, delta int) error {
	return e.edit(op, func(g *Graph) error {
		if !g.Chain {
			return ErrNotChainMode
		}
		idx := nodeIndex(g.Nodes, id)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		}
		other := idx + delta
		if other < 0 || other >= len(g.Nodes) {
			return nil
		}
		g.Nodes[idx], g.Nodes[other] = g.Nodes[other], g.Nodes[idx]
		g.relayoutChain(e.opts.Layout)
		return nil
	})
}

// SetParams replaces the parameters of a node's task.
func (e *Editor) SetParams(id string, params Params) error {
	return e.edit("set_params", func(g *Graph) error {
		idx := nodeIndex(g.Nodes, id)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		}
		g.Nodes[idx].Data.Task.Params = cloneParams(params)
		return nil
	})
}

// Approve forwards an approval for a task that is waiting for one. The
// graph itself is not changed; the new status arrives with the next task
// list. Approval is available in both modes.
func (e *Editor) Approve(id, approver string) error {
	e.mu.Lock()
	n, ok := e.graph.Node(id)
	onApprove := e.opts.OnApprove
	e.mu.Unlock()

	var err error
	switch {
	case !ok:
		err = fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	case n.Data.Task.Type != TypeApproval || n.Data.Task.Status != StatusWaitingApproval:
		err = fmt.Errorf("%w: %s", ErrNotApprovable, id)
	}
	if err != nil {
		e.opts.Reporter.Report("approve", err)
		return err
	}
	if onApprove != nil {
		onApprove(ApproveRequest{TaskID: id, Approver: approver})
	}
	return nil
}

// edit runs fn against the working copy when a session is open. Outside a
// session the graph is left untouched and ErrReadOnly is returned.
func (e *Editor) edit(op string, fn func(g *Graph) error) error {
	e.mu.Lock()
	var err error
	if e.mode != ModeEdit {
		err = ErrReadOnly
	} else {
		err = fn(&e.graph)
	}
	e.mu.Unlock()
	if err != nil {
		e.opts.Reporter.Report(op, err)
	}
	return err
}

func nodeIndex(nodes []GraphNode, id string) int {
	for i, n := range nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
