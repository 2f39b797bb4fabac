package taskflow

// Graph is the visual projection of a task list: one node per task and one
// edge per dependency relation.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
	// Chain reports that the graph was laid out as a linear chain because no
	// task carried dependency information.
	Chain bool `json:"chain"`
}

// Position is a point in layout space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData is the task carried by a node plus UI-only flags.
// IsFirst and IsLast are only meaningful in chain mode.
type NodeData struct {
	Task       Task `json:"task"`
	Level      int  `json:"level"`
	IsEditMode bool `json:"is_edit_mode"`
	IsFirst    bool `json:"is_first"`
	IsLast     bool `json:"is_last"`
}

// GraphNode represents a task placed in layout space.
type GraphNode struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// EdgeColor is the stroke colour of an edge.
type EdgeColor string

const (
	EdgeSuccess EdgeColor = "#52c41a"
	EdgeFailed  EdgeColor = "#ff4d4f"
	EdgeNeutral EdgeColor = "#8c8c8c"
)

// EdgeStyle is derived from the statuses of the edge endpoints.
type EdgeStyle struct {
	Color    EdgeColor `json:"color"`
	Animated bool      `json:"animated"`
}

// GraphEdge represents a directed dependency: Target depends on Source.
type GraphEdge struct {
	ID     string    `json:"id"`
	Source string    `json:"source"`
	Target string    `json:"target"`
	Style  EdgeStyle `json:"style"`
}

// EdgeID returns the identifier of the edge source -> target.
func EdgeID(source, target string) string {
	return "e" + source + "-" + target
}

// Node returns the node with the given id.
func (g Graph) Node(id string) (GraphNode, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return GraphNode{}, false
}

// Edge returns the edge with the given id.
func (g Graph) Edge(id string) (GraphEdge, bool) {
	for _, e := range g.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return GraphEdge{}, false
}

// Clone returns a deep copy of the graph.
func (g Graph) Clone() Graph {
	out := Graph{Chain: g.Chain}
	if g.Nodes != nil {
		out.Nodes = make([]GraphNode, len(g.Nodes))
		for i, n := range g.Nodes {
			n.Data.Task = n.Data.Task.Clone()
			out.Nodes[i] = n
		}
	}
	if g.Edges != nil {
		out.Edges = append([]GraphEdge{}, g.Edges...)
	}
	return out
}

func edgeStyle(source, target TaskStatus) EdgeStyle {
	style := EdgeStyle{
		Color:    EdgeNeutral,
		Animated: source == StatusRunning || target == StatusRunning,
	}
	switch {
	case source == StatusSuccess:
		style.Color = EdgeSuccess
	case source == StatusFailed || target == StatusFailed:
		style.Color = EdgeFailed
	}
	return style
}

func newEdge(source, target Task) GraphEdge {
	return GraphEdge{
		ID:     EdgeID(source.ID, target.ID),
		Source: source.ID,
		Target: target.ID,
		Style:  edgeStyle(source.Status, target.Status),
	}
}
