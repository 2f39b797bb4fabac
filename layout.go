package taskflow

// LayoutOptions holds the spacing constants of the layered layout.
type LayoutOptions struct {
	LevelSpacing      float64 `yaml:"level_spacing" json:"level_spacing"`
	IntraLevelSpacing float64 `yaml:"intra_level_spacing" json:"intra_level_spacing"`
	BaseOffset        float64 `yaml:"base_offset" json:"base_offset"`
	ChainX            float64 `yaml:"chain_x" json:"chain_x"`
	ChainSpacing      float64 `yaml:"chain_spacing" json:"chain_spacing"`
}

// DefaultLayoutOptions returns the spacing used by the dashboard.
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{
		LevelSpacing:      320,
		IntraLevelSpacing: 180,
		BaseOffset:        150,
		ChainX:            250,
		ChainSpacing:      150,
	}
}

// IsChain reports whether a task list carries no dependency information at
// all and must be laid out as a linear chain.
func IsChain(tasks []Task) bool {
	for _, t := range tasks {
		if t.Dependencies != nil {
			return false
		}
	}
	return true
}

// Layout places tasks in layout space and derives the dependency edges.
//
// Levels map to the x axis and each rank is centred vertically around
// BaseOffset. A list in which no task has dependency information is laid out
// as a chain in list order instead.
func Layout(tasks []Task, opts LayoutOptions) Graph {
	if len(tasks) > 0 && IsChain(tasks) {
		return layoutChain(tasks, opts)
	}

	index := indexTasks(tasks)
	levels := Levels(tasks)
	ranks := Ranks(tasks, levels)

	g := Graph{Nodes: make([]GraphNode, 0, len(index)), Edges: []GraphEdge{}}
	placed := make(map[string]struct{}, len(index))
	for _, task := range tasks {
		if _, ok := placed[task.ID]; ok {
			continue
		}
		placed[task.ID] = struct{}{}

		level := levels[task.ID]
		rank := ranks[level]
		idx := indexOf(rank, task.ID)
		offset := (float64(idx) - float64(len(rank)-1)/2) * opts.IntraLevelSpacing

		g.Nodes = append(g.Nodes, GraphNode{
			ID: task.ID,
			Position: Position{
				X: float64(level) * opts.LevelSpacing,
				Y: opts.BaseOffset + offset,
			},
			Data: NodeData{
				Task:    task.Clone(),
				Level:   level,
				IsFirst: level == 0,
			},
		})
	}

	seen := make(map[string]struct{})
	for _, node := range g.Nodes {
		task := node.Data.Task
		for _, dep := range task.Dependencies {
			source, ok := index[dep]
			if !ok {
				continue
			}
			e := newEdge(source, task)
			if _, dup := seen[e.ID]; dup {
				continue
			}
			seen[e.ID] = struct{}{}
			g.Edges = append(g.Edges, e)
		}
	}
	return g
}

func layoutChain(tasks []Task, opts LayoutOptions) Graph {
	g := Graph{Chain: true, Nodes: make([]GraphNode, 0, len(tasks))}
	for _, task := range tasks {
		g.Nodes = append(g.Nodes, GraphNode{
			ID:   task.ID,
			Data: NodeData{Task: task.Clone()},
		})
	}
	g.relayoutChain(opts)
	return g
}

// relayoutChain positions nodes in list order and rebuilds the implicit
// edges between consecutive nodes.
func (g *Graph) relayoutChain(opts LayoutOptions) {
	last := len(g.Nodes) - 1
	for i := range g.Nodes {
		n := &g.Nodes[i]
		n.Position = Position{X: opts.ChainX, Y: float64(i) * opts.ChainSpacing}
		n.Data.Level = i
		n.Data.IsFirst = i == 0
		n.Data.IsLast = i == last
	}
	g.Edges = make([]GraphEdge, 0, len(g.Nodes))
	for i := 0; i < last; i++ {
		g.Edges = append(g.Edges, newEdge(g.Nodes[i].Data.Task, g.Nodes[i+1].Data.Task))
	}
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
