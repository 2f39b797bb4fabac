package taskflow

import (
	"fmt"
	"strings"
)

// GraphError wraps a structural validation failure with detail.
type GraphError struct {
	Kind error
	Msg  string
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *GraphError) Unwrap() error { return e.Kind }

func invalidf(format string, args ...any) error {
	return &GraphError{Kind: ErrInvalidWorkflow, Msg: fmt.Sprintf(format, args...)}
}

func cycleError(path []string) error {
	return &GraphError{Kind: ErrCycleDetected, Msg: strings.Join(path, " -> ")}
}

// Validate checks that a task list is well formed: ids are present and
// unique, every dependency names a task in the list and the dependency
// relation is acyclic.
func Validate(tasks []Task) error {
	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if t.ID == "" {
			return invalidf("task id is required")
		}
		if _, ok := seen[t.ID]; ok {
			return invalidf("duplicate task id %q", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if _, ok := seen[dep]; !ok {
				return invalidf("task %q depends on unknown task %q", t.ID, dep)
			}
		}
	}
	return ValidateAcyclic(tasks)
}

// ValidateAcyclic checks that the dependencies don't form a cycle using DFS.
// The returned error carries one cycle path.
func ValidateAcyclic(tasks []Task) error {
	adj := make(map[string][]string, len(tasks))
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
		for _, dep := range t.Dependencies {
			adj[dep] = append(adj[dep], t.ID)
		}
	}
	if path := findCycle(ids, adj); path != nil {
		return cycleError(path)
	}
	return nil
}

// findCycle walks adj from every id in order and returns the first cycle it
// meets as a closed path, or nil.
func findCycle(ids []string, adj map[string][]string) []string {
	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)

	state := make(map[string]int, len(ids))
	var stack []string
	var cycle []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		state[id] = visiting
		stack = append(stack, id)
		for _, next := range adj[id] {
			switch state[next] {
			case visiting:
				for i, s := range stack {
					if s == next {
						cycle = append(append([]string{}, stack[i:]...), next)
						break
					}
				}
				return true
			case unvisited:
				if dfs(next) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = visited
		return false
	}

	for _, id := range ids {
		if state[id] == unvisited && dfs(id) {
			return cycle
		}
	}
	return nil
}

// reachable reports whether to can be reached from from along adj.
func reachable(adj map[string][]string, from, to string) bool {
	if from == to {
		return true
	}
	seen := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if next == to {
				return true
			}
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}
