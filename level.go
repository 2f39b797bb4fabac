package taskflow

// ComputeLevel returns the layout level of a task: 0 for a task without
// dependencies, otherwise one more than the highest level among its
// dependencies.
//
// The visited set is private to each branch of the descent, so a task is
// only treated as a revisit when it already appears on the current path. A
// revisit, like a dependency missing from index, counts as level 0; cyclic
// input therefore terminates but is not reported.
func ComputeLevel(taskID string, index map[string]Task) int {
	return computeLevel(taskID, index, map[string]struct{}{})
}

func computeLevel(taskID string, index map[string]Task, visited map[string]struct{}) int {
	if _, ok := visited[taskID]; ok {
		return 0
	}
	task, ok := index[taskID]
	if !ok || len(task.Dependencies) == 0 {
		return 0
	}

	path := make(map[string]struct{}, len(visited)+1)
	for id := range visited {
		path[id] = struct{}{}
	}
	path[taskID] = struct{}{}

	maxDep := 0
	for _, dep := range task.Dependencies {
		if l := computeLevel(dep, index, path); l > maxDep {
			maxDep = l
		}
	}
	return maxDep + 1
}

// Levels computes the level of every task in the list. The result is
// identical to calling ComputeLevel per task.
//
// A task outside any cycle has the same level whatever path reaches it, so
// it is computed once. Only tasks inside a cyclic strongly connected
// component need the path guard, and the guarded walk stays inside that
// component.
func Levels(tasks []Task) map[string]int {
	index := indexTasks(tasks)
	comp, cyclic := components(index)
	levels := make(map[string]int, len(index))

	var level func(id string) int
	var within func(id string, path map[string]struct{}) int

	level = func(id string) int {
		if l, ok := levels[id]; ok {
			return l
		}
		task, ok := index[id]
		if !ok {
			return 0
		}
		l := 0
		if cyclic[comp[id]] {
			l = within(id, map[string]struct{}{})
		} else {
			for _, dep := range task.Dependencies {
				if d := level(dep) + 1; d > l {
					l = d
				}
			}
		}
		levels[id] = l
		return l
	}

	within = func(id string, path map[string]struct{}) int {
		if _, ok := path[id]; ok {
			return 0
		}
		next := make(map[string]struct{}, len(path)+1)
		for p := range path {
			next[p] = struct{}{}
		}
		next[id] = struct{}{}

		l := 0
		for _, dep := range index[id].Dependencies {
			var d int
			if _, ok := index[dep]; ok && comp[dep] == comp[id] {
				d = within(dep, next)
			} else {
				d = level(dep)
			}
			if d+1 > l {
				l = d + 1
			}
		}
		return l
	}

	for id := range index {
		level(id)
	}
	return levels
}

// components labels every task with its strongly connected component along
// dependency edges (Tarjan) and reports which components hold a cycle.
func components(index map[string]Task) (map[string]int, map[int]bool) {
	comp := make(map[string]int, len(index))
	order := make(map[string]int, len(index))
	low := make(map[string]int, len(index))
	onStack := make(map[string]bool)
	cyclic := make(map[int]bool)
	var stack []string
	counter, label := 0, 0

	var visit func(id string)
	visit = func(id string) {
		order[id], low[id] = counter, counter
		counter++
		stack = append(stack, id)
		onStack[id] = true

		for _, dep := range index[id].Dependencies {
			if _, ok := index[dep]; !ok {
				continue
			}
			if _, seen := order[dep]; !seen {
				visit(dep)
				low[id] = min(low[id], low[dep])
			} else if onStack[dep] {
				low[id] = min(low[id], order[dep])
			}
		}

		if low[id] != order[id] {
			return
		}
		size := 0
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			comp[top] = label
			size++
			if top == id {
				break
			}
		}
		if size > 1 || indexOf(index[id].Dependencies, id) >= 0 {
			cyclic[label] = true
		}
		label++
	}

	for id := range index {
		if _, seen := order[id]; !seen {
			visit(id)
		}
	}
	return comp, cyclic
}

// Ranks groups task ids by level. Within a rank, ids keep their order in
// the input list.
func Ranks(tasks []Task, levels map[string]int) map[int][]string {
	ranks := make(map[int][]string)
	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		l := levels[t.ID]
		ranks[l] = append(ranks[l], t.ID)
	}
	return ranks
}
