package taskflow

import "sort"

// diamond is t1 -> {t2, t3} -> t4.
func diamond() []Task {
	return []Task{
		{ID: "t1", Name: "A", Type: TypeBuild, Status: StatusSuccess, Dependencies: []string{}},
		{ID: "t2", Name: "B", Type: TypeTest, Status: StatusPending, Dependencies: []string{"t1"}},
		{ID: "t3", Name: "C", Type: TypeTest, Status: StatusPending, Dependencies: []string{"t1"}},
		{ID: "t4", Name: "D", Type: TypeDeploy, Status: StatusPending, Dependencies: []string{"t2", "t3"}},
	}
}

func chain(ids ...string) []Task {
	out := make([]Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, Task{ID: id, Name: id, Type: TypeCustom, Status: StatusPending})
	}
	return out
}

// depSets returns the dependencies of every task as sorted slices.
func depSets(tasks []Task) map[string][]string {
	out := make(map[string][]string, len(tasks))
	for _, t := range tasks {
		deps := append([]string{}, t.Dependencies...)
		sort.Strings(deps)
		out[t.ID] = deps
	}
	return out
}

func edgePairs(g Graph) [][2]string {
	out := make([][2]string, 0, len(g.Edges))
	for _, e := range g.Edges {
		out = append(out, [2]string{e.Source, e.Target})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

type recordingReporter struct {
	ops  []string
	errs []error
}

func (r *recordingReporter) Report(op string, err error) {
	r.ops = append(r.ops, op)
	r.errs = append(r.errs, err)
}
