package hierarchy

import (
	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
)

// graph holds one node per statement row. deps[i] lists the rows that must
// run before row i; dependents is the reverse adjacency.
type graph struct {
	deps       []model.Dependency
	rooted     []bool
	prereqs    []map[int]bool
	dependents [][]int
}

func newGraph(deps []model.Dependency, knowns []string) *graph {
	known := make(map[string]bool, len(knowns))
	for _, k := range knowns {
		known[k] = true
	}
	resolved := func(arg string) bool {
		if known[arg] {
			return true
		}
		_, ok := model.Literal(arg)
		return ok
	}

	producers := make(map[string][]int)
	for i, d := range deps {
		producers[d.Destination] = append(producers[d.Destination], i)
	}

	g := &graph{
		deps:       deps,
		rooted:     make([]bool, len(deps)),
		prereqs:    make([]map[int]bool, len(deps)),
		dependents: make([][]int, len(deps)),
	}
	for i, d := range deps {
		g.prereqs[i] = make(map[int]bool)
		if resolved(d.Argument1) && resolved(d.Argument2) {
			g.rooted[i] = true
			continue
		}
		for _, arg := range []string{d.Argument1, d.Argument2} {
			if resolved(arg) {
				continue
			}
			for _, p := range producers[arg] {
				if arg == d.Destination && (p == i || (isAccumulator(deps[p]) && p > i)) {
					continue
				}
				g.prereqs[i][p] = true
			}
		}
	}
	for i := range deps {
		for p := range g.prereqs[i] {
			g.dependents[p] = append(g.dependents[p], i)
		}
	}
	return g
}

func isAccumulator(d model.Dependency) bool {
	return d.Argument1 == d.Destination || d.Argument2 == d.Destination
}

// resolve runs Kahn's algorithm and returns the level of each row. ok is
// false when some rows were never released.
func (g *graph) resolve() (levels []int, ok bool) {
	n := len(g.deps)
	levels = make([]int, n)
	indegree := make([]int, n)
	queue := make([]int, 0, n)
	for i := 0; i < n; i++ {
		indegree[i] = len(g.prereqs[i])
		if g.rooted[i] {
			levels[i] = 1
		} else {
			levels[i] = 2
		}
		if indegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	done := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		done++
		for _, next := range g.dependents[cur] {
			if levels[cur]+1 > levels[next] {
				levels[next] = levels[cur] + 1
			}
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if done == n {
		return levels, true
	}
	for i := range indegree {
		if indegree[i] > 0 {
			levels[i] = 0
		}
	}
	return levels, false
}

func (g *graph) unresolved(levels []int) error {
	seen := make(map[string]bool)
	var dests []string
	for i, lvl := range levels {
		if lvl != 0 || seen[g.deps[i].Destination] {
			continue
		}
		seen[g.deps[i].Destination] = true
		dests = append(dests, g.deps[i].Destination)
	}
	return &OrderingError{Destinations: dests}
}
