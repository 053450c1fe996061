// Package cycles implements the Inference Cycle Detector (spec.md §4.9,
// component C14): Tarjan's strongly-connected-components algorithm over
// the project's caller→callee graph, recorded by
// internal/infer.CallSiteRegistry during per-file construction. The
// project model runs this once the call-site registry is populated and
// uses the resulting order to schedule return-type inference so that a
// method's callees are resolved before the method itself, falling back
// to Variant for any method caught in a cycle.
package cycles

import (
	"sort"

	"golang.org/x/tools/container/intsets"
)

// Graph is the caller→callee view the detector needs. It is satisfied
// by *infer.CallSiteRegistry without this package importing infer,
// keeping the dependency direction the other way (model wires the two
// together).
type Graph interface {
	CallerKeys() []string
	Callees(callerKey string) []string
}

// Result is one entry of the detector's output order: a "class.method"
// key and whether it belongs to a cycle (including a direct self-call).
type Result struct {
	Key     string
	InCycle bool
}

// Order runs Tarjan's SCC algorithm over g and returns every method key
// reachable as either a caller or a callee, non-cyclic keys first in
// topological (callees-before-callers) order, cycle members last, per
// spec.md §4.9. Iteration order is made deterministic by assigning each
// key a stable index from a sorted key list before the DFS runs, and by
// visiting each node's callees in sorted order.
func Order(g Graph) []Result {
	keys := collectKeys(g)
	ids := make(map[string]int, len(keys))
	for i, k := range keys {
		ids[k] = i
	}

	t := newTarjan(g, keys, ids)
	for id := range keys {
		if t.index[id] == unvisited {
			t.strongConnect(id)
		}
	}

	var nonCyclic, cyclic []Result
	for _, scc := range t.sccs {
		inCycle := len(scc) > 1
		if len(scc) == 1 {
			single := keys[scc[0]]
			for _, c := range g.Callees(single) {
				if c == single {
					inCycle = true
					break
				}
			}
		}
		for _, id := range scc {
			r := Result{Key: keys[id], InCycle: inCycle}
			if inCycle {
				cyclic = append(cyclic, r)
			} else {
				nonCyclic = append(nonCyclic, r)
			}
		}
	}
	return append(nonCyclic, cyclic...)
}

// collectKeys gathers every key the graph mentions, as either a caller
// or one of its callees, sorted for deterministic id assignment.
func collectKeys(g Graph) []string {
	seen := make(map[string]bool)
	for _, k := range g.CallerKeys() {
		seen[k] = true
		for _, c := range g.Callees(k) {
			seen[c] = true
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

const unvisited = -1

// tarjan holds the algorithm's bookkeeping, keyed by the int id assigned
// to each key by Order rather than by string or pointer, matching this
// module's general "arena index as key" convention (see Design Notes).
type tarjan struct {
	graph   Graph
	keys    []string
	ids     map[string]int
	index   []int
	lowlink []int
	onStack intsets.Sparse
	stack   []int
	counter int
	sccs    [][]int
}

func newTarjan(g Graph, keys []string, ids map[string]int) *tarjan {
	index := make([]int, len(keys))
	for i := range index {
		index[i] = unvisited
	}
	return &tarjan{
		graph:   g,
		keys:    keys,
		ids:     ids,
		index:   index,
		lowlink: make([]int, len(keys)),
	}
}

func (t *tarjan) strongConnect(v int) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack.Insert(v)

	callees := append([]string(nil), t.graph.Callees(t.keys[v])...)
	sort.Strings(callees)
	for _, name := range callees {
		w, ok := t.ids[name]
		if !ok {
			continue
		}
		switch {
		case t.index[w] == unvisited:
			t.strongConnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		case t.onStack.Has(w):
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] != t.index[v] {
		return
	}
	var scc []int
	for {
		n := len(t.stack) - 1
		w := t.stack[n]
		t.stack = t.stack[:n]
		t.onStack.Remove(w)
		scc = append(scc, w)
		if w == v {
			break
		}
	}
	t.sccs = append(t.sccs, scc)
}
