package graph

import (
	"sort"

	"go.uber.org/zap"

	"github.com/soldexlabs/arbiter/pool"
)

// Edge is the list of pools connecting one pair of token indices. Parallel
// pools on the same pair append rather than overwrite.
type Edge []*pool.Pool

// Graph is an adjacency structure over dense token indices. Structurally
// undirected: an edge inserted for (a, b) is reachable from both sides.
// Quoting through an edge stays direction-sensitive.
type Graph struct {
	registry *TokenRegistry
	edges    map[int]map[int]Edge
}

// Build interns both mints of every pool and inserts the pool under both
// index orders. Pools that failed their refresh are inserted anyway and
// filtered by liveness during search; pools whose definitions were invalid
// never reach this point (the loader already skipped them).
func Build(registry *TokenRegistry, pools []*pool.Pool, log *zap.Logger) *Graph {
	g := &Graph{
		registry: registry,
		edges:    make(map[int]map[int]Edge),
	}
	for _, p := range pools {
		mint0, mint1 := p.Mints()
		if mint0.Equals(mint1) {
			log.Warn("Skipping pool without two distinct mints",
				zap.Stringer("pool", p.Address()))
			continue
		}

		scale0, _ := p.Scale(mint0)
		scale1, _ := p.Scale(mint1)
		idx0 := registry.Intern(mint0, scale0)
		idx1 := registry.Intern(mint1, scale1)

		g.insert(idx0, idx1, p)
		g.insert(idx1, idx0, p)
	}
	return g
}

func (g *Graph) insert(from, to int, p *pool.Pool) {
	edges, ok := g.edges[from]
	if !ok {
		edges = make(map[int]Edge)
		g.edges[from] = edges
	}
	edges[to] = append(edges[to], p)
}

// Registry returns the token registry backing the graph.
func (g *Graph) Registry() *TokenRegistry { return g.registry }

// Neighbors returns the token indices reachable from idx, in ascending
// order so traversal is deterministic across runs.
func (g *Graph) Neighbors(idx int) []int {
	edges := g.edges[idx]
	out := make([]int, 0, len(edges))
	for to := range edges {
		out = append(out, to)
	}
	sort.Ints(out)
	return out
}

// Pools returns the pools connecting two token indices, in insertion order.
func (g *Graph) Pools(from, to int) Edge {
	return g.edges[from][to]
}

// PoolCount returns the number of edge entries from idx, summed over all
// neighbors. Each pool appears once per direction.
func (g *Graph) PoolCount(idx int) int {
	var n int
	for _, e := range g.edges[idx] {
		n += len(e)
	}
	return n
}
