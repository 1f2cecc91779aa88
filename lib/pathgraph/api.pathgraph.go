// Package pathgraph indexes a set of candidate routing paths that share a source and sink
// into a shared-prefix graph and classifies which pairs of paths are local variations of each other.
package pathgraph

import (
	"sort"

	"github.com/rapidroute/rapidroute-go/route"
)

// Handle is a stable index of a NodeRecord within a Graph's arena.
type Handle int32

// NodeRecord annotates a routing resource with every path that visits it.
type NodeRecord struct {
	ID       route.NodeID
	Children map[Handle]struct{} // next hop along any path passing through this node
	Paths    map[int]int         // path index => 0-based position of this node in that path
}

// Graph is a shared-prefix graph over an ordered list of paths.
//
// A Graph is immutable once built, so any number of goroutines may query it concurrently.
type Graph struct {
	nodes []NodeRecord
	index map[route.NodeID]Handle
	paths []route.Path
	src   Handle
	snk   Handle
}

// NumPaths returns the number of indexed paths.
func (g *Graph) NumPaths() int {
	return len(g.paths)
}

// NumNodes returns the number of distinct nodes across all paths.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// Path returns the path having index i.  The returned slice must not be modified.
func (g *Graph) Path(i int) route.Path {
	return g.paths[i]
}

// Src returns the node every path starts at.
func (g *Graph) Src() route.NodeID {
	return g.nodes[g.src].ID
}

// Snk returns the node every path ends at.
func (g *Graph) Snk() route.NodeID {
	return g.nodes[g.snk].ID
}

// Lookup returns the handle for the given node.
func (g *Graph) Lookup(id route.NodeID) (Handle, bool) {
	h, ok := g.index[id]
	return h, ok
}

// Node returns the record for h.  The returned record must not be modified.
func (g *Graph) Node(h Handle) *NodeRecord {
	return &g.nodes[h]
}

// NodeIDs returns every distinct node in ascending order.
func (g *Graph) NodeIDs() []route.NodeID {
	ids := make([]route.NodeID, len(g.nodes))
	for i := range g.nodes {
		ids[i] = g.nodes[i].ID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Children returns the distinct next hops of the given node in ascending order.
func (g *Graph) Children(id route.NodeID) ([]route.NodeID, bool) {
	h, ok := g.index[id]
	if !ok {
		return nil, false
	}
	kids := make([]route.NodeID, 0, len(g.nodes[h].Children))
	for c := range g.nodes[h].Children {
		kids = append(kids, g.nodes[c].ID)
	}
	sort.Slice(kids, func(i, j int) bool { return kids[i] < kids[j] })
	return kids, true
}

// Positions returns a copy of the path index => position mapping of the given node.
func (g *Graph) Positions(id route.NodeID) (map[int]int, bool) {
	h, ok := g.index[id]
	if !ok {
		return nil, false
	}
	out := make(map[int]int, len(g.nodes[h].Paths))
	for p, k := range g.nodes[h].Paths {
		out[p] = k
	}
	return out, true
}
