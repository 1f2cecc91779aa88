package pathgraph

import (
	"github.com/rapidroute/rapidroute-go/route"
)

// coVisit marks the positions (on the outer path and on another path) of the last node both paths shared.
type coVisit struct {
	j int
	k int
}

// FindVariations returns every pair of paths that, at each point where they reconverge, have not
// traveled more than orbit nodes independently of each other since the node they last shared.
//
// Every pair starts as a variation and is dropped the first time a divergence window exceeds orbit.
// A pair is decided entirely while walking its lower-indexed path.
// Larger orbits always yield a superset.  The Graph is not modified.
func (g *Graph) FindVariations(orbit int) *route.PairSet {
	N := len(g.paths)
	variations := route.AllPairs(N)

	last := make([]coVisit, N)

	for i, path := range g.paths {

		// The shared source is position 0 on every path.
		for p := range last {
			last[p] = coVisit{}
		}

		for j := 1; j < len(path); j++ {
			node := &g.nodes[g.index[path[j]]]
			for p, k := range node.Paths {
				if p <= i {
					continue
				}
				mark := last[p]
				orb := max(k-mark.k, j-mark.j) - 1
				if orb > orbit {
					variations.Remove(i, p)
				}
				last[p] = coVisit{j: j, k: k}
			}
		}
	}

	return variations
}
