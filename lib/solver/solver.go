// Package solver answers path-diversity questions between one source and one sink resource.
package solver

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/rapidroute/rapidroute-go/lib/detour"
	"github.com/rapidroute/rapidroute-go/lib/pathgraph"
	"github.com/rapidroute/rapidroute-go/route"
	"golang.org/x/sync/errgroup"
)

// Solver owns the shared-prefix graph built from one path enumeration.
// After construction it is read-only, so its query methods may be called from multiple goroutines.
type Solver struct {
	oracle   route.Oracle
	src      route.NodeID
	snk      route.NodeID
	maxDepth int
	graph    *pathgraph.Graph
}

// New enumerates the paths from src to snk through the oracle and indexes them.
//
// Returns route.ErrNoPathFound if the oracle has no path within maxDepth hops.
// Oracle failures are returned as-is (wrapped with context).
func New(o route.Oracle, src, snk route.NodeID, maxDepth int) (*Solver, error) {
	if maxDepth < 1 {
		return nil, errors.Wrapf(route.ErrInvalidInput, "max_depth=%d", maxDepth)
	}
	if src == snk {
		return nil, errors.Wrapf(route.ErrInvalidInput, "source and sink are both %q", src)
	}

	paths, err := o.EnumeratePaths(src, snk, maxDepth)
	if err != nil {
		return nil, errors.Wrapf(err, "enumerating %v -> %v", src, snk)
	}
	if len(paths) == 0 {
		return nil, errors.Wrapf(route.ErrNoPathFound, "%v -> %v within %d hops", src, snk, maxDepth)
	}

	sol, err := FromPaths(src, snk, paths)
	if err != nil {
		return nil, err
	}
	sol.oracle = o
	sol.maxDepth = maxDepth
	return sol, nil
}

// FromPaths indexes previously enumerated paths without consulting an oracle.
// A Solver built this way cannot find detours until WithOracle is called.
func FromPaths(src, snk route.NodeID, paths []route.Path) (*Solver, error) {
	if len(paths) == 0 {
		return nil, errors.Wrapf(route.ErrNoPathFound, "%v -> %v", src, snk)
	}
	if paths[0].Src() != src || paths[0].Snk() != snk {
		return nil, errors.Wrapf(route.ErrInvalidInput, "paths run %v -> %v, expected %v -> %v",
			paths[0].Src(), paths[0].Snk(), src, snk)
	}

	graph, err := pathgraph.Build(paths)
	if err != nil {
		return nil, err
	}

	klog.V(2).Infof("solver: %v -> %v has %d paths over %d nodes", src, snk, graph.NumPaths(), graph.NumNodes())
	return &Solver{
		src:   src,
		snk:   snk,
		graph: graph,
	}, nil
}

// WithOracle sets the oracle used for detour queries.
func (sol *Solver) WithOracle(o route.Oracle) *Solver {
	sol.oracle = o
	return sol
}

func (sol *Solver) Src() route.NodeID { return sol.src }
func (sol *Solver) Snk() route.NodeID { return sol.snk }

// MaxDepth returns the hop bound the paths were enumerated with, or 0 if unknown.
func (sol *Solver) MaxDepth() int { return sol.maxDepth }

func (sol *Solver) NumPaths() int { return sol.graph.NumPaths() }

// Path returns the path having index i.  The returned slice must not be modified.
func (sol *Solver) Path(i int) route.Path { return sol.graph.Path(i) }

// Paths returns copies of all paths in index order.
func (sol *Solver) Paths() []route.Path {
	out := make([]route.Path, sol.graph.NumPaths())
	for i := range out {
		out[i] = sol.graph.Path(i).Clone()
	}
	return out
}

// Nodes returns every distinct node across all paths in ascending order.
func (sol *Solver) Nodes() []route.NodeID {
	return sol.graph.NodeIDs()
}

// Graph returns the underlying shared-prefix graph.
func (sol *Solver) Graph() *pathgraph.Graph {
	return sol.graph
}

// PathsByLength groups path indices by path length (in nodes).
func (sol *Solver) PathsByLength() map[int][]int {
	byLen := make(map[int][]int)
	for i := 0; i < sol.graph.NumPaths(); i++ {
		n := len(sol.graph.Path(i))
		byLen[n] = append(byLen[n], i)
	}
	return byLen
}

// FindVariations returns the pairs of paths that are mutual variations under the given orbit bound.
func (sol *Solver) FindVariations(orbit int) (*route.PairSet, error) {
	if orbit < 0 {
		return nil, errors.Wrapf(route.ErrInvalidInput, "orbit=%d", orbit)
	}
	return sol.graph.FindVariations(orbit), nil
}

// SweepOrbits classifies the paths under each of the given orbit bounds concurrently.
func (sol *Solver) SweepOrbits(orbits []int) (map[int]*route.PairSet, error) {
	for _, orbit := range orbits {
		if orbit < 0 {
			return nil, errors.Wrapf(route.ErrInvalidInput, "orbit=%d", orbit)
		}
	}

	sorted := append([]int(nil), orbits...)
	sort.Ints(sorted)

	results := make([]*route.PairSet, len(sorted))
	var grp errgroup.Group
	for i, orbit := range sorted {
		i, orbit := i, orbit
		grp.Go(func() error {
			results[i] = sol.graph.FindVariations(orbit)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	sweep := make(map[int]*route.PairSet, len(sorted))
	for i, orbit := range sorted {
		sweep[orbit] = results[i]
	}
	return sweep, nil
}

// FindDetours returns single-node detours along the path having index pathIndex.
func (sol *Solver) FindDetours(pathIndex int, maxDeviations int) ([]route.Path, error) {
	if pathIndex < 0 || pathIndex >= sol.graph.NumPaths() {
		return nil, errors.Wrapf(route.ErrInvalidInput, "path index %d of %d", pathIndex, sol.graph.NumPaths())
	}
	if sol.oracle == nil {
		return nil, errors.Wrap(route.ErrInvalidInput, "solver has no oracle attached")
	}
	return detour.Find(sol.oracle, sol.graph.Path(pathIndex), maxDeviations)
}
