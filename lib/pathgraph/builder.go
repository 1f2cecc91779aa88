package pathgraph

import (
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/rapidroute/rapidroute-go/route"
)

// Build indexes the given paths into a new Graph.
//
// All paths must be simple, have at least 2 nodes, and share the same source and sink (which must differ).
// Any violation returns route.ErrInvalidInput and no Graph.
func Build(paths []route.Path) (*Graph, error) {
	if err := checkPaths(paths); err != nil {
		return nil, err
	}

	g := &Graph{
		index: make(map[route.NodeID]Handle, 4*len(paths)),
		paths: paths,
	}
	g.src = g.intern(paths[0].Src())
	g.snk = g.intern(paths[0].Snk())

	for i, path := range paths {
		g.nodes[g.src].Paths[i] = 0

		prev := g.src
		for j := 1; j < len(path); j++ {
			h := g.intern(path[j])
			g.nodes[prev].Children[h] = struct{}{}
			g.nodes[h].Paths[i] = j
			prev = h
		}
	}

	klog.V(2).Infof("pathgraph: indexed %d paths over %d nodes (%v -> %v)", len(paths), len(g.nodes), g.Src(), g.Snk())
	return g, nil
}

func (g *Graph) intern(id route.NodeID) Handle {
	if h, exists := g.index[id]; exists {
		return h
	}
	h := Handle(len(g.nodes))
	g.nodes = append(g.nodes, NodeRecord{
		ID:       id,
		Children: make(map[Handle]struct{}),
		Paths:    make(map[int]int),
	})
	g.index[id] = h
	return h
}

func checkPaths(paths []route.Path) error {
	if len(paths) == 0 {
		return errors.Wrap(route.ErrInvalidInput, "no paths given")
	}

	src, snk := paths[0].Src(), paths[0].Snk()
	if src == snk {
		return errors.Wrapf(route.ErrInvalidInput, "source and sink are both %q", src)
	}

	for i, path := range paths {
		switch {
		case len(path) < 2:
			return errors.Wrapf(route.ErrInvalidInput, "path %d has %d nodes", i, len(path))
		case path.Src() != src:
			return errors.Wrapf(route.ErrInvalidInput, "path %d starts at %q, expected %q", i, path.Src(), src)
		case path.Snk() != snk:
			return errors.Wrapf(route.ErrInvalidInput, "path %d ends at %q, expected %q", i, path.Snk(), snk)
		case !path.IsSimple():
			return errors.Wrapf(route.ErrInvalidInput, "path %d revisits a node", i)
		}
	}
	return nil
}
