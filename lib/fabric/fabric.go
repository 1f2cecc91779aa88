// Package fabric is an in-memory routing-resource graph that answers the same queries as the external engine.
// It backs scripted sessions, the oracle server, and tests.
package fabric

import (
	"os"
	"sync"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/rapidroute/rapidroute-go/route"
)

// Fabric implements route.Oracle over a static directed resource graph.
type Fabric struct {
	mu     sync.RWMutex
	fanOut map[route.NodeID]*treeset.Set // node => sorted set of string node names
	locked map[route.NodeID]struct{}     // permanently unavailable
	claims []route.NodeID                // provisional claims, oldest first
}

var _ route.Oracle = (*Fabric)(nil)

func New() *Fabric {
	return &Fabric{
		fanOut: make(map[route.NodeID]*treeset.Set),
		locked: make(map[route.NodeID]struct{}),
	}
}

// Load reads and parses a fabric description file.
func Load(pathname string) (*Fabric, error) {
	buf, err := os.ReadFile(pathname)
	if err != nil {
		return nil, errors.Wrapf(err, "reading fabric %q", pathname)
	}
	fab, err := Parse(string(buf))
	if err != nil {
		return nil, errors.Wrapf(err, "in %q", pathname)
	}
	klog.V(2).Infof("fabric: loaded %d nodes from %q", fab.NumNodes(), pathname)
	return fab, nil
}

// AddEdge makes each of the given nodes immediately reachable from "from".
func (fab *Fabric) AddEdge(from route.NodeID, to ...route.NodeID) {
	fab.mu.Lock()
	defer fab.mu.Unlock()

	fab.touch(from)
	for _, n := range to {
		fab.touch(n)
		fab.fanOut[from].Add(string(n))
	}
}

func (fab *Fabric) touch(n route.NodeID) {
	if fab.fanOut[n] == nil {
		fab.fanOut[n] = treeset.NewWithStringComparator()
	}
}

// Lock marks the given nodes as permanently in use.
func (fab *Fabric) Lock(nodes ...route.NodeID) {
	fab.mu.Lock()
	defer fab.mu.Unlock()
	for _, n := range nodes {
		fab.touch(n)
		fab.locked[n] = struct{}{}
	}
}

// Claim provisionally marks a node as in use, as a route under construction does.
// Claims are released by ResetTo.
func (fab *Fabric) Claim(node route.NodeID) error {
	fab.mu.Lock()
	defer fab.mu.Unlock()
	if fab.fanOut[node] == nil {
		return errors.Wrapf(route.ErrNodeNotFound, "claim %q", node)
	}
	fab.claims = append(fab.claims, node)
	return nil
}

func (fab *Fabric) IsLocked(node route.NodeID) bool {
	fab.mu.RLock()
	defer fab.mu.RUnlock()
	return fab.isLocked(node)
}

func (fab *Fabric) isLocked(node route.NodeID) bool {
	if _, locked := fab.locked[node]; locked {
		return true
	}
	for _, c := range fab.claims {
		if c == node {
			return true
		}
	}
	return false
}

// NumNodes returns the number of distinct nodes known to this fabric.
func (fab *Fabric) NumNodes() int {
	fab.mu.RLock()
	defer fab.mu.RUnlock()
	return len(fab.fanOut)
}

// FanOut returns the unlocked nodes immediately reachable from node, in ascending order.
func (fab *Fabric) FanOut(node route.NodeID) ([]route.NodeID, error) {
	fab.mu.RLock()
	defer fab.mu.RUnlock()

	set := fab.fanOut[node]
	if set == nil {
		return nil, errors.Wrapf(route.ErrNodeNotFound, "fan-out of %q", node)
	}
	out := make([]route.NodeID, 0, set.Size())
	for _, v := range set.Values() {
		n := route.NodeID(v.(string))
		if !fab.isLocked(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

// ResetTo releases every claim made after node.  If node was never claimed, all claims are released.
func (fab *Fabric) ResetTo(node route.NodeID) error {
	fab.mu.Lock()
	defer fab.mu.Unlock()

	if fab.fanOut[node] == nil {
		return errors.Wrapf(route.ErrNodeNotFound, "reset to %q", node)
	}

	keep := 0
	for i, c := range fab.claims {
		if c == node {
			keep = i + 1
			break
		}
	}
	for _, c := range fab.claims[keep:] {
		klog.V(3).Infof("fabric: released %v", c)
	}
	fab.claims = fab.claims[:keep]
	return nil
}

// EnumeratePaths returns every simple path from src to snk of at most maxDepth hops that avoids locked nodes.
// The sink itself may be locked.  Paths are emitted in depth-first order over ascending fan-outs.
func (fab *Fabric) EnumeratePaths(src, snk route.NodeID, maxDepth int) ([]route.Path, error) {
	fab.mu.RLock()
	defer fab.mu.RUnlock()

	if fab.fanOut[src] == nil {
		return nil, errors.Wrapf(route.ErrNodeNotFound, "source %q", src)
	}
	if fab.fanOut[snk] == nil {
		return nil, errors.Wrapf(route.ErrNodeNotFound, "sink %q", snk)
	}

	w := pathWalker{
		fab:      fab,
		snk:      snk,
		maxDepth: maxDepth,
		onPath:   make(map[route.NodeID]struct{}),
	}
	w.walk(src)
	return w.found, nil
}

type pathWalker struct {
	fab      *Fabric
	snk      route.NodeID
	maxDepth int
	stack    route.Path
	onPath   map[route.NodeID]struct{}
	found    []route.Path
}

func (w *pathWalker) walk(node route.NodeID) {
	w.stack = append(w.stack, node)
	w.onPath[node] = struct{}{}
	defer func() {
		w.stack = w.stack[:len(w.stack)-1]
		delete(w.onPath, node)
	}()

	if node == w.snk {
		if len(w.stack) > 1 {
			w.found = append(w.found, w.stack.Clone())
		}
		return
	}
	if len(w.stack)-1 >= w.maxDepth {
		return
	}

	for _, v := range w.fab.fanOut[node].Values() {
		next := route.NodeID(v.(string))
		if _, visited := w.onPath[next]; visited {
			continue
		}
		if next != w.snk && w.fab.isLocked(next) {
			continue
		}
		w.walk(next)
	}
}
