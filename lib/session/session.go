// Package session tracks a signal route that is built up interactively, one resource at a time.
package session

import (
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/rapidroute/rapidroute-go/lib/solver"
	"github.com/rapidroute/rapidroute-go/route"
)

// Claimer is implemented by oracles that track which resources a route under construction holds.
type Claimer interface {
	Claim(node route.NodeID) error
}

// Session is a progressive route from a source to a sink.
//
// A route is a list of segments: each segment is the node path walked within one tile,
// and each segment after the first starts at the node an exit wire lands on.
type Session struct {
	oracle   route.Oracle
	src      route.NodeID
	snk      route.NodeID
	segments [][]route.NodeID
	complete bool
}

func New(o route.Oracle, src, snk route.NodeID) (*Session, error) {
	if src == snk {
		return nil, errors.Wrapf(route.ErrInvalidInput, "source and sink are both %q", src)
	}
	s := &Session{
		oracle:   o,
		src:      src,
		snk:      snk,
		segments: [][]route.NodeID{{src}},
	}
	if err := s.claim(src); err != nil {
		return nil, err
	}
	klog.Infof("session: routing %v -> %v", src, snk)
	return s, nil
}

func (s *Session) claim(nodes ...route.NodeID) error {
	c, ok := s.oracle.(Claimer)
	if !ok {
		return nil
	}
	for i, n := range nodes {
		if err := c.Claim(n); err != nil {
			if i > 0 {
				// Release the claims made so far.
				if rerr := s.oracle.ResetTo(s.Latest()); rerr != nil {
					klog.Warningf("session: releasing claims after a failed claim: %v", rerr)
				}
			}
			return err
		}
	}
	return nil
}

func (s *Session) Src() route.NodeID { return s.src }
func (s *Session) Snk() route.NodeID { return s.snk }
func (s *Session) IsComplete() bool  { return s.complete }

// Latest returns the node the route currently ends at.
func (s *Session) Latest() route.NodeID {
	last := s.segments[len(s.segments)-1]
	return last[len(last)-1]
}

// LatestSegment returns a copy of the segment currently being extended.
func (s *Session) LatestSegment() route.Path {
	return route.Path(s.segments[len(s.segments)-1]).Clone()
}

// Segments returns a copy of every segment.
func (s *Session) Segments() []route.Path {
	out := make([]route.Path, len(s.segments))
	for i, seg := range s.segments {
		out[i] = route.Path(seg).Clone()
	}
	return out
}

// AllNodes returns every node of every segment in order.
func (s *Session) AllNodes() route.Path {
	var all route.Path
	for _, seg := range s.segments {
		all = append(all, seg...)
	}
	return all
}

// Constraint returns the committed prefix of the route: the first segment followed by each later
// segment without the node its exit wire landed on.
func (s *Session) Constraint() route.Path {
	constraint := route.Path(s.segments[0]).Clone()
	for _, seg := range s.segments[1:] {
		constraint = append(constraint, seg[1:]...)
	}
	return constraint
}

// AddBounce extends the current segment by node.  Adding the sink completes the route.
func (s *Session) AddBounce(node route.NodeID) error {
	if s.complete {
		return errors.Wrap(route.ErrInvalidInput, "route is already complete")
	}
	if node == s.snk {
		s.tieUp()
		return nil
	}
	if err := s.claim(node); err != nil {
		return err
	}
	last := len(s.segments) - 1
	s.segments[last] = append(s.segments[last], node)
	klog.V(2).Infof("session: added bounce node <%v>", node)
	return nil
}

// AddWire ends the current segment at exit and starts a new segment at dest, the node exit lands on.
// Adding the sink as exit completes the route.
func (s *Session) AddWire(exit, dest route.NodeID) error {
	if s.complete {
		return errors.Wrap(route.ErrInvalidInput, "route is already complete")
	}
	if exit == s.snk {
		s.tieUp()
		return nil
	}
	if err := s.claim(exit, dest); err != nil {
		return err
	}
	last := len(s.segments) - 1
	s.segments[last] = append(s.segments[last], exit)
	s.segments = append(s.segments, []route.NodeID{dest})
	klog.V(2).Infof("session: added wire <%v>, signal is now routed to %v", exit, dest)
	return nil
}

// Complete ends the current segment at the sink.
func (s *Session) Complete() error {
	return s.AddBounce(s.snk)
}

func (s *Session) tieUp() {
	last := len(s.segments) - 1
	s.segments[last] = append(s.segments[last], s.snk)
	s.complete = true
	klog.Infof("session: added sink node <%v>, the route is now complete", s.snk)
}

// RollBackOne removes the latest node.  If that empties the segment, the exit wire that led to it is removed too.
// Returns the removed nodes.
func (s *Session) RollBackOne() ([]route.NodeID, error) {
	dead, err := s.rollBackOne()
	if err != nil {
		return nil, err
	}
	return dead, s.reset()
}

func (s *Session) rollBackOne() ([]route.NodeID, error) {
	last := len(s.segments) - 1
	seg := s.segments[last]
	if last == 0 && len(seg) == 1 {
		return nil, route.ErrEmptyRoute
	}

	dead := []route.NodeID{seg[len(seg)-1]}
	s.segments[last] = seg[:len(seg)-1]
	if len(s.segments[last]) == 0 {
		s.segments = s.segments[:last]
		prev := s.segments[last-1]
		dead = append(dead, prev[len(prev)-1])
		s.segments[last-1] = prev[:len(prev)-1]
	}
	s.complete = false
	return dead, nil
}

// RollBackSegment removes the current segment and the exit wire that led to it.
func (s *Session) RollBackSegment() ([]route.NodeID, error) {
	last := len(s.segments) - 1
	if last == 0 {
		return nil, route.ErrEmptyRoute
	}
	dead := append([]route.NodeID(nil), s.segments[last]...)
	s.segments = s.segments[:last]
	prev := s.segments[last-1]
	dead = append(dead, prev[len(prev)-1])
	s.segments[last-1] = prev[:len(prev)-1]
	s.complete = false
	return dead, s.reset()
}

// RollBackTo removes nodes until node is the latest node of the route.
// If node is an exit wire, the route is left at the node that wire lands on.
func (s *Session) RollBackTo(node route.NodeID) ([]route.NodeID, error) {
	if s.AllNodes().IndexOf(node) < 0 {
		return nil, errors.Wrapf(route.ErrNodeNotFound, "%v is not on the route", node)
	}

	var dead []route.NodeID
	for !s.isHeadAt(node) {
		removed, err := s.rollBackOne()
		if err != nil {
			return nil, err
		}
		dead = append(dead, removed...)
	}
	if len(dead) == 0 {
		return nil, nil
	}
	return dead, s.reset()
}

func (s *Session) isHeadAt(node route.NodeID) bool {
	if s.Latest() == node {
		return true
	}
	last := len(s.segments) - 1
	if last > 0 && len(s.segments[last]) == 1 {
		prev := s.segments[last-1]
		return prev[len(prev)-1] == node
	}
	return false
}

func (s *Session) reset() error {
	klog.V(2).Infof("session: rolled route back to <%v>", s.Latest())
	return s.oracle.ResetTo(s.Latest())
}

// Solver enumerates the remaining paths from the latest node to the sink.
// Provisional state past the latest node is discarded on the oracle first.
func (s *Session) Solver(maxDepth int) (*solver.Solver, error) {
	if s.complete {
		return nil, errors.Wrap(route.ErrInvalidInput, "route is already complete")
	}
	head := s.Latest()
	if err := s.oracle.ResetTo(head); err != nil {
		return nil, errors.Wrapf(err, "reset to %v", head)
	}
	return solver.New(s.oracle, head, s.snk, maxDepth)
}
