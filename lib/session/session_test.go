package session_test

import (
	"errors"
	"testing"

	"github.com/rapidroute/rapidroute-go/lib/fabric"
	"github.com/rapidroute/rapidroute-go/lib/session"
	"github.com/rapidroute/rapidroute-go/route"
	"github.com/stretchr/testify/require"
)

const twoTiles = `
	s -> a, b
	a -> w1
	w1 -> d1
	d1 -> c, e
	c -> snk
	e -> snk
	b -> snk
`

type resetRecorder struct {
	route.Oracle
	resets []route.NodeID
}

func (r *resetRecorder) ResetTo(node route.NodeID) error {
	r.resets = append(r.resets, node)
	return r.Oracle.ResetTo(node)
}

func loadTwoTiles(t *testing.T) *fabric.Fabric {
	fab, err := fabric.Parse(twoTiles)
	require.NoError(t, err)
	return fab
}

func TestBuildAndSolve(t *testing.T) {
	fab := loadTwoTiles(t)
	s, err := session.New(fab, "s", "snk")
	require.NoError(t, err)

	require.NoError(t, s.AddBounce("a"))
	require.NoError(t, s.AddWire("w1", "d1"))
	require.Equal(t, route.NodeID("d1"), s.Latest())
	require.Equal(t, "s a w1", s.Constraint().String())
	require.Equal(t, "s a w1 d1", s.AllNodes().String())
	require.Len(t, s.Segments(), 2)
	require.Equal(t, "d1", s.LatestSegment().String())

	out, err := fab.FanOut("s")
	require.NoError(t, err)
	require.Equal(t, []route.NodeID{"b"}, out)

	sol, err := s.Solver(route.DefaultMaxDepth)
	require.NoError(t, err)
	require.Equal(t, 2, sol.NumPaths())
	require.Equal(t, "d1 c snk", sol.Path(0).String())
	require.Equal(t, "d1 e snk", sol.Path(1).String())
}

func TestCompleteAndRollBack(t *testing.T) {
	fab := loadTwoTiles(t)
	s, err := session.New(fab, "s", "snk")
	require.NoError(t, err)

	require.NoError(t, s.AddBounce("a"))
	require.NoError(t, s.AddWire("w1", "d1"))
	require.NoError(t, s.AddBounce("c"))
	require.NoError(t, s.Complete())
	require.True(t, s.IsComplete())
	require.Equal(t, route.NodeID("snk"), s.Latest())
	require.True(t, errors.Is(s.AddBounce("e"), route.ErrInvalidInput))

	_, err = s.Solver(4)
	require.True(t, errors.Is(err, route.ErrInvalidInput))

	dead, err := s.RollBackOne()
	require.NoError(t, err)
	require.Equal(t, []route.NodeID{"snk"}, dead)
	require.False(t, s.IsComplete())

	dead, err = s.RollBackTo("a")
	require.NoError(t, err)
	require.Equal(t, []route.NodeID{"c", "d1", "w1"}, dead)
	require.Equal(t, route.NodeID("a"), s.Latest())
	require.True(t, fab.IsLocked("a"))
	require.False(t, fab.IsLocked("w1"))
	require.False(t, fab.IsLocked("d1"))

	dead, err = s.RollBackOne()
	require.NoError(t, err)
	require.Equal(t, []route.NodeID{"a"}, dead)

	_, err = s.RollBackOne()
	require.True(t, errors.Is(err, route.ErrEmptyRoute))
	_, err = s.RollBackSegment()
	require.True(t, errors.Is(err, route.ErrEmptyRoute))

	_, err = s.RollBackTo("zz")
	require.True(t, errors.Is(err, route.ErrNodeNotFound))
}

func TestRollBackSegmentAndExitWire(t *testing.T) {
	rec := &resetRecorder{Oracle: loadTwoTiles(t)}
	s, err := session.New(rec, "s", "snk")
	require.NoError(t, err)

	require.NoError(t, s.AddBounce("a"))
	require.NoError(t, s.AddWire("w1", "d1"))
	require.NoError(t, s.AddBounce("c"))

	// Rolling back to an exit wire leaves the route at the node the wire lands on.
	dead, err := s.RollBackTo("w1")
	require.NoError(t, err)
	require.Equal(t, []route.NodeID{"c"}, dead)
	require.Equal(t, route.NodeID("d1"), s.Latest())

	dead, err = s.RollBackTo("d1")
	require.NoError(t, err)
	require.Empty(t, dead)

	dead, err = s.RollBackSegment()
	require.NoError(t, err)
	require.Equal(t, []route.NodeID{"d1", "w1"}, dead)
	require.Equal(t, "s a", s.Constraint().String())

	require.Equal(t, []route.NodeID{"d1", "a"}, rec.resets)
}

func TestWireIntoSink(t *testing.T) {
	s, err := session.New(loadTwoTiles(t), "s", "snk")
	require.NoError(t, err)
	require.NoError(t, s.AddBounce("b"))
	require.NoError(t, s.AddWire("snk", "ignored"))
	require.True(t, s.IsComplete())
	require.Equal(t, "s b snk", s.AllNodes().String())
}

func TestNewSessionErrors(t *testing.T) {
	_, err := session.New(loadTwoTiles(t), "s", "s")
	require.True(t, errors.Is(err, route.ErrInvalidInput))

	_, err = session.New(loadTwoTiles(t), "nowhere", "snk")
	require.True(t, errors.Is(err, route.ErrNodeNotFound))
}

func TestFailedWireReleasesClaims(t *testing.T) {
	fab := loadTwoTiles(t)
	s, err := session.New(fab, "s", "snk")
	require.NoError(t, err)

	err = s.AddWire("a", "nope")
	require.True(t, errors.Is(err, route.ErrNodeNotFound))
	require.Equal(t, route.NodeID("s"), s.Latest())
	require.False(t, fab.IsLocked("a"))
	require.True(t, fab.IsLocked("s"))

	out, err := fab.FanOut("s")
	require.NoError(t, err)
	require.Equal(t, []route.NodeID{"a", "b"}, out)

	require.NoError(t, s.AddBounce("a"))
	err = s.AddWire("w1", "nope")
	require.Error(t, err)
	require.False(t, fab.IsLocked("w1"))
	require.True(t, fab.IsLocked("a"))
}
