package route_test

import (
	"errors"
	"testing"

	"github.com/rapidroute/rapidroute-go/route"
	"github.com/stretchr/testify/require"
)

func TestPairSetNormalizes(t *testing.T) {
	ps := route.NewPairSet()
	ps.Add(3, 1)
	ps.Add(1, 3)
	ps.Add(0, 2)
	ps.Add(2, 2)

	require.Equal(t, 2, ps.Len())
	require.True(t, ps.Contains(3, 1))
	require.Equal(t, []route.VariationPair{{A: 0, B: 2}, {A: 1, B: 3}}, ps.Pairs())

	ps.Remove(3, 1)
	require.False(t, ps.Contains(1, 3))
}

func TestAllPairs(t *testing.T) {
	ps := route.AllPairs(4)
	require.Equal(t, 6, ps.Len())
	for _, p := range ps.Pairs() {
		require.Less(t, p.A, p.B)
	}

	sub := route.NewPairSet()
	sub.Add(0, 3)
	require.True(t, sub.IsSubsetOf(ps))
	require.False(t, ps.IsSubsetOf(sub))
	require.False(t, ps.Equal(sub))
	require.True(t, route.AllPairs(0).Equal(route.NewPairSet()))
}

func TestPathHelpers(t *testing.T) {
	p, err := route.ParsePath("INT_X0Y0/A INT_X0Y0/B INT_X0Y0/C")
	require.NoError(t, err)
	require.Equal(t, route.NodeID("INT_X0Y0/A"), p.Src())
	require.Equal(t, route.NodeID("INT_X0Y0/C"), p.Snk())
	require.Equal(t, 1, p.IndexOf("INT_X0Y0/B"))
	require.Equal(t, -1, p.IndexOf("nope"))
	require.True(t, p.IsSimple())
	require.Equal(t, "INT_X0Y0/A INT_X0Y0/B INT_X0Y0/C", p.String())

	q := p.InsertAt(1, "INT_X0Y0/D")
	require.Equal(t, "INT_X0Y0/A INT_X0Y0/D INT_X0Y0/B INT_X0Y0/C", q.String())
	require.Equal(t, 3, len(p))

	c := p.Clone()
	c[0] = "x"
	require.Equal(t, route.NodeID("INT_X0Y0/A"), p[0])

	_, err = route.ParsePath("lonely")
	require.True(t, errors.Is(err, route.ErrInvalidInput))

	require.False(t, route.Path{"a", "b", "a"}.IsSimple())
}

func TestNodeNameParts(t *testing.T) {
	n := route.NodeID("INT_X12Y40/BYPASS_W3")
	require.Equal(t, "INT_X12Y40", n.TileName())
	require.Equal(t, "BYPASS_W3", n.WireName())

	bare := route.NodeID("s")
	require.Equal(t, "", bare.TileName())
	require.Equal(t, "s", bare.WireName())
}
