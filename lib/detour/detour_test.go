package detour_test

import (
	"errors"
	"testing"

	"github.com/rapidroute/rapidroute-go/lib/detour"
	"github.com/rapidroute/rapidroute-go/lib/fabric"
	"github.com/rapidroute/rapidroute-go/route"
	"github.com/stretchr/testify/require"
)

type countingFanOut struct {
	route.FanOuter
	calls map[route.NodeID]int
	fail  route.NodeID
}

func (c *countingFanOut) FanOut(node route.NodeID) ([]route.NodeID, error) {
	c.calls[node]++
	if node == c.fail {
		return nil, errors.New("engine unavailable")
	}
	return c.FanOuter.FanOut(node)
}

func newCounting(t *testing.T, desc string) *countingFanOut {
	fab, err := fabric.Parse(desc)
	require.NoError(t, err)
	return &countingFanOut{
		FanOuter: fab,
		calls:    make(map[route.NodeID]int),
	}
}

const diamond = `
	s -> 1, 4
	1 -> 2, 3, 6
	3 -> 2
	6 -> 2
	2 -> snk, 7
	7 -> snk
	4 -> 5
	5 -> snk
`

func TestFindDetours(t *testing.T) {
	o := newCounting(t, diamond)
	path := route.Path{"s", "1", "2", "snk"}

	detours, err := detour.Find(o, path, 1)
	require.NoError(t, err)

	var got []string
	for _, d := range detours {
		got = append(got, d.String())
	}
	require.ElementsMatch(t, []string{
		"s 1 3 2 snk",
		"s 1 6 2 snk",
		"s 1 2 7 snk",
	}, got)
	require.Equal(t, "s 1 2 snk", path.String())
}

func TestDetourSoundness(t *testing.T) {
	o := newCounting(t, diamond)
	path := route.Path{"s", "1", "2", "snk"}

	detours, err := detour.Find(o, path, 1)
	require.NoError(t, err)
	require.NotEmpty(t, detours)

	for _, d := range detours {
		require.Len(t, d, len(path)+1)
		reduced := 0
		for i := range d {
			without := append(d[:i:i], d[i+1:]...)
			if without.Equal(path) {
				reduced++
			}
		}
		require.GreaterOrEqual(t, reduced, 1, "detour %v does not reduce to %v", d, path)
	}
}

func TestFanOutIsNotCached(t *testing.T) {
	o := newCounting(t, diamond)
	_, err := detour.Find(o, route.Path{"s", "1", "2", "snk"}, 1)
	require.NoError(t, err)
	_, err = detour.Find(o, route.Path{"s", "1", "2", "snk"}, 1)
	require.NoError(t, err)

	// 1 is only queried as a pair head since it is never its own detour.
	require.Equal(t, 2, o.calls["1"])
	require.Equal(t, 2, o.calls["4"])
}

func TestUnsupportedDepth(t *testing.T) {
	o := newCounting(t, diamond)
	detours, err := detour.Find(o, route.Path{"s", "1", "2", "snk"}, 2)
	require.Nil(t, detours)
	require.True(t, errors.Is(err, route.ErrUnsupportedDeviationDepth))
	require.Empty(t, o.calls)

	_, err = detour.Find(o, route.Path{"s", "1", "2", "snk"}, 0)
	require.True(t, errors.Is(err, route.ErrInvalidInput))
	require.Empty(t, o.calls)
}

func TestOracleFailurePassesThrough(t *testing.T) {
	o := newCounting(t, diamond)
	o.fail = "2"
	_, err := detour.Find(o, route.Path{"s", "1", "2", "snk"}, 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "engine unavailable")
}

func TestShortPath(t *testing.T) {
	o := newCounting(t, diamond)
	detours, err := detour.Find(o, route.Path{"s"}, 1)
	require.NoError(t, err)
	require.Empty(t, detours)
}
