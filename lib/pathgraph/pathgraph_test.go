package pathgraph_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rapidroute/rapidroute-go/lib/pathgraph"
	"github.com/rapidroute/rapidroute-go/route"
	"github.com/stretchr/testify/require"
)

func mustPaths(t *testing.T, strs ...string) []route.Path {
	t.Helper()
	paths := make([]route.Path, len(strs))
	for i, s := range strs {
		p, err := route.ParsePath(s)
		require.NoError(t, err)
		paths[i] = p
	}
	return paths
}

// scenarioPaths are A, B, C where B detours through 3 and C shares only s and snk.
func scenarioPaths(t *testing.T) []route.Path {
	return mustPaths(t,
		"s 1 2 snk",
		"s 1 3 2 snk",
		"s 4 5 snk",
	)
}

// latticePaths yields a denser set: every path s -> a? -> b? -> c? -> snk through a 3x3 lattice.
func latticePaths(t *testing.T) []route.Path {
	var strs []string
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			for c := 0; c < 3; c++ {
				strs = append(strs, fmt.Sprintf("s a%d b%d c%d snk", a, b, c))
			}
		}
	}
	strs = append(strs, "s x1 x2 x3 x4 x5 snk", "s a0 x9 b0 c0 snk")
	return mustPaths(t, strs...)
}

func TestBuildEdgeInvariant(t *testing.T) {
	for _, paths := range [][]route.Path{scenarioPaths(t), latticePaths(t)} {
		g, err := pathgraph.Build(paths)
		require.NoError(t, err)
		require.Equal(t, len(paths), g.NumPaths())

		for i, path := range paths {
			pos, ok := g.Positions(path[0])
			require.True(t, ok)
			require.Equal(t, 0, pos[i])

			for j := 1; j < len(path); j++ {
				kids, ok := g.Children(path[j-1])
				require.True(t, ok)
				require.Contains(t, kids, path[j])

				pos, ok := g.Positions(path[j])
				require.True(t, ok)
				require.Equal(t, j, pos[i])
			}
		}
	}
}

func TestBuildNodeSet(t *testing.T) {
	g, err := pathgraph.Build(scenarioPaths(t))
	require.NoError(t, err)

	require.Equal(t, 7, g.NumNodes())
	require.Equal(t, []route.NodeID{"1", "2", "3", "4", "5", "s", "snk"}, g.NodeIDs())
	require.Equal(t, route.NodeID("s"), g.Src())
	require.Equal(t, route.NodeID("snk"), g.Snk())

	kids, _ := g.Children("1")
	require.Equal(t, []route.NodeID{"2", "3"}, kids)

	h, ok := g.Lookup("2")
	require.True(t, ok)
	require.Equal(t, map[int]int{0: 2, 1: 3}, g.Node(h).Paths)

	_, ok = g.Lookup("nope")
	require.False(t, ok)
}

func TestBuildRejectsBadInput(t *testing.T) {
	cases := map[string][]route.Path{
		"empty":       nil,
		"short":       {{"s"}},
		"same ends":   {{"s", "x", "s"}},
		"mixed src":   {{"s", "a", "t"}, {"q", "a", "t"}},
		"mixed snk":   {{"s", "a", "t"}, {"s", "a", "u"}},
		"not simple":  {{"s", "a", "b", "a", "t"}},
		"short later": {{"s", "a", "t"}, {"s"}},
	}
	for name, paths := range cases {
		t.Run(name, func(t *testing.T) {
			g, err := pathgraph.Build(paths)
			require.Nil(t, g)
			require.True(t, errors.Is(err, route.ErrInvalidInput), "got %v", err)
		})
	}
}

func TestScenarioVariations(t *testing.T) {
	g, err := pathgraph.Build(scenarioPaths(t))
	require.NoError(t, err)

	require.Equal(t, 0, g.FindVariations(0).Len())
	require.Equal(t, []route.VariationPair{{A: 0, B: 1}}, g.FindVariations(1).Pairs())
	require.Equal(t, []route.VariationPair{{A: 0, B: 1}, {A: 0, B: 2}}, g.FindVariations(2).Pairs())
	require.Equal(t, 3, g.FindVariations(3).Len())
}

func TestIdenticalPrefixStaysVariation(t *testing.T) {
	// Paths that co-visit every node at consecutive positions yield negative orbs.
	g, err := pathgraph.Build(mustPaths(t,
		"s a b c snk",
		"s a b c snk",
	))
	require.NoError(t, err)
	require.True(t, g.FindVariations(0).Contains(0, 1))
}

func TestSingleInsertedNode(t *testing.T) {
	g, err := pathgraph.Build(mustPaths(t,
		"s a b c snk",
		"s a b d c snk",
		"s x y snk",
	))
	require.NoError(t, err)

	require.False(t, g.FindVariations(0).Contains(0, 1))
	require.True(t, g.FindVariations(1).Contains(0, 1))

	// Diverging for two independent nodes is excluded at orbit 0.
	require.False(t, g.FindVariations(0).Contains(0, 2))
	require.False(t, g.FindVariations(0).Contains(1, 2))
}

func TestVariationMonotonicity(t *testing.T) {
	g, err := pathgraph.Build(latticePaths(t))
	require.NoError(t, err)

	prev := g.FindVariations(0)
	for orbit := 1; orbit <= 6; orbit++ {
		next := g.FindVariations(orbit)
		require.True(t, prev.IsSubsetOf(next), "orbit %d", orbit)
		prev = next
	}
	require.Equal(t, g.NumPaths()*(g.NumPaths()-1)/2, prev.Len())
}

func TestVariationsNormalizedAndIdempotent(t *testing.T) {
	g, err := pathgraph.Build(latticePaths(t))
	require.NoError(t, err)

	for orbit := 0; orbit < 4; orbit++ {
		first := g.FindVariations(orbit)
		for _, p := range first.Pairs() {
			require.Less(t, p.A, p.B)
		}
		require.True(t, first.Equal(g.FindVariations(orbit)))
	}
}

func TestConcurrentQueries(t *testing.T) {
	g, err := pathgraph.Build(latticePaths(t))
	require.NoError(t, err)

	want := make([]*route.PairSet, 5)
	for orbit := range want {
		want[orbit] = g.FindVariations(orbit)
	}

	var wg sync.WaitGroup
	got := make([]*route.PairSet, len(want))
	for orbit := range want {
		wg.Add(1)
		go func(orbit int) {
			defer wg.Done()
			got[orbit] = g.FindVariations(orbit)
		}(orbit)
	}
	wg.Wait()

	for orbit := range want {
		require.True(t, want[orbit].Equal(got[orbit]))
	}
}
