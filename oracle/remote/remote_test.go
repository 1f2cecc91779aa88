package remote_test

import (
	"context"
	"errors"
	"net"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rapidroute/rapidroute-go/lib/detour"
	"github.com/rapidroute/rapidroute-go/lib/fabric"
	"github.com/rapidroute/rapidroute-go/lib/solver"
	"github.com/rapidroute/rapidroute-go/oracle/remote"
	"github.com/rapidroute/rapidroute-go/route"
	"github.com/stretchr/testify/require"
)

const scenario = `
	s -> 1, 4
	1 -> 2, 3
	3 -> 2
	2 -> snk
	4 -> 5
	5 -> snk
	INT_X0Y0/LOGIC_OUTS_W30 -> INT_X0Y0/INT_NODE_SDQ_12_INT_OUT1
`

func scenarioFabric(t *testing.T) *fabric.Fabric {
	fab, err := fabric.Parse(scenario)
	require.NoError(t, err)
	return fab
}

func TestHTTPRoundTrip(t *testing.T) {
	fab := scenarioFabric(t)
	ts := httptest.NewServer(remote.NewHandler(fab))
	defer ts.Close()

	client, err := remote.Dial(ts.URL)
	require.NoError(t, err)

	local, err := fab.EnumeratePaths("s", "snk", 8)
	require.NoError(t, err)
	paths, err := client.EnumeratePaths("s", "snk", 8)
	require.NoError(t, err)
	require.Equal(t, local, paths)

	paths, err = client.EnumeratePaths("snk", "s", 8)
	require.NoError(t, err)
	require.Empty(t, paths)

	out, err := client.FanOut("INT_X0Y0/LOGIC_OUTS_W30")
	require.NoError(t, err)
	require.Equal(t, []route.NodeID{"INT_X0Y0/INT_NODE_SDQ_12_INT_OUT1"}, out)

	_, err = client.FanOut("nowhere")
	require.True(t, errors.Is(err, route.ErrNodeNotFound))

	require.NoError(t, fab.Claim("1"))
	out, err = client.FanOut("s")
	require.NoError(t, err)
	require.Equal(t, []route.NodeID{"4"}, out)

	require.NoError(t, client.ResetTo("s"))
	require.False(t, fab.IsLocked("1"))
	require.True(t, errors.Is(client.ResetTo("nowhere"), route.ErrNodeNotFound))
}

func TestSolverOverRemote(t *testing.T) {
	ts := httptest.NewServer(remote.NewHandler(scenarioFabric(t)))
	defer ts.Close()

	client, err := remote.Dial(ts.URL + "/")
	require.NoError(t, err)

	sol, err := solver.New(client, "s", "snk", route.DefaultMaxDepth)
	require.NoError(t, err)
	require.Equal(t, 3, sol.NumPaths())

	v, err := sol.FindVariations(1)
	require.NoError(t, err)
	require.Equal(t, []route.VariationPair{{A: 0, B: 1}}, v.Pairs())

	detours, err := detour.Find(client, sol.Path(0), 1)
	require.NoError(t, err)
	require.Len(t, detours, 1)
	require.Equal(t, "s 1 3 2 snk", detours[0].String())
}

func TestUnixSocket(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "oracle.sock")
	ln, err := net.Listen("unix", sock)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := remote.NewServer(ctx, remote.ServerConfig{
		Listener: ln,
		Oracle:   scenarioFabric(t),
	})

	client, err := remote.Dial(remote.UnixScheme + sock)
	require.NoError(t, err)
	out, err := client.FanOut("1")
	require.NoError(t, err)
	require.Equal(t, []route.NodeID{"2", "3"}, out)

	cancel()
	srv.Wait()

	_, err = client.FanOut("1")
	require.Error(t, err)
}

func TestDialErrors(t *testing.T) {
	_, err := remote.Dial("unix://")
	require.True(t, errors.Is(err, route.ErrInvalidInput))
	_, err = remote.Dial("ftp://example.com")
	require.True(t, errors.Is(err, route.ErrInvalidInput))
}
