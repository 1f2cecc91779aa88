package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rapidroute/rapidroute-go/config"
	"github.com/rapidroute/rapidroute-go/route"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	pathname := filepath.Join(t.TempDir(), "rapidroute.yaml")
	require.NoError(t, os.WriteFile(pathname, []byte(body), 0644))
	return pathname
}

func TestDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, route.DefaultMaxDepth, cfg.Solver.MaxDepth)
	require.Equal(t, []int{route.DefaultOrbit}, cfg.Solver.Orbits)
	require.Equal(t, 1, cfg.Detour.MaxDeviations)
	require.Equal(t, "", cfg.Catalog.Path)
}

func TestLoadFile(t *testing.T) {
	pathname := writeConfig(t, `
fabric: testdata/scenario.fabric
oracle:
  endpoint: unix:///run/rapidroute.sock
solver:
  src: INT_X0Y0/LOGIC_OUTS_W30
  snk: INT_X1Y0/IMUX_W17
  max_depth: 5
  orbits: [0, 1, 2]
report:
  dir: out
`)
	cfg, err := config.Load(pathname)
	require.NoError(t, err)
	require.Equal(t, "testdata/scenario.fabric", cfg.Fabric)
	require.Equal(t, "unix:///run/rapidroute.sock", cfg.Oracle.Endpoint)
	require.Equal(t, route.NodeID("INT_X0Y0/LOGIC_OUTS_W30"), cfg.Solver.Src)
	require.Equal(t, 5, cfg.Solver.MaxDepth)
	require.Equal(t, []int{0, 1, 2}, cfg.Solver.Orbits)
	require.Equal(t, 1, cfg.Detour.MaxDeviations)
	require.Equal(t, "out", cfg.Report.Dir)
	require.Equal(t, "rapidroute", cfg.Report.Prefix)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("RAPIDROUTE_MAX_DEPTH", "3")
	t.Setenv("RAPIDROUTE_ORACLE", "http://localhost:7070")
	cfg, err := config.Load(writeConfig(t, "solver:\n  max_depth: 5\n"))
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Solver.MaxDepth)
	require.Equal(t, "http://localhost:7070", cfg.Oracle.Endpoint)
}

func TestInvalid(t *testing.T) {
	for _, body := range []string{
		"solver:\n  max_depth: 0\n",
		"solver:\n  orbits: [1, -1]\n",
		"solver:\n  orbits: []\n",
		"solver:\n  src: a\n  snk: a\n",
		"oracle:\n  endpoint: tcp://host\n",
		"report:\n  dir: out\n  prefix: \"\"\n",
		"solver: [not, a, map]\n",
	} {
		_, err := config.Load(writeConfig(t, body))
		require.True(t, errors.Is(err, route.ErrInvalidInput), "%q: %v", body, err)
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
