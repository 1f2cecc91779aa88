package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/rapidroute/rapidroute-go/config"
	"github.com/rapidroute/rapidroute-go/lib/catalog"
	"github.com/rapidroute/rapidroute-go/lib/fabric"
	"github.com/rapidroute/rapidroute-go/lib/report"
	"github.com/rapidroute/rapidroute-go/lib/solver"
	"github.com/rapidroute/rapidroute-go/oracle/remote"
	"github.com/rapidroute/rapidroute-go/route"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var solveOpts struct {
	fabric        string
	endpoint      string
	src           string
	snk           string
	maxDepth      int
	orbits        []int
	maxDeviations int
	catalog       string
	reportDir     string
	reportPrefix  string
}

func addSolveFlags(fs *pflag.FlagSet) {
	fs.StringVar(&solveOpts.fabric, "fabric", "", "fabric description used as the oracle")
	fs.StringVar(&solveOpts.endpoint, "oracle", "", "remote oracle endpoint (http://host:port or unix:///path.sock)")
	fs.StringVar(&solveOpts.src, "src", "", "source node")
	fs.StringVar(&solveOpts.snk, "snk", "", "sink node")
	fs.IntVar(&solveOpts.maxDepth, "max-depth", route.DefaultMaxDepth, "maximum hops per path")
	fs.IntSliceVar(&solveOpts.orbits, "orbit", []int{route.DefaultOrbit}, "orbit bounds to classify variations under")
	fs.IntVar(&solveOpts.maxDeviations, "max-deviations", route.MaxSupportedDeviations, "detour depth; 0 skips detours")
	fs.StringVar(&solveOpts.catalog, "catalog", "", "catalog db directory to replay from and store into")
	fs.StringVar(&solveOpts.reportDir, "report-dir", "", "directory to write the node and route dumps into")
	fs.StringVar(&solveOpts.reportPrefix, "report-prefix", "", "file name prefix of the dumps")
}

// solveConfig loads the config file and applies any flags that were set explicitly.
func solveConfig(fs *pflag.FlagSet) (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return cfg, err
	}
	if fs.Changed("fabric") {
		cfg.Fabric = solveOpts.fabric
	}
	if fs.Changed("oracle") {
		cfg.Oracle.Endpoint = solveOpts.endpoint
	}
	if fs.Changed("src") {
		cfg.Solver.Src = route.NodeID(solveOpts.src)
	}
	if fs.Changed("snk") {
		cfg.Solver.Snk = route.NodeID(solveOpts.snk)
	}
	if fs.Changed("max-depth") {
		cfg.Solver.MaxDepth = solveOpts.maxDepth
	}
	if fs.Changed("orbit") {
		cfg.Solver.Orbits = solveOpts.orbits
	}
	if fs.Changed("max-deviations") {
		cfg.Detour.MaxDeviations = solveOpts.maxDeviations
	}
	if fs.Changed("catalog") {
		cfg.Catalog.Path = solveOpts.catalog
	}
	if fs.Changed("report-dir") {
		cfg.Report.Dir = solveOpts.reportDir
	}
	if fs.Changed("report-prefix") {
		cfg.Report.Prefix = solveOpts.reportPrefix
	}

	if cfg.Solver.Src == "" || cfg.Solver.Snk == "" {
		return cfg, errors.Wrap(route.ErrInvalidInput, "both src and snk must be given")
	}
	return cfg, cfg.Validate()
}

// openOracle prefers a remote endpoint over a fabric description.
func openOracle(cfg config.Config) (route.Oracle, error) {
	switch {
	case cfg.Oracle.Endpoint != "":
		return remote.Dial(cfg.Oracle.Endpoint)
	case cfg.Fabric != "":
		return fabric.Load(cfg.Fabric)
	}
	return nil, errors.Wrap(route.ErrInvalidInput, "no oracle endpoint or fabric given")
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := solveConfig(cmd.Flags())
	if err != nil {
		return err
	}
	o, err := openOracle(cfg)
	if err != nil {
		return err
	}

	var cat *catalog.Catalog
	if cfg.Catalog.Path != "" {
		if cat, err = catalog.Open(catalog.Opts{DbPathName: cfg.Catalog.Path}); err != nil {
			return err
		}
		defer cat.Close()
	}

	sol, err := loadSolver(cfg, o, cat)
	if err != nil {
		return err
	}
	return writeSolution(cmd.OutOrStdout(), cfg, sol, cat)
}

// loadSolver replays the paths stored in cat if present, otherwise it enumerates and stores them.
// A nil cat always enumerates.
func loadSolver(cfg config.Config, o route.Oracle, cat *catalog.Catalog) (*solver.Solver, error) {
	if cat == nil {
		return solver.New(o, cfg.Solver.Src, cfg.Solver.Snk, cfg.Solver.MaxDepth)
	}

	key := catalog.Key{Src: cfg.Solver.Src, Snk: cfg.Solver.Snk, MaxDepth: cfg.Solver.MaxDepth}
	paths, err := cat.Get(key)
	if err == nil {
		klog.Infof("replaying %d paths from catalog", len(paths))
		sol, err := solver.FromPaths(key.Src, key.Snk, paths)
		if err != nil {
			return nil, err
		}
		return sol.WithOracle(o), nil
	}
	if !errors.Is(err, route.ErrNoPathFound) {
		return nil, err
	}

	sol, err := solver.New(o, key.Src, key.Snk, key.MaxDepth)
	if err != nil {
		return nil, err
	}
	if _, err = cat.TryAddPaths(key, sol.Paths()); err != nil {
		return nil, err
	}
	return sol, nil
}

// uniqueOrbits returns the given orbits in ascending order without repeats.
func uniqueOrbits(orbits []int) []int {
	sorted := append([]int(nil), orbits...)
	sort.Ints(sorted)
	var out []int
	for _, orbit := range sorted {
		if len(out) > 0 && out[len(out)-1] == orbit {
			continue
		}
		out = append(out, orbit)
	}
	return out
}

// writeSolution prints the paths, their variations and detours, then the node tally and dumps.
// Detours are recorded in cat when it is not nil.
func writeSolution(w io.Writer, cfg config.Config, sol *solver.Solver, cat *catalog.Catalog) error {
	fmt.Fprintf(w, "%v -> %v: %d paths\n", sol.Src(), sol.Snk(), sol.NumPaths())
	for i, p := range sol.Paths() {
		fmt.Fprintf(w, "  [%d] %v\n", i, p)
	}

	orbits := uniqueOrbits(cfg.Solver.Orbits)
	sweep, err := sol.SweepOrbits(orbits)
	if err != nil {
		return err
	}
	for _, orbit := range orbits {
		pairs := sweep[orbit]
		fmt.Fprintf(w, "orbit %d: %d variations", orbit, pairs.Len())
		for _, pair := range pairs.Pairs() {
			fmt.Fprintf(w, " (%d,%d)", pair.A, pair.B)
		}
		fmt.Fprintln(w)
	}

	if err = writeDetours(w, cfg.Detour.MaxDeviations, sol, cat); err != nil {
		return err
	}

	sum := report.Tally(sol.Nodes())
	if sum.Total() > 0 {
		fmt.Fprint(w, sum.String())
	}

	if cfg.Report.Dir != "" {
		return report.Dump(cfg.Report.Dir, cfg.Report.Prefix, route.Path{sol.Src()}, sol.Paths())
	}
	return nil
}

func writeDetours(w io.Writer, maxDeviations int, sol *solver.Solver, cat *catalog.Catalog) error {
	if maxDeviations == 0 {
		return nil
	}
	witnessed := 0
	for i := 0; i < sol.NumPaths(); i++ {
		detours, err := sol.FindDetours(i, maxDeviations)
		if errors.Is(err, route.ErrUnsupportedDeviationDepth) {
			fmt.Fprintf(w, "detours: max_deviations %d is not supported\n", maxDeviations)
			return nil
		}
		if err != nil {
			return err
		}
		for _, d := range detours {
			fmt.Fprintf(w, "detour of [%d]: %v\n", i, d)
			if cat == nil {
				continue
			}
			added, err := cat.TryAddPath(d)
			if err != nil {
				return err
			}
			if added {
				witnessed++
			}
		}
	}
	if cat != nil {
		fmt.Fprintf(w, "detours witnessed: %d new\n", witnessed)
	}
	return nil
}
