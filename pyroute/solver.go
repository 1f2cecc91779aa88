package pyroute

import (
	"sort"
	"strings"

	"github.com/go-python/gpython/py"
	"github.com/rapidroute/rapidroute-go/lib/report"
	"github.com/rapidroute/rapidroute-go/lib/solver"
	"github.com/rapidroute/rapidroute-go/route"
)

type pySolver struct {
	*solver.Solver
}

func (sol pySolver) Type() *py.Type {
	return pySolverType
}

func (sol pySolver) M__str__() (py.Object, error) {
	b := strings.Builder{}
	for i, p := range sol.Paths() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p.String())
	}
	return py.String(b.String()), nil
}

func (sol pySolver) M__repr__() (py.Object, error) {
	return sol.M__str__()
}

func getSolver(obj py.Object) (*solver.Solver, error) {
	sol, ok := obj.(pySolver)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected Solver object (got %v)", obj.Type().Name)
	}
	return sol.Solver, nil
}

func py_Solver_Src(self py.Object, args py.Tuple) (py.Object, error) {
	return nodeObj(self.(pySolver).Src()), nil
}

func py_Solver_Snk(self py.Object, args py.Tuple) (py.Object, error) {
	return nodeObj(self.(pySolver).Snk()), nil
}

func py_Solver_NumPaths(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(pySolver).NumPaths()), nil
}

func py_Solver_Path(self py.Object, args py.Tuple) (py.Object, error) {
	sol := self.(pySolver)
	i, err := intArg(args, 0, -1)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= sol.NumPaths() {
		return nil, py.ExceptionNewf(py.IndexError, "path index %d out of range", i)
	}
	return pathObj(sol.Path(i)), nil
}

func py_Solver_Paths(self py.Object, args py.Tuple) (py.Object, error) {
	return pathsObj(self.(pySolver).Paths()), nil
}

func py_Solver_Nodes(self py.Object, args py.Tuple) (py.Object, error) {
	return nodesObj(self.(pySolver).Nodes()), nil
}

// py_Solver_PathsMap returns ((length, (index, ...)), ...) in ascending length.
func py_Solver_PathsMap(self py.Object, args py.Tuple) (py.Object, error) {
	byLen := self.(pySolver).PathsByLength()
	lengths := make([]int, 0, len(byLen))
	for n := range byLen {
		lengths = append(lengths, n)
	}
	sort.Ints(lengths)

	out := make(py.Tuple, len(lengths))
	for i, n := range lengths {
		indices := make(py.Tuple, len(byLen[n]))
		for j, idx := range byLen[n] {
			indices[j] = py.Int(idx)
		}
		out[i] = py.Tuple{py.Int(n), indices}
	}
	return out, nil
}

func py_Solver_FindVariations(self py.Object, args py.Tuple) (py.Object, error) {
	sol := self.(pySolver)
	orbit, err := intArg(args, 0, route.DefaultOrbit)
	if err != nil {
		return nil, err
	}
	pairs, err := sol.FindVariations(orbit)
	if err != nil {
		return nil, pyErr(err)
	}
	return pairsObj(pairs), nil
}

func py_Solver_Sweep(self py.Object, args py.Tuple) (py.Object, error) {
	sol := self.(pySolver)
	if len(args) < 1 {
		return nil, py.ExceptionNewf(py.TypeError, "sweep(orbits)")
	}
	orbits, err := loadInts(args[0])
	if err != nil {
		return nil, err
	}
	sweep, err := sol.SweepOrbits(orbits)
	if err != nil {
		return nil, pyErr(err)
	}

	sort.Ints(orbits)
	out := make(py.Tuple, 0, len(sweep))
	for i, orbit := range orbits {
		if i > 0 && orbits[i-1] == orbit {
			continue
		}
		out = append(out, py.Tuple{py.Int(orbit), pairsObj(sweep[orbit])})
	}
	return out, nil
}

func py_Solver_FindDetours(self py.Object, args py.Tuple) (py.Object, error) {
	sol := self.(pySolver)
	i, err := intArg(args, 0, -1)
	if err != nil {
		return nil, err
	}
	maxDev, err := intArg(args, 1, route.MaxSupportedDeviations)
	if err != nil {
		return nil, err
	}
	return detoursObj(sol.FindDetours(i, maxDev))
}

func py_Solver_Dump(self py.Object, args py.Tuple) (py.Object, error) {
	sol := self.(pySolver)
	dir, err := strArg(args, 0, "dir")
	if err != nil {
		return nil, err
	}
	prefix, err := strArg(args, 1, "prefix")
	if err != nil {
		return nil, err
	}
	constraint := route.Path{sol.Src()}
	if len(args) > 2 {
		if constraint, err = loadPath(args[2]); err != nil {
			return nil, err
		}
	}
	if err = report.Dump(dir, prefix, constraint, sol.Paths()); err != nil {
		return nil, pyErr(err)
	}
	return py.None, nil
}
