package pyroute

import (
	"errors"

	"github.com/go-python/gpython/py"
	"github.com/rapidroute/rapidroute-go/lib/detour"
	"github.com/rapidroute/rapidroute-go/lib/fabric"
	"github.com/rapidroute/rapidroute-go/lib/session"
	"github.com/rapidroute/rapidroute-go/lib/solver"
	"github.com/rapidroute/rapidroute-go/oracle/remote"
	"github.com/rapidroute/rapidroute-go/route"
)

type pyOracle struct {
	route.Oracle
}

func (o pyOracle) Type() *py.Type {
	return pyOracleType
}

func getOracle(obj py.Object) (route.Oracle, error) {
	o, ok := obj.(pyOracle)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected Oracle object (got %v)", obj.Type().Name)
	}
	return o.Oracle, nil
}

func strArg(args py.Tuple, i int, name string) (string, error) {
	if i >= len(args) {
		return "", py.ExceptionNewf(py.TypeError, "missing argument '%s'", name)
	}
	s, ok := args[i].(py.String)
	if !ok {
		return "", py.ExceptionNewf(py.TypeError, "'%s' must be str (got %v)", name, args[i].Type().Name)
	}
	return string(s), nil
}

func intArg(args py.Tuple, i int, defaultVal int) (int, error) {
	if i >= len(args) || args[i] == py.None {
		return defaultVal, nil
	}
	v, err := py.GetInt(args[i])
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func py_LoadFabric(module py.Object, args py.Tuple) (py.Object, error) {
	var pathname string
	err := py.LoadTuple(args, []interface{}{&pathname})
	if err != nil {
		return nil, err
	}
	fab, err := fabric.Load(pathname)
	if err != nil {
		return nil, pyErr(err)
	}
	return pyOracle{fab}, nil
}

func py_ParseFabric(module py.Object, args py.Tuple) (py.Object, error) {
	desc, err := strArg(args, 0, "text")
	if err != nil {
		return nil, err
	}
	fab, err := fabric.Parse(desc)
	if err != nil {
		return nil, pyErr(err)
	}
	return pyOracle{fab}, nil
}

func py_Connect(module py.Object, args py.Tuple) (py.Object, error) {
	endpoint, err := strArg(args, 0, "endpoint")
	if err != nil {
		return nil, err
	}
	client, err := remote.Dial(endpoint)
	if err != nil {
		return nil, pyErr(err)
	}
	return pyOracle{client}, nil
}

func py_Oracle_FanOut(self py.Object, args py.Tuple) (py.Object, error) {
	o := self.(pyOracle)
	node, err := strArg(args, 0, "node")
	if err != nil {
		return nil, err
	}
	nodes, err := o.FanOut(route.NodeID(node))
	if err != nil {
		return nil, pyErr(err)
	}
	return nodesObj(nodes), nil
}

func py_Oracle_Paths(self py.Object, args py.Tuple) (py.Object, error) {
	o := self.(pyOracle)
	src, err := strArg(args, 0, "src")
	if err != nil {
		return nil, err
	}
	snk, err := strArg(args, 1, "snk")
	if err != nil {
		return nil, err
	}
	maxDepth, err := intArg(args, 2, route.DefaultMaxDepth)
	if err != nil {
		return nil, err
	}
	paths, err := o.EnumeratePaths(route.NodeID(src), route.NodeID(snk), maxDepth)
	if err != nil {
		return nil, pyErr(err)
	}
	return pathsObj(paths), nil
}

func py_Oracle_ResetTo(self py.Object, args py.Tuple) (py.Object, error) {
	o := self.(pyOracle)
	node, err := strArg(args, 0, "node")
	if err != nil {
		return nil, err
	}
	if err = o.ResetTo(route.NodeID(node)); err != nil {
		return nil, pyErr(err)
	}
	return py.None, nil
}

func py_Oracle_Lock(self py.Object, args py.Tuple) (py.Object, error) {
	fab, ok := self.(pyOracle).Oracle.(*fabric.Fabric)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "only a loaded fabric can lock nodes")
	}
	for i := range args {
		node, err := strArg(args, i, "node")
		if err != nil {
			return nil, err
		}
		fab.Lock(route.NodeID(node))
	}
	return py.None, nil
}

func py_Oracle_Solver(self py.Object, args py.Tuple) (py.Object, error) {
	o := self.(pyOracle)
	src, err := strArg(args, 0, "src")
	if err != nil {
		return nil, err
	}
	snk, err := strArg(args, 1, "snk")
	if err != nil {
		return nil, err
	}
	maxDepth, err := intArg(args, 2, route.DefaultMaxDepth)
	if err != nil {
		return nil, err
	}
	sol, err := solver.New(o.Oracle, route.NodeID(src), route.NodeID(snk), maxDepth)
	if err != nil {
		return nil, pyErr(err)
	}
	return pySolver{sol}, nil
}

func py_Oracle_Session(self py.Object, args py.Tuple) (py.Object, error) {
	o := self.(pyOracle)
	src, err := strArg(args, 0, "src")
	if err != nil {
		return nil, err
	}
	snk, err := strArg(args, 1, "snk")
	if err != nil {
		return nil, err
	}
	s, err := session.New(o.Oracle, route.NodeID(src), route.NodeID(snk))
	if err != nil {
		return nil, pyErr(err)
	}
	return pySession{s}, nil
}

// py_FindDetours returns None when max_deviations is more than is supported.
func py_FindDetours(module py.Object, args py.Tuple) (py.Object, error) {
	if len(args) < 2 {
		return nil, py.ExceptionNewf(py.TypeError, "find_detours(oracle, path[, max_deviations])")
	}
	o, err := getOracle(args[0])
	if err != nil {
		return nil, err
	}
	path, err := loadPath(args[1])
	if err != nil {
		return nil, err
	}
	maxDev, err := intArg(args, 2, route.MaxSupportedDeviations)
	if err != nil {
		return nil, err
	}
	return detoursObj(detour.Find(o, path, maxDev))
}

func detoursObj(detours []route.Path, err error) (py.Object, error) {
	if errors.Is(err, route.ErrUnsupportedDeviationDepth) {
		return py.None, nil
	}
	if err != nil {
		return nil, pyErr(err)
	}
	return pathsObj(detours), nil
}
