// Package pyroute registers the "rapidroute" gpython module.
package pyroute

import (
	"errors"
	"sync"

	"github.com/go-python/gpython/py"
	"github.com/rapidroute/rapidroute-go/lib/catalog"
	"github.com/rapidroute/rapidroute-go/route"
)

var (
	LIB_VERSION = "v1.2026.1"
)

var (
	pyOracleType    = py.NewType("Oracle", "routing-resource oracle: a loaded fabric or a remote engine")
	pySolverType    = py.NewType("Solver", "interconnect paths between one source and one sink")
	pySessionType   = py.NewType("Session", "a route built up one node at a time")
	pyCatalogType   = py.NewType("Catalog", "stored path enumerations")
	pyWorkspaceType = py.NewType("Workspace", "collects catalogs opened by a script")
)

const (
	READ_ONLY = 0x01

	kWorkspaceAttr = "_Workspace"
)

// Workspace closes every catalog opened through it when the script's context closes.
type Workspace struct {
	mu       sync.Mutex
	catalogs []*catalog.Catalog
}

func (ws *Workspace) Type() *py.Type {
	return pyWorkspaceType
}

func (ws *Workspace) track(cat *catalog.Catalog) {
	ws.mu.Lock()
	ws.catalogs = append(ws.catalogs, cat)
	ws.mu.Unlock()
}

func (ws *Workspace) Close() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for _, cat := range ws.catalogs {
		cat.Close()
	}
	ws.catalogs = nil
}

func getWorkspace(module py.Object) *Workspace {
	wsObj, _ := py.GetAttrString(module, kWorkspaceAttr)
	if wsObj == nil {
		ws := &Workspace{}
		py.SetAttrString(module, kWorkspaceAttr, ws)
		return ws
	}
	return wsObj.(*Workspace)
}

// pyErr converts a Go error into the closest python exception.
func pyErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, route.ErrInvalidInput):
		return py.ExceptionNewf(py.ValueError, "%v", err)
	case errors.Is(err, route.ErrNodeNotFound):
		return py.ExceptionNewf(py.KeyError, "%v", err)
	case errors.Is(err, route.ErrCatalogClosed):
		return py.ExceptionNewf(py.ValueError, "%v", err)
	default:
		return py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
}

func nodeObj(n route.NodeID) py.Object {
	return py.String(n)
}

func nodesObj(nodes []route.NodeID) py.Object {
	items := make([]py.Object, len(nodes))
	for i, n := range nodes {
		items[i] = py.String(n)
	}
	return py.NewListFromItems(items)
}

func pathObj(p route.Path) py.Object {
	return nodesObj(p)
}

func pathsObj(paths []route.Path) py.Object {
	items := make([]py.Object, len(paths))
	for i, p := range paths {
		items[i] = pathObj(p)
	}
	return py.NewListFromItems(items)
}

func pairsObj(ps *route.PairSet) py.Object {
	pairs := ps.Pairs()
	items := make(py.Tuple, len(pairs))
	for i, pair := range pairs {
		items[i] = py.Tuple{py.Int(pair.A), py.Int(pair.B)}
	}
	return items
}

func sequenceItems(obj py.Object) ([]py.Object, bool) {
	switch seq := obj.(type) {
	case py.Tuple:
		return seq, true
	case *py.List:
		return seq.Items, true
	}
	return nil, false
}

// loadPath accepts a list or tuple of node names, or a single space separated string.
func loadPath(obj py.Object) (route.Path, error) {
	if s, ok := obj.(py.String); ok {
		p, err := route.ParsePath(string(s))
		if err != nil {
			return nil, pyErr(err)
		}
		return p, nil
	}
	items, ok := sequenceItems(obj)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected a path (got %v)", obj.Type().Name)
	}
	p := make(route.Path, len(items))
	for i, item := range items {
		s, ok := item.(py.String)
		if !ok {
			return nil, py.ExceptionNewf(py.TypeError, "node %d: expected str (got %v)", i, item.Type().Name)
		}
		p[i] = route.NodeID(s)
	}
	return p, nil
}

func loadPaths(obj py.Object) ([]route.Path, error) {
	items, ok := sequenceItems(obj)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected a list of paths (got %v)", obj.Type().Name)
	}
	paths := make([]route.Path, len(items))
	for i, item := range items {
		p, err := loadPath(item)
		if err != nil {
			return nil, err
		}
		paths[i] = p
	}
	return paths, nil
}

func loadNodes(obj py.Object) ([]route.NodeID, error) {
	items, ok := sequenceItems(obj)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected a list of nodes (got %v)", obj.Type().Name)
	}
	nodes := make([]route.NodeID, len(items))
	for i, item := range items {
		s, ok := item.(py.String)
		if !ok {
			return nil, py.ExceptionNewf(py.TypeError, "node %d: expected str (got %v)", i, item.Type().Name)
		}
		nodes[i] = route.NodeID(s)
	}
	return nodes, nil
}

func loadInts(obj py.Object) ([]int, error) {
	items, ok := sequenceItems(obj)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected a list of ints (got %v)", obj.Type().Name)
	}
	out := make([]int, len(items))
	for i, item := range items {
		v, err := py.GetInt(item)
		if err != nil {
			return nil, err
		}
		out[i] = int(v)
	}
	return out, nil
}

func init() {

	/////////////////////////////////
	// Oracle
	{
		pyOracleType.Dict["fan_out"] = py.MustNewMethod("fan_out", py_Oracle_FanOut, 0, "returns the resources immediately reachable from a node")
		pyOracleType.Dict["paths"] = py.MustNewMethod("paths", py_Oracle_Paths, 0, "enumerates paths: paths(src, snk[, max_depth])")
		pyOracleType.Dict["reset_to"] = py.MustNewMethod("reset_to", py_Oracle_ResetTo, 0, "discards provisional routing state back to a node")
		pyOracleType.Dict["lock"] = py.MustNewMethod("lock", py_Oracle_Lock, 0, "marks nodes of a loaded fabric as permanently in use")
		pyOracleType.Dict["solver"] = py.MustNewMethod("solver", py_Oracle_Solver, 0, "solver(src, snk[, max_depth]) enumerates and indexes the paths from src to snk")
		pyOracleType.Dict["session"] = py.MustNewMethod("session", py_Oracle_Session, 0, "session(src, snk) starts a progressive route")
	}

	/////////////////////////////////
	// Solver
	{
		pySolverType.Dict["src"] = py.MustNewMethod("src", py_Solver_Src, 0, "")
		pySolverType.Dict["snk"] = py.MustNewMethod("snk", py_Solver_Snk, 0, "")
		pySolverType.Dict["num_paths"] = py.MustNewMethod("num_paths", py_Solver_NumPaths, 0, "")
		pySolverType.Dict["path"] = py.MustNewMethod("path", py_Solver_Path, 0, "returns the path having the given index")
		pySolverType.Dict["paths"] = py.MustNewMethod("paths", py_Solver_Paths, 0, "")
		pySolverType.Dict["nodes"] = py.MustNewMethod("nodes", py_Solver_Nodes, 0, "returns every distinct node in ascending order")
		pySolverType.Dict["paths_map"] = py.MustNewMethod("paths_map", py_Solver_PathsMap, 0, "groups path indices by path length")
		pySolverType.Dict["find_variations"] = py.MustNewMethod("find_variations", py_Solver_FindVariations, 0, "find_variations([orbit]) returns the (i, j) pairs of mutual variations")
		pySolverType.Dict["sweep"] = py.MustNewMethod("sweep", py_Solver_Sweep, 0, "sweep(orbits) returns (orbit, pairs) for each orbit")
		pySolverType.Dict["find_detours"] = py.MustNewMethod("find_detours", py_Solver_FindDetours, 0, "find_detours(index[, max_deviations]) returns one-node detours of a path, or None if unsupported")
		pySolverType.Dict["dump"] = py.MustNewMethod("dump", py_Solver_Dump, 0, "dump(dir, prefix[, constraint]) writes the node and route files")
	}

	/////////////////////////////////
	// Session
	{
		pySessionType.Dict["add_bounce"] = py.MustNewMethod("add_bounce", py_Session_AddBounce, 0, "")
		pySessionType.Dict["add_wire"] = py.MustNewMethod("add_wire", py_Session_AddWire, 0, "add_wire(exit, dest)")
		pySessionType.Dict["complete"] = py.MustNewMethod("complete", py_Session_Complete, 0, "")
		pySessionType.Dict["is_complete"] = py.MustNewMethod("is_complete", py_Session_IsComplete, 0, "")
		pySessionType.Dict["roll_back_one"] = py.MustNewMethod("roll_back_one", py_Session_RollBackOne, 0, "")
		pySessionType.Dict["roll_back_path"] = py.MustNewMethod("roll_back_path", py_Session_RollBackSegment, 0, "")
		pySessionType.Dict["roll_back_to_node"] = py.MustNewMethod("roll_back_to_node", py_Session_RollBackTo, 0, "")
		pySessionType.Dict["latest_node"] = py.MustNewMethod("latest_node", py_Session_Latest, 0, "")
		pySessionType.Dict["latest_path"] = py.MustNewMethod("latest_path", py_Session_LatestSegment, 0, "")
		pySessionType.Dict["constraint"] = py.MustNewMethod("constraint", py_Session_Constraint, 0, "")
		pySessionType.Dict["all_nodes"] = py.MustNewMethod("all_nodes", py_Session_AllNodes, 0, "")
		pySessionType.Dict["solver"] = py.MustNewMethod("solver", py_Session_Solver, 0, "solver([max_depth]) solves from the latest node to the sink")
	}

	/////////////////////////////////
	// Catalog
	{
		pyCatalogType.Dict["add"] = py.MustNewMethod("add", py_Catalog_Add, 0, "stores a solver's paths; returns False if already stored")
		pyCatalogType.Dict["load"] = py.MustNewMethod("load", py_Catalog_Load, 0, "load(src, snk, max_depth[, oracle]) rebuilds a solver from stored paths")
		pyCatalogType.Dict["witness"] = py.MustNewMethod("witness", py_Catalog_Witness, 0, "witness(path) records a path as seen; returns False if it already was")
		pyCatalogType.Dict["keys"] = py.MustNewMethod("keys", py_Catalog_Keys, 0, "")
		pyCatalogType.Dict["close"] = py.MustNewMethod("close", py_Catalog_Close, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("load_fabric", py_LoadFabric, 0, "load_fabric(pathname) returns an Oracle over a fabric description file"),
			py.MustNewMethod("parse_fabric", py_ParseFabric, 0, "parse_fabric(text) returns an Oracle over a fabric description"),
			py.MustNewMethod("connect", py_Connect, 0, "connect(endpoint) returns an Oracle served over http or a unix socket"),
			py.MustNewMethod("find_detours", py_FindDetours, 0, "find_detours(oracle, path[, max_deviations])"),
			py.MustNewMethod("classify", py_Classify, 0, "returns the resource class of a node"),
			py.MustNewMethod("tally", py_Tally, 0, "counts nodes per resource class"),
			py.MustNewMethod("dump", py_Dump, 0, "dump(dir, prefix, constraint, paths)"),
			py.MustNewMethod("open_catalog", py_OpenCatalog, 0, "open_catalog(pathname[, flags]); an empty pathname opens an in-memory catalog"),
		}

		globals := py.StringDict{
			"LIB_VERSION":       py.String(LIB_VERSION),
			"DEFAULT_MAX_DEPTH": py.Int(route.DefaultMaxDepth),
			"DEFAULT_ORBIT":     py.Int(route.DefaultOrbit),
			"READ_ONLY":         py.Int(READ_ONLY),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "rapidroute",
				Doc:  "interconnect path analysis gpython module",
			},
			Methods: methods,
			Globals: globals,
			OnContextClosed: func(m *py.Module) {
				wsObj, _ := py.GetAttrString(m, kWorkspaceAttr)
				if wsObj != nil {
					wsObj.(*Workspace).Close()
				}
			},
		})
	}
}
