package pyroute

import (
	"github.com/go-python/gpython/py"
	"github.com/rapidroute/rapidroute-go/lib/catalog"
	"github.com/rapidroute/rapidroute-go/lib/solver"
	"github.com/rapidroute/rapidroute-go/route"
)

type pyCatalog struct {
	*catalog.Catalog
}

func (cat pyCatalog) Type() *py.Type {
	return pyCatalogType
}

func py_OpenCatalog(module py.Object, args py.Tuple) (py.Object, error) {
	pathname, err := strArg(args, 0, "pathname")
	if err != nil {
		return nil, err
	}
	flags, err := intArg(args, 1, 0)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Open(catalog.Opts{
		DbPathName: pathname,
		ReadOnly:   (flags & READ_ONLY) != 0,
	})
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	getWorkspace(module).track(cat)
	return pyCatalog{cat}, nil
}

func py_Catalog_Add(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if cat.IsReadOnly() {
		return nil, py.ExceptionNewf(py.PermissionError, "catalog is in read-only mode")
	}
	if len(args) < 1 {
		return nil, py.ExceptionNewf(py.TypeError, "add(solver)")
	}
	sol, err := getSolver(args[0])
	if err != nil {
		return nil, err
	}
	if sol.MaxDepth() < 1 {
		return nil, py.ExceptionNewf(py.ValueError, "solver was not built by enumeration")
	}

	key := catalog.Key{Src: sol.Src(), Snk: sol.Snk(), MaxDepth: sol.MaxDepth()}
	added, err := cat.TryAddPaths(key, sol.Paths())
	if err != nil {
		return nil, pyErr(err)
	}
	return py.NewBool(added), nil
}

func py_Catalog_Load(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
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

	key := catalog.Key{Src: route.NodeID(src), Snk: route.NodeID(snk), MaxDepth: maxDepth}
	paths, err := cat.Get(key)
	if err != nil {
		return nil, pyErr(err)
	}
	sol, err := solver.FromPaths(key.Src, key.Snk, paths)
	if err != nil {
		return nil, pyErr(err)
	}
	if len(args) > 3 {
		o, err := getOracle(args[3])
		if err != nil {
			return nil, err
		}
		sol.WithOracle(o)
	}
	return pySolver{sol}, nil
}

// py_Catalog_Keys returns ((src, snk, max_depth), ...).
// py_Catalog_Witness records a path as seen, returning False if it already was.
func py_Catalog_Witness(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if cat.IsReadOnly() {
		return nil, py.ExceptionNewf(py.PermissionError, "catalog is in read-only mode")
	}
	if len(args) < 1 {
		return nil, py.ExceptionNewf(py.TypeError, "witness(path)")
	}
	path, err := loadPath(args[0])
	if err != nil {
		return nil, err
	}
	added, err := cat.TryAddPath(path)
	if err != nil {
		return nil, pyErr(err)
	}
	return py.NewBool(added), nil
}

func py_Catalog_Keys(self py.Object, args py.Tuple) (py.Object, error) {
	keys, err := self.(pyCatalog).Keys()
	if err != nil {
		return nil, pyErr(err)
	}
	out := make(py.Tuple, len(keys))
	for i, key := range keys {
		out[i] = py.Tuple{py.String(key.Src), py.String(key.Snk), py.Int(key.MaxDepth)}
	}
	return out, nil
}

func py_Catalog_Close(self py.Object, args py.Tuple) (py.Object, error) {
	if err := self.(pyCatalog).Close(); err != nil {
		return nil, pyErr(err)
	}
	return py.None, nil
}
