package pyroute

import (
	"github.com/go-python/gpython/py"
	"github.com/rapidroute/rapidroute-go/lib/report"
	"github.com/rapidroute/rapidroute-go/route"
)

func py_Classify(module py.Object, args py.Tuple) (py.Object, error) {
	node, err := strArg(args, 0, "node")
	if err != nil {
		return nil, err
	}
	return py.String(report.Classify(route.NodeID(node)).String()), nil
}

// py_Tally returns a dict of nonzero category counts.  Unclassified nodes are listed under "unclassified".
func py_Tally(module py.Object, args py.Tuple) (py.Object, error) {
	if len(args) < 1 {
		return nil, py.ExceptionNewf(py.TypeError, "tally(nodes)")
	}
	nodes, err := loadNodes(args[0])
	if err != nil {
		return nil, err
	}

	sum := report.Tally(nodes)
	out := py.NewStringDict()
	for c := report.CategoryClock; int(c) < report.NumCategories; c++ {
		if n := sum.Counts[c]; n > 0 {
			out[c.String()] = py.Int(n)
		}
	}
	if len(sum.Unclassified) > 0 {
		out[report.CategoryUnclassified.String()] = nodesObj(sum.Unclassified)
	}
	return out, nil
}

func py_Dump(module py.Object, args py.Tuple) (py.Object, error) {
	if len(args) != 4 {
		return nil, py.ExceptionNewf(py.TypeError, "dump(dir, prefix, constraint, paths)")
	}
	dir, err := strArg(args, 0, "dir")
	if err != nil {
		return nil, err
	}
	prefix, err := strArg(args, 1, "prefix")
	if err != nil {
		return nil, err
	}
	constraint, err := loadNodes(args[2])
	if err != nil {
		return nil, err
	}
	paths, err := loadPaths(args[3])
	if err != nil {
		return nil, err
	}
	if err = report.Dump(dir, prefix, constraint, paths); err != nil {
		return nil, pyErr(err)
	}
	return py.None, nil
}
