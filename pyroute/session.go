package pyroute

import (
	"github.com/go-python/gpython/py"
	"github.com/rapidroute/rapidroute-go/lib/session"
	"github.com/rapidroute/rapidroute-go/route"
)

type pySession struct {
	*session.Session
}

func (s pySession) Type() *py.Type {
	return pySessionType
}

func (s pySession) M__str__() (py.Object, error) {
	return py.String(s.AllNodes().String()), nil
}

func (s pySession) M__repr__() (py.Object, error) {
	return s.M__str__()
}

func py_Session_AddBounce(self py.Object, args py.Tuple) (py.Object, error) {
	s := self.(pySession)
	node, err := strArg(args, 0, "node")
	if err != nil {
		return nil, err
	}
	if err = s.AddBounce(route.NodeID(node)); err != nil {
		return nil, pyErr(err)
	}
	return py.None, nil
}

func py_Session_AddWire(self py.Object, args py.Tuple) (py.Object, error) {
	s := self.(pySession)
	exit, err := strArg(args, 0, "exit")
	if err != nil {
		return nil, err
	}
	dest, err := strArg(args, 1, "dest")
	if err != nil {
		return nil, err
	}
	if err = s.AddWire(route.NodeID(exit), route.NodeID(dest)); err != nil {
		return nil, pyErr(err)
	}
	return py.None, nil
}

func py_Session_Complete(self py.Object, args py.Tuple) (py.Object, error) {
	if err := self.(pySession).Complete(); err != nil {
		return nil, pyErr(err)
	}
	return py.None, nil
}

func py_Session_IsComplete(self py.Object, args py.Tuple) (py.Object, error) {
	return py.NewBool(self.(pySession).IsComplete()), nil
}

func py_Session_RollBackOne(self py.Object, args py.Tuple) (py.Object, error) {
	dead, err := self.(pySession).RollBackOne()
	if err != nil {
		return nil, pyErr(err)
	}
	return nodesObj(dead), nil
}

func py_Session_RollBackSegment(self py.Object, args py.Tuple) (py.Object, error) {
	dead, err := self.(pySession).RollBackSegment()
	if err != nil {
		return nil, pyErr(err)
	}
	return nodesObj(dead), nil
}

func py_Session_RollBackTo(self py.Object, args py.Tuple) (py.Object, error) {
	s := self.(pySession)
	node, err := strArg(args, 0, "node")
	if err != nil {
		return nil, err
	}
	dead, err := s.RollBackTo(route.NodeID(node))
	if err != nil {
		return nil, pyErr(err)
	}
	return nodesObj(dead), nil
}

func py_Session_Latest(self py.Object, args py.Tuple) (py.Object, error) {
	return nodeObj(self.(pySession).Latest()), nil
}

func py_Session_LatestSegment(self py.Object, args py.Tuple) (py.Object, error) {
	return pathObj(self.(pySession).LatestSegment()), nil
}

func py_Session_Constraint(self py.Object, args py.Tuple) (py.Object, error) {
	return pathObj(self.(pySession).Constraint()), nil
}

func py_Session_AllNodes(self py.Object, args py.Tuple) (py.Object, error) {
	return pathObj(self.(pySession).AllNodes()), nil
}

func py_Session_Solver(self py.Object, args py.Tuple) (py.Object, error) {
	s := self.(pySession)
	maxDepth, err := intArg(args, 0, route.DefaultMaxDepth)
	if err != nil {
		return nil, err
	}
	sol, err := s.Solver(maxDepth)
	if err != nil {
		return nil, pyErr(err)
	}
	return pySolver{sol}, nil
}
