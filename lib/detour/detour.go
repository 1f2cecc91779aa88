// Package detour finds single-node alternate hops along an already realized path.
package detour

import (
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/rapidroute/rapidroute-go/route"
)

// Find returns, for every consecutive pair (node, next) in path, a copy of path with det spliced in between
// for each det in node's fan-out (other than next) whose own fan-out reaches next.
//
// Only maxDeviations == 1 is supported; larger values return route.ErrUnsupportedDeviationDepth without
// querying the oracle.  Every fan-out is queried afresh and oracle failures are passed through.
func Find(o route.FanOuter, path route.Path, maxDeviations int) ([]route.Path, error) {
	if maxDeviations > route.MaxSupportedDeviations {
		return nil, errors.Wrapf(route.ErrUnsupportedDeviationDepth, "max_deviations=%d", maxDeviations)
	}
	if maxDeviations < 1 {
		return nil, errors.Wrapf(route.ErrInvalidInput, "max_deviations=%d", maxDeviations)
	}

	var detours []route.Path
	for i := 0; i+1 < len(path); i++ {
		node, next := path[i], path[i+1]

		fanOut, err := o.FanOut(node)
		if err != nil {
			return nil, errors.Wrapf(err, "fan-out of %v", node)
		}
		for _, det := range fanOut {
			if det == next {
				continue
			}
			detFanOut, err := o.FanOut(det)
			if err != nil {
				return nil, errors.Wrapf(err, "fan-out of %v", det)
			}
			if contains(detFanOut, next) {
				detours = append(detours, path.InsertAt(i+1, det))
			}
		}
	}

	klog.V(2).Infof("detour: %d detours along %d-node path", len(detours), len(path))
	return detours, nil
}

func contains(nodes []route.NodeID, n route.NodeID) bool {
	for _, x := range nodes {
		if x == n {
			return true
		}
	}
	return false
}
