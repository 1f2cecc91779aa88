package route

const (

	// DefaultMaxDepth is the hop bound used when a caller does not specify one.
	DefaultMaxDepth = 8

	// DefaultOrbit is the orbit bound used when a caller does not specify one.
	DefaultOrbit = 1

	// MaxSupportedDeviations is the largest max_deviations value FindDetours will attempt.
	MaxSupportedDeviations = 1
)

// NodeID names a physical routing resource (a wire or pin) in the target fabric, typically "TILE/WIRE".
type NodeID string

// Path is an ordered simple sequence of nodes from a source resource to a sink resource.
// Paths returned by an Oracle are treated as immutable.
type Path []NodeID

// FanOuter reports the resources immediately reachable from a given node.
type FanOuter interface {

	// FanOut returns the immediate forward-reachable resources from node.
	FanOut(node NodeID) ([]NodeID, error)
}

// Oracle is the external routing-resource query service.
//
// Every call is a blocking, read-only query against the engine; nothing is cached on this side.
type Oracle interface {
	FanOuter

	// EnumeratePaths returns all simple paths from src to snk having at most maxDepth hops.
	// The set of paths is deterministic for a fixed resource-graph snapshot; the order is not.
	EnumeratePaths(src, snk NodeID, maxDepth int) ([]Path, error)

	// ResetTo discards any provisional routing state back to the given node.
	ResetTo(node NodeID) error
}

// VariationPair is a normalized pair of path indices where A < B.
type VariationPair struct {
	A int
	B int
}

// NewPair returns the normalized (min, max) pair for path indices i and j.
func NewPair(i, j int) VariationPair {
	if i > j {
		i, j = j, i
	}
	return VariationPair{A: i, B: j}
}
