package route

import "errors"

// Errors
var (
	ErrInvalidInput              = errors.New("invalid input")
	ErrNoPathFound               = errors.New("no path found")
	ErrUnsupportedDeviationDepth = errors.New("unsupported deviation depth")
	ErrUnclassifiedNode          = errors.New("unclassified node")
	ErrNodeNotFound              = errors.New("node not found")
	ErrBadFabric                 = errors.New("bad fabric description")
	ErrCatalogClosed             = errors.New("catalog is closed")
	ErrEmptyRoute                = errors.New("route has no nodes to roll back")
)
