package route

import (
	"strings"

	"github.com/pkg/errors"
)

// Src returns the first node of the path.
func (p Path) Src() NodeID {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

// Snk returns the last node of the path.
func (p Path) Snk() NodeID {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// IndexOf returns the position of node in p or -1.
func (p Path) IndexOf(node NodeID) int {
	for i, n := range p {
		if n == node {
			return i
		}
	}
	return -1
}

func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of p that shares no storage with it.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// InsertAt returns a new path with node spliced in at position i.
func (p Path) InsertAt(i int, node NodeID) Path {
	out := make(Path, 0, len(p)+1)
	out = append(out, p[:i]...)
	out = append(out, node)
	out = append(out, p[i:]...)
	return out
}

// IsSimple reports if no node appears more than once in p.
func (p Path) IsSimple() bool {
	seen := make(map[NodeID]struct{}, len(p))
	for _, n := range p {
		if _, dupe := seen[n]; dupe {
			return false
		}
		seen[n] = struct{}{}
	}
	return true
}

// String renders p as space separated node names, the same form ParsePath reads.
func (p Path) String() string {
	b := strings.Builder{}
	for i, n := range p {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(string(n))
	}
	return b.String()
}

// ParsePath reads a whitespace separated list of node names.
func ParsePath(s string) (Path, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return nil, errors.Wrapf(ErrInvalidInput, "path %q has fewer than 2 nodes", s)
	}
	p := make(Path, len(fields))
	for i, f := range fields {
		p[i] = NodeID(f)
	}
	return p, nil
}

// TileName returns the tile portion of a "TILE/WIRE" node name, or "" if there is none.
func (n NodeID) TileName() string {
	if i := strings.IndexByte(string(n), '/'); i >= 0 {
		return string(n[:i])
	}
	return ""
}

// WireName returns the wire portion of a "TILE/WIRE" node name, or the whole name if there is no tile.
func (n NodeID) WireName() string {
	if i := strings.IndexByte(string(n), '/'); i >= 0 {
		return string(n[i+1:])
	}
	return string(n)
}
