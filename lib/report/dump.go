package report

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/rapidroute/rapidroute-go/route"
)

const (
	NodesSuffix  = "_nodes.txt"
	RoutesSuffix = "_routes.txt"
)

// DistinctNodes returns every node in the constraint and paths, in ascending order.
func DistinctNodes(constraint route.Path, paths []route.Path) []route.NodeID {
	set := treeset.NewWithStringComparator()
	for _, n := range constraint {
		set.Add(string(n))
	}
	for _, p := range paths {
		for _, n := range p {
			set.Add(string(n))
		}
	}
	out := make([]route.NodeID, 0, set.Size())
	for _, v := range set.Values() {
		out = append(out, route.NodeID(v.(string)))
	}
	return out
}

// StubRoute prefixes path with the constraint.
// If path starts at the constraint's last node, that node is not repeated.
func StubRoute(constraint, path route.Path) route.Path {
	out := make(route.Path, 0, len(constraint)+len(path))
	out = append(out, constraint...)
	if len(constraint) > 0 && len(path) > 0 && path[0] == constraint[len(constraint)-1] {
		path = path[1:]
	}
	return append(out, path...)
}

// WriteNodes writes each distinct node on its own line.
func WriteNodes(w io.Writer, constraint route.Path, paths []route.Path) error {
	bw := bufio.NewWriter(w)
	for _, n := range DistinctNodes(constraint, paths) {
		bw.WriteString(string(n))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteRoutes writes one stub-prefixed route per line, nodes separated by a space.
func WriteRoutes(w io.Writer, constraint route.Path, paths []route.Path) error {
	bw := bufio.NewWriter(w)
	for _, p := range paths {
		bw.WriteString(StubRoute(constraint, p).String())
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Dump writes <prefix>_nodes.txt and <prefix>_routes.txt into dir, creating dir as needed.
func Dump(dir, prefix string, constraint route.Path, paths []route.Path) error {
	if prefix == "" {
		return errors.Wrap(route.ErrInvalidInput, "empty report prefix")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	writeFile := func(suffix string, writeTo func(io.Writer, route.Path, []route.Path) error) error {
		pathname := filepath.Join(dir, prefix+suffix)
		file, err := os.Create(pathname)
		if err != nil {
			return err
		}
		err = writeTo(file, constraint, paths)
		if cerr := file.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return errors.Wrapf(err, "writing %q", pathname)
		}
		klog.V(2).Infof("report: wrote %q", pathname)
		return nil
	}

	if err := writeFile(NodesSuffix, WriteNodes); err != nil {
		return err
	}
	return writeFile(RoutesSuffix, WriteRoutes)
}
