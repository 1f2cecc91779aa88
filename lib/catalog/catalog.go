// Package catalog persists enumerated path sets so a solver can be rebuilt without consulting the oracle.
package catalog

import (
	"bytes"
	"encoding/binary"
	"runtime"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/rapidroute/rapidroute-go/route"
)

/***

Catalog database format:

	gCatalogStateKey => catalogVersion

	kPathSetPrefix, src, NUL, snk, NUL, maxDepth (uint16 BE)
		=> newline separated paths, each in route.Path text form

	kSeenPrefix, path text => (empty)

***/

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
	catalogVersion   = []byte("rapidroute.catalog.1")
)

const (
	kPathSetPrefix = byte(0x10)
	kSeenPrefix    = byte(0x11)
)

// Opts specifies how a Catalog is opened.
type Opts struct {
	DbPathName string // if empty, the catalog lives in memory
	ReadOnly   bool
}

// Key identifies one enumeration query.
type Key struct {
	Src      route.NodeID
	Snk      route.NodeID
	MaxDepth int
}

// Catalog is a badger db of path sets keyed by (src, snk, max depth).
type Catalog struct {
	mu       sync.Mutex
	db       *badger.DB
	readOnly bool
}

func Open(opts Opts) (*Catalog, error) {
	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(route.ErrInvalidInput, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening catalog %q", opts.DbPathName)
	}
	cat := &Catalog{
		db:       db,
		readOnly: opts.ReadOnly,
	}

	if err = cat.checkState(); err != nil {
		cat.Close()
		return nil, err
	}
	klog.V(2).Infof("catalog: opened %q", opts.DbPathName)
	return cat, nil
}

func (cat *Catalog) checkState() error {
	var vers []byte
	err := cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		vers, err = item.ValueCopy(nil)
		return err
	})

	if err == badger.ErrKeyNotFound {
		if cat.readOnly {
			return errors.New("catalog has no state and is read-only")
		}
		return cat.db.Update(func(txn *badger.Txn) error {
			return txn.Set(gCatalogStateKey, catalogVersion)
		})
	}
	if err != nil {
		return err
	}
	if !bytes.Equal(vers, catalogVersion) {
		return errors.Errorf("catalog version %q is incompatible", vers)
	}
	return nil
}

// Close releases the catalog.  Subsequent calls return route.ErrCatalogClosed.
func (cat *Catalog) Close() error {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	if cat.db == nil {
		return nil
	}
	err := cat.db.Close()
	cat.db = nil
	return err
}

func (cat *Catalog) IsReadOnly() bool {
	return cat.readOnly
}

func (cat *Catalog) openDB() (*badger.DB, error) {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	if cat.db == nil {
		return nil, route.ErrCatalogClosed
	}
	return cat.db, nil
}

func formPathSetKey(key Key) ([]byte, error) {
	if key.MaxDepth < 1 || key.MaxDepth > 0xFFFF {
		return nil, errors.Wrapf(route.ErrInvalidInput, "max depth %d", key.MaxDepth)
	}
	if strings.IndexByte(string(key.Src), 0) >= 0 || strings.IndexByte(string(key.Snk), 0) >= 0 {
		return nil, errors.Wrap(route.ErrInvalidInput, "node name contains NUL")
	}

	buf := make([]byte, 0, 4+len(key.Src)+len(key.Snk)+2)
	buf = append(buf, kPathSetPrefix)
	buf = append(buf, key.Src...)
	buf = append(buf, 0)
	buf = append(buf, key.Snk...)
	buf = append(buf, 0)
	buf = binary.BigEndian.AppendUint16(buf, uint16(key.MaxDepth))
	return buf, nil
}

func parsePathSetKey(raw []byte) (Key, bool) {
	if len(raw) < 5 || raw[0] != kPathSetPrefix {
		return Key{}, false
	}
	body := raw[1 : len(raw)-2]
	parts := bytes.Split(body, []byte{0})
	if len(parts) != 3 || len(parts[2]) != 0 {
		return Key{}, false
	}
	return Key{
		Src:      route.NodeID(parts[0]),
		Snk:      route.NodeID(parts[1]),
		MaxDepth: int(binary.BigEndian.Uint16(raw[len(raw)-2:])),
	}, true
}

func encodePaths(paths []route.Path) []byte {
	var buf bytes.Buffer
	for _, p := range paths {
		buf.WriteString(p.String())
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func decodePaths(val []byte) ([]route.Path, error) {
	var paths []route.Path
	for _, line := range strings.Split(string(val), "\n") {
		if line == "" {
			continue
		}
		p, err := route.ParsePath(line)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// TryAddPaths stores the paths enumerated for key.
//
// If key is already in this catalog, this call has no effect and false is returned.
func (cat *Catalog) TryAddPaths(key Key, paths []route.Path) (bool, error) {
	db, err := cat.openDB()
	if err != nil {
		return false, err
	}
	if cat.readOnly {
		return false, errors.Wrap(route.ErrInvalidInput, "catalog is read-only")
	}
	dbKey, err := formPathSetKey(key)
	if err != nil {
		return false, err
	}
	for _, p := range paths {
		if p.Src() != key.Src || p.Snk() != key.Snk {
			return false, errors.Wrapf(route.ErrInvalidInput, "path %v does not run %v -> %v", p, key.Src, key.Snk)
		}
	}

	added := false
	err = db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(dbKey)
		if err == nil {
			return nil // no-op since the key is already in the db
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		added = true
		return txn.Set(dbKey, encodePaths(paths))
	})
	if err != nil {
		return false, err
	}
	if added {
		klog.V(2).Infof("catalog: stored %d paths for %v -> %v (depth %d)", len(paths), key.Src, key.Snk, key.MaxDepth)
	}
	return added, nil
}

// Get returns the paths stored for key, or route.ErrNoPathFound if there are none.
func (cat *Catalog) Get(key Key) ([]route.Path, error) {
	db, err := cat.openDB()
	if err != nil {
		return nil, err
	}
	dbKey, err := formPathSetKey(key)
	if err != nil {
		return nil, err
	}

	var val []byte
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dbKey)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, errors.Wrapf(route.ErrNoPathFound, "catalog has no entry for %v -> %v (depth %d)", key.Src, key.Snk, key.MaxDepth)
	}
	if err != nil {
		return nil, err
	}
	return decodePaths(val)
}

// Keys returns every stored key in db order (by src, then snk, then depth).
func (cat *Catalog) Keys() ([]Key, error) {
	db, err := cat.openDB()
	if err != nil {
		return nil, err
	}

	var keys []Key
	err = db.View(func(txn *badger.Txn) error {
		prefix := []byte{kPathSetPrefix}
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: false,
			Prefix:         prefix,
		})
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if key, ok := parsePathSetKey(it.Item().Key()); ok {
				keys = append(keys, key)
			}
		}
		return nil
	})
	return keys, err
}

// TryAddPath records that path has been witnessed.
//
// If path was already witnessed, this call has no effect and false is returned.
func (cat *Catalog) TryAddPath(path route.Path) (bool, error) {
	db, err := cat.openDB()
	if err != nil {
		return false, err
	}
	if cat.readOnly {
		return false, errors.Wrap(route.ErrInvalidInput, "catalog is read-only")
	}

	key := append([]byte{kSeenPrefix}, path.String()...)
	added := false
	err = db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		added = true
		return txn.Set(key, nil)
	})
	return added, err
}
