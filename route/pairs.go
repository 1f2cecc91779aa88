package route

import (
	"github.com/emirpasic/gods/sets/treeset"
)

// PairSet is a set of normalized VariationPairs, iterated in (A, B) order.
type PairSet struct {
	set *treeset.Set
}

func pairComparator(a, b interface{}) int {
	pa := a.(VariationPair)
	pb := b.(VariationPair)
	if pa.A != pb.A {
		return pa.A - pb.A
	}
	return pa.B - pb.B
}

// NewPairSet returns an empty set.
func NewPairSet() *PairSet {
	return &PairSet{
		set: treeset.NewWith(pairComparator),
	}
}

// AllPairs returns a set containing every unordered pair of indices in 0..n-1.
func AllPairs(n int) *PairSet {
	ps := NewPairSet()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			ps.set.Add(VariationPair{A: i, B: j})
		}
	}
	return ps
}

// Add inserts the normalized pair (i, j).  Pairs where i == j are ignored.
func (ps *PairSet) Add(i, j int) {
	if i == j {
		return
	}
	ps.set.Add(NewPair(i, j))
}

// Remove discards the normalized pair (i, j) if present.
func (ps *PairSet) Remove(i, j int) {
	ps.set.Remove(NewPair(i, j))
}

// Contains reports if the normalized pair (i, j) is in the set.
func (ps *PairSet) Contains(i, j int) bool {
	return ps.set.Contains(NewPair(i, j))
}

// Len returns the number of pairs in the set.
func (ps *PairSet) Len() int {
	return ps.set.Size()
}

// Pairs returns the pairs in ascending (A, B) order.
func (ps *PairSet) Pairs() []VariationPair {
	out := make([]VariationPair, 0, ps.set.Size())
	it := ps.set.Iterator()
	for it.Next() {
		out = append(out, it.Value().(VariationPair))
	}
	return out
}

// IsSubsetOf reports if every pair in ps is also in other.
func (ps *PairSet) IsSubsetOf(other *PairSet) bool {
	it := ps.set.Iterator()
	for it.Next() {
		if !other.set.Contains(it.Value()) {
			return false
		}
	}
	return true
}

// Equal reports if ps and other hold the same pairs.
func (ps *PairSet) Equal(other *PairSet) bool {
	return ps.Len() == other.Len() && ps.IsSubsetOf(other)
}
