package gvcf

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/exascience/elgvcf/utils"
)

// Filter is a VCF FILTER flag that the aggregator can set.
type Filter uint

// The supported filters.
const (
	IndelConflict Filter = iota
	SiteConflict
	LowGQX
	HighDepth
	NFilter
)

// PASS is printed for records without filters.
var PASS = utils.Intern("PASS")

var filterLabels = [NFilter]utils.Symbol{
	utils.Intern("IndelConflict"),
	utils.Intern("SiteConflict"),
	utils.Intern("LowGQX"),
	utils.Intern("HighDepth"),
}

// Label returns the FILTER label of f.
func (f Filter) Label() utils.Symbol {
	return filterLabels[f]
}

func (f Filter) String() string {
	return *filterLabels[f]
}

// FilterSet is a set of filters. The zero FilterSet is valid and
// empty; storage is only allocated once the first filter is set.
//
// Copying a FilterSet shares its storage.
type FilterSet struct {
	bits *bitset.BitSet
}

// Set adds f to the set.
func (fs *FilterSet) Set(f Filter) {
	if fs.bits == nil {
		fs.bits = bitset.New(uint(NFilter))
	}
	fs.bits.Set(uint(f))
}

// Has tells whether f is in the set.
func (fs FilterSet) Has(f Filter) bool {
	return fs.bits != nil && fs.bits.Test(uint(f))
}

// IsEmpty tells whether no filter is set.
func (fs FilterSet) IsEmpty() bool {
	return fs.bits == nil || fs.bits.None()
}

// Equal tells whether both sets contain the same filters.
func (fs FilterSet) Equal(other FilterSet) bool {
	if fs.IsEmpty() || other.IsEmpty() {
		return fs.IsEmpty() == other.IsEmpty()
	}
	return fs.bits.Equal(other.bits)
}

// Intersect removes all filters from fs that are not in other.
func (fs *FilterSet) Intersect(other FilterSet) {
	if fs.bits == nil {
		return
	}
	if other.bits == nil {
		fs.bits.ClearAll()
		return
	}
	fs.bits.InPlaceIntersection(other.bits)
}

// Reset removes all filters, keeping the storage.
func (fs *FilterSet) Reset() {
	if fs.bits != nil {
		fs.bits.ClearAll()
	}
}

// assign makes fs contain the same filters as src without sharing
// storage with it.
func (fs *FilterSet) assign(src FilterSet) {
	switch {
	case src.bits == nil:
		fs.Reset()
	case fs.bits == nil:
		fs.bits = src.bits.Clone()
	default:
		src.bits.Copy(fs.bits)
	}
}

// appendFilters appends the FILTER column for fs.
func (fs FilterSet) appendFilters(out []byte) []byte {
	if fs.IsEmpty() {
		return append(out, (*PASS)...)
	}
	first := true
	for i, ok := fs.bits.NextSet(0); ok; i, ok = fs.bits.NextSet(i + 1) {
		if !first {
			out = append(out, ';')
		}
		out = append(out, (*filterLabels[i])...)
		first = false
	}
	return out
}
