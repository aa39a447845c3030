package gvcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReferenceLength(t *testing.T) {
	path := Path{{3, Match}, {2, Delete}, {1, Insert}, {4, Match}}
	assert.Equal(t, "3M2D1I4M", path.String())
	assert.Equal(t, int32(9), path.referenceLength())
	assert.Equal(t, int32(0), Path{}.referenceLength())
}

func TestAppendHapPath(t *testing.T) {
	assert.Equal(t, "1M2D", appendHapPath(nil, IndelKey{Pos: 3, DeleteLength: 2}, 1, 0).String())
	assert.Equal(t, "1M1I", appendHapPath(nil, IndelKey{Pos: 3, InsertLength: 1}, 1, 0).String())
	assert.Equal(t, "3M1D2I1M", appendHapPath(nil, IndelKey{Pos: 3, InsertLength: 2, DeleteLength: 1}, 3, 1).String())
}

func TestAddPathToPloidy(t *testing.T) {
	ploidy := make([]int, 4)
	addPathToPloidy(Path{{1, Match}, {2, Delete}, {2, Match}}, ploidy)
	assert.Equal(t, []int{0, 0, 1, 1}, ploidy)
	addPathToPloidy(Path{{5, Match}}, ploidy)
	assert.Equal(t, []int{1, 1, 2, 2}, ploidy)

	// insertions do not consume reference positions
	ploidy = make([]int, 2)
	addPathToPloidy(Path{{3, Match}, {1, Insert}}, ploidy)
	assert.Equal(t, []int{1, 1}, ploidy)

	assert.Panics(t, func() { addPathToPloidy(Path{{4, Match}}, ploidy) })
}
