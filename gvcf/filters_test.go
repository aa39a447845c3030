package gvcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterSet(t *testing.T) {
	var fs FilterSet
	assert.True(t, fs.IsEmpty())
	assert.Equal(t, "PASS", string(fs.appendFilters(nil)))

	fs.Set(LowGQX)
	fs.Set(IndelConflict)
	assert.True(t, fs.Has(LowGQX))
	assert.False(t, fs.Has(HighDepth))
	assert.Equal(t, "IndelConflict;LowGQX", string(fs.appendFilters(nil)))

	var other FilterSet
	assert.False(t, fs.Equal(other))
	other.assign(fs)
	assert.True(t, fs.Equal(other))
	other.Set(HighDepth)
	assert.False(t, fs.Has(HighDepth), "assign must not share storage")

	other.Reset()
	other.Set(LowGQX)
	fs.Intersect(other)
	assert.Equal(t, "LowGQX", string(fs.appendFilters(nil)))

	fs.Intersect(FilterSet{})
	assert.True(t, fs.IsEmpty())
	assert.True(t, fs.Equal(FilterSet{}))
}

func TestFilterLabels(t *testing.T) {
	var fs FilterSet
	fs.Set(HighDepth)
	fs.Set(SiteConflict)
	assert.Equal(t, "SiteConflict;HighDepth", string(fs.appendFilters(nil)))
	assert.Equal(t, "SiteConflict", *SiteConflict.Label())
	assert.Equal(t, "LowGQX", LowGQX.String())
}
