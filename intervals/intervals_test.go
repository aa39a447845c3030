// elgvcf: a streaming gVCF aggregator for variant calling pipelines.
// Copyright (c) 2017-2019 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elgvcf/blob/master/LICENSE.txt>.

package intervals

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/elgvcf/gvcf"
)

func makeLargeIntervalsSlice() (result []Interval) {
	result = make([]Interval, 0x30000)
	result[0].Start = 0
	result[0].End = 3
	for i := 1; i < len(result); i++ {
		if rand.Intn(100) < 20 {
			result[i].Start = result[i-1].End - 1
		} else {
			result[i].Start = result[i-1].End + 1
		}
		result[i].End = result[i].Start + 3
	}
	return result
}

func TestFlatten(t *testing.T) {
	assert.Nil(t, Flatten(nil))
	for _, tc := range []struct{ in, out []Interval }{
		{[]Interval{{2, 3}, {3, 4}}, []Interval{{2, 4}}},
		{[]Interval{{2, 3}, {4, 5}}, []Interval{{2, 3}, {4, 5}}},
		{[]Interval{{2, 6}, {3, 4}, {5, 8}, {10, 11}}, []Interval{{2, 8}, {10, 11}}},
		{[]Interval{{1, 2}, {4, 5}, {5, 7}}, []Interval{{1, 2}, {4, 7}}},
	} {
		assert.Equal(t, tc.out, Flatten(append([]Interval(nil), tc.in...)))
	}
}

func TestParallelFlatten(t *testing.T) {
	intervals1 := makeLargeIntervalsSlice()
	intervals2 := append([]Interval(nil), intervals1...)
	assert.Equal(t, Flatten(intervals1), ParallelFlatten(intervals2))
}

func BenchmarkParallelFlatten(b *testing.B) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		intervals := makeLargeIntervalsSlice()
		b.StartTimer()
		_ = ParallelFlatten(intervals)
	}
}

func TestNormalize(t *testing.T) {
	intervals := map[string][]Interval{"chr1": {{6, 8}, {2, 4}, {3, 5}}}
	Normalize(intervals)
	assert.Equal(t, []Interval{{2, 5}, {6, 8}}, intervals["chr1"])
}

func TestIntersect(t *testing.T) {
	ivals := []Interval{{2, 4}, {6, 8}}
	assert.Empty(t, Intersect(nil, 2, 3))
	assert.Empty(t, Intersect(ivals, 4, 6))
	assert.Equal(t, []Interval{{2, 3}}, Intersect(ivals, 1, 3))
	assert.Equal(t, []Interval{{2, 4}, {6, 7}}, Intersect(ivals, 2, 7))
	assert.Equal(t, []Interval{{6, 8}}, Intersect(ivals, 5, 9))
	assert.Equal(t, []Interval{{2, 4}, {6, 8}}, Intersect(ivals, 0, 100))
	assert.Equal(t, []Interval{{2, 4}}, ivals[:1], "Intersect must not modify its argument")

	assert.Empty(t, Intersect([]Interval{{5, 5}}, 0, 10))
	assert.Equal(t, []Interval{{6, 8}}, Intersect([]Interval{{3, 3}, {6, 8}}, 0, 10))
}

func TestParseRegion(t *testing.T) {
	chrom, interval, err := ParseRegion("chr1:1,000-2,000")
	require.NoError(t, err)
	assert.Equal(t, "chr1", chrom)
	assert.Equal(t, Interval{999, 2000}, interval)
	assert.Equal(t, gvcf.Range{Begin: 999, End: 1999}, interval.Range())

	chrom, interval, err = ParseRegion("HLA-A*01:01:01:01:100")
	require.NoError(t, err)
	assert.Equal(t, "HLA-A*01:01:01:01", chrom)
	assert.Equal(t, Interval{99, 100}, interval)

	chrom, interval, err = ParseRegion("chrM")
	require.NoError(t, err)
	assert.Equal(t, "chrM", chrom)
	assert.Equal(t, Whole, interval)

	for _, invalid := range []string{"", ":1-2", "chr1:0-5", "chr1:5-4", "chr1:a-b"} {
		_, _, err := ParseRegion(invalid)
		assert.Error(t, err, invalid)
	}
}

func TestFromBedFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "targets.bed")
	require.NoError(t, os.WriteFile(filename, []byte("track name=test\n# comment\nchr1\t10\t20\tgene1\nchr2\t0\t5\nchr1\t5\t12\nchr1\t5\t5\nchr3\t7\t7\n"), 0o644))
	intervals, err := FromBedFile(filename)
	require.NoError(t, err)
	assert.Equal(t, []Interval{{10, 20}, {5, 12}}, intervals["chr1"])
	assert.Equal(t, []Interval{{0, 5}}, intervals["chr2"])
	assert.NotContains(t, intervals, "chr3")

	bad := filepath.Join(t.TempDir(), "bad.bed")
	require.NoError(t, os.WriteFile(bad, []byte("chr1\t10\n"), 0o644))
	_, err = FromBedFile(bad)
	assert.Error(t, err)
}
