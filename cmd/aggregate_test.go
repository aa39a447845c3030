// elgvcf: a streaming gVCF aggregator for variant calling pipelines.
// Copyright (c) 2017-2020 imec vzw.

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

package cmd

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/elgvcf/calls"
	"github.com/exascience/elgvcf/fasta"
	"github.com/exascience/elgvcf/gvcf"
	"github.com/exascience/elgvcf/intervals"
)

const testFasta = `>chr1
ACGTACGTNN
>chr2
TTTT
`

// calls for chr2 come first to check that ranges follow reference order
const testCalls = `S	chr2	1	T	10	0	0,0,0,10	0	TT	60	0	TT	60
S	chr1	3	G	10	0	0,0,10,0	0	GG	60	0	GG	55
`

func openTestInputs(t *testing.T) (*fasta.Reference, *calls.Calls) {
	t.Helper()
	return openTestInputsWithCalls(t, testCalls)
}

func openTestInputsWithCalls(t *testing.T, callData string) (*fasta.Reference, *calls.Calls) {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "test.fa")
	require.NoError(t, os.WriteFile(filename, []byte(testFasta), 0o644))
	ref, err := fasta.Open(filename)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ref.Close() })
	allCalls, err := calls.Parse(bufio.NewReader(strings.NewReader(callData)), "test.calls")
	require.NoError(t, err)
	return ref, allCalls
}

type rangeSummary struct {
	chrom string
	r     gvcf.Range
}

func summarize(ranges []*reportRange) (result []rangeSummary) {
	for _, rr := range ranges {
		result = append(result, rangeSummary{rr.segment.Name, rr.r})
	}
	return result
}

func TestBuildReportRangesWholeContigs(t *testing.T) {
	ref, allCalls := openTestInputs(t)
	ranges, err := buildReportRanges(ref, allCalls, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []rangeSummary{
		{"chr1", gvcf.Range{Begin: 0, End: 9}},
		{"chr2", gvcf.Range{Begin: 0, End: 3}},
	}, summarize(ranges))
	assert.NotNil(t, ranges[0].contig)
}

func TestBuildReportRangesRegions(t *testing.T) {
	ref, allCalls := openTestInputs(t)
	ranges, err := buildReportRanges(ref, allCalls, []string{"chr2:2-3", "chr1:3-4", "chr1:4-20"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []rangeSummary{
		{"chr1", gvcf.Range{Begin: 2, End: 9}},
		{"chr2", gvcf.Range{Begin: 1, End: 2}},
	}, summarize(ranges))

	_, err = buildReportRanges(ref, allCalls, []string{"chrX:1-10"}, nil)
	assert.Error(t, err)
	_, err = buildReportRanges(ref, allCalls, []string{"chr1:5-2"}, nil)
	assert.Error(t, err)
}

func TestBuildReportRangesTargets(t *testing.T) {
	ref, allCalls := openTestInputs(t)
	targets := map[string][]intervals.Interval{"chr1": {{Start: 6, End: 8}, {Start: 2, End: 4}}}
	intervals.Normalize(targets)
	ranges, err := buildReportRanges(ref, allCalls, nil, targets)
	require.NoError(t, err)
	assert.Equal(t, []rangeSummary{
		{"chr1", gvcf.Range{Begin: 2, End: 3}},
		{"chr1", gvcf.Range{Begin: 6, End: 7}},
	}, summarize(ranges))
}

func TestBuildReportRangesSkipsEmptyTargets(t *testing.T) {
	ref, allCalls := openTestInputs(t)
	bed := filepath.Join(t.TempDir(), "targets.bed")
	require.NoError(t, os.WriteFile(bed, []byte("chr1\t5\t5\nchr1\t2\t4\nchr2\t1\t1\n"), 0o644))
	targets, err := intervals.FromBedFile(bed)
	require.NoError(t, err)
	intervals.Normalize(targets)
	ranges, err := buildReportRanges(ref, allCalls, nil, targets)
	require.NoError(t, err)
	assert.Equal(t, []rangeSummary{{"chr1", gvcf.Range{Begin: 2, End: 3}}}, summarize(ranges))

	targets = map[string][]intervals.Interval{"chr1": {{Start: 5, End: 5}}}
	ranges, err = buildReportRanges(ref, allCalls, nil, targets)
	require.NoError(t, err)
	assert.Empty(t, ranges)
}

func TestBuildReportRangesCallsBeyondReference(t *testing.T) {
	ref, allCalls := openTestInputsWithCalls(t, "S\tchr2\t6\tT\t10\t0\t0,0,0,10\t0\tTT\t60\t0\tTT\t60\n")
	_, err := buildReportRanges(ref, allCalls, nil, nil)
	assert.Error(t, err)

	_, err = buildReportRanges(ref, allCalls, []string{"chr1"}, nil)
	assert.NoError(t, err)
}

func TestAggregateRangeWithoutCalls(t *testing.T) {
	ref, _ := openTestInputs(t)
	segment, ok := ref.Segment("chr2")
	require.True(t, ok)
	rr := &reportRange{segment: segment, r: gvcf.Range{Begin: 0, End: 3}}
	opt := gvcf.DefaultOptions()
	require.NoError(t, rr.aggregate(&opt))
	assert.Equal(t, "chr2\t1\t.\tT\t.\t.\tLowGQX\tEND=4;BLOCKAVG_min30p3a\tGT:GQX\t./.;.\n", rr.out.String())
}

func TestRegionList(t *testing.T) {
	var regions regionList
	require.NoError(t, regions.Set("chr1"))
	require.NoError(t, regions.Set("chr2:1-5"))
	assert.Equal(t, "chr1,chr2:1-5", regions.String())
}
