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
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/exascience/pargo/parallel"
	psort "github.com/exascience/pargo/sort"

	"github.com/exascience/elgvcf/gvcf"
	"github.com/exascience/elgvcf/internal"
	"github.com/exascience/elgvcf/utils"
)

// Interval is a half-open range [Start, End) of 0-based positions, as
// in BED files.
type Interval struct {
	Start, End int32
}

// Range returns the interval as an inclusive gvcf.Range.
func (interval Interval) Range() gvcf.Range {
	return gvcf.Range{Begin: interval.Start, End: interval.End - 1}
}

// SortByStart sorts a slice of Interval by Start position.
func SortByStart(intervals []Interval) {
	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].Start < intervals[j].Start
	})
}

type stableIntervalSorter []Interval

func (s stableIntervalSorter) SequentialSort(i, j int) {
	SortByStart(s[i:j])
}

func (s stableIntervalSorter) NewTemp() psort.StableSorter {
	return stableIntervalSorter(make([]Interval, len(s)))
}

func (s stableIntervalSorter) Len() int {
	return len(s)
}

func (s stableIntervalSorter) Less(i, j int) bool {
	return s[i].Start < s[j].Start
}

func (s stableIntervalSorter) Assign(source psort.StableSorter) func(i, j, len int) {
	dst, src := s, source.(stableIntervalSorter)
	return func(i, j, len int) {
		copy(dst[i:i+len], src[j:j+len])
	}
}

// ParallelSortByStart sorts a slice of Interval by Start position using
// a parallel stable sort.
func ParallelSortByStart(intervals []Interval) {
	psort.StableSort(stableIntervalSorter(intervals))
}

// Extend makes interval1 larger if it overlaps with or touches
// interval2. Returns false and leaves interval1 unchanged otherwise.
// interval2.Start >= interval1.Start must hold.
func (interval1 *Interval) Extend(interval2 Interval) bool {
	if interval2.Start > interval1.End {
		return false
	}
	if interval2.End > interval1.End {
		interval1.End = interval2.End
	}
	return true
}

// Flatten merges overlapping and adjacent intervals. intervals must
// be sorted by Start. The result is sorted by Start, contains no two
// intervals that overlap, and shares memory with the argument.
func Flatten(intervals []Interval) []Interval {
	for i, n := 0, len(intervals)-1; i < n; i++ {
		if intervals[i].Extend(intervals[i+1]) {
			n++
			for j := i + 1; j < n; j++ {
				if !intervals[i].Extend(intervals[j]) {
					i++
					intervals[i] = intervals[j]
				}
			}
			return intervals[:i+1]
		}
	}
	return intervals
}

const parallelFlattenGrainSize = 0x1000

// ParallelFlatten is Flatten with a parallel divide-and-conquer
// algorithm for large slices.
func ParallelFlatten(intervals []Interval) []Interval {
	if len(intervals) < parallelFlattenGrainSize {
		return Flatten(intervals)
	}
	half := len(intervals) >> 1
	left, right := intervals[:half], intervals[half:]
	parallel.Do(
		func() { left = ParallelFlatten(left) },
		func() { right = ParallelFlatten(right) },
	)
	for len(right) > 0 && left[len(left)-1].Extend(right[0]) {
		right = right[1:]
	}
	return append(left, right...)
}

// Normalize sorts and flattens the intervals of every contig.
func Normalize(intervals map[string][]Interval) {
	for chrom, ivals := range intervals {
		ParallelSortByStart(ivals)
		intervals[chrom] = ParallelFlatten(ivals)
	}
}

// Intersect returns the intervals clipped to [start, end), dropping
// those that do not overlap it and those that are empty. intervals must
// be flattened and sorted by Start. The result is freshly allocated.
func Intersect(intervals []Interval, start, end int32) (result []Interval) {
	n := len(intervals)
	first := sort.Search(n, func(i int) bool { return intervals[i].End > start })
	last := sort.Search(n, func(i int) bool { return intervals[i].Start >= end })
	for _, interval := range intervals[first:last] {
		if interval.Start < start {
			interval.Start = start
		}
		if interval.End > end {
			interval.End = end
		}
		if interval.Start >= interval.End {
			continue
		}
		result = append(result, interval)
	}
	return result
}

// Whole stands for a region without explicit bounds.
var Whole = Interval{0, math.MaxInt32}

var errInvalidRegion = errors.New("invalid region")

// ParseRegion parses a region of the form chrom, chrom:pos, or
// chrom:start-end with 1-based inclusive positions, as used by
// samtools. A region without bounds covers the whole contig.
func ParseRegion(region string) (chrom string, interval Interval, err error) {
	colon := strings.LastIndexByte(region, ':')
	if colon < 0 {
		if region == "" {
			return "", Interval{}, fmt.Errorf("%w: empty", errInvalidRegion)
		}
		return region, Whole, nil
	}
	chrom, bounds := region[:colon], strings.ReplaceAll(region[colon+1:], ",", "")
	if chrom == "" {
		return "", Interval{}, fmt.Errorf("%w %q: missing contig", errInvalidRegion, region)
	}
	var start, end int32
	if dash := strings.IndexByte(bounds, '-'); dash < 0 {
		if start, err = internal.ParseInt32(bounds, "region position"); err != nil {
			return "", Interval{}, err
		}
		end = start
	} else {
		if start, err = internal.ParseInt32(bounds[:dash], "region start"); err != nil {
			return "", Interval{}, err
		}
		if end, err = internal.ParseInt32(bounds[dash+1:], "region end"); err != nil {
			return "", Interval{}, err
		}
	}
	if start < 1 || end < start {
		return "", Interval{}, fmt.Errorf("%w %q: bounds out of order", errInvalidRegion, region)
	}
	return chrom, Interval{start - 1, end}, nil
}

// FromBedFile returns the intervals of a BED file, which may be gzip
// or BGZF compressed, per contig in file order. Only the first three
// columns are used.
func FromBedFile(filename string) (intervals map[string][]Interval, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if nerr := file.Close(); err == nil {
			err = nerr
		}
	}()
	reader, err := utils.HandleGzip(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", filename, err)
	}

	intervals = make(map[string][]Interval)
	scanner := bufio.NewScanner(reader)
	for lineNr := 1; scanner.Scan(); lineNr++ {
		line := scanner.Text()
		if line == "" ||
			strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "track") ||
			strings.HasPrefix(line, "browser") {
			continue
		}
		data := strings.SplitN(line, "\t", 4)
		if len(data) < 3 {
			return nil, fmt.Errorf("%v:%v: BED entry with fewer than 3 columns", filename, lineNr)
		}
		start, err := strconv.ParseInt(data[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%v:%v: invalid BED start: %w", filename, lineNr, err)
		}
		end, err := strconv.ParseInt(data[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%v:%v: invalid BED end: %w", filename, lineNr, err)
		}
		if start < 0 || end < start {
			return nil, fmt.Errorf("%v:%v: invalid BED interval %v-%v", filename, lineNr, start, end)
		}
		if start == end {
			continue
		}
		chrom := *utils.Intern(data[0])
		intervals[chrom] = append(intervals[chrom], Interval{int32(start), int32(end)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%v: %w", filename, err)
	}
	return intervals, nil
}
