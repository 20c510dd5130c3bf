// estalign: aligning cDNA and EST reads to genomic sequences.
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
// <https://github.com/ExaScience/estalign/blob/master/LICENSE.txt>.

// Package intervals implements inclusive genomic intervals and the
// flattening of sorted interval lists, with a tolerance for small gaps.
package intervals

import (
	"sort"

	"github.com/exascience/pargo/parallel"
	psort "github.com/exascience/pargo/sort"

	"github.com/exascience/estalign/coords"
)

// Interval is an inclusive genomic interval.
type Interval struct {
	Start, End coords.Genomic
}

// Length returns the number of positions in an interval.
func (interval Interval) Length() int {
	return coords.Length(interval.Start, interval.End)
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

// Extend makes interval1 larger if interval2 starts at most gap
// positions after interval1 ends, by storing max(interval1.End,
// interval2.End) in interval1.End; otherwise, interval1 remains
// unchanged. Returns true if the two intervals were joined.
// interval2.Start >= interval1.Start must be true before calling
// Extend.
func (interval1 *Interval) Extend(interval2 Interval, gap int) bool {
	if int(interval2.Start)-int(interval1.End)-1 > gap {
		return false
	}
	if interval2.End > interval1.End {
		interval1.End = interval2.End
	}
	return true
}

// Flatten joins intervals that overlap or are separated by at most gap
// positions. A gap of 0 joins adjacent intervals.
// intervals must be sorted by Start before calling Flatten.
// The resulting slice is sorted by Start, and no two
// intervals in the result overlap with each other.
// The result shares memory with the intervals argument.
func Flatten(intervals []Interval, gap int) []Interval {
	for i, n := 0, len(intervals)-1; i < n; i++ {
		if intervals[i].Extend(intervals[i+1], gap) {
			n++
			for j := i + 1; j < n; j++ {
				if !intervals[i].Extend(intervals[j], gap) {
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

// ParallelFlatten is Flatten using a parallel algorithm.
func ParallelFlatten(intervals []Interval, gap int) []Interval {
	if len(intervals) < parallelFlattenGrainSize {
		return Flatten(intervals, gap)
	}
	half := len(intervals) >> 1
	left, right := intervals[:half], intervals[half:]
	parallel.Do(
		func() { left = ParallelFlatten(left, gap) },
		func() { right = ParallelFlatten(right, gap) },
	)
	for len(right) > 0 && left[len(left)-1].Extend(right[0], gap) {
		right = right[1:]
	}
	return append(left, right...)
}

// Overlap determines whether the inclusive range [start, end] overlaps
// with any of the given intervals.
// intervals must be Flattened and sorted by Start.
func Overlap(intervals []Interval, start, end coords.Genomic) bool {
	for left, right := 0, len(intervals)-1; left <= right; {
		mid := (left + right) / 2
		if intervals[mid].Start > end {
			right = mid - 1
		} else if intervals[mid].End < start {
			left = mid + 1
		} else {
			return true
		}
	}
	return false
}

// Intersect returns a slice of all intervals that overlap with the
// inclusive range [start, end].
// intervals must be Flattened and sorted by Start.
// The result shares memory with the intervals argument.
func Intersect(intervals []Interval, start, end coords.Genomic) []Interval {
	n := len(intervals)
	return intervals[sort.Search(n, func(i int) bool {
		return intervals[i].End >= start
	}):sort.Search(n, func(i int) bool {
		return intervals[i].Start > end
	})]
}

// Gaps returns the positions of [start, end] that are not covered by
// the given intervals, which must be Flattened and sorted by Start.
func Gaps(intervals []Interval, start, end coords.Genomic) (gaps []Interval) {
	next := start
	for _, interval := range Intersect(intervals, start, end) {
		if interval.Start > next {
			gaps = append(gaps, Interval{Start: next, End: interval.Start - 1})
		}
		if interval.End+1 > next {
			next = interval.End + 1
		}
	}
	if next <= end {
		gaps = append(gaps, Interval{Start: next, End: end})
	}
	return gaps
}

// Covered returns the number of positions covered by the given
// intervals, which must be Flattened.
func Covered(intervals []Interval) (n int) {
	for _, interval := range intervals {
		n += interval.Length()
	}
	return n
}
