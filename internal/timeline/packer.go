package timeline

import (
	"slices"
	"sort"
	"time"
)

// PackRows assigns each interval of one lane to a zero-based display row so
// that no two intervals sharing a row overlap. It returns the assignment
// keyed by item ID and the number of rows used.
//
// Intervals are visited by start time, then original index, and each one
// takes the lowest-numbered row whose latest end is at or before its start.
// This greedy colouring keeps placement stable and low-indexed; under ties
// it can use more rows than the theoretical minimum.
func PackRows(intervals []Interval) (map[string]int, int) {
	sorted := slices.Clone(intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.Index < b.Index
	})

	rows := make(map[string]int, len(sorted))
	var rowEnds []time.Time
	for _, iv := range sorted {
		row := -1
		for r, end := range rowEnds {
			if !end.After(iv.Start) {
				row = r
				break
			}
		}
		if row < 0 {
			rowEnds = append(rowEnds, iv.End)
			row = len(rowEnds) - 1
		} else if iv.End.After(rowEnds[row]) {
			rowEnds[row] = iv.End
		}
		rows[iv.ItemID] = row
	}
	return rows, len(rowEnds)
}
