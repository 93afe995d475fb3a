package timeline

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func iv(id string, idx int, start, end time.Time) Interval {
	return Interval{ItemID: id, Index: idx, Start: start, End: end}
}

func TestPackRows_BackToBackShareRow(t *testing.T) {
	rows, count := PackRows([]Interval{
		iv("a", 0, at(12, 9, 0), at(12, 10, 0)),
		iv("b", 1, at(12, 10, 0), at(12, 11, 0)),
	})

	assert.Equal(t, 0, rows["a"])
	assert.Equal(t, 0, rows["b"])
	assert.Equal(t, 1, count)
}

func TestPackRows_NestedGoesToNextRow(t *testing.T) {
	rows, count := PackRows([]Interval{
		iv("a", 0, at(12, 9, 0), at(12, 11, 0)),
		iv("b", 1, at(12, 10, 0), at(12, 10, 30)),
	})

	assert.Equal(t, 0, rows["a"])
	assert.Equal(t, 1, rows["b"])
	assert.Equal(t, 2, count)
}

func TestPackRows_MutualOverlapUsesDistinctRows(t *testing.T) {
	rows, count := PackRows([]Interval{
		iv("a", 0, at(12, 8, 0), at(12, 11, 0)),
		iv("b", 1, at(12, 9, 30), at(12, 10, 30)),
		iv("c", 2, at(12, 10, 0), at(12, 12, 0)),
	})

	assert.Equal(t, 3, count)
	assert.ElementsMatch(t, []int{0, 1, 2}, []int{rows["a"], rows["b"], rows["c"]})
}

func TestPackRows_ReusesFreedLowRow(t *testing.T) {
	rows, _ := PackRows([]Interval{
		iv("a", 0, at(12, 8, 0), at(12, 9, 0)),
		iv("b", 1, at(12, 8, 30), at(12, 12, 0)),
		iv("c", 2, at(12, 9, 0), at(12, 10, 0)),
	})

	assert.Equal(t, 0, rows["c"], "row 0 is free again once a ends")
	assert.Equal(t, 1, rows["b"])
}

func TestPackRows_EqualStartsOrderedByIndex(t *testing.T) {
	rows, _ := PackRows([]Interval{
		iv("late-index", 5, at(12, 9, 0), at(12, 10, 0)),
		iv("early-index", 1, at(12, 9, 0), at(12, 10, 0)),
	})

	assert.Equal(t, 0, rows["early-index"])
	assert.Equal(t, 1, rows["late-index"])
}

func TestPackRows_InputOrderDoesNotMatter(t *testing.T) {
	in := []Interval{
		iv("a", 0, at(12, 9, 0), at(12, 11, 0)),
		iv("b", 1, at(12, 10, 0), at(12, 12, 0)),
		iv("c", 2, at(12, 11, 0), at(12, 13, 0)),
	}
	reversed := []Interval{in[2], in[1], in[0]}

	rowsA, _ := PackRows(in)
	rowsB, _ := PackRows(reversed)
	assert.Equal(t, rowsA, rowsB)
}

func TestPackRows_ZeroDurationPointsShareRow(t *testing.T) {
	rows, count := PackRows([]Interval{
		iv("p1", 0, at(12, 9, 0), at(12, 9, 0)),
		iv("p2", 1, at(12, 9, 0), at(12, 9, 0)),
	})
	assert.Equal(t, 1, count)
	assert.Equal(t, rows["p1"], rows["p2"])
}

func TestPackRows_Empty(t *testing.T) {
	rows, count := PackRows(nil)
	assert.Empty(t, rows)
	assert.Zero(t, count)
}

func TestPackRows_DoesNotReorderCallerSlice(t *testing.T) {
	in := []Interval{
		iv("b", 1, at(12, 10, 0), at(12, 11, 0)),
		iv("a", 0, at(12, 9, 0), at(12, 10, 0)),
	}
	PackRows(in)
	assert.Equal(t, "b", in[0].ItemID)
}

func randomIntervals(rng *rand.Rand, n int) []Interval {
	base := at(10, 0, 0)
	out := make([]Interval, n)
	for i := range out {
		start := base.Add(time.Duration(rng.Intn(7*24*4)) * 15 * time.Minute)
		end := start.Add(time.Duration(rng.Intn(48)) * 15 * time.Minute)
		out[i] = iv(fmt.Sprintf("wo-%d", i), i, start, end)
	}
	return out
}

// TestPackRows_Invariants_NoOverlapWithinRow property-tests the packing
// guarantee and determinism over random lanes.
func TestPackRows_Invariants_NoOverlapWithinRow(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 300; trial++ {
		intervals := randomIntervals(rng, rng.Intn(40)+1)

		rows, count := PackRows(intervals)
		require.Len(t, rows, len(intervals))

		for i := range intervals {
			a := intervals[i]
			assert.GreaterOrEqual(t, rows[a.ItemID], 0)
			assert.Less(t, rows[a.ItemID], count)
			for j := i + 1; j < len(intervals); j++ {
				b := intervals[j]
				if rows[a.ItemID] != rows[b.ItemID] {
					continue
				}
				assert.True(t, !a.End.After(b.Start) || !b.End.After(a.Start),
					"trial %d: %s and %s share row %d but overlap", trial, a.ItemID, b.ItemID, rows[a.ItemID])
			}
		}

		again, againCount := PackRows(intervals)
		assert.Equal(t, rows, again, "trial %d: packing must be deterministic", trial)
		assert.Equal(t, count, againCount)
	}
}

// TestPackRows_Invariants_RowCountBoundedByDepth checks the packer never uses
// more rows than items and at least as many as the deepest overlap.
func TestPackRows_Invariants_RowCountBoundedByDepth(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 200; trial++ {
		intervals := randomIntervals(rng, rng.Intn(25)+1)
		_, count := PackRows(intervals)

		depth := 0
		for _, probe := range intervals {
			d := 0
			for _, other := range intervals {
				if !other.Start.After(probe.Start) && other.End.After(probe.Start) {
					d++
				}
			}
			depth = max(depth, d)
		}

		assert.LessOrEqual(t, count, len(intervals), "trial %d", trial)
		assert.GreaterOrEqual(t, count, depth, "trial %d", trial)
	}
}
