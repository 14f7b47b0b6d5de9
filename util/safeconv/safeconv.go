package safeconv

import (
	"math"
)

// Int64ToInt converts int64 to int with clamping into [MinInt, MaxInt].
func Int64ToInt(v int64) int {
	if v > math.MaxInt {
		return math.MaxInt
	}
	if v < math.MinInt {
		return math.MinInt
	}
	return int(v)
}

// Int64SliceToIntSlice converts a slice of int64 to int, clamping each value.
func Int64SliceToIntSlice(input []int64) []int {
	out := make([]int, len(input))
	for i, v := range input {
		out[i] = Int64ToInt(v)
	}
	return out
}
