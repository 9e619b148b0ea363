package analysis

import (
	"cmp"
	"math"
	"sort"
)

// Count is one category and its frequency.
type Count[T cmp.Ordered] struct {
	Value T
	Count int
}

// ValueCounts counts occurrences, most frequent first. Ties are ordered by
// value so the output is deterministic.
func ValueCounts[T cmp.Ordered](vals []T) []Count[T] {
	m := make(map[T]int, 16)
	for _, v := range vals {
		m[v]++
	}
	out := make([]Count[T], 0, len(m))
	for v, c := range m {
		out = append(out, Count[T]{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Mode is the most frequent value; among equally frequent values the
// smallest wins. ok is false for an empty input.
func Mode[T cmp.Ordered](vals []T) (v T, ok bool) {
	counts := ValueCounts(vals)
	if len(counts) == 0 {
		return v, false
	}
	return counts[0].Value, true
}

// nonEmpty drops missing ("") string values.
func nonEmpty(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// finite drops NaN and infinite values.
func finite(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
