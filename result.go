package afkslime

import "sort"

type Result struct {
	X     int32 `json:"x"`
	Z     int32 `json:"z"`
	Count uint  `json:"count"`
}

func (r Result) Center() Chunk {
	return Chunk{r.X, r.Z}
}

func (a Result) OrderBefore(b Result) bool {
	// Sort by count
	if a.Count != b.Count {
		return a.Count > b.Count
	}

	// Then by distance from 0,0
	aD2 := int64(a.X)*int64(a.X) + int64(a.Z)*int64(a.Z)
	bD2 := int64(b.X)*int64(b.X) + int64(b.Z)*int64(b.Z)
	if aD2 != bD2 {
		return aD2 < bD2
	}

	// Then finally break ties by coordinate
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Z != b.Z {
		return a.Z < b.Z
	}
	return false
}

// SortResults ranks results best first.
func SortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].OrderBefore(results[j])
	})
}

// Top returns at most n leading entries of an already ranked list.
func Top(results []Result, n int) []Result {
	if n < 0 || n > len(results) {
		n = len(results)
	}
	return results[:n]
}

// Best returns the highest count result. Ties go to the entry OrderBefore prefers,
// so the answer does not depend on how the list was produced.
func Best(results []Result) (best Result, ok bool) {
	for i, r := range results {
		if i == 0 || r.OrderBefore(best) {
			best = r
		}
	}
	return best, len(results) > 0
}
