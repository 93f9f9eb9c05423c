package record

import "sort"

// inRange reports whether id lies in [minInclusive, maxInclusive].
func inRange(id, minInclusive, maxInclusive int) bool {
	return minInclusive <= id && id <= maxInclusive
}

// mergedIDs returns the sorted, deduplicated union of the given IDs.
func mergedIDs(ids ...int) []int {
	sort.Ints(ids)
	out := ids[:0]
	for i, id := range ids {
		if i == 0 || id != ids[i-1] {
			out = append(out, id)
		}
	}
	return out
}

// compareIDSeq orders two merged ID sequences lexicographically, the
// shorter one first on a shared prefix. Records whose sequences tie fall
// back to their file name, so the overall order is total.
func compareIDSeq(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] - b[i]
		}
	}
	return len(a) - len(b)
}
