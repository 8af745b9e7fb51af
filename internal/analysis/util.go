package analysis

import "sort"

// sortAndUniq sorts s in place and drops duplicates, returning the
// shortened slice.
func sortAndUniq(s []int) []int {
	sort.Ints(s)
	out := s[:0]
	for i, x := range s {
		if i == 0 || x != s[i-1] {
			out = append(out, x)
		}
	}
	return out
}

// isSortedAndUniq reports whether s is strictly increasing.
func isSortedAndUniq(s []int) bool {
	for i := 1; i < len(s); i++ {
		if s[i] <= s[i-1] {
			return false
		}
	}
	return true
}

// containsSorted reports whether sorted slice s contains x.
func containsSorted(s []int, x int) bool {
	i := sort.SearchInts(s, x)
	return i < len(s) && s[i] == x
}
