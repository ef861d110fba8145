package util

import (
	"golang.org/x/exp/slices"
)

// ContainsAll reports whether every element of dst is in src.
func ContainsAll[T comparable](src []T, dst []T) bool {
	for _, v := range dst {
		if !slices.Contains(src, v) {
			return false
		}
	}
	return true
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
