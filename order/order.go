// Package order sorts and searches slices of records by a single int key.
//
// Records of different kinds (properties, tenants, ...) share the same
// algorithms. The key is provided as a function, ByKey adapts values that
// implement Keyed.
//
// All functions permute the slice in place. None of them keep a reference
// to the slice after returning.
package order

import (
	"math/rand/v2"
)

// Keyed is implemented by records that have a sort key
type Keyed interface {
	SortKey() int
}

// ByKey returns the sort key of v. Use as a key function:
//
//	order.QuickSort(tenants, order.ByKey[*rental.Tenant])
func ByKey[T Keyed](v T) int {
	return v.SortKey()
}

// QuickSort sorts s ascending by key. It's not stable.
func QuickSort[T any](s []T, key func(T) int) {
	quickSort(s, key, rand.IntN, 0, len(s)-1)
}

// QuickSortRand is like QuickSort but pivots are picked using r.
// Useful for reproducible runs.
func QuickSortRand[T any](s []T, key func(T) int, r *rand.Rand) {
	quickSort(s, key, r.IntN, 0, len(s)-1)
}

// quickSort sorts s[low:high+1]
func quickSort[T any](s []T, key func(T) int, intN func(int) int, low int, high int) {
	if low >= high {
		return
	}
	p := partition(s, key, intN, low, high)
	quickSort(s, key, intN, low, p)
	quickSort(s, key, intN, p+1, high)
}

// partition is Hoare partitioning of s[low:high+1] with a random pivot.
// Returns p such that every key in s[low:p+1] is <= every key in
// s[p+1:high+1]. low <= p < high.
func partition[T any](s []T, key func(T) int, intN func(int) int, low int, high int) int {
	// pivot is picked from [low, high) and moved to low. it must not
	// be at high or p could be high and recursion wouldn't shrink
	pivotIdx := low + intN(high-low)
	s[low], s[pivotIdx] = s[pivotIdx], s[low]
	pivot := key(s[low])

	i := low - 1
	j := high + 1
	for {
		i++
		for key(s[i]) < pivot {
			i++
		}
		j--
		for key(s[j]) > pivot {
			j--
		}
		if i >= j {
			return j
		}
		s[i], s[j] = s[j], s[i]
	}
}

// HeapSort sorts s using a max-heap. The largest key ends up last so
// the result is ascending, same as QuickSort.
func HeapSort[T any](s []T, key func(T) int) {
	n := len(s)
	for i := n/2 - 1; i >= 0; i-- {
		heapify(s, key, n, i)
	}
	for end := n - 1; end > 0; end-- {
		s[0], s[end] = s[end], s[0]
		heapify(s, key, end, 0)
	}
}

// heapify restores max-heap property of s[:n] for subtree at node
func heapify[T any](s []T, key func(T) int, n int, node int) {
	largest := node
	left := 2*node + 1
	right := 2*node + 2
	if left < n && key(s[left]) > key(s[largest]) {
		largest = left
	}
	if right < n && key(s[right]) > key(s[largest]) {
		largest = right
	}
	if largest == node {
		return
	}
	s[node], s[largest] = s[largest], s[node]
	heapify(s, key, n, largest)
}

// BinarySearch returns index of an element of s whose key is target.
// s must be sorted ascending by key. If there are duplicates, any of
// them can be returned.
func BinarySearch[T any](s []T, key func(T) int, target int) (int, bool) {
	return binarySearch(s, key, target, 0, len(s)-1)
}

func binarySearch[T any](s []T, key func(T) int, target int, l int, r int) (int, bool) {
	if r < l {
		return -1, false
	}
	mid := l + (r-l)/2
	k := key(s[mid])
	switch {
	case k == target:
		return mid, true
	case target < k:
		return binarySearch(s, key, target, l, mid-1)
	default:
		return binarySearch(s, key, target, mid+1, r)
	}
}
