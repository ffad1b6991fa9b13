package order

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/alecthomas/assert"
)

type item struct {
	number int
	key    int
	name   string
}

func (i item) SortKey() int {
	return i.key
}

func intKey(v int) int {
	return v
}

func isSortedAsc(s []int) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			return false
		}
	}
	return true
}

func genInputs(rng *rand.Rand) [][]int {
	res := [][]int{
		nil,
		{},
		{1},
		{2, 1},
		{1, 1},
		{3, 3, 3, 3, 3},
		{5, 4, 3, 2, 1},
		{1, 2, 3, 4, 5},
		{-3, 7, 0, -3, 2, 7},
	}
	sorted := make([]int, 200)
	for i := range sorted {
		sorted[i] = i
	}
	res = append(res, sorted)
	reversed := slices.Clone(sorted)
	slices.Reverse(reversed)
	res = append(res, reversed)
	for range 50 {
		n := rng.IntN(100)
		s := make([]int, n)
		for i := range s {
			// small range to get plenty of duplicates
			s[i] = rng.IntN(20) - 5
		}
		res = append(res, s)
	}
	return res
}

func checkSorts(t *testing.T, in []int, sortFn func([]int)) {
	got := slices.Clone(in)
	sortFn(got)
	exp := slices.Clone(in)
	slices.Sort(exp)
	assert.True(t, isSortedAsc(got), "input: %v, got: %v", in, got)
	// same elements i.e. a permutation of the input
	assert.Equal(t, exp, got, "input: %v", in)
}

func TestQuickSort(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	inputs := genInputs(rng)
	for seed := uint64(0); seed < 20; seed++ {
		r := rand.New(rand.NewPCG(seed, seed*7+1))
		for _, in := range inputs {
			checkSorts(t, in, func(s []int) {
				QuickSortRand(s, intKey, r)
			})
		}
	}
	for _, in := range inputs {
		checkSorts(t, in, func(s []int) {
			QuickSort(s, intKey)
		})
	}
}

func TestHeapSort(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for _, in := range genInputs(rng) {
		checkSorts(t, in, func(s []int) {
			HeapSort(s, intKey)
		})
	}
}

// heap sort puts the largest key last i.e. ascending order,
// which is what BinarySearch needs
func TestHeapSortOrderIsAscending(t *testing.T) {
	s := []item{{1, 2, "low"}, {2, 9, "urgent"}, {3, 5, "mid"}, {4, 1, "lowest"}}
	HeapSort(s, ByKey[item])
	var keys []int
	for _, it := range s {
		keys = append(keys, it.key)
	}
	assert.Equal(t, []int{1, 2, 5, 9}, keys)
	assert.Equal(t, "urgent", s[len(s)-1].name)

	idx, ok := BinarySearch(s, ByKey[item], 5)
	assert.True(t, ok)
	assert.Equal(t, "mid", s[idx].name)
}

func TestSortKeepsRecordNumbers(t *testing.T) {
	// lines "3-)z", "1-)x", "2-)y" keyed z=3, x=1, y=2
	s := []item{{3, 3, "z"}, {1, 1, "x"}, {2, 2, "y"}}
	QuickSort(s, ByKey[item])
	assert.Equal(t, []item{{1, 1, "x"}, {2, 2, "y"}, {3, 3, "z"}}, s)

	// record number is carried with the element, not re-derived
	s = []item{{1, 30, "z"}, {2, 10, "x"}, {3, 20, "y"}}
	QuickSort(s, ByKey[item])
	assert.Equal(t, []item{{2, 10, "x"}, {3, 20, "y"}, {1, 30, "z"}}, s)
}

func TestBoundaries(t *testing.T) {
	// low == high
	s := []int{42}
	QuickSort(s, intKey)
	HeapSort(s, intKey)
	assert.Equal(t, []int{42}, s)

	// two equal keys
	pair := []item{{1, 7, "a"}, {2, 7, "b"}}
	QuickSort(pair, ByKey[item])
	assert.Equal(t, 7, pair[0].key)
	assert.Equal(t, 7, pair[1].key)
	HeapSort(pair, ByKey[item])
	assert.Equal(t, 2, len(pair))

	var empty []item
	QuickSort(empty, ByKey[item])
	HeapSort(empty, ByKey[item])
	_, ok := BinarySearch(empty, ByKey[item], 1)
	assert.False(t, ok)
}

func TestBinarySearch(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	for _, in := range genInputs(rng) {
		s := slices.Clone(in)
		QuickSort(s, intKey)
		for _, v := range in {
			idx, ok := BinarySearch(s, intKey, v)
			assert.True(t, ok, "s: %v, v: %d", s, v)
			assert.Equal(t, v, s[idx])
		}
		// outside of every generated range
		for _, v := range []int{-100, 1000, 10_000} {
			assert.False(t, slices.Contains(in, v))
			idx, ok := BinarySearch(s, intKey, v)
			assert.False(t, ok, "s: %v, v: %d", s, v)
			assert.Equal(t, -1, idx)
		}
	}

	s := []int{1, 3, 5, 7}
	for _, missing := range []int{0, 2, 4, 6, 8} {
		_, ok := BinarySearch(s, intKey, missing)
		assert.False(t, ok, "missing: %d", missing)
	}
	for i, v := range s {
		idx, ok := BinarySearch(s, intKey, v)
		assert.True(t, ok)
		assert.Equal(t, i, idx)
	}
}

func TestQuickSortLargeSorted(t *testing.T) {
	// random pivots keep recursion shallow on sorted input
	s := make([]int, 100_000)
	for i := range s {
		s[i] = i
	}
	QuickSort(s, intKey)
	assert.True(t, isSortedAsc(s))
	slices.Reverse(s)
	QuickSort(s, intKey)
	assert.True(t, isSortedAsc(s))
}

func BenchmarkQuickSort(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 1))
	in := make([]int, 10_000)
	for i := range in {
		in[i] = rng.IntN(1_000_000)
	}
	s := make([]int, len(in))
	for n := 0; n < b.N; n++ {
		copy(s, in)
		QuickSort(s, intKey)
	}
}

func BenchmarkHeapSort(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 1))
	in := make([]int, 10_000)
	for i := range in {
		in[i] = rng.IntN(1_000_000)
	}
	s := make([]int, len(in))
	for n := 0; n < b.N; n++ {
		copy(s, in)
		HeapSort(s, intKey)
	}
}
