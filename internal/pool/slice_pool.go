package pool

import "sync"

// Slice pools for scratch space in the smoothing and grid paths. Smoothing
// sorts a copy of the log ratios and an index permutation per call; pooling
// keeps repeated calls allocation-free when independent sample sets are
// processed concurrently.
var (
	float64SlicePool = sync.Pool{
		New: func() any { return &[]float64{} },
	}
	intSlicePool = sync.Pool{
		New: func() any { return &[]int{} },
	}
)

// GetFloat64Slice retrieves a float64 slice of exactly the given length from
// the pool, allocating when the pooled capacity is insufficient.
//
// The caller must call the returned cleanup function (typically with defer)
// to return the slice to the pool. The slice contents are unspecified.
//
// Example:
//
//	scratch, cleanup := pool.GetFloat64Slice(len(ratios))
//	defer cleanup()
func GetFloat64Slice(size int) ([]float64, func()) {
	ptr, _ := float64SlicePool.Get().(*[]float64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]float64, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { float64SlicePool.Put(ptr) }
}

// GetIntSlice retrieves an int slice of exactly the given length from the
// pool. Same contract as GetFloat64Slice.
func GetIntSlice(size int) ([]int, func()) {
	ptr, _ := intSlicePool.Get().(*[]int)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]int, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { intSlicePool.Put(ptr) }
}
