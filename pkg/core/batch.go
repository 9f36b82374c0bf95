package core

import "iter"

// Batches yields non-empty, order-preserving sub-slices of at most size
// elements, terminating exactly when the input is exhausted. A zero-length
// input yields no batches. A non-positive size yields the whole input as a
// single batch; callers validate sizes, the guard just keeps the sequence
// total. Sub-slices alias the input array and must not be retained across
// iterations if the input is mutated.
func Batches[T any](items []T, size int) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		if len(items) == 0 {
			return
		}
		if size <= 0 {
			yield(items)
			return
		}
		for start := 0; start < len(items); start += size {
			end := start + size
			if end > len(items) {
				end = len(items)
			}
			if !yield(items[start:end]) {
				return
			}
		}
	}
}

// NumBatches returns the progress denominator for total items split into
// batches of the given size: max(1, total/size) with integer floor. The
// floor of 1 keeps progress fractions defined for small inputs, at the cost
// of reporting 1.0 after a single batch; this approximation is intentional.
func NumBatches(total, size int) int {
	if size <= 0 {
		return 1
	}
	n := total / size
	if n < 1 {
		return 1
	}
	return n
}
