package scanner

import "iter"

// ring is a dead simple fixed-capacity circular buffer, useful for spotting
// patterns in lines of pixels. Write with Push, read with Values or
// PeekOldest. Clear lets one buffer be reused across rows and frames
// without reallocation.
type ring[T any] struct {
	data []T
	head int
	full bool
}

func newRing[T any](n int) *ring[T] {
	return &ring[T]{data: make([]T, n)}
}

// Full reports whether the buffer has wrapped at least once.
func (r *ring[T]) Full() bool { return r.full }

// Clear resets the buffer for reuse. The backing array is kept.
func (r *ring[T]) Clear() {
	r.head = 0
	r.full = false
}

// Push appends a value, overwriting the oldest once the buffer is full.
func (r *ring[T]) Push(v T) {
	r.data[r.head] = v
	r.head = (r.head + 1) % len(r.data)
	if r.head == 0 && !r.full {
		r.full = true
	}
}

// PeekOldest returns the oldest stored value. The zero value is returned
// when nothing has been pushed yet.
func (r *ring[T]) PeekOldest() T {
	if r.full {
		return r.data[r.head]
	}
	return r.data[0]
}

// Len returns the number of stored values.
func (r *ring[T]) Len() int {
	if r.full {
		return len(r.data)
	}
	return r.head
}

// Values iterates the stored values oldest first.
func (r *ring[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		if r.full {
			for _, v := range r.data[r.head:] {
				if !yield(v) {
					return
				}
			}
		}
		for _, v := range r.data[:r.head] {
			if !yield(v) {
				return
			}
		}
	}
}
