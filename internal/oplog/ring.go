package oplog

// RingBuffer is a fixed-size circular buffer holding the most recent
// items pushed into it.
type RingBuffer[T any] struct {
	items []T
	head  int // next write position
	size  int
	cap   int
}

// NewRingBuffer creates a ring buffer with the given capacity.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer[T]{
		items: make([]T, capacity),
		cap:   capacity,
	}
}

// Push adds an item, overwriting the oldest when full.
func (r *RingBuffer[T]) Push(item T) {
	r.items[r.head] = item
	r.head = (r.head + 1) % r.cap
	if r.size < r.cap {
		r.size++
	}
}

// Items returns the buffered items from oldest to newest.
func (r *RingBuffer[T]) Items() []T {
	if r.size == 0 {
		return nil
	}
	result := make([]T, r.size)
	if r.size < r.cap {
		copy(result, r.items[:r.size])
	} else {
		copy(result, r.items[r.head:])
		copy(result[r.cap-r.head:], r.items[:r.head])
	}
	return result
}

// Tail returns up to n of the newest items, oldest first.
func (r *RingBuffer[T]) Tail(n int) []T {
	all := r.Items()
	if n <= 0 || n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// Len returns the current number of buffered items.
func (r *RingBuffer[T]) Len() int {
	return r.size
}

// Clear removes all items.
func (r *RingBuffer[T]) Clear() {
	r.head = 0
	r.size = 0
}
