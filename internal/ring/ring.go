// Package ring is an index-addressed adaption of `container/ring`
// for use as an LRU recency list.
package ring

import "iter"

type (
	// Index addresses a slot in a [Ring].
	// The zero Index is the sentinel and never holds a value.
	Index int32
	// A Ring is a circular, doubly linked list whose elements
	// live in a single backing slice (arena) and refer to each other by index.
	// Slot 0 is a sentinel: its next element is the front (oldest)
	// and its previous element is the back (newest).
	// Released slots are kept on a free list and reused by [Ring.PushBack].
	Ring[Value any] struct {
		slots []slot[Value]
		free  Index
		len   int
	}
	slot[Value any] struct {
		next, prev Index
		Value      Value
	}
)

// Nil is returned where no element exists.
const Nil Index = 0

// New creates an empty ring with room for n elements
// before its arena has to grow.
func New[Value any](n int) *Ring[Value] {
	r := &Ring[Value]{
		slots: make([]slot[Value], 1, max(n, 0)+1),
	}
	return r
}

// Len returns the number of elements in the ring.
func (r *Ring[Value]) Len() int { return r.len }

// Front returns the oldest element, or [Nil] if the ring is empty.
func (r *Ring[Value]) Front() Index { return r.slots[Nil].next }

// Back returns the newest element, or [Nil] if the ring is empty.
func (r *Ring[Value]) Back() Index { return r.slots[Nil].prev }

// Next returns the element after i, or [Nil] if i is the back.
func (r *Ring[Value]) Next(i Index) Index { return r.slots[i].next }

// Prev returns the element before i, or [Nil] if i is the front.
func (r *Ring[Value]) Prev(i Index) Index { return r.slots[i].prev }

// At returns a pointer to the value stored at i.
// The pointer is valid until the next call to [Ring.PushBack].
func (r *Ring[Value]) At(i Index) *Value { return &r.slots[i].Value }

// PushBack stores value in a free slot, links it at the back,
// and returns its index.
func (r *Ring[Value]) PushBack(value Value) Index {
	i := r.alloc()
	r.slots[i].Value = value
	r.link(r.Back(), i)
	r.len++
	return i
}

// MoveToBack relinks i at the back of the ring.
// Moving the back element is a no-op.
func (r *Ring[Value]) MoveToBack(i Index) {
	if i == r.Back() {
		return
	}
	r.unlink(i)
	r.link(r.Back(), i)
}

// Remove unlinks i, returns its value, and puts the slot on the free list.
func (r *Ring[Value]) Remove(i Index) Value {
	var (
		zero  Value
		value = r.slots[i].Value
	)
	r.unlink(i)
	r.slots[i] = slot[Value]{next: r.free, Value: zero}
	r.free = i
	r.len--
	return value
}

// Reset removes every element.
// The arena's capacity is retained for reuse.
func (r *Ring[Value]) Reset() {
	clear(r.slots)
	r.slots = r.slots[:1]
	r.free = Nil
	r.len = 0
}

// All returns an iterator over the elements from front to back.
// The behavior is undefined if the ring is modified during iteration.
func (r *Ring[Value]) All() iter.Seq2[Index, *Value] {
	return func(yield func(Index, *Value) bool) {
		for i := r.Front(); i != Nil; i = r.slots[i].next {
			if !yield(i, &r.slots[i].Value) {
				return
			}
		}
	}
}

func (r *Ring[Value]) alloc() Index {
	if i := r.free; i != Nil {
		r.free = r.slots[i].next
		return i
	}
	r.slots = append(r.slots, slot[Value]{})
	return Index(len(r.slots) - 1)
}

// link inserts i after at.
func (r *Ring[Value]) link(at, i Index) {
	next := r.slots[at].next
	r.slots[i].prev = at
	r.slots[i].next = next
	r.slots[next].prev = i
	r.slots[at].next = i
}

func (r *Ring[Value]) unlink(i Index) {
	var (
		prev = r.slots[i].prev
		next = r.slots[i].next
	)
	r.slots[prev].next = next
	r.slots[next].prev = prev
	r.slots[i].next = Nil
	r.slots[i].prev = Nil
}
