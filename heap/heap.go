// Package heap provides a small bounded priority queue used to track the
// k best candidates seen so far during a search.
package heap

import "container/heap"

// Ordered is the contract an element must satisfy to live in a Heap: a
// strict weak ordering against another element of the same type.
type Ordered[T any] interface {
	Less(o T) bool
}

// Heap is a binary min-heap over any type implementing Ordered. Pop always
// returns the current minimum. Max/PopLast scan linearly to find the
// current maximum — the optimizer keeps at most k incumbents in it, so the
// scan touches few elements.
type Heap[T Ordered[T]] struct {
	data []T
}

// Init seeds the heap with an existing slice, taking ownership of it.
func (h *Heap[T]) Init(data []T) {
	h.data = data
	heap.Init((*innerHeap[T])(h))
}

// Push adds v to the heap.
func (h *Heap[T]) Push(v T) {
	heap.Push((*innerHeap[T])(h), v)
}

// Pop removes and returns the minimum element.
func (h *Heap[T]) Pop() T {
	return heap.Pop((*innerHeap[T])(h)).(T)
}

// Min returns the minimum element without removing it.
func (h *Heap[T]) Min() T {
	return h.data[0]
}

// Max returns the maximum element without removing it.
func (h *Heap[T]) Max() T {
	maxIdx := h.maxIndex()
	return h.data[maxIdx]
}

// PopLast removes and returns the maximum element.
func (h *Heap[T]) PopLast() T {
	maxIdx := h.maxIndex()
	v := h.data[maxIdx]
	heap.Remove((*innerHeap[T])(h), maxIdx)
	return v
}

// Len returns the number of elements in the heap.
func (h *Heap[T]) Len() int {
	return len(h.data)
}

// Slice returns the heap's backing slice. The order is heap order, not
// sorted order.
func (h *Heap[T]) Slice() []T {
	return h.data
}

func (h *Heap[T]) maxIndex() int {
	maxIdx := 0
	for i := 1; i < len(h.data); i++ {
		if h.data[maxIdx].Less(h.data[i]) {
			maxIdx = i
		}
	}
	return maxIdx
}

// innerHeap adapts Heap to container/heap's interface without exposing
// sort.Interface on the public type.
type innerHeap[T Ordered[T]] Heap[T]

func (h *innerHeap[T]) Len() int { return len(h.data) }
func (h *innerHeap[T]) Less(i, j int) bool {
	return h.data[i].Less(h.data[j])
}
func (h *innerHeap[T]) Swap(i, j int) { h.data[i], h.data[j] = h.data[j], h.data[i] }
func (h *innerHeap[T]) Push(x any)    { h.data = append(h.data, x.(T)) }
func (h *innerHeap[T]) Pop() any {
	old := h.data
	n := len(old)
	v := old[n-1]
	h.data = old[:n-1]
	return v
}
