package heap

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

type Int int

func (i Int) Less(j Int) bool {
	return i < j
}

func TestHeap(t *testing.T) {
	h := Heap[Int]{}

	for i := 0; i < 20; i++ {
		h.Push(Int(rand.Int() % 100))
	}

	require.Equal(t, 20, h.Len())

	var inOrder []Int
	for h.Len() > 0 {
		inOrder = append(inOrder, h.Pop())
	}

	if !slices.IsSorted(inOrder) {
		t.Errorf("Heap did not return sorted elements: %+v", inOrder)
	}
}

func TestHeapMaxAndPopLast(t *testing.T) {
	h := Heap[Int]{}
	h.Init(make([]Int, 0, 5))
	for _, v := range []Int{3, 1, 4, 1, 5, 9, 2, 6} {
		h.Push(v)
	}

	require.Equal(t, Int(9), h.Max())
	require.Equal(t, Int(1), h.Min())

	require.Equal(t, Int(9), h.PopLast())
	require.Equal(t, Int(6), h.Max())
	require.Equal(t, 7, h.Len())
}
