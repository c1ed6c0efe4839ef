package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer_FillsUpToCapacity(t *testing.T) {
	b := New[int](3)
	b.Push(1)
	b.Push(2)

	assert.Equal(t, 2, b.Len())
	assert.Equal(t, []int{1, 2}, b.Values())
}

func TestBuffer_EvictsOldestFirst(t *testing.T) {
	b := New[int](3)
	for i := 1; i <= 5; i++ {
		b.Push(i)
	}

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []int{3, 4, 5}, b.Values())
}

func TestBuffer_NeverExceedsDefaultCapacity(t *testing.T) {
	b := New[float64](0)
	assert.Equal(t, DefaultCapacity, b.Cap())

	for i := 0; i < 250; i++ {
		b.Push(float64(i))
		assert.LessOrEqual(t, b.Len(), DefaultCapacity)
	}

	vals := b.Values()
	assert.Len(t, vals, DefaultCapacity)
	assert.Equal(t, 150.0, vals[0])
	assert.Equal(t, 249.0, vals[len(vals)-1])
}

func TestBuffer_Empty(t *testing.T) {
	b := New[string](2)
	assert.Zero(t, b.Len())
	assert.Empty(t, b.Values())
}

func TestBuffer_ValuesIsACopy(t *testing.T) {
	b := New[int](2)
	b.Push(1)
	vals := b.Values()
	vals[0] = 99

	assert.Equal(t, []int{1}, b.Values())
}
