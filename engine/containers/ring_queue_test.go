package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueueFIFO(t *testing.T) {
	q := NewRingQueue[int](4)
	assert.True(t, q.IsEmpty())

	for i := 1; i <= 4; i++ {
		require.NoError(t, q.Enqueue(i))
	}
	assert.True(t, q.IsFull())
	assert.Equal(t, 4, q.Len())

	front, err := q.Peek()
	require.NoError(t, err)
	assert.Equal(t, 1, front)
	assert.Equal(t, 4, q.Len(), "peek does not consume")

	for i := 1; i <= 4; i++ {
		v, err := q.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
	assert.True(t, q.IsEmpty())
}

func TestRingQueueWrapsAround(t *testing.T) {
	q := NewRingQueue[string](2)

	require.NoError(t, q.Enqueue("a"))
	require.NoError(t, q.Enqueue("b"))
	v, err := q.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	require.NoError(t, q.Enqueue("c"))
	v, err = q.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, "b", v)
	v, err = q.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, "c", v)
}

func TestRingQueueBounds(t *testing.T) {
	q := NewRingQueue[int](1)

	_, err := q.Dequeue()
	assert.Error(t, err)
	_, err = q.Peek()
	assert.Error(t, err)

	require.NoError(t, q.Enqueue(7))
	assert.Error(t, q.Enqueue(8), "capacity is fixed")
}
