package queue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassFor_RoutingRule(t *testing.T) {
	require.Equal(t, Priority, ClassFor(true, false))
	require.Equal(t, Priority, ClassFor(true, true), "high priority wins regardless of job type")
	require.Equal(t, Collatz, ClassFor(false, true))
	require.Equal(t, Thread, ClassFor(false, false))
}

func TestSet_DequeueOrder_FIFOWithinAClass(t *testing.T) {
	s := NewSet()
	s.Enqueue(Thread, "t1")
	s.Enqueue(Thread, "t2")

	id, class, ok := s.Dequeue()
	require.True(t, ok)
	require.Equal(t, "t1", id)
	require.Equal(t, Thread, class)

	id, _, ok = s.Dequeue()
	require.True(t, ok)
	require.Equal(t, "t2", id)
}

func TestSet_DequeueOrder_StrictClassPriority(t *testing.T) {
	s := NewSet()
	s.Enqueue(Thread, "t1")
	s.Enqueue(Collatz, "c1")
	s.Enqueue(Priority, "p1")

	_, class, ok := s.Dequeue()
	require.True(t, ok)
	require.Equal(t, Priority, class, "priority class must drain first regardless of enqueue order")

	_, class, ok = s.Dequeue()
	require.True(t, ok)
	require.Equal(t, Collatz, class)

	_, class, ok = s.Dequeue()
	require.True(t, ok)
	require.Equal(t, Thread, class)

	_, _, ok = s.Dequeue()
	require.False(t, ok)
}

func TestSet_DequeueReevaluatesEveryCall(t *testing.T) {
	s := NewSet()
	s.Enqueue(Thread, "t1")
	id, _, ok := s.Dequeue()
	require.True(t, ok)
	require.Equal(t, "t1", id)

	s.Enqueue(Priority, "p1")
	s.Enqueue(Thread, "t2")

	id, class, ok := s.Dequeue()
	require.True(t, ok)
	require.Equal(t, "p1", id)
	require.Equal(t, Priority, class, "a newly-enqueued priority job must be seen on the very next dequeue")
}

func TestSet_Depths(t *testing.T) {
	s := NewSet()
	s.Enqueue(Thread, "t1")
	s.Enqueue(Thread, "t2")
	s.Enqueue(Collatz, "c1")

	d := s.Depths()
	require.Equal(t, Depths{Priority: 0, Collatz: 1, Thread: 2}, d)
}
