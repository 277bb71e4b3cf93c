package barrier

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFiresExactlyOnceAtTarget(t *testing.T) {
	b := New()
	var fired int32
	b.Reset(3, func() { atomic.AddInt32(&fired, 1) })

	b.Mark("a")
	b.Mark("b")
	require.EqualValues(t, 0, atomic.LoadInt32(&fired))
	b.Mark("b") // idempotent re-mark must not advance the counter
	require.EqualValues(t, 0, atomic.LoadInt32(&fired))
	b.Mark("c")
	require.EqualValues(t, 1, atomic.LoadInt32(&fired))
	b.Mark("d")
	require.EqualValues(t, 1, atomic.LoadInt32(&fired), "must fire exactly once")
}

func TestUnboundedFiresOnlyOnComplete(t *testing.T) {
	b := New()
	var fired int32
	b.Reset(Unbounded, func() { atomic.AddInt32(&fired, 1) })

	b.Mark("a")
	b.Mark("b")
	require.EqualValues(t, 0, atomic.LoadInt32(&fired))
	b.Complete()
	require.EqualValues(t, 1, atomic.LoadInt32(&fired))
}
