package retrytimer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFiresPeriodically(t *testing.T) {
	var count int32
	timer := New(10*time.Millisecond, func() { atomic.AddInt32(&count, 1) })

	timer.Start()
	require.True(t, timer.Running())
	time.Sleep(55 * time.Millisecond)
	timer.Stop()
	require.False(t, timer.Running())

	require.GreaterOrEqual(t, atomic.LoadInt32(&count), int32(3))
}

func TestStopIsIdempotent(t *testing.T) {
	timer := New(10*time.Millisecond, func() {})
	timer.Start()
	timer.Stop()
	timer.Stop()
	require.False(t, timer.Running())
}

func TestRestartKeepsTimerRunning(t *testing.T) {
	var count int32
	timer := New(20*time.Millisecond, func() { atomic.AddInt32(&count, 1) })
	timer.Start()
	time.Sleep(10 * time.Millisecond)
	timer.Restart()
	require.True(t, timer.Running())
	timer.Stop()
}
