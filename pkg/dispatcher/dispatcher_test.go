package dispatcher

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wedpr-ppc/ppc-core/pkg/ppctask"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcwire"
)

type fakeSM struct {
	received int32
	done     int32
}

func (f *fakeSM) Start() error { return nil }
func (f *fakeSM) HandleMessage(ppcwire.Frame) {
	if atomic.AddInt32(&f.received, 1) >= 2 {
		atomic.StoreInt32(&f.done, 1)
	}
}
func (f *fakeSM) Finished() bool { return atomic.LoadInt32(&f.done) == 1 }
func (f *fakeSM) Cleanup()       {}

func TestDispatchRoutesMessagesToOwningTask(t *testing.T) {
	d := New(4, 50*time.Millisecond, time.Minute)
	defer d.Shutdown()

	sm := &fakeSM{}
	d.RegisterBuilder(ppctask.TypePSI, ppcwire.AlgorithmEcdhPSI, func(t ppctask.Task) (StateMachine, error) {
		return sm, nil
	})

	task := ppctask.Task{ID: "t1", Type: ppctask.TypePSI, AlgorithmID: ppcwire.AlgorithmEcdhPSI}
	require.NoError(t, d.AddTask(task))

	require.Eventually(t, func() bool { return d.Size() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, d.RouteMessage(ppcwire.NewFrame("t1", ppcwire.AlgorithmEcdhPSI, 1, 0, nil)))
	require.NoError(t, d.RouteMessage(ppcwire.NewFrame("t1", ppcwire.AlgorithmEcdhPSI, 1, 1, nil)))

	require.Eventually(t, func() bool { return atomic.LoadInt32(&sm.done) == 1 }, time.Second, time.Millisecond)
}

func TestRouteMessageFailsForUnknownTask(t *testing.T) {
	d := New(4, 50*time.Millisecond, time.Minute)
	defer d.Shutdown()

	err := d.RouteMessage(ppcwire.NewFrame("missing", ppcwire.AlgorithmEcdhPSI, 1, 0, nil))
	require.Error(t, err)
}
