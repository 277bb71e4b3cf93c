// Package dispatcher implements component C12: the task dispatcher, the
// functional descendant of session_manager.SessionManager. Where
// session_manager keys sessions by remote-address string and dispatches
// by a fixed HTTP-path method name, Dispatcher keys tasks by task id and
// dispatches inbound frames by (algorithmID, messageType).
package dispatcher

import (
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/wedpr-ppc/ppc-core/pkg/ppcerr"
	"github.com/wedpr-ppc/ppc-core/pkg/ppclog"
	"github.com/wedpr-ppc/ppc-core/pkg/ppctask"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcwire"
)

// StateMachine is the minimal surface the dispatcher needs from a running
// protocol instance: one per Task, constructed by a Builder.
type StateMachine interface {
	Start() error
	HandleMessage(ppcwire.Frame)
	Finished() bool
	Cleanup()
}

// Builder constructs the state machine for a Task. Registered per
// (Type, AlgorithmID) pair, the generalization of notary.go's
// CommandList/methodLookup map.
type Builder func(t ppctask.Task) (StateMachine, error)

// item is the dispatcher's per-task bookkeeping entry, the equivalent of
// session_manager's smItem.
type item struct {
	task       ppctask.Task
	sm         StateMachine
	queue      chan ppcwire.Frame
	lastSeen   time.Time
	created    time.Time
	finished   bool
	graceTimer *time.Timer
}

// Dispatcher owns the bounded admission queue, the parallelism semaphore,
// and the taskID -> item map.
type Dispatcher struct {
	mu       sync.Mutex
	tasks    map[string]*item
	builders map[key]Builder
	sem      *semaphore.Weighted

	admission chan ppctask.Task

	graceDuration time.Duration
	expireDuration time.Duration

	destroyChan chan string

	logger interface {
		Errorf(format string, args ...any)
		Infof(format string, args ...any)
	}

	stop chan struct{}
}

type key struct {
	t    ppctask.Type
	algo ppcwire.AlgorithmID
}

// New builds a Dispatcher with the given parallelism cap and grace/expire
// durations (see ppcconfig.Config). A non-positive parallelism, matching
// ppcconfig.Config.ThreadPoolSize()'s "0 means GOMAXPROCS" contract,
// resolves to runtime.GOMAXPROCS(0), the same default ppcsync/workerpool
// uses.
func New(parallelism int, graceDuration, expireDuration time.Duration) *Dispatcher {
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	d := &Dispatcher{
		tasks:          make(map[string]*item),
		builders:       make(map[key]Builder),
		sem:            semaphore.NewWeighted(int64(parallelism)),
		admission:      make(chan ppctask.Task, 1024),
		graceDuration:  graceDuration,
		expireDuration: expireDuration,
		destroyChan:    make(chan string, 64),
		logger:         ppclog.For("dispatcher"),
		stop:           make(chan struct{}),
	}
	go d.monitorAdmission()
	go d.monitorDestroyChan()
	return d
}

// RegisterBuilder binds a Builder to a (Type, AlgorithmID) pair, the
// generalization of session_manager's CommandList registration.
func (d *Dispatcher) RegisterBuilder(t ppctask.Type, algo ppcwire.AlgorithmID, b Builder) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.builders[key{t, algo}] = b
}

// AddTask enqueues a Task for admission; a worker loop dequeues while the
// semaphore has capacity.
func (d *Dispatcher) AddTask(t ppctask.Task) error {
	select {
	case d.admission <- t:
		return nil
	default:
		return ppcerr.New(ppcerr.KindInvalidTaskParam, "admission queue full").WithTask(t.ID)
	}
}

func (d *Dispatcher) monitorAdmission() {
	for {
		select {
		case t := <-d.admission:
			d.admit(t)
		case <-d.stop:
			return
		}
	}
}

func (d *Dispatcher) admit(t ppctask.Task) {
	if err := d.sem.Acquire(bgCtx(), 1); err != nil {
		return
	}

	d.mu.Lock()
	builder, ok := d.builders[key{t.Type, t.AlgorithmID}]
	d.mu.Unlock()
	if !ok {
		d.sem.Release(1)
		d.logger.Errorf("no builder registered for task %s (type=%v algo=%v)", t.ID, t.Type, t.AlgorithmID)
		return
	}

	sm, err := builder(t)
	if err != nil {
		d.sem.Release(1)
		d.logger.Errorf("failed to build state machine for task %s: %v", t.ID, err)
		return
	}

	it := &item{
		task:     t,
		sm:       sm,
		queue:    make(chan ppcwire.Frame, 256),
		lastSeen: now(),
		created:  now(),
	}

	d.mu.Lock()
	d.tasks[t.ID] = it
	d.mu.Unlock()

	go d.runTask(t.ID, it)
}

func (d *Dispatcher) runTask(taskID string, it *item) {
	defer d.sem.Release(1)

	if err := it.sm.Start(); err != nil {
		d.logger.Errorf("task %s failed to start: %v", taskID, err)
	}

	for {
		select {
		case f := <-it.queue:
			it.mark()
			it.sm.HandleMessage(f)
			if it.sm.Finished() {
				d.finishTask(taskID)
				return
			}
		case <-time.After(5 * time.Millisecond):
			if it.sm.Finished() {
				d.finishTask(taskID)
				return
			}
		}
	}
}

func (it *item) mark() { it.lastSeen = now() }

// finishTask schedules the grace timer that keeps the task's routing
// entry alive for late peer messages, mirroring §4.12.
func (d *Dispatcher) finishTask(taskID string) {
	d.mu.Lock()
	it, ok := d.tasks[taskID]
	if !ok {
		d.mu.Unlock()
		return
	}
	it.finished = true
	it.sm.Cleanup()
	d.mu.Unlock()

	d.logger.Infof("task %s finished, scheduling grace timer", taskID)
	time.AfterFunc(d.graceDuration, func() {
		d.destroyChan <- taskID
	})
}

func (d *Dispatcher) monitorDestroyChan() {
	for {
		select {
		case taskID := <-d.destroyChan:
			d.mu.Lock()
			delete(d.tasks, taskID)
			d.mu.Unlock()
		case <-d.stop:
			return
		}
	}
}

// RouteMessage enqueues an inbound frame to the owning task's queue.
func (d *Dispatcher) RouteMessage(f ppcwire.Frame) error {
	d.mu.Lock()
	it, ok := d.tasks[f.TaskID]
	d.mu.Unlock()
	if !ok {
		return ppcerr.New(ppcerr.KindUndefinedTaskRole, "no such task").WithTask(f.TaskID)
	}
	select {
	case it.queue <- f:
		return nil
	default:
		return ppcerr.New(ppcerr.KindInternal, "task message queue full").WithTask(f.TaskID)
	}
}

// Shutdown stops the admission and destroy-chan monitors.
func (d *Dispatcher) Shutdown() { close(d.stop) }

// Size reports the number of currently tracked tasks.
func (d *Dispatcher) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}
