package timer

import (
	"container/heap"
	"sync"
	"time"
)

// Task is a callback scheduled to run once at a given time
type Task struct {
	ID       string
	RunAt    time.Time
	Callback func()
	index    int // index in the heap (for heap.Interface)
}

// taskHeap is a min-heap of Tasks ordered by RunAt
type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	return h[i].RunAt.Before(h[j].RunAt)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x interface{}) {
	task := x.(*Task)
	task.index = len(*h)
	*h = append(*h, task)
}

func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	task := old[n-1]
	old[n-1] = nil  // avoid memory leak
	task.index = -1 // for safety
	*h = old[0 : n-1]
	return task
}

// TimerManager runs one-shot tasks at their due time. Callbacks run on
// their own goroutine; Stop waits for the ones already started.
//
// A periodic job reschedules itself from its callback, so the next run is
// always measured from the end of the previous one.
type TimerManager struct {
	heap    taskHeap
	mu      sync.Mutex
	wakeup  chan struct{}
	tasks   map[string]*Task // for O(1) lookup by ID
	running sync.WaitGroup
	active  int
	started bool
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewTimerManager creates an idle timer manager
func NewTimerManager() *TimerManager {
	tm := &TimerManager{
		heap:   make(taskHeap, 0),
		wakeup: make(chan struct{}, 1),
		tasks:  make(map[string]*Task),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	heap.Init(&tm.heap)
	return tm
}

// Start launches the dispatch loop. Calling it twice is a no-op.
func (tm *TimerManager) Start() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.started || tm.stopped {
		return
	}
	tm.started = true
	go tm.run()
}

// Stop drops pending tasks and waits for running callbacks to return.
func (tm *TimerManager) Stop() {
	tm.mu.Lock()
	if tm.stopped {
		tm.mu.Unlock()
		return
	}
	tm.stopped = true
	started := tm.started
	close(tm.stopCh)
	tm.heap = tm.heap[:0]
	clear(tm.tasks)
	tm.mu.Unlock()

	if started {
		<-tm.doneCh
	}
	tm.running.Wait()
}

// Schedule adds a task to run at runAt, replacing any pending task with
// the same ID.
func (tm *TimerManager) Schedule(id string, runAt time.Time, callback func()) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.stopped {
		return ErrManagerStopped
	}

	if existing, ok := tm.tasks[id]; ok {
		heap.Remove(&tm.heap, existing.index)
		delete(tm.tasks, id)
	}

	task := &Task{
		ID:       id,
		RunAt:    runAt,
		Callback: callback,
	}

	heap.Push(&tm.heap, task)
	tm.tasks[id] = task

	// Wake up the dispatcher if this is the earliest task
	if tm.heap[0] == task {
		select {
		case tm.wakeup <- struct{}{}:
		default:
		}
	}

	return nil
}

// Cancel removes a pending task. It does not interrupt a running callback.
func (tm *TimerManager) Cancel(id string) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	task, ok := tm.tasks[id]
	if !ok {
		return false
	}

	heap.Remove(&tm.heap, task.index)
	delete(tm.tasks, id)
	return true
}

// run is the dispatch loop
func (tm *TimerManager) run() {
	defer close(tm.doneCh)

	for {
		tm.mu.Lock()

		if tm.stopped {
			tm.mu.Unlock()
			return
		}

		// No tasks: sleep until woken
		waitDuration := 24 * time.Hour
		if tm.heap.Len() > 0 {
			waitDuration = time.Until(tm.heap[0].RunAt)

			if waitDuration <= 0 {
				task := heap.Pop(&tm.heap).(*Task)
				delete(tm.tasks, task.ID)
				tm.dispatch(task)

				tm.mu.Unlock()
				continue
			}
		}

		tm.mu.Unlock()

		timer := time.NewTimer(waitDuration)
		select {
		case <-timer.C:
		case <-tm.wakeup:
			timer.Stop()
		case <-tm.stopCh:
			timer.Stop()
			return
		}
	}
}

// dispatch must be called with tm.mu held.
func (tm *TimerManager) dispatch(task *Task) {
	tm.running.Add(1)
	tm.active++
	go func() {
		defer func() {
			tm.mu.Lock()
			tm.active--
			tm.mu.Unlock()
			tm.running.Done()
		}()
		task.Callback()
	}()
}

// Stats returns statistics about the timer manager
func (tm *TimerManager) Stats() TimerStats {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	return TimerStats{
		ScheduledTasks: len(tm.tasks),
		RunningTasks:   tm.active,
	}
}

// TimerStats contains statistics about the timer manager
type TimerStats struct {
	ScheduledTasks int
	RunningTasks   int
}

var (
	ErrManagerStopped = &TimerError{"timer manager is stopped"}
)

// TimerError represents a timer error
type TimerError struct {
	msg string
}

func (e *TimerError) Error() string {
	return e.msg
}
