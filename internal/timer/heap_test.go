package timer

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerManager_Schedule(t *testing.T) {
	tm := NewTimerManager()
	tm.Start()
	defer tm.Stop()

	done := make(chan struct{})

	err := tm.Schedule("test1", time.Now().Add(50*time.Millisecond), func() {
		close(done)
	})
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Task was not executed")
	}
}

func TestTimerManager_Cancel(t *testing.T) {
	tm := NewTimerManager()
	tm.Start()
	defer tm.Stop()

	var executed atomic.Bool

	err := tm.Schedule("test1", time.Now().Add(100*time.Millisecond), func() {
		executed.Store(true)
	})
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	if !tm.Cancel("test1") {
		t.Error("Cancel returned false")
	}
	if tm.Cancel("test1") {
		t.Error("Second cancel returned true")
	}

	time.Sleep(200 * time.Millisecond)

	if executed.Load() {
		t.Error("Task was executed despite being cancelled")
	}
}

func TestTimerManager_MultipleTasksOrdering(t *testing.T) {
	tm := NewTimerManager()
	tm.Start()
	defer tm.Stop()

	var results []int
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(3)

	record := func(n int) func() {
		return func() {
			mu.Lock()
			results = append(results, n)
			mu.Unlock()
			wg.Done()
		}
	}

	// Schedule tasks in reverse order
	now := time.Now()
	tm.Schedule("task3", now.Add(150*time.Millisecond), record(3))
	tm.Schedule("task1", now.Add(50*time.Millisecond), record(1))
	tm.Schedule("task2", now.Add(100*time.Millisecond), record(2))

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[0] != 1 || results[1] != 2 || results[2] != 3 {
		t.Errorf("Tasks executed in wrong order: %v", results)
	}
}

func TestTimerManager_RescheduleExisting(t *testing.T) {
	tm := NewTimerManager()
	tm.Start()
	defer tm.Stop()

	var count atomic.Int32

	tm.Schedule("test1", time.Now().Add(100*time.Millisecond), func() {
		count.Add(1)
	})

	// Reschedule with same ID (should replace)
	tm.Schedule("test1", time.Now().Add(50*time.Millisecond), func() {
		count.Add(10)
	})

	time.Sleep(200 * time.Millisecond)

	if got := count.Load(); got != 10 {
		t.Errorf("Expected count=10 (only second task), got %d", got)
	}
}

func TestTimerManager_SelfRescheduling(t *testing.T) {
	tm := NewTimerManager()
	tm.Start()
	defer tm.Stop()

	var runs atomic.Int32
	done := make(chan struct{})

	var next func()
	next = func() {
		if runs.Add(1) == 3 {
			close(done)
			return
		}
		tm.Schedule("tick", time.Now().Add(10*time.Millisecond), next)
	}
	tm.Schedule("tick", time.Now(), next)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Expected 3 runs, got %d", runs.Load())
	}
}

func TestTimerManager_StopWaitsForRunningCallback(t *testing.T) {
	tm := NewTimerManager()
	tm.Start()

	started := make(chan struct{})
	var finished atomic.Bool

	tm.Schedule("slow", time.Now(), func() {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
	})

	<-started
	tm.Stop()

	if !finished.Load() {
		t.Error("Stop returned before the running callback finished")
	}
}

func TestTimerManager_ScheduleAfterStop(t *testing.T) {
	tm := NewTimerManager()
	tm.Start()
	tm.Stop()
	tm.Stop()

	if err := tm.Schedule("late", time.Now(), func() {}); err != ErrManagerStopped {
		t.Errorf("Expected ErrManagerStopped, got %v", err)
	}
}

func TestTimerManager_Stats(t *testing.T) {
	tm := NewTimerManager()
	tm.Start()
	defer tm.Stop()

	tm.Schedule("task1", time.Now().Add(1*time.Hour), func() {})
	tm.Schedule("task2", time.Now().Add(2*time.Hour), func() {})
	tm.Schedule("task3", time.Now().Add(3*time.Hour), func() {})

	stats := tm.Stats()
	if stats.ScheduledTasks != 3 {
		t.Errorf("Expected 3 scheduled tasks, got %d", stats.ScheduledTasks)
	}
	if stats.RunningTasks != 0 {
		t.Errorf("Expected 0 running tasks, got %d", stats.RunningTasks)
	}
}
