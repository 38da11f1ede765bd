package performance

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestWorkerPoolRunsAllTasks(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Start()

	var counter atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		ok := pool.Submit(func() {
			counter.Add(1)
			wg.Done()
		})
		if !ok {
			t.Fatalf("submit %d rejected", i)
		}
	}
	wg.Wait()
	pool.Stop()

	if got := counter.Load(); got != 50 {
		t.Errorf("tasks run = %d, want 50", got)
	}
	stats := pool.Stats()
	if stats.TasksTotal != 50 {
		t.Errorf("tasks total = %d, want 50", stats.TasksTotal)
	}
}

func TestWorkerPoolRejectsWhenStopped(t *testing.T) {
	pool := NewWorkerPool(2)
	if pool.Submit(func() {}) {
		t.Error("submit before Start should be rejected")
	}

	pool.Start()
	pool.Stop()
	if pool.Submit(func() {}) {
		t.Error("submit after Stop should be rejected")
	}
}

// SubmitWait must accept far more tasks than the queue holds by waiting for
// workers to drain it, never dropping a task.
func TestWorkerPoolSubmitWaitAppliesBackpressure(t *testing.T) {
	pool := NewWorkerPool(1) // queue capacity 100
	pool.Start()

	var counter atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 350; i++ {
		wg.Add(1)
		ok := pool.SubmitWait(context.Background(), func() {
			counter.Add(1)
			wg.Done()
		})
		if !ok {
			t.Fatalf("submit %d not accepted", i)
		}
	}
	wg.Wait()
	pool.Stop()

	if got := counter.Load(); got != 350 {
		t.Errorf("tasks run = %d, want 350", got)
	}
}

func TestWorkerPoolSubmitWaitHonorsCancellation(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Start()

	// Occupy the single worker, then fill the queue so SubmitWait has to
	// wait and the cancelled context is its only way out.
	blocker := make(chan struct{})
	if !pool.Submit(func() { <-blocker }) {
		t.Fatal("blocking task rejected")
	}
	for pool.Submit(func() {}) {
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if pool.SubmitWait(ctx, func() {}) {
		t.Error("submit with cancelled context should not be accepted")
	}

	close(blocker)
	pool.Stop()
}

func TestBatchProcessorFlushesOnSize(t *testing.T) {
	var batches [][]int
	bp := NewBatchProcessor(3, func(items []int) error {
		batch := make([]int, len(items))
		copy(batch, items)
		batches = append(batches, batch)
		return nil
	})

	for i := 1; i <= 7; i++ {
		if err := bp.Add(i); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	if err := bp.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	if len(batches) != 3 {
		t.Fatalf("batches = %d, want 3", len(batches))
	}
	if len(batches[0]) != 3 || len(batches[1]) != 3 || len(batches[2]) != 1 {
		t.Errorf("batch sizes = %d/%d/%d, want 3/3/1", len(batches[0]), len(batches[1]), len(batches[2]))
	}
}

func BenchmarkWorkerPool(b *testing.B) {
	pool := NewWorkerPool(4)
	pool.Start()
	defer pool.Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		done := make(chan struct{})
		pool.Submit(func() { close(done) })
		<-done
	}
}
