package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// mockResult implements Result
type mockResult struct {
	id  int
	err error
}

func (r *mockResult) GetError() error {
	return r.err
}

// mockJob implements Job
type mockJob struct {
	id        int
	duration  time.Duration
	shouldErr bool
	executed  *int32 // atomic counter
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{id: j.id, err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{id: j.id, err: errors.New("job error")}
	}
	return &mockResult{id: j.id}
}

func TestNewPool(t *testing.T) {
	p1 := NewPool(context.Background(), 5, 0)
	if p1.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p1.workers)
	}

	p2 := NewPool(context.Background(), 0, 0)
	if p2.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p2.workers)
	}

	p3 := NewPool(context.Background(), -1, 0)
	if p3.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p3.workers)
	}
}

func TestPool_ResultsInSubmissionOrder(t *testing.T) {
	pool := NewPool(context.Background(), 4, 0)
	pool.Start()

	var executed int32
	count := 12
	for i := 0; i < count; i++ {
		// Later jobs finish first
		pool.Submit(&mockJob{id: i, duration: time.Duration(count-i) * time.Millisecond, executed: &executed})
	}

	results := pool.Wait()
	if len(results) != count {
		t.Fatalf("expected %d results, got %d", count, len(results))
	}
	for i, res := range results {
		if res.(*mockResult).id != i {
			t.Errorf("result %d belongs to job %d", i, res.(*mockResult).id)
		}
	}
	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed)
	}
}

// concurrencyJob tracks max concurrent executions
type concurrencyJob struct {
	start    func()
	end      func()
	duration time.Duration
}

func (j *concurrencyJob) Execute(ctx context.Context) Result {
	if j.start != nil {
		j.start()
	}
	time.Sleep(j.duration)
	if j.end != nil {
		j.end()
	}
	return &mockResult{}
}

func TestPool_Concurrency(t *testing.T) {
	workers := 10
	pool := NewPool(context.Background(), workers, 0)
	pool.Start()

	var current int32
	var maxConcurrent int32
	var completed int32
	var mu sync.Mutex

	totalJobs := 50

	for i := 0; i < totalJobs; i++ {
		pool.Submit(&concurrencyJob{
			start: func() {
				curr := atomic.AddInt32(&current, 1)
				mu.Lock()
				if curr > maxConcurrent {
					maxConcurrent = curr
				}
				mu.Unlock()
			},
			end: func() {
				atomic.AddInt32(&current, -1)
				atomic.AddInt32(&completed, 1)
			},
			duration: 10 * time.Millisecond,
		})
	}

	pool.Wait()

	if atomic.LoadInt32(&completed) != int32(totalJobs) {
		t.Errorf("expected %d completed jobs, got %d", totalJobs, completed)
	}

	mu.Lock()
	max := maxConcurrent
	mu.Unlock()

	if max > int32(workers) {
		t.Errorf("max concurrency %d exceeded workers %d", max, workers)
	}
}

func TestPool_ErrorIsolation(t *testing.T) {
	pool := NewPool(context.Background(), 2, 0)
	pool.Start()

	pool.Submit(&mockJob{id: 0, shouldErr: true})
	pool.Submit(&mockJob{id: 1})
	pool.Submit(&mockJob{id: 2})

	results := pool.Wait()
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].GetError() == nil {
		t.Error("expected job 0 to fail")
	}
	if results[1].GetError() != nil || results[2].GetError() != nil {
		t.Error("sibling jobs must not be affected by one failure")
	}
}

func TestPool_JobTimeout(t *testing.T) {
	pool := NewPool(context.Background(), 2, 20*time.Millisecond)
	pool.Start()

	pool.Submit(&mockJob{id: 0, duration: time.Second})
	pool.Submit(&mockJob{id: 1})

	results := pool.Wait()
	if !errors.Is(results[0].GetError(), context.DeadlineExceeded) {
		t.Errorf("expected slow job to hit its timeout, got %v", results[0].GetError())
	}
	if results[1].GetError() != nil {
		t.Errorf("fast job should succeed, got %v", results[1].GetError())
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool(context.Background(), 2, 0)
	pool.Start()
	pool.Shutdown()

	done := make(chan bool)
	go func() {
		done <- pool.Submit(&mockJob{})
	}()

	select {
	case accepted := <-done:
		if accepted {
			t.Error("Submit after shutdown should be rejected")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestPool_SubmitConcurrentWithWait(t *testing.T) {
	pool := NewPool(context.Background(), 2, 0)
	pool.Start()

	var accepted int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if pool.Submit(&mockJob{id: i, duration: time.Millisecond}) {
				atomic.AddInt32(&accepted, 1)
			}
		}()
	}

	results := pool.Wait()
	wg.Wait()

	if int32(len(results)) != atomic.LoadInt32(&accepted) {
		t.Errorf("Expected %d results, got %d", accepted, len(results))
	}
	for i, r := range results {
		if r == nil {
			t.Errorf("Accepted job %d has no result", i)
		}
	}
	if pool.Submit(&mockJob{}) {
		t.Error("Submit after Wait should be rejected")
	}
}

func TestPool_Shutdown(t *testing.T) {
	pool := NewPool(context.Background(), 2, 0)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(&mockJob{id: 0, duration: 5 * time.Second, executed: nil})
	pool.Submit(&concurrencyJob{start: func() { close(started) }})
	<-started

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Shutdown timed out")
	}
}

func TestMap_OrderAndFallback(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	out := Map(context.Background(), 3, 0, items, func(ctx context.Context, n int) int {
		return n * n
	})

	want := []int{1, 4, 9, 16, 25}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %d, want %d", i, out[i], want[i])
		}
	}
}

func TestMap_CancelledContextStillResolvesEveryItem(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := Map(ctx, 2, 0, []string{"a", "b", "c"}, func(ctx context.Context, s string) string {
		if ctx.Err() != nil {
			return s + ":fallback"
		}
		return s
	})

	for i, s := range []string{"a", "b", "c"} {
		if out[i] != s+":fallback" {
			t.Errorf("out[%d] = %q, want fallback", i, out[i])
		}
	}
}

func TestMap_Empty(t *testing.T) {
	out := Map(context.Background(), 2, 0, []int{}, func(ctx context.Context, n int) int { return n })
	if len(out) != 0 {
		t.Errorf("expected empty output, got %v", out)
	}
}
