package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

func TestWorkerPool_Workers(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"explicit", 4, 4},
		{"zero", 0, runtime.GOMAXPROCS(0)},
		{"negative", -5, runtime.GOMAXPROCS(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewWorkerPool(tt.workers)
			defer pool.Close()
			if got := pool.Workers(); got != tt.want {
				t.Errorf("Workers() = %d, want %d", got, tt.want)
			}
			if !pool.IsRunning() {
				t.Error("pool should be running after creation")
			}
		})
	}
}

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	work := make([]func(), 100)
	for i := range work {
		work[i] = func() { counter.Add(1) }
	}
	pool.ExecuteAll(work)

	if got := counter.Load(); got != 100 {
		t.Errorf("counter = %d, want 100", got)
	}
}

func TestWorkerPool_ExecuteAllLargerThanQueues(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	var counter atomic.Int64
	work := make([]func(), 1000)
	for i := range work {
		work[i] = func() { counter.Add(1) }
	}
	pool.ExecuteAll(work)

	if got := counter.Load(); got != 1000 {
		t.Errorf("counter = %d, want 1000", got)
	}
}

func TestWorkerPool_ClosedRunsInline(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	pool.Close()

	if pool.IsRunning() {
		t.Fatal("pool still running after Close")
	}
	ran := 0
	pool.ExecuteAll([]func(){func() { ran++ }, func() { ran++ }})
	if ran != 2 {
		t.Errorf("ran = %d, want 2", ran)
	}
}

func TestWorkerPool_Rows(t *testing.T) {
	tests := []struct {
		name   string
		y0, y1 int
	}{
		{"empty", 5, 5},
		{"inverted", 10, 3},
		{"single row", 0, 1},
		{"below band size", 0, MinBandRows},
		{"many bands", 0, 1000},
		{"offset", 37, 611},
	}
	pool := NewWorkerPool(4)
	defer pool.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mu sync.Mutex
			seen := map[int]int{}
			pool.Rows(tt.y0, tt.y1, func(a, b int) {
				if a >= b {
					t.Errorf("empty band [%d, %d)", a, b)
				}
				mu.Lock()
				defer mu.Unlock()
				for y := a; y < b; y++ {
					seen[y]++
				}
			})

			want := max(tt.y1-tt.y0, 0)
			if len(seen) != want {
				t.Fatalf("covered %d rows, want %d", len(seen), want)
			}
			for y := tt.y0; y < tt.y1; y++ {
				if seen[y] != 1 {
					t.Errorf("row %d visited %d times", y, seen[y])
				}
			}
		})
	}
}

func TestDefault(t *testing.T) {
	if Default() != Default() {
		t.Error("Default returned different pools")
	}
	if !Default().IsRunning() {
		t.Error("default pool not running")
	}
}
