package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetOrCompute_MissThenHit(t *testing.T) {
	c := New[string]()
	calls := 0
	compute := func() (string, error) {
		calls++
		return "digest", nil
	}

	v, err := c.GetOrCompute("key", time.Hour, compute)
	if err != nil {
		t.Fatalf("GetOrCompute failed: %v", err)
	}
	if v != "digest" {
		t.Errorf("unexpected value: %q", v)
	}

	v, err = c.GetOrCompute("key", time.Hour, compute)
	if err != nil {
		t.Fatalf("GetOrCompute failed: %v", err)
	}
	if v != "digest" {
		t.Errorf("unexpected value on hit: %q", v)
	}
	if calls != 1 {
		t.Errorf("expected 1 computation, got %d", calls)
	}
}

func TestGetOrCompute_LazyExpiry(t *testing.T) {
	c := New[int]()
	current := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	calls := 0
	compute := func() (int, error) {
		calls++
		return calls, nil
	}

	if v, _ := c.GetOrCompute("k", time.Hour, compute); v != 1 {
		t.Fatalf("expected first computation, got %d", v)
	}

	// still fresh
	current = current.Add(59 * time.Minute)
	if v, _ := c.GetOrCompute("k", time.Hour, compute); v != 1 {
		t.Errorf("expected cached value before TTL, got %d", v)
	}

	// past the TTL, recompute on access
	current = current.Add(2 * time.Minute)
	if v, _ := c.GetOrCompute("k", time.Hour, compute); v != 2 {
		t.Errorf("expected recomputation after TTL, got %d", v)
	}
	if calls != 2 {
		t.Errorf("expected 2 computations, got %d", calls)
	}
}

func TestGetOrCompute_ErrorNotStored(t *testing.T) {
	c := New[string]()
	boom := errors.New("boom")
	calls := 0

	_, err := c.GetOrCompute("k", time.Hour, func() (string, error) {
		calls++
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected compute error, got %v", err)
	}

	v, err := c.GetOrCompute("k", time.Hour, func() (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil || v != "ok" {
		t.Fatalf("expected recovery on next call, got %q, %v", v, err)
	}
	if calls != 2 {
		t.Errorf("expected 2 computations, got %d", calls)
	}
}

func TestGetOrCompute_ConcurrentMissesComputeOnce(t *testing.T) {
	c := New[string]()
	var calls atomic.Int32

	compute := func() (string, error) {
		calls.Add(1)
		time.Sleep(50 * time.Millisecond) // hold the flight open
		return "shared", nil
	}

	const goroutines = 10
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrCompute("k", time.Hour, compute)
			if err != nil {
				t.Errorf("GetOrCompute failed: %v", err)
			}
			if v != "shared" {
				t.Errorf("unexpected value: %q", v)
			}
		}()
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("expected exactly 1 computation for concurrent misses, got %d", got)
	}
}

func TestGetOrCompute_DistinctKeys(t *testing.T) {
	c := New[string]()

	a, _ := c.GetOrCompute("a", time.Hour, func() (string, error) { return "va", nil })
	b, _ := c.GetOrCompute("b", time.Hour, func() (string, error) { return "vb", nil })

	if a != "va" || b != "vb" {
		t.Errorf("keys must not collide: got %q, %q", a, b)
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}
}

func TestInvalidate(t *testing.T) {
	c := New[string]()
	calls := 0
	compute := func() (string, error) {
		calls++
		return "v", nil
	}

	c.GetOrCompute("k", time.Hour, compute)
	c.Invalidate("k")
	c.GetOrCompute("k", time.Hour, compute)

	if calls != 2 {
		t.Errorf("expected recomputation after Invalidate, got %d calls", calls)
	}
}
