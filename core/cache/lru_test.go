package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestLRU_Basic(t *testing.T) {
	l := NewLRU[string, int](LRUOpts{Size: 2})

	l.Put("a", 1)
	l.Put("b", 2)

	val, ok := l.Get("a")
	if !ok || val != 1 {
		t.Errorf("expected a=1, got %v, %v", val, ok)
	}

	l.Put("c", 3) // should evict "b"

	if _, ok = l.Get("b"); ok {
		t.Errorf("expected b to be evicted")
	}

	val, ok = l.Get("c")
	if !ok || val != 3 {
		t.Errorf("expected c=3, got %v, %v", val, ok)
	}
	if l.Len() != 2 {
		t.Errorf("expected len 2, got %d", l.Len())
	}
}

func TestLRU_Update(t *testing.T) {
	l := NewLRU[string, int](LRUOpts{Size: 2})

	l.Put("a", 1)
	l.Put("a", 2)

	val, ok := l.Get("a")
	if !ok || val != 2 {
		t.Errorf("expected a=2, got %v, %v", val, ok)
	}
	if l.Len() != 1 {
		t.Errorf("expected len 1, got %d", l.Len())
	}
}

func TestLRU_Promotion(t *testing.T) {
	l := NewLRU[string, int](LRUOpts{Size: 2})

	l.Put("a", 1)
	l.Put("b", 2)

	// Promote "a"
	l.Get("a")

	l.Put("c", 3) // should evict "b" because "a" was promoted

	if _, ok := l.Get("b"); ok {
		t.Errorf("expected b to be evicted")
	}
	if _, ok := l.Get("a"); !ok {
		t.Errorf("expected a to be present")
	}
}

func TestLRU_SharesValues(t *testing.T) {
	l := NewLRU[string, []*int](LRUOpts{Size: 2})
	x := 1
	in := []*int{&x}
	l.Put("a", in)

	out, ok := l.Get("a")
	if !ok || out[0] != &x {
		t.Errorf("expected the cached slice to hold the same pointer")
	}
}

func TestLRU_Concurrent(t *testing.T) {
	l := NewLRU[string, int](LRUOpts{Size: 100})

	const workers = 10
	const ops = 1000

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := 0; j < ops; j++ {
				l.Put(fmt.Sprintf("key-%d", j%150), j)
				l.Get("key-1")
			}
		}(i)
	}
	wg.Wait()

	if l.Len() > 100 {
		t.Errorf("expected at most 100 entries, got %d", l.Len())
	}
}

func TestLRU_Delete(t *testing.T) {
	l := NewLRU[string, int](LRUOpts{Size: 2})

	l.Put("a", 1)
	l.Put("b", 2)

	l.Delete("a")

	if _, ok := l.Get("a"); ok {
		t.Errorf("expected a to be deleted")
	}

	val, ok := l.Get("b")
	if !ok || val != 2 {
		t.Errorf("expected b=2, got %v, %v", val, ok)
	}

	// Delete non-existent key should not panic
	l.Delete("nonexistent")
}

func TestLRU_DefaultSize(t *testing.T) {
	l := NewLRU[string, int](LRUOpts{}) // Size defaults to 128

	for i := 0; i < 128; i++ {
		l.Put(fmt.Sprintf("k%d", i), i)
	}

	if _, ok := l.Get("k0"); !ok {
		t.Errorf("expected first key to be present at size 128")
	}

	l.Put("overflow", 999)

	val, ok := l.Get("overflow")
	if !ok || val != 999 {
		t.Errorf("expected overflow=999, got %v, %v", val, ok)
	}
	// k1 is the least recently used one now
	if _, ok := l.Get("k1"); ok {
		t.Errorf("expected k1 to be evicted")
	}
}
