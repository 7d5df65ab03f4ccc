package cache

import (
	"testing"
	"time"
)

func TestLRUCacheGetSet(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set("a", 1)
	c.Set("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected a=1, got %d ok=%v", v, ok)
	}

	// "a" was just touched, so adding a third entry evicts "b".
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a retained")
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	c := NewLRUCache[string](10, 10*time.Millisecond)
	c.Set("k", "v")
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected expired entry to miss")
	}

	c.Set("k2", "v")
	time.Sleep(20 * time.Millisecond)
	if removed := c.CleanExpired(); removed != 1 {
		t.Fatalf("expected 1 expired entry cleaned, got %d", removed)
	}
	if c.Size() != 0 {
		t.Fatalf("expected empty cache, got size %d", c.Size())
	}
}

func TestLRUCacheDeletePrefix(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("u1:summary", 1)
	c.Set("u1:trend", 2)
	c.Set("u2:summary", 3)

	if removed := c.DeletePrefix("u1:"); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if _, ok := c.Get("u1:summary"); ok {
		t.Fatal("expected u1 entries gone")
	}
	if v, ok := c.Get("u2:summary"); !ok || v != 3 {
		t.Fatal("expected u2 entry untouched")
	}
}
