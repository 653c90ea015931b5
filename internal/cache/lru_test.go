// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestLRU_BasicOperations(t *testing.T) {
	c := NewLRU[[]float32](3, time.Minute)

	c.Add("a", []float32{1})
	c.Add("b", []float32{2})

	v, found := c.Get("a")
	if !found || v[0] != 1 {
		t.Errorf("Get(a) = %v, %v", v, found)
	}
	if _, found := c.Get("missing"); found {
		t.Error("Expected miss for unknown key")
	}
	if c.Len() != 2 {
		t.Errorf("Expected len 2, got %d", c.Len())
	}

	hits, misses, _, size := c.Stats()
	if hits != 1 || misses != 1 || size != 2 {
		t.Errorf("Stats() = %d hits, %d misses, %d size", hits, misses, size)
	}
}

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU[int](3, time.Minute)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)
	c.Get("a")

	if evicted := c.Add("d", 4); !evicted {
		t.Error("Expected an eviction at capacity")
	}
	if _, found := c.Get("b"); found {
		t.Error("Expected 'b' to be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, found := c.Get(k); !found {
			t.Errorf("Expected %q to be present", k)
		}
	}
	if _, _, evictions, _ := c.Stats(); evictions != 1 {
		t.Errorf("evictions = %d, want 1", evictions)
	}
}

func TestLRU_UpdateExisting(t *testing.T) {
	c := NewLRU[string](2, time.Minute)
	c.Add("a", "old")
	if evicted := c.Add("a", "new"); evicted {
		t.Error("Updating a key must not evict")
	}
	if v, _ := c.Get("a"); v != "new" {
		t.Errorf("Get(a) = %q, want new", v)
	}
}

func TestLRU_TTLExpiration(t *testing.T) {
	c := NewLRU[int](10, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Add("a", 1)
	c.Add("b", 2)
	if _, found := c.Get("a"); !found {
		t.Fatal("Expected to find 'a' before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, found := c.Get("a"); found {
		t.Error("Expected 'a' to be expired")
	}
	if removed := c.CleanupExpired(); removed != 1 {
		t.Errorf("CleanupExpired() = %d, want 1", removed)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestLRU_RemoveAndClear(t *testing.T) {
	c := NewLRU[int](5, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)

	if !c.Remove("a") || c.Remove("a") {
		t.Error("Remove should succeed once")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	c.Add("c", 3)
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Error("cache unusable after Clear")
	}
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU[int](100, time.Minute)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := strconv.Itoa((g*500 + i) % 150)
				c.Add(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 100 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
}
