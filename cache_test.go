package ecs

import "testing"

func TestCacheBasicOperations(t *testing.T) {
	const capacity = 10
	cache := NewSimpleCache[string](capacity)

	items := []string{"item1", "item2", "item3", "item4", "item5"}
	indices := make([]int, len(items))

	for i, item := range items {
		index, err := cache.Register(item, item)
		if err != nil {
			t.Errorf("failed to register item %s: %v", item, err)
		}
		indices[i] = index
		if index != i {
			t.Errorf("index for item %s is %d, expected %d", item, index, i)
		}
	}

	for i, item := range items {
		index, found := cache.GetIndex(item)
		if !found {
			t.Errorf("item %s not found in cache", item)
		}
		if index != indices[i] {
			t.Errorf("index for item %s is %d, expected %d", item, index, indices[i])
		}
	}

	for i, item := range items {
		cachedItem := cache.GetItem(indices[i])
		if *cachedItem != item {
			t.Errorf("item at index %d is %s, expected %s", indices[i], *cachedItem, item)
		}
	}

	if _, found := cache.GetIndex("nonexistent"); found {
		t.Errorf("found non-existent item in cache")
	}
}

func TestCacheCapacity(t *testing.T) {
	const capacity = 5
	cache := NewSimpleCache[int](capacity)

	for i := 0; i < capacity; i++ {
		key := string(rune('a' + i))
		if _, err := cache.Register(key, i); err != nil {
			t.Errorf("failed to register item %s: %v", key, err)
		}
	}

	if _, err := cache.Register("overflow", 100); err == nil {
		t.Errorf("expected error when exceeding cache capacity, got none")
	}
}

func TestCacheReRegisterUpdatesInPlace(t *testing.T) {
	cache := NewSimpleCache[int](2)

	idx, err := cache.Register("k", 1)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	idx2, err := cache.Register("k", 2)
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if idx != idx2 {
		t.Errorf("re-registering an existing key should keep its index, got %d and %d", idx, idx2)
	}
	if *cache.GetItem(idx) != 2 {
		t.Errorf("re-registering should update the stored value in place")
	}

	// Re-registering an existing key must not count against capacity.
	if _, err := cache.Register("other", 3); err != nil {
		t.Errorf("registering a second distinct key should still fit within capacity: %v", err)
	}
}

func TestCacheClear(t *testing.T) {
	cache := NewSimpleCache[string](10)

	items := []string{"item1", "item2", "item3"}
	for _, item := range items {
		if _, err := cache.Register(item, item); err != nil {
			t.Errorf("failed to register item %s: %v", item, err)
		}
	}

	cache.Clear()

	for _, item := range items {
		if _, found := cache.GetIndex(item); found {
			t.Errorf("item %s still found after cache clear", item)
		}
	}

	for _, item := range items {
		if _, err := cache.Register(item, item); err != nil {
			t.Errorf("failed to register item %s after clear: %v", item, err)
		}
	}
}
