package container

import "testing"

func TestBoundedMap_PutGet(t *testing.T) {
	m := NewBoundedMap[string, int](4)
	m.Put("a", 1)
	m.Put("b", 2)

	if v, ok := m.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a): expected 1, got %d (ok=%v)", v, ok)
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("Get(missing) should report absence")
	}
	if m.Len() != 2 {
		t.Errorf("Len: expected 2, got %d", m.Len())
	}
}

func TestBoundedMap_EvictsOldest(t *testing.T) {
	m := NewBoundedMap[int, string](3)
	m.Put(1, "one")
	m.Put(2, "two")
	m.Put(3, "three")
	m.Put(4, "four") // evicts 1

	if _, ok := m.Get(1); ok {
		t.Error("expected oldest key 1 evicted")
	}
	if v, ok := m.Get(4); !ok || v != "four" {
		t.Error("newest key 4 should be present")
	}
	if m.Len() != 3 {
		t.Errorf("Len: expected 3, got %d", m.Len())
	}

	m.Put(5, "five") // evicts 2
	if _, ok := m.Get(2); ok {
		t.Error("expected key 2 evicted next")
	}
	if _, ok := m.Get(3); !ok {
		t.Error("key 3 should survive")
	}
}

func TestBoundedMap_ReplaceDoesNotEvict(t *testing.T) {
	m := NewBoundedMap[int, string](2)
	m.Put(1, "one")
	m.Put(2, "two")
	m.Put(1, "uno")

	if v, _ := m.Get(1); v != "uno" {
		t.Errorf("expected replaced value, got %q", v)
	}
	if _, ok := m.Get(2); !ok {
		t.Error("replacement must not evict")
	}
	if m.Len() != 2 {
		t.Errorf("Len: expected 2, got %d", m.Len())
	}
}

func TestBoundedMap_PanicsOnBadCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for capacity 0")
		}
	}()
	NewBoundedMap[int, int](0)
}
