package embedding

import "testing"

func TestEmbeddingCache(t *testing.T) {
	c := NewEmbeddingCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})

	if v, ok := c.Get("a"); !ok || v[0] != 1 {
		t.Error("expected cached value for a")
	}

	// "a" was just touched, so inserting "c" evicts "b".
	c.Set("c", []float32{3})
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should still be cached")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should be cached")
	}
}
