package cache

import (
	"fmt"
	"testing"
)

func TestNewGrammarCache(t *testing.T) {
	c := NewGrammarCache(10)
	if c.Size() != 0 {
		t.Error("new cache should be empty")
	}
}

func TestGrammarCachePutGet(t *testing.T) {
	c := NewGrammarCache(10)
	compiled := &Compiled{Source: "root : \"x\" ;", HasExpressions: true}

	c.Put("hash-a", compiled)

	got, ok := c.Get("hash-a")
	if !ok || got != compiled {
		t.Error("should retrieve same compiled form")
	}
	if !got.HasExpressions {
		t.Error("compiled facts should survive caching")
	}
	if _, ok := c.Get("hash-b"); ok {
		t.Error("unknown hash should miss")
	}
}

func TestGrammarCacheOverwrite(t *testing.T) {
	c := NewGrammarCache(10)
	c.Put("h", &Compiled{Source: "one"})
	c.Put("h", &Compiled{Source: "two"})
	if c.Size() != 1 {
		t.Errorf("overwrite should not grow the cache, size %d", c.Size())
	}
	got, _ := c.Get("h")
	if got.Source != "two" {
		t.Errorf("expected latest entry, got %q", got.Source)
	}
}

func TestGrammarCacheEviction(t *testing.T) {
	c := NewGrammarCache(2)
	c.Put("h1", &Compiled{})
	c.Put("h2", &Compiled{})
	c.Put("h3", &Compiled{})

	if c.Size() != 2 {
		t.Errorf("expected size 2 after eviction, got %d", c.Size())
	}
	if _, ok := c.Get("h1"); ok {
		t.Error("oldest entry should be evicted first")
	}
	if _, ok := c.Get("h3"); !ok {
		t.Error("newest entry should survive")
	}

	_, _, evictions := c.Stats()
	if evictions != 1 {
		t.Errorf("expected 1 eviction, got %d", evictions)
	}
}

func TestGrammarCacheUnlimited(t *testing.T) {
	c := NewGrammarCache(0)
	for i := 0; i < 100; i++ {
		c.Put(fmt.Sprintf("h%d", i), &Compiled{})
	}
	if c.Size() != 100 {
		t.Errorf("unlimited cache should keep everything, size %d", c.Size())
	}
}

func TestGrammarCacheStats(t *testing.T) {
	c := NewGrammarCache(10)
	c.Put("h", &Compiled{})
	c.Get("h")
	c.Get("h")
	c.Get("missing")

	hits, misses, evictions := c.Stats()
	if hits != 2 || misses != 1 || evictions != 0 {
		t.Errorf("expected 2/1/0, got %d/%d/%d", hits, misses, evictions)
	}
}

func TestGrammarCacheClear(t *testing.T) {
	c := NewGrammarCache(10)
	c.Put("h", &Compiled{})
	c.Clear()
	if c.Size() != 0 {
		t.Error("clear should empty the cache")
	}
}
