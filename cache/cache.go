// Package cache provides memoization for compiled template grammars.
// Grammar compilation walks the whole annotated AST, so stores and services
// that reload the same template repeatedly key the compiled form by the
// template's identity hash instead of rebuilding it.
package cache

import (
	"sync"

	"github.com/templet-xyz/go-templet/cfg"
)

// Compiled bundles everything a registry needs to adopt a cached grammar:
// the executable form, its rendered source, and the embedded-expressions
// flag discovered during compilation.
type Compiled struct {
	Grammar        *cfg.Grammar
	Source         string
	HasExpressions bool
}

// GrammarCache caches compiled grammars keyed by template identity hash.
type GrammarCache struct {
	mu        sync.RWMutex
	cache     map[string]*Compiled
	order     []string
	maxSize   int
	hits      int64
	misses    int64
	evictions int64
}

// NewGrammarCache creates a cache with the specified maximum size.
// When the cache is full, oldest entries are evicted (FIFO).
// Set maxSize to 0 for unlimited cache.
func NewGrammarCache(maxSize int) *GrammarCache {
	return &GrammarCache{
		cache:   make(map[string]*Compiled),
		maxSize: maxSize,
	}
}

// Get retrieves a cached compiled grammar by identity hash.
func (c *GrammarCache) Get(hash string) (*Compiled, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.cache[hash]; ok {
		c.hits++
		return e, true
	}
	c.misses++
	return nil, false
}

// Put stores a compiled grammar under an identity hash.
func (c *GrammarCache) Put(hash string, compiled *Compiled) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.cache[hash]; !exists {
		if c.maxSize > 0 && len(c.cache) >= c.maxSize {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.cache, oldest)
			c.evictions++
		}
		c.order = append(c.order, hash)
	}
	c.cache[hash] = compiled
}

// Size returns the number of cached grammars.
func (c *GrammarCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Stats returns hit, miss and eviction counters.
func (c *GrammarCache) Stats() (hits, misses, evictions int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses, c.evictions
}

// Clear removes all cached grammars.
func (c *GrammarCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*Compiled)
	c.order = nil
}
