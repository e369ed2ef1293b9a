package llm

import (
	"encoding/json"
	"os"
	"sync"

	vlog "github.com/futureCreator/tutorgen/internal/log"
)

// Cache is a prompt→response store persisted as a single JSON file, so
// re-running generation over the same repository skips paid calls.
type Cache struct {
	mu      sync.Mutex
	path    string
	entries map[string]string
}

// OpenCache loads the cache at path, starting empty if the file is missing
// or unreadable.
func OpenCache(path string) *Cache {
	c := &Cache{path: path, entries: map[string]string{}}
	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		vlog.Warn("ignoring corrupt llm cache", "path", path, "err", err)
		c.entries = map[string]string{}
	}
	return c
}

// Get returns the cached response for prompt, if any.
func (c *Cache) Get(prompt string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	resp, ok := c.entries[prompt]
	return resp, ok
}

// Put stores a response and persists the cache. Persistence failures are
// logged, not fatal: losing a cache entry only costs a repeat call.
func (c *Cache) Put(prompt, response string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[prompt] = response

	data, err := json.Marshal(c.entries)
	if err != nil {
		vlog.Warn("failed to marshal llm cache", "err", err)
		return
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		vlog.Warn("failed to save llm cache", "path", c.path, "err", err)
	}
}

// Len reports how many responses are cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
