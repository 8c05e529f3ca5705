package encoder

import (
	"crypto/sha256"
	"sync"
)

// Cache keeps recently computed vectors keyed by the SHA-256 of their text.
// When full, the oldest entry is evicted first.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[[sha256.Size]byte][]float32
	order    [][sha256.Size]byte
}

// NewCache returns nil for a non-positive capacity; a nil Cache stores nothing.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		return nil
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[[sha256.Size]byte][]float32, capacity),
	}
}

func (c *Cache) Get(text string) ([]float32, bool) {
	if c == nil {
		return nil, false
	}

	key := sha256.Sum256([]byte(text))
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries[key]
	return v, ok
}

func (c *Cache) Put(text string, vector []float32) {
	if c == nil {
		return
	}

	key := sha256.Sum256([]byte(text))
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = vector
		return
	}
	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = vector
	c.order = append(c.order, key)
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
