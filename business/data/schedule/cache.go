package schedule

import "sync"

// Cache holds loaded schedules keyed by their source path, so the
// ingestion loop's file-pairing scheduler does not reparse the same
// static feed for every realtime file matched against it. Entries are
// immutable once inserted: a single mutex guards the map itself, not the
// Schedule values it holds.
type Cache struct {
	provider Provider

	mu        sync.Mutex
	schedules map[string]*Schedule
}

// NewCache builds an empty Cache backed by provider.
func NewCache(provider Provider) *Cache {
	return &Cache{provider: provider, schedules: make(map[string]*Schedule)}
}

// Get returns the Schedule for path, loading and caching it on first
// request.
func (c *Cache) Get(path string) (*Schedule, error) {
	c.mu.Lock()
	if s, ok := c.schedules[path]; ok {
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()

	s, err := c.provider.Load(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.schedules[path]; ok {
		// Another goroutine loaded the same path first; keep its result so
		// every caller observes the same *Schedule instance.
		return existing, nil
	}
	c.schedules[path] = s
	return s, nil
}
