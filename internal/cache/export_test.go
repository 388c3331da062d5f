package cache

// Peek returns the snapshot stored under key without subscribing.
func (c *Cache) Peek(key string) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Snapshot{}, false
	}
	return e.snap, true
}
