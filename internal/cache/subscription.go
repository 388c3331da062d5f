package cache

import "sync"

// Subscription is one consumer's handle on a cache entry. Changed fires
// (coalesced) whenever the entry's snapshot changes.
type Subscription struct {
	id      uint64
	cache   *Cache
	key     string
	skipped bool
	changed chan struct{}
	once    sync.Once
}

func (s *Subscription) Key() string {
	return s.key
}

func (s *Subscription) Changed() <-chan struct{} {
	return s.changed
}

// Snapshot returns the current state. A skipped subscription never loads and
// never errors.
func (s *Subscription) Snapshot() Snapshot {
	if s.skipped {
		return Snapshot{Status: StatusSkipped}
	}
	return s.cache.snapshot(s)
}

// Refetch issues a new request for the entry, superseding any in flight. The
// superseded request is not cancelled, so two calls for the key may overlap.
func (s *Subscription) Refetch() {
	if s.skipped {
		return
	}
	s.cache.refetch(s)
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		if !s.skipped {
			s.cache.unsubscribe(s)
		}
	})
}

func (s *Subscription) signal() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}
