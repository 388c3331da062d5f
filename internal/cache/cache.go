// Package cache keeps query results keyed by endpoint and arguments, shares
// in-flight requests between subscribers and refetches entries whose tags a
// mutation invalidates.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

const DefaultKeepUnusedFor = 60 * time.Second

type Status int

const (
	StatusUninitialized Status = iota
	StatusSkipped
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "uninitialized"
	}
}

// Snapshot is an immutable view of one entry. Data keeps the last successful
// result even after a later request fails.
type Snapshot struct {
	Status    Status
	Data      any
	HasData   bool
	Err       error
	Fetching  bool
	Stale     bool
	UpdatedAt time.Time
}

type Fetcher func(ctx context.Context) (any, error)

type TagProvider func(data any, err error) []Tag

type Request struct {
	Key      string
	Fetch    Fetcher
	Provides TagProvider
	Skip     bool
	// Ephemeral entries are dropped as soon as the last subscriber leaves.
	Ephemeral bool
}

type Options struct {
	// KeepUnusedFor is how long an entry without subscribers survives.
	// Zero keeps entries until Close.
	KeepUnusedFor time.Duration
	Logger        *slog.Logger
}

type Cache struct {
	mu            sync.Mutex
	entries       map[string]*entry
	seq           uint64
	nextSub       uint64
	keepUnusedFor time.Duration
	logger        *slog.Logger
	ctx           context.Context
	cancel        context.CancelFunc
}

type entry struct {
	key       string
	fetch     Fetcher
	provides  TagProvider
	ephemeral bool
	snap      Snapshot
	tags      []Tag
	// tagsKnown is false until the first response has been stored
	tagsKnown bool
	// pending holds tags invalidated while the first request was in flight
	pending []Tag
	// generation of the newest request; responses from older ones are dropped
	generation uint64
	inflight   bool
	subs       map[uint64]*Subscription
	evict      *time.Timer
}

func New(opts Options) *Cache {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		entries:       make(map[string]*entry),
		keepUnusedFor: opts.KeepUnusedFor,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Key builds a cache key from an endpoint name and its arguments.
func Key(endpoint string, arg any) string {
	if arg == nil {
		return endpoint + "(undefined)"
	}
	b, err := json.Marshal(arg)
	if err != nil {
		return endpoint + "(?)"
	}
	return endpoint + "(" + string(b) + ")"
}

// Subscribe attaches a subscriber to the entry for req.Key, creating it and
// issuing a request when nothing usable is cached. A subscriber joining an
// in-flight request shares it.
func (c *Cache) Subscribe(req Request) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextSub++
	sub := &Subscription{
		id:      c.nextSub,
		cache:   c,
		key:     req.Key,
		changed: make(chan struct{}, 1),
	}
	if req.Skip {
		sub.skipped = true
		return sub
	}

	e, ok := c.entries[req.Key]
	if !ok {
		e = &entry{
			key:       req.Key,
			fetch:     req.Fetch,
			provides:  req.Provides,
			ephemeral: req.Ephemeral,
			subs:      make(map[uint64]*Subscription),
		}
		c.entries[req.Key] = e
	}
	if e.evict != nil {
		e.evict.Stop()
		e.evict = nil
	}
	e.subs[sub.id] = sub

	needsFetch := e.snap.Status == StatusUninitialized ||
		e.snap.Status == StatusError ||
		e.snap.Stale
	if needsFetch && !e.inflight {
		c.startFetch(e)
	}
	return sub
}

// Invalidate marks every entry that provided a matching tag as stale and
// refetches the ones that currently have subscribers. It returns the keys of
// the affected entries.
func (c *Cache) Invalidate(tags ...Tag) []string {
	if len(tags) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var keys []string
	for key, e := range c.entries {
		if !e.tagsKnown && e.inflight {
			// the entry's tags are only known once its response arrives
			e.pending = append(e.pending, tags...)
			keys = append(keys, key)
			continue
		}
		if !matches(tags, e.tags) {
			continue
		}
		keys = append(keys, key)
		e.snap.Stale = true
		if len(e.subs) > 0 {
			c.startFetch(e)
			continue
		}
		if e.inflight {
			// nobody is waiting; drop the outstanding response and let the
			// next subscriber fetch fresh data
			c.seq++
			e.generation = c.seq
			e.inflight = false
			e.snap.Fetching = false
		}
	}
	c.logger.Debug("invalidated tags", slog.Any("tags", tags), slog.Int("entries", len(keys)))
	return keys
}

// Close cancels outstanding requests and stops eviction timers.
func (c *Cache) Close() {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.evict != nil {
			e.evict.Stop()
		}
	}
}

func matches(invalidated, provided []Tag) bool {
	for _, inv := range invalidated {
		for _, p := range provided {
			if inv.Invalidates(p) {
				return true
			}
		}
	}
	return false
}

// startFetch must be called with c.mu held.
func (c *Cache) startFetch(e *entry) {
	c.seq++
	gen := c.seq
	e.generation = gen
	e.inflight = true
	e.snap.Fetching = true
	if !e.snap.HasData {
		e.snap.Status = StatusLoading
	}
	c.notify(e)

	c.logger.Debug("fetch", slog.String("key", e.key), slog.Uint64("generation", gen))
	go c.run(e, e.fetch, gen)
}

func (c *Cache) run(e *entry, fetch Fetcher, gen uint64) {
	data, err := fetch(c.ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e.generation != gen || c.entries[e.key] != e {
		c.logger.Debug("discarding superseded response", slog.String("key", e.key), slog.Uint64("generation", gen))
		return
	}

	e.inflight = false
	e.snap.Fetching = false
	e.snap.Stale = false
	if err != nil {
		e.snap.Status = StatusError
		e.snap.Err = err
	} else {
		e.snap.Status = StatusSuccess
		e.snap.Data = data
		e.snap.HasData = true
		e.snap.Err = nil
		e.snap.UpdatedAt = time.Now()
	}
	if e.provides != nil {
		e.tags = e.provides(data, err)
	} else {
		e.tags = nil
	}
	e.tagsKnown = true

	pending := e.pending
	e.pending = nil
	if matches(pending, e.tags) {
		// invalidated while loading; the stored result may predate the mutation
		e.snap.Stale = true
		if len(e.subs) > 0 {
			c.logger.Debug("refetching entry invalidated while loading", slog.String("key", e.key))
			c.startFetch(e)
			return
		}
	}
	c.notify(e)
}

// notify must be called with c.mu held.
func (c *Cache) notify(e *entry) {
	for _, sub := range e.subs {
		sub.signal()
	}
}

func (c *Cache) unsubscribe(sub *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[sub.key]
	if !ok {
		return
	}
	if _, attached := e.subs[sub.id]; !attached {
		return
	}
	delete(e.subs, sub.id)
	if len(e.subs) > 0 {
		return
	}

	switch {
	case e.ephemeral:
		delete(c.entries, e.key)
	case c.keepUnusedFor > 0:
		e.evict = time.AfterFunc(c.keepUnusedFor, func() { c.evictEntry(e) })
	}
}

func (c *Cache) evictEntry(e *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries[e.key] != e || len(e.subs) > 0 {
		return
	}
	delete(c.entries, e.key)
	c.logger.Debug("evicted unused entry", slog.String("key", e.key))
}

func (c *Cache) refetch(sub *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[sub.key]
	if !ok {
		return
	}
	if _, attached := e.subs[sub.id]; !attached {
		return
	}
	c.startFetch(e)
}

func (c *Cache) snapshot(sub *Subscription) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[sub.key]
	if !ok {
		return Snapshot{}
	}
	return e.snap
}
