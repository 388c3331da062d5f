package cache

import (
	"context"
	"time"
)

// Result is the typed form of Snapshot.
type Result[T any] struct {
	Status    Status
	Data      T
	HasData   bool
	Err       error
	Fetching  bool
	Stale     bool
	UpdatedAt time.Time
}

func (r Result[T]) IsSkipped() bool { return r.Status == StatusSkipped }

func (r Result[T]) IsLoading() bool {
	return r.Status == StatusLoading || r.Status == StatusUninitialized
}

func (r Result[T]) IsSuccess() bool { return r.Status == StatusSuccess }

func (r Result[T]) IsError() bool { return r.Status == StatusError }

// Settled reports whether no request is outstanding for this result.
func (r Result[T]) Settled() bool {
	switch r.Status {
	case StatusSkipped:
		return true
	case StatusSuccess, StatusError:
		return !r.Fetching
	default:
		return false
	}
}

// Query declares a cached endpoint taking A and producing T.
type Query[A any, T any] struct {
	Name         string
	Fetch        func(ctx context.Context, arg A) (T, error)
	ProvidesTags func(result T, err error, arg A) []Tag
	// Skip suppresses the request for arguments that are not ready yet.
	Skip      func(arg A) bool
	Ephemeral bool
}

func (q Query[A, T]) Key(arg A) string {
	return Key(q.Name, arg)
}

func (q Query[A, T]) Subscribe(c *Cache, arg A) *Watch[T] {
	req := Request{
		Key:       q.Key(arg),
		Ephemeral: q.Ephemeral,
		Skip:      q.Skip != nil && q.Skip(arg),
		Fetch: func(ctx context.Context) (any, error) {
			return q.Fetch(ctx, arg)
		},
	}
	if q.ProvidesTags != nil {
		req.Provides = func(data any, err error) []Tag {
			result, _ := data.(T)
			return q.ProvidesTags(result, err, arg)
		}
	}
	return &Watch[T]{Subscription: c.Subscribe(req)}
}

// Watch is a typed subscription.
type Watch[T any] struct {
	*Subscription
}

func (w *Watch[T]) Result() Result[T] {
	snap := w.Snapshot()
	r := Result[T]{
		Status:    snap.Status,
		HasData:   snap.HasData,
		Err:       snap.Err,
		Fetching:  snap.Fetching,
		Stale:     snap.Stale,
		UpdatedAt: snap.UpdatedAt,
	}
	if snap.HasData {
		r.Data, _ = snap.Data.(T)
	}
	return r
}

// Wait blocks until the result settles or ctx is done.
func (w *Watch[T]) Wait(ctx context.Context) (Result[T], error) {
	for {
		r := w.Result()
		if r.Settled() {
			return r, nil
		}
		select {
		case <-w.Changed():
		case <-ctx.Done():
			return r, ctx.Err()
		}
	}
}

// Mutation declares a remote write and the invalidation kind it belongs to.
type Mutation[A any, T any] struct {
	Kind string
	// Prepare validates arg and may normalize it before it is sent.
	Prepare func(arg A) (A, error)
	Do      func(ctx context.Context, arg A) (T, error)
	// ID extracts the entity id used by ByID invalidation rules.
	ID func(arg A) int
}

// Run validates arg, performs the mutation and, on success, invalidates the
// tags the table lists for m.Kind. Invalid arguments never reach Do.
func (m Mutation[A, T]) Run(ctx context.Context, c *Cache, table InvalidationTable, arg A) (T, error) {
	var zero T
	if m.Prepare != nil {
		prepared, err := m.Prepare(arg)
		if err != nil {
			return zero, err
		}
		arg = prepared
	}

	tags, err := table.Tags(m.Kind, m.id(arg))
	if err != nil {
		return zero, err
	}

	result, err := m.Do(ctx, arg)
	if err != nil {
		return zero, err
	}
	c.Invalidate(tags...)
	return result, nil
}

func (m Mutation[A, T]) id(arg A) int {
	if m.ID == nil {
		return 0
	}
	return m.ID(arg)
}
