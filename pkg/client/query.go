package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

const defaultMaxEntries = 256

// QueryOptions controls caching for one endpoint.
type QueryOptions struct {
	// StaleTime is how long fetched data is served without refetching.
	StaleTime time.Duration
	// GCTime evicts entries that have not been read for this long.
	GCTime time.Duration
	// RefetchInterval is the Watch polling period. Zero disables polling.
	RefetchInterval time.Duration
	// FetchTimeout bounds a shared fetch once it no longer follows any
	// single caller's context. Zero means defaultTimeout.
	FetchTimeout time.Duration
	MaxEntries   int
}

// Result is the outcome of a query read. On a failed refetch Err is set and
// Data still holds the last successful value.
type Result[T any] struct {
	Data      T
	Err       error
	UpdatedAt time.Time
	IsStale   bool
	FromCache bool
}

type entry[T any] struct {
	data      T
	updatedAt time.Time
}

// Query caches the responses of one endpoint keyed by its parameters.
type Query[P any, T any] struct {
	name      string
	opts      QueryOptions
	fetch     func(ctx context.Context, params P) (T, error)
	normalize func(P) P

	cache *expirable.LRU[string, entry[T]]
	group singleflight.Group
	now   func() time.Time
}

// NewQuery wraps fetch with a cache. normalize, if set, maps params to their
// effective values before they are used as a cache key.
func NewQuery[P any, T any](name string, opts QueryOptions, fetch func(ctx context.Context, params P) (T, error), normalize func(P) P) *Query[P, T] {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = defaultMaxEntries
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultTimeout
	}
	return &Query[P, T]{
		name:      name,
		opts:      opts,
		fetch:     fetch,
		normalize: normalize,
		cache:     expirable.NewLRU[string, entry[T]](opts.MaxEntries, nil, opts.GCTime),
		now:       time.Now,
	}
}

func (q *Query[P, T]) key(params P) (string, P, error) {
	if q.normalize != nil {
		params = q.normalize(params)
	}
	b, err := json.Marshal(params)
	if err != nil {
		return "", params, fmt.Errorf("encode %s params: %w", q.name, err)
	}
	return q.name + ":" + string(b), params, nil
}

// Get returns cached data while it is fresh and fetches otherwise.
func (q *Query[P, T]) Get(ctx context.Context, params P) Result[T] {
	return q.read(ctx, params, false)
}

// Refetch fetches regardless of freshness.
func (q *Query[P, T]) Refetch(ctx context.Context, params P) Result[T] {
	return q.read(ctx, params, true)
}

func (q *Query[P, T]) read(ctx context.Context, params P, force bool) Result[T] {
	key, params, err := q.key(params)
	if err != nil {
		return Result[T]{Err: err}
	}

	cached, ok := q.cache.Get(key)
	if ok && !force && q.now().Sub(cached.updatedAt) < q.opts.StaleTime {
		// Reading an entry keeps it alive for another GCTime.
		q.cache.Add(key, cached)
		return Result[T]{Data: cached.data, UpdatedAt: cached.updatedAt, FromCache: true}
	}

	// Shared by every caller waiting on key. It ignores the starting caller's
	// cancellation; each caller stops waiting on its own ctx instead.
	ch := q.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.opts.FetchTimeout)
		defer cancel()
		data, err := q.fetch(fetchCtx, params)
		if err != nil {
			return nil, err
		}
		fresh := entry[T]{data: data, updatedAt: q.now()}
		q.cache.Add(key, fresh)
		return fresh, nil
	})

	var v any
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case res := <-ch:
		v, err = res.Val, res.Err
	}
	if err != nil {
		if ok {
			return Result[T]{Data: cached.data, Err: err, UpdatedAt: cached.updatedAt, IsStale: true, FromCache: true}
		}
		return Result[T]{Err: err}
	}

	fresh := v.(entry[T])
	return Result[T]{Data: fresh.data, UpdatedAt: fresh.updatedAt}
}

// Watch emits a result immediately and then every RefetchInterval until ctx
// is done. The channel is closed when ctx is done.
func (q *Query[P, T]) Watch(ctx context.Context, params P) <-chan Result[T] {
	out := make(chan Result[T], 1)

	go func() {
		defer close(out)

		emit := func(r Result[T]) bool {
			select {
			case out <- r:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit(q.Get(ctx, params)) {
			return
		}
		if q.opts.RefetchInterval <= 0 {
			<-ctx.Done()
			return
		}

		ticker := time.NewTicker(q.opts.RefetchInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !emit(q.Refetch(ctx, params)) {
					return
				}
			}
		}
	}()

	return out
}

// Invalidate drops the cached entry for params.
func (q *Query[P, T]) Invalidate(params P) {
	if key, _, err := q.key(params); err == nil {
		q.cache.Remove(key)
	}
}

// InvalidateAll drops every cached entry of this query.
func (q *Query[P, T]) InvalidateAll() {
	q.cache.Purge()
}

// Options returns the query's cache policy.
func (q *Query[P, T]) Options() QueryOptions {
	return q.opts
}
