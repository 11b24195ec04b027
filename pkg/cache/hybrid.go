package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// InvalidationStrategy controls how an Invalidate call propagates (§4.1).
type InvalidationStrategy int

const (
	// Immediate purges the local tier now and deletes the shared-tier key.
	Immediate InvalidationStrategy = iota
	// Delayed purges the local tier now but lets the shared-tier key expire
	// naturally via TTL, avoiding a write under contention.
	Delayed
	// Scheduled marks the key for the next sweep cycle instead of acting now.
	Scheduled
	// Smart cascades to every key that depends on the invalidated one (e.g.
	// invalidating a room's availability also invalidates hotel occupancy).
	Smart
)

const invalidationChannel = "hotelcore:cache:invalidate"

// Metrics is a point-in-time snapshot of hit/miss counters per tier.
type Metrics struct {
	LocalHits    int64
	LocalMisses  int64
	SharedHits   int64
	SharedMisses int64
	Errors       int64
}

// Service is the Hybrid Cache's public surface.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fetch func() (interface{}, error), dest interface{}) error
	Invalidate(ctx context.Context, key string, strategy InvalidationStrategy) error
	InvalidatePattern(ctx context.Context, pattern string) error
	Warm(ctx context.Context, key string, ttl time.Duration, fetch func() (interface{}, error)) error
	// Incr is the one operation that bypasses the local tier entirely — an
	// atomic counter (e.g. the Demand Tracker's event counts, §4.4) must be
	// serialized on the shared tier or concurrent processes would each keep
	// their own divergent count.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RunSweep(ctx context.Context)
	Snapshot() Metrics
	Ping(ctx context.Context) error
}

// CascadeFunc derives the additional keys a Smart invalidation of key should
// also purge (e.g. a room's availability key cascades to its hotel's
// occupancy key). Callers register one per subsystem; nil means no cascade.
type CascadeFunc func(key string) []string

type hybrid struct {
	shared               KVDriver
	local                *localTier
	compressionThreshold int

	cascade CascadeFunc
	sf      singleflight.Group

	scheduled chan string

	metrics Metrics
}

type Options struct {
	CompressionThreshold int
	LocalCapacity        int
	Cascade              CascadeFunc
}

func New(shared KVDriver, opts Options) Service {
	if opts.LocalCapacity <= 0 {
		opts.LocalCapacity = 4096
	}
	h := &hybrid{
		shared:               shared,
		local:                newLocalTier(opts.LocalCapacity),
		compressionThreshold: opts.CompressionThreshold,
		cascade:              opts.Cascade,
		scheduled:            make(chan string, 1024),
	}
	return h
}

func (h *hybrid) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if entry, ok := h.local.get(key); ok {
		atomic.AddInt64(&h.metrics.LocalHits, 1)
		return true, json.Unmarshal(entry.value, dest)
	}
	atomic.AddInt64(&h.metrics.LocalMisses, 1)

	stored, found, err := h.shared.Get(ctx, key)
	if err != nil {
		atomic.AddInt64(&h.metrics.Errors, 1)
		return false, fmt.Errorf("hybrid cache get: %w", err)
	}
	if !found {
		atomic.AddInt64(&h.metrics.SharedMisses, 1)
		return false, nil
	}
	atomic.AddInt64(&h.metrics.SharedHits, 1)

	value, err := maybeDecompress(stored)
	if err != nil {
		return false, fmt.Errorf("hybrid cache decompress: %w", err)
	}

	h.local.set(key, localEntry{value: value})
	return true, json.Unmarshal(value, dest)
}

func (h *hybrid) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("hybrid cache marshal: %w", err)
	}

	h.local.set(key, localEntry{value: raw})

	stored, err := maybeCompress(raw, h.compressionThreshold)
	if err != nil {
		return fmt.Errorf("hybrid cache compress: %w", err)
	}
	if err := h.shared.Set(ctx, key, stored, ttl); err != nil {
		atomic.AddInt64(&h.metrics.Errors, 1)
		return fmt.Errorf("hybrid cache set: %w", err)
	}
	return nil
}

// GetOrSet implements the cache-aside pattern: on miss it calls fetch,
// coalescing concurrent callers for the same key into a single fetch via
// single-flight, then populates both tiers fire-and-forget.
func (h *hybrid) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetch func() (interface{}, error), dest interface{}) error {
	if found, err := h.Get(ctx, key, dest); err != nil {
		return err
	} else if found {
		return nil
	}

	raw, err, _ := h.sf.Do(key, func() (interface{}, error) {
		data, ferr := fetch()
		if ferr != nil {
			return nil, fmt.Errorf("fetcher error: %w", ferr)
		}
		marshalled, merr := json.Marshal(data)
		if merr != nil {
			return nil, fmt.Errorf("marshal fetched data: %w", merr)
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if setErr := h.Set(setCtx, key, data, ttl); setErr != nil {
				atomic.AddInt64(&h.metrics.Errors, 1)
			}
		}()

		return marshalled, nil
	})
	if err != nil {
		return err
	}

	return json.Unmarshal(raw.([]byte), dest)
}

func (h *hybrid) Warm(ctx context.Context, key string, ttl time.Duration, fetch func() (interface{}, error)) error {
	data, err := fetch()
	if err != nil {
		return fmt.Errorf("warm fetch: %w", err)
	}
	return h.Set(ctx, key, data, ttl)
}

func (h *hybrid) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := h.shared.Incr(ctx, key, ttl)
	if err != nil {
		atomic.AddInt64(&h.metrics.Errors, 1)
		return 0, fmt.Errorf("hybrid cache incr: %w", err)
	}
	h.local.purge(key)
	return n, nil
}

func (h *hybrid) Invalidate(ctx context.Context, key string, strategy InvalidationStrategy) error {
	switch strategy {
	case Immediate:
		h.local.purge(key)
		if err := h.shared.Delete(ctx, key); err != nil {
			return err
		}
		return h.notifyPurge(ctx, key)
	case Delayed:
		h.local.purge(key)
		return h.notifyPurge(ctx, key)
	case Scheduled:
		select {
		case h.scheduled <- key:
		default:
		}
		return nil
	case Smart:
		if err := h.Invalidate(ctx, key, Immediate); err != nil {
			return err
		}
		if h.cascade == nil {
			return nil
		}
		for _, dependent := range h.cascade(key) {
			if err := h.Invalidate(ctx, dependent, Immediate); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown invalidation strategy %v", strategy)
	}
}

func (h *hybrid) InvalidatePattern(ctx context.Context, pattern string) error {
	h.local.purgeAll()
	return h.shared.DeletePattern(ctx, pattern)
}

func (h *hybrid) notifyPurge(ctx context.Context, key string) error {
	return h.shared.Publish(ctx, invalidationChannel, []byte(key))
}

// RunSweep drains Scheduled invalidations and purges cross-process local
// tiers as peers publish invalidation notices. Intended to be run once per
// process from a background worker (§2 Background Workers).
func (h *hybrid) RunSweep(ctx context.Context) {
	notices := h.shared.Subscribe(ctx, invalidationChannel)
	for {
		select {
		case <-ctx.Done():
			return
		case key := <-h.scheduled:
			h.local.purge(key)
			_ = h.shared.Delete(ctx, key)
		case key, ok := <-notices:
			if !ok {
				return
			}
			h.local.purge(key)
		}
	}
}

func (h *hybrid) Snapshot() Metrics {
	return Metrics{
		LocalHits:    atomic.LoadInt64(&h.metrics.LocalHits),
		LocalMisses:  atomic.LoadInt64(&h.metrics.LocalMisses),
		SharedHits:   atomic.LoadInt64(&h.metrics.SharedHits),
		SharedMisses: atomic.LoadInt64(&h.metrics.SharedMisses),
		Errors:       atomic.LoadInt64(&h.metrics.Errors),
	}
}

func (h *hybrid) Ping(ctx context.Context) error {
	return h.shared.Ping(ctx)
}
