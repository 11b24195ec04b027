package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// localEntry is always stored uncompressed per §4.1: the local tier trades
// memory for the CPU cost the shared tier pays to decompress.
type localEntry struct {
	value   []byte
	version uint64
}

// localTier is an entry-count-bounded LRU, not byte-size-bounded — see
// DESIGN.md Open Question 4.
type localTier struct {
	cache *lru.Cache[string, localEntry]
}

func newLocalTier(capacity int) *localTier {
	c, _ := lru.New[string, localEntry](capacity)
	return &localTier{cache: c}
}

func (t *localTier) get(key string) (localEntry, bool) {
	return t.cache.Get(key)
}

func (t *localTier) set(key string, entry localEntry) {
	t.cache.Add(key, entry)
}

func (t *localTier) purge(key string) {
	t.cache.Remove(key)
}

func (t *localTier) purgeAll() {
	t.cache.Purge()
}

func (t *localTier) len() int {
	return t.cache.Len()
}
