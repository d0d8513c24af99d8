// Record cache: a bounded, always-dirty write-back cache of decoded
// records keyed by rid. Every present entry is assumed dirty, since the
// facade's workload is read-modify-write — a load is always followed by
// a mutation before the entry could be evicted clean. Overflow triggers
// a clean pass: the lowest rids (by file index, then record index) are
// encoded, written through to paged storage, and evicted, freeing a
// fixed fraction of the cache.
//
// This generalises a bounded map with an ordered eviction list — the
// same shape an LRU read cache uses — to a write-back cache where
// eviction always costs a write instead of sometimes being free.
package paperindex

import (
	"fmt"
	"math"
	"sort"
)

// RecordCache holds decoded records in memory, bounded at maxSize.
type RecordCache struct {
	storage      *PagedStorage
	codec        *Codec
	maxSize      int
	cleanFactor  float64
	ridWidth     int
	entries      map[string]*Record
	rids         map[string]RID
	droppedYears func(paperRID string, n int)
}

// NewRecordCache returns a cache backed by storage, encoding/decoding
// with codec, bounded per cfg.
func NewRecordCache(storage *PagedStorage, codec *Codec, cfg Config, ridWidth int, onDroppedYears func(ridKey string, n int)) *RecordCache {
	return &RecordCache{
		storage:      storage,
		codec:        codec,
		maxSize:      cfg.MaxCacheSize,
		cleanFactor:  cfg.CacheCleanFactor,
		ridWidth:     ridWidth,
		entries:      make(map[string]*Record),
		rids:         make(map[string]RID),
		droppedYears: onDroppedYears,
	}
}

func (c *RecordCache) key(rid RID) string { return rid.String(c.ridWidth) }

// GetOrLoad returns the cached record for rid, loading it from paged
// storage through the codec on a miss.
func (c *RecordCache) GetOrLoad(rid RID) (*Record, error) {
	k := c.key(rid)
	if r, ok := c.entries[k]; ok {
		return r, nil
	}

	raw, err := c.storage.Read(rid)
	if err != nil {
		return nil, err
	}
	r, err := c.codec.Decode(raw)
	if err != nil {
		return nil, err
	}
	if err := c.insert(k, rid, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Put inserts or overwrites the cached record for rid unconditionally,
// used right after a new rid is allocated so its first access is a hit.
// An error here means an overflow-triggered clean pass failed to write
// an evicted record through to paged storage, a fatal I/O condition.
func (c *RecordCache) Put(rid RID, r *Record) error {
	return c.insert(c.key(rid), rid, r)
}

func (c *RecordCache) insert(k string, rid RID, r *Record) error {
	c.entries[k] = r
	c.rids[k] = rid
	if len(c.entries) > c.maxSize {
		return c.cleanPass(c.evictCount())
	}
	return nil
}

func (c *RecordCache) evictCount() int {
	n := int(math.Ceil(c.cleanFactor * float64(len(c.entries))))
	if n < 1 {
		n = 1
	}
	if n > len(c.entries) {
		n = len(c.entries)
	}
	return n
}

// cleanPass flushes the n lowest rids in the cache to paged storage and
// removes them.
func (c *RecordCache) cleanPass(n int) error {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := c.rids[keys[i]], c.rids[keys[j]]
		if a.FileIndex != b.FileIndex {
			return a.FileIndex < b.FileIndex
		}
		return a.RecordIndex < b.RecordIndex
	})
	if n > len(keys) {
		n = len(keys)
	}

	for _, k := range keys[:n] {
		rid := c.rids[k]
		r := c.entries[k]
		data, dropped, err := c.codec.Encode(r)
		if err != nil {
			return fmt.Errorf("record cache: encode %s: %w", k, err)
		}
		if dropped > 0 && c.droppedYears != nil {
			c.droppedYears(k, dropped)
		}
		if err := c.storage.Write(rid, data); err != nil {
			return fmt.Errorf("record cache: write %s: %w", k, err)
		}
		delete(c.entries, k)
		delete(c.rids, k)
	}
	return nil
}

// FlushAll writes every cached record through to paged storage and
// empties the cache.
func (c *RecordCache) FlushAll() error {
	return c.cleanPass(len(c.entries))
}

// Len returns the current number of cached entries.
func (c *RecordCache) Len() int { return len(c.entries) }
