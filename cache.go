package stmtcache

import (
	"io"
	"iter"
	"log/slog"

	"github.com/djdv/go-stmtcache/internal/ring"
)

type (
	entry[Value io.Closer] struct {
		key   Key
		value Value
		// chain links entries whose keys share a hash.
		chain ring.Index
	}
	// Cache maps statement [Key]s to compiled statements,
	// evicting the least recently used statement when full.
	// Evicted and cleared statements are closed.
	// Concurrent access must be guarded by the caller.
	// Constructed by [New].
	Cache[Value io.Closer] struct {
		index    map[uint64]ring.Index
		recency  *ring.Ring[entry[Value]]
		logger   *slog.Logger
		capacity int
	}
	releaseReason string
)

// MinimumCapacity defines the lowest value supported by [New].
const MinimumCapacity = 1

const (
	reasonEvict releaseReason = "evict"
	reasonClear releaseReason = "clear"
)

// New creates a [Cache] holding at most capacity statements.
func New[Value io.Closer](capacity int, options ...Option) (*Cache[Value], error) {
	if capacity < MinimumCapacity {
		return nil, minCapacityError(capacity)
	}
	settings := newSettings(options)
	return &Cache[Value]{
		capacity: capacity,
		index:    make(map[uint64]ring.Index, capacity),
		recency:  ring.New[entry[Value]](capacity),
		logger:   settings.logger,
	}, nil
}

// Get returns the statement for key and marks it
// as most recently used; otherwise it returns
// the zero value and false.
func (c *Cache[Value]) Get(key Key) (Value, bool) {
	if i := c.lookup(key); i != ring.Nil {
		c.recency.MoveToBack(i)
		return c.recency.At(i).value, true
	}
	var zero Value
	return zero, false
}

// Put inserts or replaces the statement for key
// and marks it as most recently used.
// It panics if key is the zero [Key].
// If the cache is full, the least recently used
// statement is removed and closed first.
//
// Replacing a statement does not close the previous value;
// it is returned to the caller's ownership.
func (c *Cache[Value]) Put(key Key, value Value) {
	if key.kind == 0 {
		panic(zeroKeyError())
	}
	if i := c.lookup(key); i != ring.Nil {
		c.recency.At(i).value = value
		c.recency.MoveToBack(i)
		return
	}
	if c.recency.Len() == c.capacity {
		c.evict()
	}
	c.insert(key, value)
	if debugging {
		assert(c.recency.Len() <= c.capacity,
			"cache exceeded its capacity")
	}
}

// Load returns the cached statement for key. Otherwise, it calls prepare,
// inserts and returns the statement on success.
// If prepare returns an error, nothing is cached.
// Like [Cache.Put], it panics if key is the zero [Key].
func (c *Cache[Value]) Load(key Key, prepare func() (Value, error)) (Value, error) {
	if key.kind == 0 {
		panic(zeroKeyError())
	}
	if value, ok := c.Get(key); ok {
		return value, nil
	}
	value, err := prepare()
	if err != nil {
		return value, err
	}
	c.Put(key, value)
	return value, nil
}

// Clear removes and closes every statement.
// The capacity is unchanged.
func (c *Cache[Value]) Clear() {
	if c.recency.Len() == 0 {
		return
	}
	removed := make([]entry[Value], 0, c.recency.Len())
	for _, slot := range c.recency.All() {
		removed = append(removed, *slot)
	}
	clear(c.index)
	c.recency.Reset()
	for _, slot := range removed {
		c.release(slot, reasonClear)
	}
}

// Len returns the number of cached statements.
func (c *Cache[_]) Len() int { return c.recency.Len() }

// Cap returns the maximum number of cached statements.
func (c *Cache[_]) Cap() int { return c.capacity }

// Keys returns an iterator over the cached keys,
// from least to most recently used.
func (c *Cache[_]) Keys() iter.Seq[Key] {
	return func(yield func(Key) bool) {
		for _, slot := range c.recency.All() {
			if !yield(slot.key) {
				return
			}
		}
	}
}

func (c *Cache[Value]) lookup(key Key) ring.Index {
	i, ok := c.index[key.Hash()]
	if !ok {
		return ring.Nil
	}
	for i != ring.Nil {
		candidate := c.recency.At(i)
		if candidate.key.Equal(key) {
			return i
		}
		i = candidate.chain
	}
	return ring.Nil
}

func (c *Cache[Value]) insert(key Key, value Value) {
	hash := key.Hash()
	c.index[hash] = c.recency.PushBack(entry[Value]{
		key:   key,
		value: value,
		chain: c.index[hash],
	})
}

// evict removes the least recently used entry
// from both the index and the recency list
// before releasing its value.
func (c *Cache[Value]) evict() {
	oldest := c.recency.Front()
	if debugging {
		assert(oldest != ring.Nil, "evicting from an empty cache")
	}
	c.unindex(oldest)
	c.release(c.recency.Remove(oldest), reasonEvict)
}

func (c *Cache[Value]) unindex(i ring.Index) {
	var (
		target = c.recency.At(i)
		hash   = target.key.Hash()
		head   = c.index[hash]
	)
	if head == i {
		if target.chain == ring.Nil {
			delete(c.index, hash)
		} else {
			c.index[hash] = target.chain
		}
		return
	}
	for prev := head; prev != ring.Nil; {
		link := c.recency.At(prev)
		if link.chain == i {
			link.chain = target.chain
			return
		}
		prev = link.chain
	}
	if debugging {
		assert(false, "entry missing from its hash chain")
	}
}

// release closes the value of a removed entry.
// Errors and panics from Close are logged and otherwise discarded.
func (c *Cache[Value]) release(removed entry[Value], reason releaseReason) {
	defer func() {
		if recovered := recover(); recovered != nil {
			c.logReleaseFailure(removed.key, reason,
				slog.Any("panic", recovered))
		}
	}()
	if err := removed.value.Close(); err != nil {
		c.logReleaseFailure(removed.key, reason,
			slog.Any("error", err))
	}
}

func (c *Cache[_]) logReleaseFailure(key Key, reason releaseReason, cause slog.Attr) {
	c.logger.Warn("failed to close cached statement",
		slog.String("reason", string(reason)),
		slog.String("kind", key.Kind().String()),
		slog.String("sql", key.SQL()),
		cause,
	)
}
