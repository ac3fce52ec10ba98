// Package stmtcache implements a [Cache] of compiled statements
// with least-recently-used (LRU) replacement.
//
// A statement is identified by a [Key] describing how it was compiled:
// its SQL text plus whichever optional creation parameters were supplied
// (generated-keys flag, returned column indexes or names, result-set
// type/concurrency/holdability), and whether it is a callable statement.
// The same SQL text compiled with different parameters yields distinct keys.
//
// Glossary and invariants:
//
//   - Kind
//
//     The variant of a key. Keys of different kinds are never equal.
//
//   - Recency list
//
//     Entries ordered from least to most recently used.
//     [Cache.Get] and [Cache.Put] move an entry to the most recently used end.
//
//   - Release
//
//     Closing a statement's value. The cache closes a value exactly once,
//     when its entry is evicted or cleared, and never otherwise.
//     Close errors are logged (see [WithLogger]) and never returned.
//
// Operations:
//
//   - Eviction
//
//     Inserting a new key into a full cache removes the least recently used
//     entry before the new one is linked, so Len never exceeds Cap.
//
//   - Refresh
//
//     Putting an existing key replaces its value in place.
//     The previous value is not closed.
//
// Storage:
//
//   - Entries live in an arena of slots addressed by index,
//     linked into a circular recency list with a sentinel slot.
//     Freed slots are reused, so a full cache does not allocate on eviction.
//
//   - The index maps [Key.Hash] to the head of a chain of slots;
//     lookups compare candidates with [Key.Equal].
package stmtcache
