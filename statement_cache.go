package sqlitekit

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// statementCache backs both the internal and public caches described in
// §4.2. It is bounded by an LRU (github.com/hashicorp/golang-lru/v2,
// already present transitively across the retrieved pack via
// modernc.org/sqlite's own driver) rather than an unbounded map, so a
// caller that prepares many distinct ad-hoc queries over a long-lived
// connection can't grow the cache without bound; SQLite's own
// auto-recompile budget (SQLITE_MAX_SCHEMA_RETRY) bounds *retries*, not
// cache *size*, which is the gap this fills.
type statementCache struct {
	entries *lru.Cache[string, *Stmt]
}

func newStatementCache(capacity int) *statementCache {
	c, err := lru.NewWithEvict[string, *Stmt](capacity, func(_ string, s *Stmt) {
		s.Close()
	})
	if err != nil {
		// Only returns an error for capacity <= 0, which never happens here.
		panic(err)
	}
	return &statementCache{entries: c}
}

// prepare returns the cached Stmt for sql, preparing and inserting it on a
// miss. The returned Stmt has already been reset and is ready for a fresh
// Exec/Query call.
func (sc *statementCache) prepare(c *Connection, sql string) (*Stmt, error) {
	if s, ok := sc.entries.Get(sql); ok {
		s.reset()
		return s, nil
	}
	s, err := newStmt(c, sql)
	if err != nil {
		return nil, err
	}
	if s.Valid() {
		sc.entries.Add(sql, s)
	}
	return s, nil
}

// clear finalizes every cached statement. Called on Close, on schema
// version change (§4.3 "clear_schema_cache_if_needed"), and on explicit
// Connection.ClearSchemaCache.
func (sc *statementCache) clear() {
	for _, key := range sc.entries.Keys() {
		sc.entries.Remove(key) // triggers the eviction callback, closing the Stmt
	}
}

// ClearStatementCaches finalizes every statement cached on this
// connection, without touching the schema metadata cache. Exposed mainly
// for tests; ClearSchemaCache (schema_cache.go) is the caller-facing
// combined operation named in §6.
func (c *Connection) ClearStatementCaches() {
	c.assertOwner()
	c.internalCache.clear()
	c.publicCache.clear()
}
