package sqlitekit

import "strings"

// cached represents the C3 "missing vs value(T)" variant: a cache entry
// that has definitely been resolved, either to a concrete value or to
// "this table/view does not exist in this schema" — the latter is just as
// valuable to remember as the former, since it avoids repeated
// introspection of nonexistent tables (§3 rationale).
// The zero value (what a map returns for a key never looked up) has
// resolved == false, so get reports it as a miss.
type cached[T any] struct {
	resolved bool
	missing  bool
	value    T
}

func cachedValue[T any](v T) cached[T] { return cached[T]{resolved: true, value: v} }
func cachedMissing[T any]() cached[T]  { return cached[T]{resolved: true, missing: true} }

func (c cached[T]) get() (T, bool) {
	var zero T
	if !c.resolved || c.missing {
		return zero, false
	}
	return c.value, true
}

type tableKey struct {
	schema SchemaIdentifier
	name   string // lower-cased
}

// schemaCache is C3: one SchemaInfo per attached schema, plus per-table
// metadata caches keyed by (schema, lower-cased name).
type schemaCache struct {
	schemas map[SchemaIdentifier]*SchemaInfo
	order   []SchemaIdentifier // resolution order: temp, main, attached...

	columns     map[tableKey]cached[[]ColumnInfo]
	primaryKey  map[tableKey]cached[*PrimaryKeyInfo]
	indexes     map[tableKey]cached[[]IndexInfo]
	foreignKeys map[tableKey]cached[[]ForeignKeyInfo]
	hasRowID    map[tableKey]cached[bool]
}

func newSchemaCache() *schemaCache {
	return &schemaCache{
		schemas:     make(map[SchemaIdentifier]*SchemaInfo),
		columns:     make(map[tableKey]cached[[]ColumnInfo]),
		primaryKey:  make(map[tableKey]cached[*PrimaryKeyInfo]),
		indexes:     make(map[tableKey]cached[[]IndexInfo]),
		foreignKeys: make(map[tableKey]cached[[]ForeignKeyInfo]),
		hasRowID:    make(map[tableKey]cached[bool]),
	}
}

func (sc *schemaCache) clear() {
	sc.schemas = make(map[SchemaIdentifier]*SchemaInfo)
	sc.order = nil
	sc.columns = make(map[tableKey]cached[[]ColumnInfo])
	sc.primaryKey = make(map[tableKey]cached[*PrimaryKeyInfo])
	sc.indexes = make(map[tableKey]cached[[]IndexInfo])
	sc.foreignKeys = make(map[tableKey]cached[[]ForeignKeyInfo])
	sc.hasRowID = make(map[tableKey]cached[bool])
}

func key(schema SchemaIdentifier, name string) tableKey {
	return tableKey{schema: schema, name: strings.ToLower(name)}
}

// ClearSchemaCache discards every cached schema and per-table entry,
// forcing the next introspection call to re-query the engine. Callers
// that issue DDL through a *different* connection rely on the
// version-gated auto-invalidation in clearSchemaCacheIfNeeded instead;
// this method is for same-connection DDL, which the engine does not
// surface through PRAGMA schema_version until the next statement
// boundary on some SQLite builds.
func (c *Connection) ClearSchemaCache() {
	c.assertOwner()
	c.schemaCache.clear()
	c.internalCache.clear()
	c.publicCache.clear()
}

// clearSchemaCacheIfNeeded implements §4.3 "Version-gated invalidation":
// read the 32-bit schema-version header; if it differs from what's
// cached, clear every cache (schema and statement) and store the new
// value. A stored value of 0 (no read yet, or an empty database) counts as
// unknown: the schema cache is cleared then, and the statement caches kept.
func (c *Connection) clearSchemaCacheIfNeeded() error {
	v, err := fetchSchemaVersion(c)
	if err != nil {
		return err
	}
	if v == c.lastSchemaVersion && c.lastSchemaVersion != 0 {
		return nil
	}
	first := c.lastSchemaVersion == 0
	c.lastSchemaVersion = v
	c.schemaCache.clear()
	if first {
		return nil
	}
	c.internalCache.clear()
	c.publicCache.clear()
	return nil
}

// resolvedSchemaOrder returns the connection's schema search order (temp,
// main, attached...), fetching and caching it on first use. It does not
// need version-gating on its own: ATTACH/DETACH during the connection's
// lifetime are rare and always go through this connection, so callers
// that attach/detach should call ClearSchemaCache explicitly.
func (c *Connection) resolvedSchemaOrder() ([]SchemaIdentifier, error) {
	if c.schemaCache.order != nil {
		return c.schemaCache.order, nil
	}
	ids, err := fetchSchemaIdentifiers(c)
	if err != nil {
		return nil, err
	}
	c.schemaCache.order = ids
	return ids, nil
}

// schemaInfo returns (and lazily populates) the SchemaInfo for one schema.
func (c *Connection) schemaInfo(schema SchemaIdentifier) (*SchemaInfo, error) {
	if si, ok := c.schemaCache.schemas[schema]; ok {
		return si, nil
	}
	objects, err := fetchMasterObjects(c, schema)
	if err != nil {
		return nil, err
	}
	si := newSchemaInfo(objects)
	c.schemaCache.schemas[schema] = si
	return si, nil
}

// resolveSchemas returns the schemas to search: just `schema` if the
// caller named one (after validating it exists), or every resolved schema
// in resolution order otherwise (§4.3 lookup contracts).
func (c *Connection) resolveSchemas(schema *SchemaIdentifier) ([]SchemaIdentifier, error) {
	if schema != nil {
		ids, err := c.resolvedSchemaOrder()
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if id.Equal(*schema) {
				return []SchemaIdentifier{*schema}, nil
			}
		}
		return nil, &NoSuchSchemaError{Name: schema.SQL()}
	}
	return c.resolvedSchemaOrder()
}
