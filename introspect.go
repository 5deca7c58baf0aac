package sqlitekit

import (
	"fmt"
	"io"
)

// C4: schema introspection. Every lookup here is version-gated through
// schemaCache (§4.3) — repeated calls between DDL statements cost nothing
// beyond a PRAGMA schema_version read.

// CanonicalTableName resolves name (any case) to its as-declared spelling
// in the first schema that defines it, searched in resolution order unless
// schema is non-nil. Returns false if no schema defines it.
func (c *Connection) CanonicalTableName(name string, schema *SchemaIdentifier) (string, bool, error) {
	c.assertOwner()
	if err := c.clearSchemaCacheIfNeeded(); err != nil {
		return "", false, err
	}
	schemas, err := c.resolveSchemas(schema)
	if err != nil {
		return "", false, err
	}
	for _, s := range schemas {
		si, err := c.schemaInfo(s)
		if err != nil {
			return "", false, err
		}
		if canon, ok := si.Canonical(name); ok {
			return canon, true, nil
		}
	}
	return "", false, nil
}

// TableExists reports whether name names a table (not a view) in schema,
// or in any schema if schema is nil.
func (c *Connection) TableExists(name string, schema *SchemaIdentifier) (bool, error) {
	return c.objectExists(name, ObjectTable, schema)
}

// ViewExists reports whether name names a view.
func (c *Connection) ViewExists(name string, schema *SchemaIdentifier) (bool, error) {
	return c.objectExists(name, ObjectView, schema)
}

// TriggerExists reports whether name names a trigger.
func (c *Connection) TriggerExists(name string, schema *SchemaIdentifier) (bool, error) {
	return c.objectExists(name, ObjectTrigger, schema)
}

func (c *Connection) objectExists(name string, typ SchemaObjectType, schema *SchemaIdentifier) (bool, error) {
	c.assertOwner()
	if err := c.clearSchemaCacheIfNeeded(); err != nil {
		return false, err
	}
	schemas, err := c.resolveSchemas(schema)
	if err != nil {
		return false, err
	}
	for _, s := range schemas {
		si, err := c.schemaInfo(s)
		if err != nil {
			return false, err
		}
		if si.Contains(name, typ) {
			return true, nil
		}
	}
	return false, nil
}

// Columns returns name's columns in declaration order, with virtual-table
// hidden columns already filtered out (§4.3). Generated columns are kept
// and reported with Hidden set.
func (c *Connection) Columns(name string, schema *SchemaIdentifier) ([]ColumnInfo, error) {
	c.assertOwner()
	if err := c.clearSchemaCacheIfNeeded(); err != nil {
		return nil, err
	}
	s, canon, err := c.locateTable(name, schema)
	if err != nil {
		return nil, err
	}
	k := key(s, canon)
	if cols, ok := c.schemaCache.columns[k].get(); ok {
		return cols, nil
	}
	cols, err := fetchColumns(c, s, canon)
	if err != nil {
		return nil, err
	}
	c.schemaCache.columns[k] = cachedValue(cols)
	return cols, nil
}

// PrimaryKey returns the classified primary key of name (§4.3). Returns
// ErrNoPrimaryKeyForView if name resolves to a view.
func (c *Connection) PrimaryKey(name string, schema *SchemaIdentifier) (*PrimaryKeyInfo, error) {
	c.assertOwner()
	if err := c.clearSchemaCacheIfNeeded(); err != nil {
		return nil, err
	}
	s, canon, err := c.locateTable(name, schema)
	if err != nil {
		return nil, err
	}
	k := key(s, canon)
	if pk, ok := c.schemaCache.primaryKey[k].get(); ok {
		return pk, nil
	}

	si, err := c.schemaInfo(s)
	if err != nil {
		return nil, err
	}
	if si.Contains(canon, ObjectView) {
		return nil, ErrNoPrimaryKeyForView
	}

	cols, err := c.Columns(canon, &s)
	if err != nil {
		return nil, err
	}
	hasRowID, err := c.tableHasRowID(s, canon)
	if err != nil {
		return nil, err
	}
	pk := classifyPrimaryKey(cols, hasRowID)
	c.schemaCache.primaryKey[k] = cachedValue(pk)
	return pk, nil
}

func (c *Connection) tableHasRowID(schema SchemaIdentifier, table string) (bool, error) {
	k := key(schema, table)
	if v, ok := c.schemaCache.hasRowID[k].get(); ok {
		return v, nil
	}
	v, err := fetchTableHasRowID(c, schema, table)
	if err != nil {
		return false, err
	}
	c.schemaCache.hasRowID[k] = cachedValue(v)
	return v, nil
}

// Indexes returns every non-expression index defined on name (§4.3 known
// limitation: indexes on expressions are silently omitted).
func (c *Connection) Indexes(name string, schema *SchemaIdentifier) ([]IndexInfo, error) {
	c.assertOwner()
	if err := c.clearSchemaCacheIfNeeded(); err != nil {
		return nil, err
	}
	s, canon, err := c.locateTable(name, schema)
	if err != nil {
		return nil, err
	}
	k := key(s, canon)
	if idx, ok := c.schemaCache.indexes[k].get(); ok {
		return idx, nil
	}
	idx, err := fetchIndexes(c, s, canon)
	if err != nil {
		return nil, err
	}
	c.schemaCache.indexes[k] = cachedValue(idx)
	return idx, nil
}

// ForeignKeys returns every foreign key declared by name, destination
// columns filled in from the referenced table's primary key where the
// declaration omitted them.
func (c *Connection) ForeignKeys(name string, schema *SchemaIdentifier) ([]ForeignKeyInfo, error) {
	c.assertOwner()
	if err := c.clearSchemaCacheIfNeeded(); err != nil {
		return nil, err
	}
	s, canon, err := c.locateTable(name, schema)
	if err != nil {
		return nil, err
	}
	k := key(s, canon)
	if fks, ok := c.schemaCache.foreignKeys[k].get(); ok {
		return fks, nil
	}
	fks, err := fetchForeignKeys(c, s, canon)
	if err != nil {
		return nil, err
	}
	c.schemaCache.foreignKeys[k] = cachedValue(fks)
	return fks, nil
}

// ColumnsForUniqueKey returns the first column set, among the primary key
// and every UNIQUE index, that exactly matches candidates (order-
// insensitive); false if none matches. Used by callers building an upsert
// ON CONFLICT clause without hardcoding which key is authoritative.
func (c *Connection) ColumnsForUniqueKey(name string, candidates []string, schema *SchemaIdentifier) ([]string, bool, error) {
	pk, err := c.PrimaryKey(name, schema)
	if err != nil && err != ErrNoPrimaryKeyForView {
		return nil, false, err
	}
	if pk != nil && sameColumnSet(pk.Columns, candidates) {
		return pk.Columns, true, nil
	}
	indexes, err := c.Indexes(name, schema)
	if err != nil {
		return nil, false, err
	}
	for _, idx := range indexes {
		if idx.Unique && sameColumnSet(idx.Columns, candidates) {
			return idx.Columns, true, nil
		}
	}
	return nil, false, nil
}

// ExistenceCheckColumns returns the cheapest column set usable to test row
// existence: the fast rowid alias if PrimaryKey is PKRowID, else the full
// primary key column list.
func (c *Connection) ExistenceCheckColumns(name string, schema *SchemaIdentifier) ([]string, error) {
	pk, err := c.PrimaryKey(name, schema)
	if err != nil {
		return nil, err
	}
	if col, ok := pk.FastPrimaryKeyColumn(); ok {
		return []string{col}, nil
	}
	return pk.Columns, nil
}

// ForeignKeyViolations returns every row of table that currently violates
// one of its foreign keys, via PRAGMA foreign_key_check. If table is empty,
// every table in the schema is checked.
func (c *Connection) ForeignKeyViolations(table string, schema *SchemaIdentifier) ([]FKViolationError, error) {
	c.assertOwner()
	s := MainSchema
	if schema != nil {
		s = *schema
	}
	sql := fmt.Sprintf("PRAGMA %s.foreign_key_check", quoteIdentifier(s.SQL()))
	if table != "" {
		sql = fmt.Sprintf("PRAGMA %s.foreign_key_check(%s)", quoteIdentifier(s.SQL()), sqlQuote(table))
	}
	stmt, err := newStmt(c, sql)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var violations []FKViolationError
	if err := stmt.Query(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	for {
		var origin string
		var rowid any
		var dest string
		var fkid int
		if err := stmt.Scan(&origin, &rowid, &dest, &fkid); err != nil {
			return nil, err
		}
		v := FKViolationError{OriginTable: origin, DestinationTable: dest, ForeignKeyID: fkid}
		if id, ok := rowid.(int64); ok {
			v.OriginRowID = id
			v.HasOriginRowID = true
		}
		violations = append(violations, v)
		if err := stmt.Next(); err != nil {
			break
		}
	}
	return violations, nil
}

// CheckForeignKeys runs ForeignKeyViolations and fails closed on the first
// result by returning it as an error; returns nil if the check found
// nothing (§4.3 "fails closed on first violation").
func (c *Connection) CheckForeignKeys(table string, schema *SchemaIdentifier) error {
	violations, err := c.ForeignKeyViolations(table, schema)
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		return nil
	}
	v := violations[0]
	return &v
}

// locateTable resolves name to its (schema, canonical name) pair, searching
// schema order unless schema is non-nil, and returns NoSuchTableError if no
// schema defines an object by that name.
func (c *Connection) locateTable(name string, schema *SchemaIdentifier) (SchemaIdentifier, string, error) {
	schemas, err := c.resolveSchemas(schema)
	if err != nil {
		return SchemaIdentifier{}, "", err
	}
	for _, s := range schemas {
		si, err := c.schemaInfo(s)
		if err != nil {
			return SchemaIdentifier{}, "", err
		}
		if canon, ok := si.Canonical(name); ok {
			return s, canon, nil
		}
	}
	return SchemaIdentifier{}, "", &NoSuchTableError{Name: name}
}

func sameColumnSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]bool, len(a))
	for _, c := range a {
		seen[c] = true
	}
	for _, c := range b {
		if !seen[c] {
			return false
		}
	}
	return true
}
