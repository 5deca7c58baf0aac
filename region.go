package sqlitekit

/*
#include "sqlite3.h"
*/
import "C"

import "strings"

// StatementRegion accumulates the set of tables touched while recording
// was active (§4.6). A region from FullDatabaseRegion contains every table.
// Recording into a nil *StatementRegion or a full-database region is a
// no-op, and a nil *StatementRegion contains no table.
type StatementRegion struct {
	fullDatabase bool
	tables       map[string]bool // "schema.table", lower-cased
}

// NewStatementRegion returns an empty, growable region.
func NewStatementRegion() *StatementRegion {
	return &StatementRegion{tables: make(map[string]bool)}
}

// FullDatabaseRegion returns a region that already covers every table;
// recording into it (§4.6 "if a full-database region is already
// requested, recording is skipped") is always a no-op.
func FullDatabaseRegion() *StatementRegion {
	return &StatementRegion{fullDatabase: true}
}

func regionKey(schema, table string) string {
	return strings.ToLower(schema) + "." + strings.ToLower(table)
}

func (r *StatementRegion) add(schema, table string) {
	if r == nil || r.fullDatabase {
		return
	}
	if r.tables == nil {
		r.tables = make(map[string]bool)
	}
	r.tables[regionKey(schema, table)] = true
}

// Contains reports whether the region covers schema.table.
func (r *StatementRegion) Contains(schema, table string) bool {
	if r == nil {
		return false
	}
	if r.fullDatabase {
		return true
	}
	return r.tables[regionKey(schema, table)]
}

// Union merges other into r in place.
func (r *StatementRegion) Union(other *StatementRegion) {
	if r == nil || other == nil || r.fullDatabase {
		return
	}
	if other.fullDatabase {
		r.fullDatabase = true
		r.tables = nil
		return
	}
	for k := range other.tables {
		if r.tables == nil {
			r.tables = make(map[string]bool)
		}
		r.tables[k] = true
	}
}

// recordAuthorizerAccess is called from the authorizer trampoline
// (callbacks.go) for every object reference seen during compilation; it
// filters to the action codes that name a table (read/write DML plus
// SELECT's table references) and folds them into region.
func recordAuthorizerAccess(region *StatementRegion, action int, tableName, dbName string) {
	switch action {
	case int(C.SQLITE_READ), int(C.SQLITE_INSERT), int(C.SQLITE_UPDATE), int(C.SQLITE_DELETE):
		region.add(dbName, tableName)
	}
}

// RecordingSelection runs body with region recording active: any table
// referenced by a statement compiled during body is unioned into region on
// exit, on every exit path. If region is already a FullDatabaseRegion, the
// scope is still entered (so nested recording scopes compose) but nothing
// is added (§4.6).
func (c *Connection) RecordingSelection(region *StatementRegion, body func() error) (err error) {
	c.assertOwner()
	prev := c.recordingRegion
	local := NewStatementRegion()
	c.recordingRegion = local
	defer func() {
		c.recordingRegion = prev
		region.Union(local)
		if r := recover(); r != nil {
			panic(r)
		}
	}()
	return body()
}
