package sqlitekit

/*
#include "sqlite3.h"
*/
import "C"

// Exec prepares (via the public cache) and executes sql once, discarding
// any result rows, and returns the number of rows changed.
func (c *Connection) Exec(sql string, args ...any) (int, error) {
	c.assertOwner()
	if c.db == nil {
		return 0, ErrBadConn
	}
	stmt, err := c.publicCache.prepare(c, sql)
	if err != nil {
		return 0, err
	}
	if !stmt.Valid() {
		return 0, nil
	}
	return stmt.execDiscard(args...)
}

// Query prepares (via the public cache) and executes the first statement
// in sql, returning a Stmt positioned on the first row, or io.EOF if the
// query returned no rows.
func (c *Connection) Query(sql string, args ...any) (*Stmt, error) {
	c.assertOwner()
	if c.db == nil {
		return nil, ErrBadConn
	}
	stmt, err := c.publicCache.prepare(c, sql)
	if err != nil {
		return nil, err
	}
	if err := stmt.Query(args...); err != nil {
		return nil, err
	}
	return stmt, nil
}

// QueryRow is a convenience wrapper that scans exactly one row (or returns
// io.EOF if the query produced none) without exposing the *Stmt.
func (c *Connection) QueryRow(sql string, args []any, dst ...any) error {
	stmt, err := c.Query(sql, args...)
	if err != nil {
		return err
	}
	return stmt.Scan(dst...)
}

// ExecScript runs every statement in sql, in order, via sqlite3_exec. It
// does not support parameter binding and does not go through either
// statement cache — it is the "exec-multi-statement path" named in §6,
// intended for schema migrations and similar batch DDL. It returns the
// total number of rows changed across all statements (as counted by
// sqlite3_total_changes, so rows changed by triggers are included) and
// ignores any inserted rowid.
func (c *Connection) ExecScript(sql string) (int, error) {
	c.assertOwner()
	if c.db == nil {
		return 0, ErrBadConn
	}
	before := C.sqlite3_total_changes(c.db)
	csql := sql + "\x00"
	rc := C.sqlite3_exec(c.db, cStr(csql), nil, nil, nil)
	if rc != C.SQLITE_OK {
		return 0, libErr(rc, c.db)
	}
	return int(C.sqlite3_total_changes(c.db) - before), nil
}
