package sqlitekit

/*
#include <stdlib.h>
#include "sqlite3.h"

static int bind_text_trans(sqlite3_stmt *s, int i, const char *p, int n) {
	return sqlite3_bind_text(s, i, p, n, SQLITE_TRANSIENT);
}
static int bind_blob_trans(sqlite3_stmt *s, int i, const void *p, int n) {
	if (n > 0) {
		return sqlite3_bind_blob(s, i, p, n, SQLITE_TRANSIENT);
	}
	return sqlite3_bind_zeroblob(s, i, 0);
}
*/
import "C"

import (
	"io"
	"strings"
	"time"
	"unsafe"
)

// NamedArgs binds statement parameters by name (e.g. "@a", ":a", "$a"),
// exactly as sqlite3_bind_parameter_name reports them.
type NamedArgs map[string]any

// RowMap receives every column not otherwise consumed by Stmt.Scan.
type RowMap map[string]any

// RawString and RawBytes bind/scan without the UTF-8 copy Stmt otherwise
// performs, for callers that accept aliasing SQLite's internal buffer.
type RawString string
type RawBytes []byte

// ZeroBlob reserves n zeroed bytes for later incremental BLOB I/O.
type ZeroBlob int

// Stmt is a single compiled SQLite statement, owned by one Connection. It
// is also the unit of caching for both the internal and public caches
// (C2): identical SQL text prepared twice through the same cache reuses
// the same Stmt.
type Stmt struct {
	Tail string // uncompiled remainder of the SQL passed to Prepare

	conn *Connection
	stmt *C.sqlite3_stmt

	text    string
	nVars   int
	nCols   int
	haveRow bool

	varNames []string
	colNames []string
	colDecls []string
	colTypes []byte

	readOnly           bool
	releasesDatabaseLock bool
}

var unnamedVars = []string{}

// Prepare compiles the first statement in sql through the public cache,
// keyed by sql's exact text (§4.2). Any remaining text after the first
// statement is reported on the returned Stmt's Tail and is NOT cached or
// re-prepared automatically; callers that pass multi-statement SQL should
// use ExecScript instead.
func (c *Connection) Prepare(sql string) (*Stmt, error) {
	c.assertOwner()
	if c.db == nil {
		return nil, ErrBadConn
	}
	return c.publicCache.prepare(c, sql)
}

// newStmt compiles sql fresh (no cache lookup); used by the cache itself
// on a miss and by the direct paths in suspension.go that must bypass the
// public cache to avoid recursing into check_for_suspension_violation.
func newStmt(c *Connection, sql string) (*Stmt, error) {
	csql := sql + "\x00"
	var stmt *C.sqlite3_stmt
	var tail *C.char
	if rc := C.sqlite3_prepare_v2(c.db, cStr(csql), -1, &stmt, &tail); rc != C.SQLITE_OK {
		return nil, &EngineError{
			Code: int(rc & 0xff), ExtendedCode: int(C.sqlite3_extended_errcode(c.db)),
			Message: C.GoString(C.sqlite3_errmsg(c.db)), SQL: sql,
		}
	}
	s := &Stmt{conn: c, stmt: stmt, text: sql}
	if stmt != nil {
		s.nVars = int(C.sqlite3_bind_parameter_count(stmt))
		s.nCols = int(C.sqlite3_column_count(stmt))
		if s.nCols > 0 {
			s.colTypes = make([]byte, s.nCols)
		}
		s.readOnly = C.sqlite3_stmt_readonly(stmt) != 0
		s.releasesDatabaseLock = classifyReleasesLock(sql)
	}
	if tail != nil {
		s.Tail = strings.TrimSpace(C.GoString(tail))
	}
	return s, nil
}

// classifyReleasesLock implements the "releases_database_lock"
// classification from §3: true for COMMIT, ROLLBACK,
// ROLLBACK TO SAVEPOINT, and RELEASE SAVEPOINT.
func classifyReleasesLock(sql string) bool {
	s := strings.ToUpper(strings.TrimSpace(sql))
	switch {
	case strings.HasPrefix(s, "COMMIT"), strings.HasPrefix(s, "END"):
		return true
	case strings.HasPrefix(s, "ROLLBACK"):
		return true
	case strings.HasPrefix(s, "RELEASE"):
		return true
	default:
		return false
	}
}

// Close finalizes the prepared statement. Safe to call multiple times.
func (s *Stmt) Close() error {
	if s.stmt == nil {
		return nil
	}
	stmt := s.stmt
	s.stmt = nil
	s.nVars, s.nCols = 0, 0
	s.haveRow = false
	s.varNames, s.colNames, s.colDecls, s.colTypes = nil, nil, nil, nil
	if rc := C.sqlite3_finalize(stmt); rc != C.SQLITE_OK {
		return libErr(rc, s.conn.db)
	}
	return nil
}

// Conn returns the connection that created this statement.
func (s *Stmt) Conn() *Connection { return s.conn }

// Valid reports whether the statement can be executed (false only when the
// source SQL was entirely comments or whitespace).
func (s *Stmt) Valid() bool { return s.stmt != nil }

// Busy reports whether a row is currently available for scanning.
func (s *Stmt) Busy() bool { return s.haveRow }

// ReadOnly reports whether the statement makes no direct changes to the
// database file content (sqlite3_stmt_readonly).
func (s *Stmt) ReadOnly() bool { return s.stmt == nil || s.readOnly }

// ReleasesDatabaseLock reports the §3 classification used by the
// suspension gate to let lock-releasing statements through even while
// suspended.
func (s *Stmt) ReleasesDatabaseLock() bool { return s.releasesDatabaseLock }

// String returns the SQL text used to create the statement.
func (s *Stmt) String() string { return s.text }

// NumParams returns the number of bindable parameters.
func (s *Stmt) NumParams() int { return s.nVars }

// NumColumns returns the number of result columns.
func (s *Stmt) NumColumns() int { return s.nCols }

// Params returns parameter names, or nil if the statement uses positional
// (unnamed) parameters.
func (s *Stmt) Params() []string {
	if s.varNames == nil && s.nVars > 0 {
		names := make([]string, s.nVars)
		for i := 0; i < s.nVars; i++ {
			name := C.sqlite3_bind_parameter_name(s.stmt, C.int(i+1))
			if name == nil {
				s.varNames = unnamedVars
				return nil
			}
			names[i] = C.GoString(name)
		}
		s.varNames = names
	}
	if len(s.varNames) == 0 {
		return nil
	}
	return s.varNames
}

// Columns returns result column names.
func (s *Stmt) Columns() []string {
	if s.colNames == nil && s.nCols > 0 {
		names := make([]string, s.nCols)
		for i := range names {
			if name := C.sqlite3_column_name(s.stmt, C.int(i)); name != nil {
				names[i] = C.GoString(name)
			}
		}
		s.colNames = names
	}
	return s.colNames
}

// DeclTypes returns upper-cased column type declarations.
func (s *Stmt) DeclTypes() []string {
	if s.colDecls == nil && s.nCols > 0 {
		decls := make([]string, s.nCols)
		for i := range decls {
			if decl := C.sqlite3_column_decltype(s.stmt, C.int(i)); decl != nil {
				decls[i] = strings.ToUpper(C.GoString(decl))
			}
		}
		s.colDecls = decls
	}
	return s.colDecls
}

// Exec executes and resets the statement, discarding any returned rows.
func (s *Stmt) Exec(args ...any) error {
	if s.stmt == nil {
		return ErrBadStmt
	}
	err := s.exec(args)
	if s.haveRow {
		s.reset()
	}
	return err
}

// execDiscard binds args (if any), runs the statement to completion
// (stepping past all result rows, if any) and returns the number of rows
// affected.
func (s *Stmt) execDiscard(args ...any) (int, error) {
	if err := s.exec(args); err != nil {
		return 0, err
	}
	for s.haveRow {
		if err := s.step(); err != nil {
			return 0, err
		}
	}
	return s.conn.RowsAffected(), nil
}

// Query executes the statement and makes the first row available for
// scanning. io.EOF is returned (and the statement reset) if there were no
// rows.
func (s *Stmt) Query(args ...any) error {
	if s.stmt == nil {
		return ErrBadStmt
	}
	err := s.exec(args)
	if !s.haveRow && err == nil {
		return io.EOF
	}
	return err
}

// Scan copies column values from the current row into dst. If the final
// element of dst is a RowMap, every remaining column is assigned into it.
func (s *Stmt) Scan(dst ...any) error {
	if !s.haveRow {
		return io.EOF
	}
	n := len(dst)
	if n == 0 {
		return nil
	}
	rowMap, hasMap := dst[n-1].(RowMap)
	if hasMap {
		n--
	}
	if n > s.nCols {
		return pkgErr("cannot assign %d value(s) from %d column(s)", n, s.nCols)
	}
	for i, v := range dst[:n] {
		if v != nil {
			if err := s.scan(C.int(i), v); err != nil {
				return err
			}
		}
	}
	if hasMap {
		var v any
		for i, col := range s.Columns()[n:] {
			if err := s.scanDynamic(C.int(n+i), &v); err != nil {
				return err
			}
			rowMap[col] = v
		}
	}
	return nil
}

// Next advances to the next row. io.EOF is returned (and the statement
// reset) when no more rows remain.
func (s *Stmt) Next() error {
	if s.haveRow {
		if err := s.step(); err != nil {
			return err
		}
		if s.haveRow {
			return nil
		}
	}
	return io.EOF
}

// Reset returns the statement to its initial, unbound, unstepped state.
func (s *Stmt) reset() {
	if s.haveRow || s.nVars > 0 {
		C.sqlite3_reset(s.stmt)
		if s.nVars > 0 {
			C.sqlite3_clear_bindings(s.stmt)
		}
		s.haveRow = false
	}
}

func (s *Stmt) exec(args []any) (err error) {
	if s.haveRow {
		s.reset()
	}
	if named := namedArgs(args); named != nil {
		err = s.bindNamed(named)
	} else {
		err = s.bindUnnamed(args)
	}
	if err != nil {
		if s.nVars > 0 {
			C.sqlite3_clear_bindings(s.stmt)
		}
		return err
	}
	return s.step()
}

func namedArgs(args []any) NamedArgs {
	if len(args) == 1 {
		if m, ok := args[0].(NamedArgs); ok {
			return m
		}
	}
	return nil
}

func (s *Stmt) bindNamed(args NamedArgs) error {
	if s.nVars == 0 {
		return nil
	}
	names := s.Params()
	if names == nil {
		return pkgErr("statement does not accept named arguments")
	}
	for i, name := range names {
		if err := s.bind(C.int(i+1), args[name], name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stmt) bindUnnamed(args []any) error {
	if len(args) != s.nVars {
		return pkgErr("statement requires %d argument(s), %d given", s.nVars, len(args))
	}
	for i, v := range args {
		if err := s.bind(C.int(i+1), v, ""); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stmt) bind(i C.int, v any, name string) error {
	if v == nil {
		return nil
	}
	var rc C.int
	switch v := v.(type) {
	case int:
		rc = C.sqlite3_bind_int64(s.stmt, i, C.sqlite3_int64(v))
	case int64:
		rc = C.sqlite3_bind_int64(s.stmt, i, C.sqlite3_int64(v))
	case float64:
		rc = C.sqlite3_bind_double(s.stmt, i, C.double(v))
	case bool:
		rc = C.sqlite3_bind_int(s.stmt, i, cBool(v))
	case string:
		rc = C.bind_text_trans(s.stmt, i, cStr(v+"\x00"), C.int(len(v)))
	case []byte:
		rc = C.bind_blob_trans(s.stmt, i, cBytes(v), C.int(len(v)))
	case time.Time:
		rc = C.sqlite3_bind_int64(s.stmt, i, C.sqlite3_int64(v.Unix()))
	case RawString:
		rc = C.bind_text_trans(s.stmt, i, cStr(string(v)+"\x00"), C.int(len(v)))
	case RawBytes:
		rc = C.bind_blob_trans(s.stmt, i, cBytes(v), C.int(len(v)))
	case ZeroBlob:
		rc = C.sqlite3_bind_zeroblob(s.stmt, i, C.int(v))
	default:
		if name != "" {
			return pkgErr("unsupported type for %s (%T)", name, v)
		}
		return pkgErr("unsupported type at index %d (%T)", int(i-1), v)
	}
	if rc != C.SQLITE_OK {
		return libErr(rc, s.conn.db)
	}
	return nil
}

func (s *Stmt) step() error {
	if err := s.conn.checkForSuspensionViolation(s); err != nil {
		return err
	}
	if s.conn.insideTransactionBlock && !s.conn.suppressAbortCheck && s.conn.AutoCommit() {
		return ErrAbortedTransaction
	}
	rc := C.sqlite3_step(s.stmt)
	s.haveRow = rc == C.SQLITE_ROW
	if s.haveRow {
		for i := range s.colTypes {
			s.colTypes[i] = 0
		}
		return nil
	}
	resetRC := C.sqlite3_reset(s.stmt)
	if s.nVars > 0 {
		C.sqlite3_clear_bindings(s.stmt)
	}
	// The commit/rollback hooks (callbacks.go) run synchronously inside
	// sqlite3_step/sqlite3_reset above; drain whatever they recorded
	// regardless of rc, so an error_rollback surfaces even when rc itself
	// was SQLITE_OK (§4.4).
	completionErr := s.conn.dispatchCompletion()

	// An observer's commit veto (§4.4) surfaces here as both a nonzero rc
	// (the engine reports the forced rollback as SQLITE_CONSTRAINT) and a
	// completionErr carrying the observer's own error; prefer the latter,
	// since it is the reason a caller actually wants to see.
	if completionErr != nil {
		return completionErr
	}
	if rc != C.SQLITE_DONE && rc != C.SQLITE_OK {
		return &EngineError{
			Code: int(rc & 0xff), ExtendedCode: int(C.sqlite3_extended_errcode(s.conn.db)),
			Message: C.GoString(C.sqlite3_errmsg(s.conn.db)), SQL: s.text,
		}
	}
	if resetRC != C.SQLITE_OK {
		return libErr(resetRC, s.conn.db)
	}
	return nil
}

func (s *Stmt) colType(i C.int) byte {
	if typ := s.colTypes[i]; typ != 0 {
		return typ
	}
	typ := byte(C.sqlite3_column_type(s.stmt, i))
	s.colTypes[i] = typ
	return typ
}

func (s *Stmt) scan(i C.int, v any) error {
	if s.colType(i) == NULL {
		return s.scanZero(v)
	}
	switch v := v.(type) {
	case *any:
		return s.scanDynamic(i, v)
	case *int:
		*v = int(C.sqlite3_column_int64(s.stmt, i))
	case *int64:
		*v = int64(C.sqlite3_column_int64(s.stmt, i))
	case *float64:
		*v = float64(C.sqlite3_column_double(s.stmt, i))
	case *bool:
		*v = C.sqlite3_column_int64(s.stmt, i) != 0
	case *string:
		*v = columnText(s.stmt, i)
	case *[]byte:
		*v = columnBlob(s.stmt, i)
	case *time.Time:
		*v = time.Unix(int64(C.sqlite3_column_int64(s.stmt, i)), 0)
	case *RawString:
		*v = RawString(columnText(s.stmt, i))
	case *RawBytes:
		*v = RawBytes(columnBlob(s.stmt, i))
	case io.Writer:
		if _, err := v.Write(columnBlob(s.stmt, i)); err != nil {
			return err
		}
	default:
		return pkgErr("unscannable type for column %d (%T)", int(i), v)
	}
	return nil
}

func (s *Stmt) scanZero(v any) error {
	switch v := v.(type) {
	case *any:
		*v = nil
	case *int:
		*v = 0
	case *int64:
		*v = 0
	case *float64:
		*v = 0.0
	case *bool:
		*v = false
	case *string:
		*v = ""
	case *[]byte:
		*v = nil
	case *time.Time:
		*v = time.Time{}
	case *RawString:
		*v = ""
	case *RawBytes:
		*v = nil
	case io.Writer:
	default:
		return pkgErr("unscannable type for NULL column (%T)", v)
	}
	return nil
}

func (s *Stmt) scanDynamic(i C.int, v *any) error {
	switch typ := s.colType(i); typ {
	case INTEGER:
		n := int64(C.sqlite3_column_int64(s.stmt, i))
		*v = n
		if decl := s.DeclTypes()[i]; len(decl) >= 4 {
			switch decl[:4] {
			case "DATE", "TIME":
				*v = time.Unix(n, 0)
			case "BOOL":
				*v = n != 0
			}
		}
	case FLOAT:
		*v = float64(C.sqlite3_column_double(s.stmt, i))
	case TEXT:
		*v = columnText(s.stmt, i)
	case BLOB:
		*v = columnBlob(s.stmt, i)
	case NULL:
		*v = nil
	default:
		*v = nil
		return pkgErr("unknown column type (%d)", typ)
	}
	return nil
}

func columnText(stmt *C.sqlite3_stmt, i C.int) string {
	p := (*C.char)(unsafe.Pointer(C.sqlite3_column_text(stmt, i)))
	n := C.sqlite3_column_bytes(stmt, i)
	return C.GoStringN(p, n)
}

func columnBlob(stmt *C.sqlite3_stmt, i C.int) []byte {
	if p := C.sqlite3_column_blob(stmt, i); p != nil {
		return C.GoBytes(p, C.sqlite3_column_bytes(stmt, i))
	}
	return nil
}
