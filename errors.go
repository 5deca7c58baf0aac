package sqlitekit

/*
#include "sqlite3.h"
*/
import "C"

import (
	"errors"
	"fmt"
)

// Sentinel errors matching the taxonomy of spec §7. Callers compare against
// these with errors.Is; EngineError and FKViolationError additionally carry
// structured context and are matched with errors.As.
var (
	// ErrBadConn is returned by Exec, ExecScript, Query, QueryRow and
	// Prepare when called after Close.
	ErrBadConn = errors.New("sqlitekit: connection closed")

	// ErrBadStmt is returned by Stmt.Exec and Stmt.Query when called after
	// Close.
	ErrBadStmt = errors.New("sqlitekit: statement closed")

	// ErrAbortedTransaction is raised from inside InTransaction when SQLite
	// silently returned to autocommit mode underneath the caller (interrupt,
	// or ON CONFLICT ROLLBACK) — see §4.4.
	ErrAbortedTransaction = errors.New("sqlitekit: transaction was aborted")

	// ErrSuspended is raised by a lock-acquiring statement run while the
	// connection is suspended — see §4.8.
	ErrSuspended = errors.New("sqlitekit: database is suspended")

	// ErrNoPrimaryKeyForView is returned by PrimaryKey when name resolves to
	// a view and no schema source provides a view primary key.
	ErrNoPrimaryKeyForView = errors.New("sqlitekit: no primary key for view")
)

// NoSuchSchemaError is returned when a caller names a schema that is not
// attached to the connection.
type NoSuchSchemaError struct{ Name string }

func (e *NoSuchSchemaError) Error() string {
	return fmt.Sprintf("sqlitekit: no such schema: %s", e.Name)
}

// NoSuchTableError is returned by introspection calls that require the
// named table or view to exist.
type NoSuchTableError struct{ Name string }

func (e *NoSuchTableError) Error() string {
	return fmt.Sprintf("sqlitekit: no such table: %s", e.Name)
}

// InvalidConfigurationError wraps a programmer error in the arguments passed
// to a registration or configuration call (e.g. a negative fixed arity).
type InvalidConfigurationError struct{ Reason string }

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("sqlitekit: invalid configuration: %s", e.Reason)
}

// EngineError wraps any non-OK result code returned by the native library,
// together with the SQL text and bound arguments that produced it, when
// known. It is the Go analogue of the teacher's libErr.
type EngineError struct {
	Code         int    // primary result code (low byte of ExtendedCode)
	ExtendedCode int    // extended result code, as returned by sqlite3_extended_errcode
	Message      string // sqlite3_errmsg, or sqlite3_errstr fallback
	SQL          string // statement text, when the error occurred during prepare/step
	Arguments    []any  // bound arguments, when known
}

func (e *EngineError) Error() string {
	if e.SQL == "" {
		return fmt.Sprintf("sqlitekit: %s (%d)", e.Message, e.ExtendedCode)
	}
	return fmt.Sprintf("sqlitekit: %s (%d) — %q", e.Message, e.ExtendedCode, e.SQL)
}

// ResultCode reports the primary (non-extended) SQLite result code.
func (e *EngineError) ResultCode() int { return e.Code }

// FKViolationError is raised by CheckForeignKeys (fails closed on the first
// violation) and is also the element type yielded by ForeignKeyViolations.
type FKViolationError struct {
	OriginTable      string
	OriginRowID      int64 // 0 for WITHOUT ROWID tables; see HasOriginRowID
	HasOriginRowID   bool
	DestinationTable string
	ForeignKeyID     int
}

func (e *FKViolationError) Error() string {
	if e.HasOriginRowID {
		return fmt.Sprintf("sqlitekit: FOREIGN KEY constraint violation: %s (rowid %d) -> %s (fk id %d)",
			e.OriginTable, e.OriginRowID, e.DestinationTable, e.ForeignKeyID)
	}
	return fmt.Sprintf("sqlitekit: FOREIGN KEY constraint violation: %s -> %s (fk id %d)",
		e.OriginTable, e.DestinationTable, e.ForeignKeyID)
}

// libErr builds an EngineError from the last error recorded on db (or rc
// alone, if db is nil, e.g. right after a failed sqlite3_open_v2).
func libErr(rc C.int, db *C.sqlite3) *EngineError {
	e := &EngineError{Code: int(rc & 0xff)}
	if db != nil {
		e.ExtendedCode = int(C.sqlite3_extended_errcode(db))
		if msg := C.sqlite3_errmsg(db); msg != nil {
			e.Message = C.GoString(msg)
		}
	}
	if e.Message == "" {
		e.ExtendedCode = int(rc)
		e.Message = C.GoString(C.sqlite3_errstr(rc))
	}
	return e
}

// pkgErr builds a plain sqlitekit-level misuse error (no engine result
// code involved), mirroring the teacher's pkgErr helper.
func pkgErr(format string, args ...any) error {
	return fmt.Errorf("sqlitekit: "+format, args...)
}
