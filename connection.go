package sqlitekit

/*
#include <stdlib.h>
#include "sqlite3.h"

// sqlite3_db_config is variadic, which cgo cannot call directly.
static int db_config_flag(sqlite3 *db, int op, int on) {
	return sqlite3_db_config(db, op, on, (int*)0);
}
*/
import "C"

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/mattn/go-pointer"
)

// Connection is a typed wrapper around a single native SQLite database
// handle. It is not safe for concurrent use except for Suspend and Resume;
// see the package doc and watchdog.go.
type Connection struct {
	db *C.sqlite3

	config Config

	// C2: statement caches, keyed by raw SQL text.
	internalCache *statementCache // library-issued SQL (PRAGMA schema_version, ...)
	publicCache   *statementCache // user SQL

	// C3: per-schema metadata cache, version-gated.
	schemaCache       *schemaCache
	lastSchemaVersion int32

	// C6: transaction state.
	readOnlyDepth          int
	insideTransactionBlock bool
	statementCompletion    transactionCompletion
	pendingCommitErr       error    // set by the commit hook when an observer vetoes the commit
	savepointStack         []string // names of open reserved savepoints, outermost first
	suppressAbortCheck     bool     // true while the controller issues its own COMMIT/ROLLBACK

	// C7: registered transaction observers.
	observers []TransactionObserver

	// C5: authorizer delegate, swapped via WithAuthorizer.
	authorizer Authorizer

	// C5/4.6: region recording accumulator, non-nil only while active.
	recordingRegion *StatementRegion

	// C9: suspension gate. Accessed from arbitrary goroutines.
	suspended     atomic.Bool
	journalMode   string // cached for the connection's lifetime once read
	journalMuOnce sync.Once

	// C8: registered functions/collations, keyed by identity for removal
	// and to keep their retained handles alive as long as they're needed.
	functions  map[funcKey]unsafe.Pointer
	collations map[string]unsafe.Pointer

	// selfHandle is a single retained handle to this Connection, threaded
	// through every engine callback that takes one user-data pointer
	// (busy handler, commit/rollback/update hooks, authorizer) — one
	// handle shared across all of them, unlike the per-registration
	// handles functions.go mints for each user function/collation.
	selfHandle unsafe.Pointer

	// C11: trace sink, installed/changed via Trace.
	traceSink TraceFunc
	traceOpts TraceOptions

	// C12: owning goroutine watchdog.
	ownerID int64

	// version of SQLite this connection was built against, probed once
	// during Setup and used to gate pragma dialect choices (§4.3).
	engineVersion int

	closed atomic.Bool
}

type funcKey struct {
	name string
	argc int
}

// transactionCompletion mirrors the C6 state machine driven by the
// installed commit/rollback/update hooks.
type transactionCompletion int

const (
	completionUndefined transactionCompletion = iota
	completionCommit
	completionRollback
	completionErrorRollback
)

// Open creates a new connection to a SQLite database file, URI, or the
// special names ":memory:" and "" (temporary on-disk database), runs the
// Setup sequence (§4.1), and binds the connection to the calling goroutine
// (see Bind).
func Open(name string, cfg Config) (*Connection, error) {
	if initErr != nil {
		return nil, initErr
	}

	// The engine rejects READONLY combined with CREATE, so CREATE is only
	// added for writable connections.
	flags := C.SQLITE_OPEN_URI
	if cfg.ReadOnly {
		flags |= C.SQLITE_OPEN_READONLY
	} else {
		flags |= C.SQLITE_OPEN_READWRITE | C.SQLITE_OPEN_CREATE
	}

	cname := name + "\x00"
	var db *C.sqlite3
	rc := C.sqlite3_open_v2(cStr(cname), &db, C.int(flags), nil)
	if rc != C.SQLITE_OK {
		err := libErr(rc, db)
		C.sqlite3_close(db)
		return nil, err
	}
	C.sqlite3_extended_result_codes(db, 1)

	conn := &Connection{
		db:            db,
		config:        cfg,
		internalCache: newStatementCache(32),
		publicCache:   newStatementCache(256),
		schemaCache:   newSchemaCache(),
		functions:     make(map[funcKey]unsafe.Pointer),
		collations:    make(map[string]unsafe.Pointer),
		engineVersion: libVersionNumber(),
	}
	conn.selfHandle = retain(conn)
	conn.Bind()

	if err := conn.setup(); err != nil {
		conn.closeNative()
		return nil, err
	}
	return conn, nil
}

// setup runs the Setup sequence described in §4.1, in order.
func (c *Connection) setup() error {
	if err := c.installBusyHandler(c.config.Busy); err != nil {
		return err
	}
	if err := c.setDoubleQuotedStringLiterals(c.config.AcceptsDoubleQuotedStringLiterals); err != nil {
		return err
	}
	if c.config.ForeignKeysEnabled {
		if _, err := c.execInternal("PRAGMA foreign_keys = ON"); err != nil {
			return err
		}
	}
	if err := c.installDefaultFunctionsAndCollations(); err != nil {
		return err
	}
	c.installAuthorizerDispatch()
	c.installHooks()
	if c.config.Trace != 0 && c.config.Logger != nil {
		if err := c.Trace(c.config.Trace, func(info TraceInfo) {
			if info.Event == TraceProfile {
				c.config.Logger.Printf("sqlitekit: %s [%s] %s", c, info.Duration, info.SQL)
			} else {
				c.config.Logger.Printf("sqlitekit: %s %s", c, info.SQL)
			}
		}); err != nil {
			return err
		}
	}
	C.sqlite3_extended_result_codes(c.db, 1)
	if c.config.PrepareDatabase != nil {
		if err := c.config.PrepareDatabase(c); err != nil {
			return err
		}
	}
	// Reject non-database payloads by touching the master table.
	if _, err := c.execInternal("SELECT 1 FROM sqlite_master LIMIT 1"); err != nil {
		return err
	}
	// Read the journal mode now, while the connection cannot be suspended:
	// the suspension gate then never has to run the probe from inside its
	// own check, which would re-enter journalMuOnce.
	if _, err := c.cachedJournalMode(); err != nil {
		return err
	}
	return nil
}

func (c *Connection) setDoubleQuotedStringLiterals(on bool) error {
	var ddl, dml C.int = 0, 0
	if on {
		ddl, dml = 1, 1
	}
	C.db_config_flag(c.db, C.SQLITE_DBCONFIG_DQS_DDL, ddl)
	C.db_config_flag(c.db, C.SQLITE_DBCONFIG_DQS_DML, dml)
	return nil
}

// Bind records the calling goroutine as this connection's owner (C12).
// Open calls it once implicitly; callers that hand a Connection to a new
// long-lived goroutine (e.g. a dedicated worker) should call it again from
// that goroutine before using the connection there.
func (c *Connection) Bind() {
	atomic.StoreInt64(&c.ownerID, int64(currentGoroutineID()))
}

// Close releases the native handle. It fails with a BUSY EngineError if
// prepared statements, backups, or blob I/O handles are still open. On
// success the connection is unusable; on failure its statement caches are
// already emptied and its functions and collations removed, but the native
// handle stays open.
func (c *Connection) Close() error {
	c.assertOwner()
	if c.db == nil {
		return nil
	}
	c.internalCache.clear()
	c.publicCache.clear()
	c.removeAllFunctionsAndCollations()
	rc := C.sqlite3_close(c.db)
	if rc != C.SQLITE_OK {
		return libErr(rc, c.db)
	}
	c.releaseHandle()
	return nil
}

// CloseV2 is the deferred close path (§3 Lifecycle): it never fails
// visibly. If the underlying sqlite3_close_v2 call reports BUSY, the
// leaked statements are enumerated via sqlite3_next_stmt and logged to
// Config.Logger, if one is set, so the leak is diagnosable (§4.11).
func (c *Connection) CloseV2() {
	c.assertOwner()
	if c.db == nil {
		return
	}
	db := c.db
	c.internalCache.clear()
	c.publicCache.clear()
	c.removeAllFunctionsAndCollations()
	rc := C.sqlite3_close_v2(db)
	if rc == C.SQLITE_BUSY && c.config.Logger != nil {
		c.logLeakedStatements(db)
	}
	c.releaseHandle()
}

func (c *Connection) logLeakedStatements(db *C.sqlite3) {
	var stmt *C.sqlite3_stmt
	for {
		stmt = C.sqlite3_next_stmt(db, stmt)
		if stmt == nil {
			break
		}
		sql := C.sqlite3_sql(stmt)
		c.config.Logger.Printf("sqlitekit: connection %q closed while statement still active: %s",
			c.config.Label, C.GoString(sql))
	}
}

func (c *Connection) releaseHandle() {
	c.db = nil
	c.closed.Store(true)
	if c.selfHandle != nil {
		release(c.selfHandle)
		c.selfHandle = nil
	}
}

func (c *Connection) closeNative() {
	if c.db != nil {
		C.sqlite3_close_v2(c.db)
		c.db = nil
	}
	if c.selfHandle != nil {
		release(c.selfHandle)
		c.selfHandle = nil
	}
}

// String implements fmt.Stringer, reporting Config.Label when set.
func (c *Connection) String() string {
	if c.config.Label != "" {
		return fmt.Sprintf("sqlitekit.Connection(%s)", c.config.Label)
	}
	return "sqlitekit.Connection"
}

// AutoCommit reports whether the connection is outside of an explicit
// transaction, per sqlite3_get_autocommit.
func (c *Connection) AutoCommit() bool {
	if c.db == nil {
		return false
	}
	return C.sqlite3_get_autocommit(c.db) != 0
}

// IsInsideTransaction reports whether InTransaction currently has an
// open transaction block on the call stack (§8 invariant).
func (c *Connection) IsInsideTransaction() bool {
	return c.insideTransactionBlock
}

// LastInsertRowID returns the ROWID of the most recent successful INSERT.
func (c *Connection) LastInsertRowID() int64 {
	if c.db == nil {
		return 0
	}
	return int64(C.sqlite3_last_insert_rowid(c.db))
}

// RowsAffected returns the number of rows changed, inserted, or deleted by
// the most recently completed statement, excluding trigger/FK side effects.
func (c *Connection) RowsAffected() int {
	if c.db == nil {
		return 0
	}
	return int(C.sqlite3_changes(c.db))
}

// Interrupt asks the engine to abort any statement currently executing on
// this connection. Safe to call from any goroutine.
func (c *Connection) Interrupt() {
	if c.db != nil {
		C.sqlite3_interrupt(c.db)
	}
}

// execInternal runs sql through the internal statement cache (bypassing
// Config hooks meant for user SQL) and discards any result rows.
func (c *Connection) execInternal(sql string) (int, error) {
	stmt, err := c.internalCache.prepare(c, sql)
	if err != nil {
		return 0, err
	}
	defer stmt.reset()
	return stmt.execDiscard()
}

// retain wraps v in a stable, GC-safe handle suitable for SQLite's
// user-data callback parameter (§9 design note), via mattn/go-pointer —
// the same retained-handle technique riyaz-ali-sqlite's func.go uses to
// thread Go closures through sqlite3_create_function_v2.
func retain(v any) unsafe.Pointer { return pointer.Save(v) }

// release must be called exactly once for every retain, typically from the
// engine's "destroy user data" callback.
func release(p unsafe.Pointer) { pointer.Unref(p) }

func restore(p unsafe.Pointer) any { return pointer.Restore(p) }
