package sqlitekit

/*
#include <stdlib.h>
#include "sqlite3.h"

extern int sqlitekitBusyTramp(void*, int);
extern int sqlitekitCommitTramp(void*);
extern void sqlitekitRollbackTramp(void*);
extern void sqlitekitUpdateTramp(void*, int, char*, char*, sqlite3_int64);
extern int sqlitekitAuthorizeTramp(void*, int, char*, char*, char*, char*);

static void install_busy_handler(sqlite3 *db, void *p) {
	sqlite3_busy_handler(db, sqlitekitBusyTramp, p);
}
static void install_busy_timeout(sqlite3 *db, int ms) {
	sqlite3_busy_timeout(db, ms);
}
static void clear_busy_handler(sqlite3 *db) {
	sqlite3_busy_handler(db, 0, 0);
}
static void install_commit_hook(sqlite3 *db, void *p) {
	sqlite3_commit_hook(db, sqlitekitCommitTramp, p);
}
static void install_rollback_hook(sqlite3 *db, void *p) {
	sqlite3_rollback_hook(db, sqlitekitRollbackTramp, p);
}
static void install_update_hook(sqlite3 *db, void *p) {
	sqlite3_update_hook(db, sqlitekitUpdateTramp, p);
}
static void install_authorizer(sqlite3 *db, void *p) {
	sqlite3_set_authorizer(db, sqlitekitAuthorizeTramp, p);
}
*/
import "C"

import "unsafe"

// installBusyHandler implements §4.1 step 1: install the configured busy
// policy. The zero BusyMode (Kind == "") behaves like ImmediateBusyError,
// SQLite's own default, so an unconfigured Config needs no special case.
func (c *Connection) installBusyHandler(mode BusyMode) error {
	switch mode.Kind {
	case "timeout":
		C.install_busy_timeout(c.db, C.int(mode.Timeout.Milliseconds()))
	case "callback":
		C.install_busy_handler(c.db, c.selfHandle)
	default:
		C.clear_busy_handler(c.db)
	}
	return nil
}

// installHooks wires the commit/rollback/update hooks into this
// connection's selfHandle, per §4.1 step 6.
func (c *Connection) installHooks() {
	C.install_commit_hook(c.db, c.selfHandle)
	C.install_rollback_hook(c.db, c.selfHandle)
	C.install_update_hook(c.db, c.selfHandle)
}

// installAuthorizerDispatch installs the single permanent authorizer
// required by §4.1 step 5 / §4.5: it always dispatches to whichever
// Authorizer is currently set via WithAuthorizer, or permits everything
// when none is set.
func (c *Connection) installAuthorizerDispatch() {
	C.install_authorizer(c.db, c.selfHandle)
}

func connFromHandle(p unsafe.Pointer) *Connection {
	return restore(p).(*Connection)
}

//export sqlitekitBusyTramp
func sqlitekitBusyTramp(p unsafe.Pointer, attempts C.int) C.int {
	c := connFromHandle(p)
	if c.config.Busy.Callback != nil && c.config.Busy.Callback(int(attempts)) {
		return 1
	}
	return 0
}

//export sqlitekitCommitTramp
func sqlitekitCommitTramp(p unsafe.Pointer) C.int {
	c := connFromHandle(p)
	if err := c.willCommit(); err != nil {
		c.statementCompletion = completionErrorRollback
		c.pendingCommitErr = err
		return 1 // nonzero forces the engine to roll back
	}
	c.statementCompletion = completionCommit
	return 0
}

//export sqlitekitRollbackTramp
func sqlitekitRollbackTramp(p unsafe.Pointer) {
	c := connFromHandle(p)
	if c.statementCompletion != completionErrorRollback {
		c.statementCompletion = completionRollback
	}
}

//export sqlitekitUpdateTramp
func sqlitekitUpdateTramp(p unsafe.Pointer, op C.int, db, table *C.char, rowid C.sqlite3_int64) {
	c := connFromHandle(p)
	var kind ChangeKind
	switch op {
	case C.SQLITE_INSERT:
		kind = ChangeInsert
	case C.SQLITE_UPDATE:
		kind = ChangeUpdate
	default:
		kind = ChangeDelete
	}
	c.notifyChange(kind, C.GoString(db), C.GoString(table), int64(rowid))
}

//export sqlitekitAuthorizeTramp
func sqlitekitAuthorizeTramp(p unsafe.Pointer, action C.int, arg1, arg2, dbName, triggerName *C.char) C.int {
	c := connFromHandle(p)
	a1, a2 := C.GoString(arg1), ""
	if arg2 != nil {
		a2 = C.GoString(arg2)
	}
	db, trig := "", ""
	if dbName != nil {
		db = C.GoString(dbName)
	}
	if triggerName != nil {
		trig = C.GoString(triggerName)
	}

	if c.recordingRegion != nil {
		recordAuthorizerAccess(c.recordingRegion, int(action), a1, db)
	}

	if c.authorizer == nil {
		return C.SQLITE_OK
	}
	switch c.authorizer.Authorize(int(action), a1, a2, db, trig) {
	case AuthDeny:
		return C.SQLITE_DENY
	case AuthIgnore:
		return C.SQLITE_IGNORE
	default:
		return C.SQLITE_OK
	}
}
