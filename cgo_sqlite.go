package sqlitekit

/*
#cgo pkg-config: sqlite3

// To link against a specific libsqlite3 without pkg-config, comment out the
// line above and uncomment the one below, adding -L as needed.
//#cgo LDFLAGS: -lsqlite3

#include <stdlib.h>
#include "sqlite3.h"
*/
import "C"

// Result codes used throughout the package. Extended result codes are
// carried on EngineError.ExtendedCode; these are the primary codes used for
// control flow (switch rc { case BUSY: ... }).
const (
	OK         = int(C.SQLITE_OK)
	ERROR      = int(C.SQLITE_ERROR)
	BUSY       = int(C.SQLITE_BUSY)
	LOCKED     = int(C.SQLITE_LOCKED)
	NOMEM      = int(C.SQLITE_NOMEM)
	READONLY   = int(C.SQLITE_READONLY)
	INTERRUPT  = int(C.SQLITE_INTERRUPT)
	IOERR      = int(C.SQLITE_IOERR)
	CORRUPT    = int(C.SQLITE_CORRUPT)
	FULL       = int(C.SQLITE_FULL)
	CANTOPEN   = int(C.SQLITE_CANTOPEN)
	CONSTRAINT = int(C.SQLITE_CONSTRAINT)
	MISMATCH   = int(C.SQLITE_MISMATCH)
	MISUSE     = int(C.SQLITE_MISUSE)
	ROW        = int(C.SQLITE_ROW)
	DONE       = int(C.SQLITE_DONE)
	ABORT      = int(C.SQLITE_ABORT)

	ABORT_ROLLBACK = int(C.SQLITE_ABORT) | (2 << 8)
)

// Column storage classes, as returned by sqlite3_column_type.
const (
	INTEGER = byte(C.SQLITE_INTEGER)
	FLOAT   = byte(C.SQLITE_FLOAT)
	TEXT    = byte(C.SQLITE3_TEXT)
	BLOB    = byte(C.SQLITE_BLOB)
	NULL    = byte(C.SQLITE_NULL)
)

// Open flags accepted by Open (§3 Lifecycle: "opening a file path with an
// open-flags bitmask").
const (
	OpenReadOnly     = int(C.SQLITE_OPEN_READONLY)
	OpenReadWrite    = int(C.SQLITE_OPEN_READWRITE)
	OpenCreate       = int(C.SQLITE_OPEN_CREATE)
	OpenURI          = int(C.SQLITE_OPEN_URI)
	OpenMemory       = int(C.SQLITE_OPEN_MEMORY)
	OpenNoMutex      = int(C.SQLITE_OPEN_NOMUTEX)
	OpenFullMutex    = int(C.SQLITE_OPEN_FULLMUTEX)
	OpenSharedCache  = int(C.SQLITE_OPEN_SHAREDCACHE)
	OpenPrivateCache = int(C.SQLITE_OPEN_PRIVATECACHE)
)

var initErr error

func init() {
	if rc := C.sqlite3_initialize(); rc != C.SQLITE_OK {
		initErr = libErr(rc, nil)
	}
}

// libVersionNumber returns SQLite's compile-time version as
// major*1000000 + minor*1000 + patch, matching sqlite3_libversion_number.
func libVersionNumber() int {
	return int(C.sqlite3_libversion_number())
}
