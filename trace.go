package sqlitekit

/*
#include <stdlib.h>
#include "sqlite3.h"

extern int sqlitekitTraceTramp(unsigned int, void*, void*, void*);

static int install_trace(sqlite3 *db, unsigned int mask, void *p) {
	if (mask == 0) {
		return sqlite3_trace_v2(db, 0, 0, 0);
	}
	return sqlite3_trace_v2(db, mask, sqlitekitTraceTramp, p);
}
*/
import "C"

import (
	"time"
	"unsafe"
)

// TraceInfo describes one traced event (§4.11 / §6 "trace(options, sink)").
type TraceInfo struct {
	Event    TraceEvent
	SQL      string
	Duration time.Duration // only set for TraceProfile
}

// TraceFunc receives every event requested by Trace's options argument.
type TraceFunc func(TraceInfo)

// Trace installs sink to receive the events named by opts. Passing a zero
// TraceOptions disables tracing entirely (§6). Trace may be called again
// to change the active sink or options; only one sink is active at a time.
func (c *Connection) Trace(opts TraceOptions, sink TraceFunc) error {
	c.assertOwner()
	c.traceSink = sink
	c.traceOpts = opts

	var mask C.uint
	if opts.Has(TraceStatement) {
		mask |= C.SQLITE_TRACE_STMT
	}
	if opts.Has(TraceProfile) {
		mask |= C.SQLITE_TRACE_PROFILE
	}
	if mask == 0 || sink == nil {
		C.install_trace(c.db, 0, nil)
		return nil
	}
	if rc := C.install_trace(c.db, mask, c.selfHandle); rc != C.SQLITE_OK {
		return libErr(rc, c.db)
	}
	return nil
}

//export sqlitekitTraceTramp
func sqlitekitTraceTramp(mask C.uint, p unsafe.Pointer, arg1, arg2 unsafe.Pointer) C.int {
	c := connFromHandle(p)
	if c.traceSink == nil {
		return 0
	}
	switch mask {
	case C.SQLITE_TRACE_STMT:
		stmt := (*C.sqlite3_stmt)(arg1)
		sql := C.GoString(C.sqlite3_sql(stmt))
		c.traceSink(TraceInfo{Event: TraceStatement, SQL: sql})
	case C.SQLITE_TRACE_PROFILE:
		stmt := (*C.sqlite3_stmt)(arg1)
		nanos := *(*C.sqlite3_int64)(arg2)
		sql := C.GoString(C.sqlite3_sql(stmt))
		c.traceSink(TraceInfo{Event: TraceProfile, SQL: sql, Duration: time.Duration(nanos)})
	}
	return 0
}
