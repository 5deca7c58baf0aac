package sqlitekit

import (
	"bytes"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
)

// C12: every public Connection method must run on the goroutine that owns
// it. Violating this is a programmer error, not a recoverable one — it
// means two goroutines are racing on the native handle, the statement
// caches, or the schema cache, none of which are internally synchronized
// (§5 "Shared resources"). assertOwner panics rather than returning an
// error, matching spec §7 "Fatal invariants": these abort the process by
// design, the same way an out-of-bounds slice access does.
//
// No library in the retrieved pack exposes goroutine identity (it is
// deliberately absent from runtime's public API); the small stack-header
// probe below is the documented exception to "never fall back to stdlib"
// for that reason — see DESIGN.md.
func (c *Connection) assertOwner() {
	want := atomic.LoadInt64(&c.ownerID)
	if want == 0 {
		return // not yet bound; nothing to enforce
	}
	if got := currentGoroutineID(); got != want {
		panic(fmt.Sprintf(
			"sqlitekit: %s used from goroutine %d, but it is owned by goroutine %d",
			c.String(), got, want))
	}
}

var goroutineHeaderPrefix = []byte("goroutine ")

// currentGoroutineID parses the numeric id out of the "goroutine N [...]"
// header that runtime.Stack always writes first. It is intentionally slow
// (a handful of microseconds) and is only ever called from assertOwner and
// Bind, never from a hot path such as Stmt.Scan.
func currentGoroutineID() int64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]
	buf = bytes.TrimPrefix(buf, goroutineHeaderPrefix)
	if i := bytes.IndexByte(buf, ' '); i >= 0 {
		buf = buf[:i]
	}
	id, err := strconv.ParseInt(string(buf), 10, 64)
	if err != nil {
		return -1
	}
	return id
}
