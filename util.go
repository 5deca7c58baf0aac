package sqlitekit

/*
#include <stdlib.h>
#include <string.h>
#include "sqlite3.h"
*/
import "C"

import "unsafe"

// cStr returns a pointer to the first byte of a Go string that the caller
// has already null-terminated (by appending "\x00"). It avoids an extra
// allocation that C.CString would otherwise incur.
func cStr(s string) *C.char {
	return (*C.char)(unsafe.Pointer(unsafe.StringData(s)))
}

// cBytes returns a pointer to the first byte of b, or nil when b is empty
// (SQLite functions given a length of 0 do not dereference the pointer).
func cBytes(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

// goStr converts a NUL-terminated C string into a Go string, scanning for
// the terminator. The bytes are copied, so the result stays valid after the
// C memory is freed or reused.
func goStr(s *C.char) string {
	if s == nil {
		return ""
	}
	n := C.strlen(s)
	return goStrN(s, C.int(n))
}

// goStrN is the length-prefixed counterpart of goStr, used when SQLite
// already reports the byte length (e.g. sqlite3_column_bytes) so scanning
// for a NUL terminator can be skipped.
func goStrN(s *C.char, n C.int) string {
	if n <= 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(s)), int(n)))
}

// goBytes is the non-copying counterpart of C.GoBytes. The returned slice
// aliases memory owned by SQLite and is only valid until the next call that
// invalidates the statement's current row (step, reset, or finalize).
func goBytes(p unsafe.Pointer, n C.int) []byte {
	if p == nil || n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(p), int(n))
}

// cBool converts a Go bool into the C.int SQLite's boolean-flavored
// parameters expect.
func cBool(b bool) C.int {
	if b {
		return 1
	}
	return 0
}
