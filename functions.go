package sqlitekit

/*
#include <stdlib.h>
#include "sqlite3.h"

extern void sqlitekitScalarTramp(sqlite3_context*, int, sqlite3_value**);
extern void sqlitekitStepTramp(sqlite3_context*, int, sqlite3_value**);
extern void sqlitekitFinalTramp(sqlite3_context*);
extern void sqlitekitDestroyTramp(void*);
extern int sqlitekitCollationTramp(void*, int, void*, int, void*);

static int create_scalar_function(sqlite3 *db, const char *name, int argc, int flags, void *data) {
	return sqlite3_create_function_v2(db, name, argc, flags, data,
		sqlitekitScalarTramp, 0, 0, sqlitekitDestroyTramp);
}
static int create_aggregate_function(sqlite3 *db, const char *name, int argc, int flags, void *data) {
	return sqlite3_create_function_v2(db, name, argc, flags, data,
		0, sqlitekitStepTramp, sqlitekitFinalTramp, sqlitekitDestroyTramp);
}
static int create_collation(sqlite3 *db, const char *name, void *data) {
	return sqlite3_create_collation_v2(db, name, SQLITE_UTF8, data, sqlitekitCollationTramp, sqlitekitDestroyTramp);
}
static int remove_scalar_function(sqlite3 *db, const char *name, int argc) {
	return sqlite3_create_function_v2(db, name, argc, SQLITE_UTF8, 0, 0, 0, 0, 0);
}
static int remove_collation(sqlite3 *db, const char *name) {
	return sqlite3_create_collation_v2(db, name, SQLITE_UTF8, 0, 0, 0);
}
*/
import "C"

import (
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FuncContext lets a registered function return a value or error to the
// engine, and lets an aggregate store per-invocation state (§4.9).
type FuncContext struct {
	ptr *C.sqlite3_context
	agg unsafe.Pointer // never set; aggregate state is kept in aggByKey
}

func (c *FuncContext) ResultInt64(v int64)   { C.sqlite3_result_int64(c.ptr, C.sqlite3_int64(v)) }
func (c *FuncContext) ResultFloat(v float64) { C.sqlite3_result_double(c.ptr, C.double(v)) }
func (c *FuncContext) ResultNull()           { C.sqlite3_result_null(c.ptr) }

func (c *FuncContext) ResultText(v string) {
	if len(v) == 0 {
		C.sqlite3_result_text(c.ptr, nil, 0, nil)
		return
	}
	cv := C.CString(v)
	C.sqlite3_result_text(c.ptr, cv, C.int(len(v)), (*[0]byte)(C.free))
}

func (c *FuncContext) ResultBlob(v []byte) {
	if len(v) == 0 {
		C.sqlite3_result_zeroblob(c.ptr, 0)
		return
	}
	cv := C.CBytes(v)
	C.sqlite3_result_blob(c.ptr, cv, C.int(len(v)), (*[0]byte)(C.free))
}

func (c *FuncContext) ResultError(err error) {
	msg := C.CString(err.Error())
	defer C.free(unsafe.Pointer(msg))
	C.sqlite3_result_error(c.ptr, msg, C.int(len(err.Error())))
}

// aggregateState is the per-invocation bookkeeping kept in aggByKey, keyed
// by the address of the engine's aggregate-context buffer: the user's state
// value, plus any error recorded by Step so Final can report it and
// further Step calls become no-ops (§4.9, §9 "Aggregate state storage").
type aggregateState struct {
	value any
	err   error
}

var (
	aggMu    sync.Mutex
	aggByKey = map[unsafe.Pointer]*aggregateState{}
)

// FuncValue is one bound argument passed to a registered function.
type FuncValue struct{ ptr *C.sqlite3_value }

func (v FuncValue) Int64() int64   { return int64(C.sqlite3_value_int64(v.ptr)) }
func (v FuncValue) Float() float64 { return float64(C.sqlite3_value_double(v.ptr)) }
func (v FuncValue) IsNull() bool   { return C.sqlite3_value_type(v.ptr) == C.SQLITE_NULL }

func (v FuncValue) Text() string {
	p := (*C.char)(unsafe.Pointer(C.sqlite3_value_text(v.ptr)))
	n := C.sqlite3_value_bytes(v.ptr)
	return C.GoStringN(p, n)
}

func (v FuncValue) Blob() []byte {
	n := C.sqlite3_value_bytes(v.ptr)
	if n == 0 {
		return nil
	}
	return C.GoBytes(unsafe.Pointer(C.sqlite3_value_blob(v.ptr)), n)
}

func toFuncValues(argc C.int, argv **C.sqlite3_value) []FuncValue {
	n := int(argc)
	if n == 0 {
		return nil
	}
	raw := unsafe.Slice(argv, n)
	out := make([]FuncValue, n)
	for i, p := range raw {
		out[i] = FuncValue{ptr: p}
	}
	return out
}

// ScalarFunction is a user-defined SQL scalar function.
type ScalarFunction interface {
	Name() string
	Argc() int // -1 for variable arity
	Deterministic() bool
	Apply(ctx *FuncContext, args []FuncValue)
}

// AggregateFunction is a user-defined SQL aggregate function. Step is
// called once per input row; Final is called exactly once, after the last
// Step, to produce the result.
type AggregateFunction interface {
	Name() string
	Argc() int
	Deterministic() bool
	NewState() any
	Step(state any, args []FuncValue) (any, error)
	Final(ctx *FuncContext, state any, err error)
}

// Collation is a user-defined text comparator, registered with SQLITE_UTF8
// encoding (§4.9).
type Collation struct {
	Name    string
	Compare func(a, b string) int
}

func textRep(deterministic bool) C.int {
	rep := C.int(C.SQLITE_UTF8)
	if deterministic {
		rep |= C.SQLITE_DETERMINISTIC
	}
	return rep
}

// AddFunction installs fn, which must be a ScalarFunction or
// AggregateFunction. Installing a function already registered under the
// same (name, argc) replaces it, per sqlite3_create_function_v2 semantics.
func (c *Connection) AddFunction(fn any) error {
	c.assertOwner()
	var name string
	var argc int
	var deterministic bool
	switch f := fn.(type) {
	case ScalarFunction:
		name, argc, deterministic = f.Name(), f.Argc(), f.Deterministic()
	case AggregateFunction:
		name, argc, deterministic = f.Name(), f.Argc(), f.Deterministic()
	default:
		return &InvalidConfigurationError{Reason: "fn must implement ScalarFunction or AggregateFunction"}
	}
	if argc < -1 {
		return &InvalidConfigurationError{Reason: "argument count must be >= -1"}
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	handle := retain(fn)
	var rc C.int
	switch fn.(type) {
	case ScalarFunction:
		rc = C.create_scalar_function(c.db, cname, C.int(argc), textRep(deterministic), handle)
	case AggregateFunction:
		rc = C.create_aggregate_function(c.db, cname, C.int(argc), textRep(deterministic), handle)
	}
	if rc != C.SQLITE_OK {
		release(handle)
		return libErr(rc, c.db)
	}
	c.functions[funcKey{name: strings.ToLower(name), argc: argc}] = handle
	return nil
}

// RemoveFunction uninstalls the function registered under (name, argc),
// per §4.9 "removal re-registers a null function with the same identity".
func (c *Connection) RemoveFunction(name string, argc int) error {
	c.assertOwner()
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	// The engine refuses (BUSY) to remove a function while any statement is
	// still active, so cached statements are finalized first.
	c.internalCache.clear()
	c.publicCache.clear()
	if rc := C.remove_scalar_function(c.db, cname, C.int(argc)); rc != C.SQLITE_OK {
		return libErr(rc, c.db)
	}
	k := funcKey{name: strings.ToLower(name), argc: argc}
	delete(c.functions, k) // the engine's destructor callback already released the handle
	return nil
}

// AddCollation installs a named text comparator.
func (c *Connection) AddCollation(col Collation) error {
	c.assertOwner()
	cname := C.CString(col.Name)
	defer C.free(unsafe.Pointer(cname))
	handle := retain(col.Compare)
	if rc := C.create_collation(c.db, cname, handle); rc != C.SQLITE_OK {
		release(handle)
		return libErr(rc, c.db)
	}
	c.collations[strings.ToLower(col.Name)] = handle
	return nil
}

// RemoveCollation uninstalls a previously-registered collation.
func (c *Connection) RemoveCollation(name string) error {
	c.assertOwner()
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	// As in RemoveFunction: removal fails with BUSY while a statement is active.
	c.internalCache.clear()
	c.publicCache.clear()
	if rc := C.remove_collation(c.db, cname); rc != C.SQLITE_OK {
		return libErr(rc, c.db)
	}
	delete(c.collations, strings.ToLower(name))
	return nil
}

func (c *Connection) removeAllFunctionsAndCollations() {
	for k := range c.functions {
		cname := C.CString(k.name)
		C.remove_scalar_function(c.db, cname, C.int(k.argc))
		C.free(unsafe.Pointer(cname))
	}
	for name := range c.collations {
		cname := C.CString(name)
		C.remove_collation(c.db, cname)
		C.free(unsafe.Pointer(cname))
	}
	c.functions = make(map[funcKey]unsafe.Pointer)
	c.collations = make(map[string]unsafe.Pointer)
}

// installDefaultFunctionsAndCollations registers the locale-aware case
// transforms and collations named in §4.1 step 4, built on
// golang.org/x/text/cases rather than hand-rolled ASCII folding.
func (c *Connection) installDefaultFunctionsAndCollations() error {
	upper := upperScalar{caser: cases.Upper(language.Und)}
	lower := lowerScalar{caser: cases.Lower(language.Und)}
	if err := c.AddFunction(upper); err != nil {
		return err
	}
	if err := c.AddFunction(lower); err != nil {
		return err
	}
	if err := c.AddCollation(Collation{Name: "NOCASE_UNICODE", Compare: unicodeNoCaseCompare}); err != nil {
		return err
	}
	return nil
}

type upperScalar struct{ caser cases.Caser }

func (upperScalar) Name() string        { return "UPPER" }
func (upperScalar) Argc() int           { return 1 }
func (upperScalar) Deterministic() bool { return true }
func (f upperScalar) Apply(ctx *FuncContext, args []FuncValue) {
	if args[0].IsNull() {
		ctx.ResultNull()
		return
	}
	ctx.ResultText(f.caser.String(args[0].Text()))
}

type lowerScalar struct{ caser cases.Caser }

func (lowerScalar) Name() string        { return "LOWER" }
func (lowerScalar) Argc() int           { return 1 }
func (lowerScalar) Deterministic() bool { return true }
func (f lowerScalar) Apply(ctx *FuncContext, args []FuncValue) {
	if args[0].IsNull() {
		ctx.ResultNull()
		return
	}
	ctx.ResultText(f.caser.String(args[0].Text()))
}

func unicodeNoCaseCompare(a, b string) int {
	ca := cases.Fold().String(a)
	cb := cases.Fold().String(b)
	switch {
	case ca < cb:
		return -1
	case ca > cb:
		return 1
	default:
		return 0
	}
}

func restoreFunc(ctx *C.sqlite3_context) any {
	return restore(unsafe.Pointer(C.sqlite3_user_data(ctx)))
}

//export sqlitekitScalarTramp
func sqlitekitScalarTramp(ctx *C.sqlite3_context, argc C.int, argv **C.sqlite3_value) {
	fn := restoreFunc(ctx).(ScalarFunction)
	fn.Apply(&FuncContext{ptr: ctx}, toFuncValues(argc, argv))
}

//export sqlitekitStepTramp
func sqlitekitStepTramp(ctx *C.sqlite3_context, argc C.int, argv **C.sqlite3_value) {
	fn := restoreFunc(ctx).(AggregateFunction)
	id := C.sqlite3_aggregate_context(ctx, 1)

	aggMu.Lock()
	st, ok := aggByKey[id]
	if !ok {
		st = &aggregateState{value: fn.NewState()}
		aggByKey[id] = st
	}
	aggMu.Unlock()

	if st.err != nil {
		return // a prior Step already failed; skip further work (§4.9)
	}
	v, err := fn.Step(st.value, toFuncValues(argc, argv))
	aggMu.Lock()
	st.value, st.err = v, err
	aggMu.Unlock()
}

//export sqlitekitFinalTramp
func sqlitekitFinalTramp(ctx *C.sqlite3_context) {
	fn := restoreFunc(ctx).(AggregateFunction)
	id := C.sqlite3_aggregate_context(ctx, 0)

	aggMu.Lock()
	st, ok := aggByKey[id]
	delete(aggByKey, id)
	aggMu.Unlock()

	if !ok {
		st = &aggregateState{value: fn.NewState()}
	}
	fn.Final(&FuncContext{ptr: ctx}, st.value, st.err)
}

//export sqlitekitCollationTramp
func sqlitekitCollationTramp(data unsafe.Pointer, aLen C.int, a unsafe.Pointer, bLen C.int, b unsafe.Pointer) C.int {
	cmp := restore(data).(func(string, string) int)
	sa := C.GoStringN((*C.char)(a), aLen)
	sb := C.GoStringN((*C.char)(b), bLen)
	return C.int(cmp(sa, sb))
}

//export sqlitekitDestroyTramp
func sqlitekitDestroyTramp(p unsafe.Pointer) {
	release(p)
}
