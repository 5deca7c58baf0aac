package sqlitekit

import "time"

// TransactionKind selects the locking behavior SQLite uses when a
// transaction begins. See https://www.sqlite.org/lang_transaction.html.
type TransactionKind int

const (
	Deferred TransactionKind = iota
	Immediate
	Exclusive
)

func (k TransactionKind) String() string {
	switch k {
	case Immediate:
		return "IMMEDIATE"
	case Exclusive:
		return "EXCLUSIVE"
	default:
		return "DEFERRED"
	}
}

// BusyMode selects how the connection reacts to SQLITE_BUSY (§4.1 step 1).
type BusyMode struct {
	// Kind is one of "immediate_error", "timeout", or "callback".
	Kind string

	// Timeout is used when Kind == "timeout".
	Timeout time.Duration

	// Callback is used when Kind == "callback". It receives the number of
	// times the busy handler has already been invoked for the current
	// locking attempt and returns true to retry, false to fail with BUSY.
	Callback func(attempts int) bool
}

// ImmediateBusyError configures the connection to fail immediately with
// SQLITE_BUSY instead of retrying (SQLite's default).
func ImmediateBusyError() BusyMode { return BusyMode{Kind: "immediate_error"} }

// BusyTimeout configures the built-in millisecond busy handler.
func BusyTimeout(d time.Duration) BusyMode { return BusyMode{Kind: "timeout", Timeout: d} }

// BusyCallback installs a user busy handler.
func BusyCallback(f func(attempts int) bool) BusyMode {
	return BusyMode{Kind: "callback", Callback: f}
}

// TraceEvent identifies which optional per-statement events are delivered
// to a TraceFunc.
type TraceEvent int

const (
	TraceStatement TraceEvent = 1 << iota
	TraceProfile
)

// TraceOptions is a bitmask of TraceEvent values. A zero value disables
// tracing entirely (§6 "trace_options": "{} disables").
type TraceOptions int

// Has reports whether opts requests ev.
func (opts TraceOptions) Has(ev TraceEvent) bool { return int(opts)&int(ev) != 0 }

// Codec implements pluggable page-level encode/decode, adapted from the
// teacher's codec.go. Only the interface is declared: neither Setup nor
// Erase reads Config.Codec, and no page is ever passed through it.
type Codec interface {
	Reserve() int
	Resize(pageSize, reserve int)
	Encode(page []byte, pageNum uint32, op int) []byte
	Decode(page []byte, pageNum uint32, op int) bool
	Key() []byte
}

// Config bundles the per-connection options recognized by Open (§6
// "Configuration options recognized"). The zero Config is a writable
// connection with a deferred default transaction kind, the built-in
// busy-error behavior, foreign keys disabled, and tracing off — SQLite's
// own defaults.
type Config struct {
	// ReadOnly opens the connection without write capability.
	ReadOnly bool

	// ForeignKeysEnabled issues PRAGMA foreign_keys = ON during Setup.
	ForeignKeysEnabled bool

	// DefaultTransactionKind is used by InTransaction and InSavepoint's
	// top-level-promotion path when the caller does not name a kind.
	DefaultTransactionKind TransactionKind

	// Busy selects the busy-handling policy installed during Setup.
	Busy BusyMode

	// AcceptsDoubleQuotedStringLiterals toggles SQLITE_DBCONFIG_DQS_DDL /
	// SQLITE_DBCONFIG_DQS_DML. Leave false to reject the historical
	// double-quoted string literal misfeature (SQLite's modern default).
	AcceptsDoubleQuotedStringLiterals bool

	// ObservesSuspensionNotifications tells a host integration (external
	// collaborator) whether it should drive Suspend/Resume for this
	// connection. The core does not act on this flag itself; it is
	// surfaced for that collaborator to read.
	ObservesSuspensionNotifications bool

	// Trace, when non-zero and Logger is set, makes Setup install a trace
	// sink that writes the selected events to Logger. It has no effect
	// without a Logger.
	Trace TraceOptions

	// PrepareDatabase, if set, runs last during Setup, before the format
	// validation query (§4.1 step 8/9). It may run arbitrary statements
	// (e.g. ATTACH, custom PRAGMAs) against the freshly opened connection.
	PrepareDatabase func(*Connection) error

	// Codec is stored on the connection but not used: no page-level
	// encode/decode is installed, whatever its value.
	Codec Codec

	// Logger receives diagnostics that have no calling frame to return to:
	// errors from the deferred CloseV2 path, and trace events when Trace
	// is non-zero. Nil means silent.
	Logger Logger

	// Label is a free-text identifier surfaced by Connection.String (and so
	// in trace log lines) and in CloseV2's leaked-statement log, useful when
	// a process holds many connections open at once. EngineError does not
	// carry it.
	Label string
}

// Logger is the minimal sink Connection writes diagnostics to. *log.Logger
// satisfies it.
type Logger interface {
	Printf(format string, args ...any)
}
