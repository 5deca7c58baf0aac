/*
Package sqlitekit provides a typed, higher-level connection object on top of
the embedded SQLite C engine.

A Connection owns exactly one native database handle. It prepares and
caches compiled statements, runs transactions and savepoints with
aborted-transaction detection, introspects the schema through a
version-gated cache, installs commit/rollback/update hooks and dispatches
them to registered observers, registers custom scalar/aggregate functions
and collations, and supports cooperative suspension so a process can
release its file locks on demand.

Installation

The package uses cgo to call SQLite library functions directly; your system
needs a C compiler and the SQLite development headers (pkg-config sqlite3).
No bundled amalgamation is shipped — see cgo_sqlite.go for the single
"#cgo pkg-config" line, which can be edited to link a specific libsqlite3.

Concurrency

A Connection is single-threaded from its own perspective: its public
methods assert that they run on the goroutine that last bound the
connection (see Connection.Bind), except String, AutoCommit,
IsInsideTransaction, LastInsertRowID and RowsAffected, which do not check,
and Suspend, Resume, Suspended and Interrupt, which may be called from any
goroutine. This assertion is the only thing standing between
the native handle, the statement caches, and the schema cache and a data
race, except for the suspension flag and the cached journal mode, which are
read and written from arbitrary goroutines by design (Connection.Suspend /
Connection.Resume may be called from a signal or lifecycle handler unrelated
to the owning goroutine).

Parallelism across connections is the caller's responsibility: open one
Connection per goroutine (or serialize access to a shared Connection
externally) the same way multiple *sql.DB handles would be used against
the same file.

Transactions

	kind := sqlitekit.Deferred
	err := conn.InTransaction(&kind, func() error {
		_, err := conn.Exec("INSERT INTO t(a) VALUES(?)", 1)
		return err
	})

The block's error decides the outcome: nil commits, and a non-nil error
rolls the transaction back and is returned. The block has no other way to
ask for a rollback.

Schema introspection

	ok, err := conn.TableExists("Player", nil)
	pk, err := conn.PrimaryKey("Player", nil)
	cols, err := conn.Columns("Player", nil)

All three are served from a schema cache that self-invalidates whenever
PRAGMA schema_version changes underneath the connection.
*/
package sqlitekit
