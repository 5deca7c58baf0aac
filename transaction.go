package sqlitekit

import "github.com/google/uuid"

// reservedSavepointName is the reserved name used for non-top-level
// savepoints (§4.4). InSavepoint uses it as is when no savepoint is open,
// and appends a short uuid-derived suffix when one already is.
const reservedSavepointName = "sqlitekit"

// BeginTransaction opens a transaction of the given kind (or the
// connection's DefaultTransactionKind, if kind is nil) via the engine's
// BEGIN statement.
func (c *Connection) BeginTransaction(kind *TransactionKind) error {
	c.assertOwner()
	k := c.config.DefaultTransactionKind
	if kind != nil {
		k = *kind
	}
	_, err := c.execInternal("BEGIN " + k.String() + " TRANSACTION")
	return err
}

// Commit issues COMMIT. If the transaction was silently aborted underneath
// the caller (§4.4), returns ErrAbortedTransaction instead of the engine's
// generic "no transaction is active" message.
func (c *Connection) Commit() error {
	c.assertOwner()
	if c.AutoCommit() {
		return ErrAbortedTransaction
	}
	c.suppressAbortCheck = true
	_, err := c.execInternal("COMMIT")
	c.suppressAbortCheck = false
	return err
}

// Rollback issues ROLLBACK. A rollback attempted after the engine already
// returned to autocommit mode (transaction already gone) is a no-op, since
// there is nothing left to roll back.
func (c *Connection) Rollback() error {
	c.assertOwner()
	if c.AutoCommit() {
		return nil
	}
	c.suppressAbortCheck = true
	_, err := c.execInternal("ROLLBACK")
	c.suppressAbortCheck = false
	return err
}

// InTransaction begins a transaction, runs block, and commits if block
// returns nil or rolls back if it returns an error (including
// ErrAbortedTransaction raised by a statement block ran internally). It is
// not reentrant: calling it again from within block panics, matching §4.4
// "this method is not reentrant — nesting must go through savepoints".
func (c *Connection) InTransaction(kind *TransactionKind, block func() error) (err error) {
	c.assertOwner()
	if c.insideTransactionBlock {
		panic("sqlitekit: InTransaction is not reentrant; use InSavepoint for nested scopes")
	}
	if err := c.BeginTransaction(kind); err != nil {
		return err
	}
	c.insideTransactionBlock = true

	defer func() {
		c.insideTransactionBlock = false
		r := recover()
		if err == nil && r == nil {
			if cerr := c.Commit(); cerr != nil {
				err = cerr
			}
			return
		}
		_ = c.Rollback() // the original error/panic is retained; any rollback error is swallowed (§7)
		if r != nil {
			panic(r)
		}
	}()
	err = block()
	return err
}

// InSavepoint runs block inside a savepoint. With no ambient transaction,
// the savepoint is promoted to a top-level BEGIN/COMMIT pair honoring
// DefaultTransactionKind (§4.4, working around an engine anomaly where a
// top-level savepoint does not return to autocommit after an
// observer-forced rollback). Otherwise it opens a single reserved
// savepoint, releasing it on success or rolling back then releasing it on
// failure; release is required because a rollback alone leaves the
// savepoint on the engine's stack. Savepoints are reentrant.
func (c *Connection) InSavepoint(block func() error) (err error) {
	c.assertOwner()
	if !c.insideTransactionBlock && c.AutoCommit() {
		return c.InTransaction(nil, block)
	}

	name := reservedSavepointName
	if len(c.savepointStack) > 0 {
		// A savepoint is already open from another named scope on this
		// connection; disambiguate for diagnosability only (SQLite itself
		// allows stacking identically-named savepoints without conflict).
		name = reservedSavepointName + "_" + newSavepointSuffix()
	}
	if _, err := c.execInternal("SAVEPOINT " + quoteIdentifier(name)); err != nil {
		return err
	}
	c.savepointStack = append(c.savepointStack, name)

	defer func() {
		r := recover()
		defer c.popSavepoint()
		if err == nil && r == nil {
			_, rerr := c.execInternal("RELEASE SAVEPOINT " + quoteIdentifier(name))
			if rerr != nil {
				err = rerr
			}
			return
		}
		_, _ = c.execInternal("ROLLBACK TRANSACTION TO SAVEPOINT " + quoteIdentifier(name))
		_, _ = c.execInternal("RELEASE SAVEPOINT " + quoteIdentifier(name))
		if r != nil {
			panic(r)
		}
	}()
	err = block()
	return err
}

func (c *Connection) popSavepoint() {
	if n := len(c.savepointStack); n > 0 {
		c.savepointStack = c.savepointStack[:n-1]
	}
}

// newSavepointSuffix mints a short disambiguating suffix via google/uuid.
// Diagnostic only: SAVEPOINT names need not be unique to SQLite, but a
// stable, collision-free suffix makes concurrent nested scopes traceable
// in logs and EXPLAIN output (SPEC_FULL §6).
func newSavepointSuffix() string {
	return uuid.New().String()[:8]
}
