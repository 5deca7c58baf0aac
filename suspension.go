package sqlitekit

import "strings"

// Suspend atomically marks the connection suspended, then interrupts the
// engine so any in-flight statement aborts promptly, often releasing
// whatever lock it held (§4.8). Safe to call from any goroutine. A second
// call while already suspended is a no-op beyond re-interrupting.
func (c *Connection) Suspend() {
	c.suspended.Store(true)
	c.Interrupt()
}

// Resume atomically clears the suspended flag. Idempotent.
func (c *Connection) Resume() {
	c.suspended.Store(false)
}

// Suspended reports the current suspension state. Safe from any goroutine.
func (c *Connection) Suspended() bool { return c.suspended.Load() }

// checkForSuspensionViolation implements §4.8's per-statement gate. It
// must run on the owning goroutine (called only from Stmt.step, itself
// only reachable through owner-checked entry points).
func (c *Connection) checkForSuspensionViolation(s *Stmt) error {
	if !c.suspended.Load() {
		return nil
	}
	mode, err := c.cachedJournalMode()
	if err == nil && strings.EqualFold(mode, "wal") && s.ReadOnly() {
		return nil
	}
	if s.ReleasesDatabaseLock() {
		return nil
	}
	// Best-effort: release whatever lock this connection might still hold,
	// via the direct exec path so we don't recurse back into this check
	// through the public/internal statement caches.
	if stmt, err := newStmt(c, "ROLLBACK"); err == nil {
		stmt.Query()
		stmt.Close()
	}
	return ErrSuspended
}

// cachedJournalMode reads PRAGMA journal_mode once per connection lifetime
// and caches the result, per §4.8 ("assumed to not change after setup").
func (c *Connection) cachedJournalMode() (string, error) {
	var ferr error
	c.journalMuOnce.Do(func() {
		mode, err := fetchJournalMode(c)
		if err != nil {
			ferr = err
			return
		}
		c.journalMode = mode
	})
	if c.journalMode == "" && ferr != nil {
		return "", ferr
	}
	return c.journalMode, nil
}
