package sqlitekit

import (
	"errors"
	"testing"
)

func TestSuspendBlocksLockAcquiringStatements(t *testing.T) {
	c := mustOpen(t, Config{})
	if _, err := c.Exec(`CREATE TABLE t(a)`); err != nil {
		t.Fatalf("CREATE TABLE: %v", err)
	}

	c.Suspend()
	if !c.Suspended() {
		t.Fatalf("Suspended() = false right after Suspend()")
	}
	_, err := c.Exec(`INSERT INTO t VALUES(1)`)
	if !errors.Is(err, ErrSuspended) {
		t.Fatalf("Exec() while suspended = %v; want ErrSuspended", err)
	}

	c.Resume()
	if c.Suspended() {
		t.Fatalf("Suspended() = true right after Resume()")
	}
	if _, err := c.Exec(`INSERT INTO t VALUES(1)`); err != nil {
		t.Fatalf("Exec() after Resume() unexpected error: %v", err)
	}
}

func TestSuspendAllowsLockReleasingStatements(t *testing.T) {
	c := mustOpen(t, Config{})
	if err := c.BeginTransaction(nil); err != nil {
		t.Fatalf("BeginTransaction: %v", err)
	}
	c.Suspend()
	defer c.Resume()
	if err := c.Rollback(); err != nil {
		t.Fatalf("Rollback() while suspended = %v; want nil (ROLLBACK always releases the lock)", err)
	}
}

func TestDoubleSuspendAndResumeAreIdempotent(t *testing.T) {
	c := mustOpen(t, Config{})
	c.Suspend()
	c.Suspend()
	if !c.Suspended() {
		t.Fatalf("Suspended() = false after two Suspend() calls")
	}
	c.Resume()
	c.Resume()
	if c.Suspended() {
		t.Fatalf("Suspended() = true after two Resume() calls")
	}
}
