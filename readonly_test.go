package sqlitekit

import "testing"

func TestReadOnlyRejectsWritesWhileActive(t *testing.T) {
	c := mustOpen(t, Config{})
	if _, err := c.Exec(`CREATE TABLE t(a)`); err != nil {
		t.Fatalf("CREATE TABLE: %v", err)
	}

	err := c.ReadOnly(func() error {
		_, err := c.Exec(`INSERT INTO t VALUES(1)`)
		if err == nil {
			t.Fatalf("INSERT unexpectedly succeeded while read-only")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ReadOnly() unexpected error: %v", err)
	}

	if _, err := c.Exec(`INSERT INTO t VALUES(1)`); err != nil {
		t.Fatalf("INSERT after ReadOnly() returned: %v", err)
	}
}

func TestReadOnlyNestsByDepth(t *testing.T) {
	c := mustOpen(t, Config{})
	if err := c.BeginReadOnly(); err != nil {
		t.Fatalf("BeginReadOnly: %v", err)
	}
	if err := c.BeginReadOnly(); err != nil {
		t.Fatalf("BeginReadOnly (nested): %v", err)
	}
	if err := c.EndReadOnly(); err != nil {
		t.Fatalf("EndReadOnly (inner): %v", err)
	}
	// Still one level of read-only active; writes must still fail.
	if _, err := c.Exec(`CREATE TABLE t(a)`); err == nil {
		t.Fatalf("CREATE TABLE succeeded with one read-only level still active")
	}
	if err := c.EndReadOnly(); err != nil {
		t.Fatalf("EndReadOnly (outer): %v", err)
	}
	if _, err := c.Exec(`CREATE TABLE t(a)`); err != nil {
		t.Fatalf("CREATE TABLE after fully unwinding ReadOnly depth: %v", err)
	}
}

func TestReadOnlyIsNoOpOnReadOnlyConnection(t *testing.T) {
	c := mustOpen(t, Config{ReadOnly: true})
	if err := c.BeginReadOnly(); err != nil {
		t.Fatalf("BeginReadOnly: %v", err)
	}
	if err := c.EndReadOnly(); err != nil {
		t.Fatalf("EndReadOnly: %v", err)
	}
}
