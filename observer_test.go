package sqlitekit

import (
	"errors"
	"testing"
)

type recordingObserver struct {
	changes    []ChangeKind
	commits    int
	rollbacks  int
	vetoErr    error
	willCommit int
}

func (o *recordingObserver) ObserveChange(kind ChangeKind, schema, table string, rowID int64) {
	o.changes = append(o.changes, kind)
}
func (o *recordingObserver) WillCommit() error {
	o.willCommit++
	return o.vetoErr
}
func (o *recordingObserver) DidCommit()   { o.commits++ }
func (o *recordingObserver) DidRollback() { o.rollbacks++ }

func TestTransactionObserverSeesChangesAndCommit(t *testing.T) {
	c := mustOpen(t, Config{})
	if _, err := c.Exec(`CREATE TABLE t(a)`); err != nil {
		t.Fatalf("CREATE TABLE: %v", err)
	}
	obs := &recordingObserver{}
	c.AddTransactionObserver(obs)

	err := c.InTransaction(nil, func() error {
		_, err := c.Exec(`INSERT INTO t VALUES(1)`)
		return err
	})
	if err != nil {
		t.Fatalf("InTransaction: %v", err)
	}
	if len(obs.changes) != 1 || obs.changes[0] != ChangeInsert {
		t.Fatalf("changes = %v; want one insert", obs.changes)
	}
	if obs.commits != 1 || obs.rollbacks != 0 {
		t.Fatalf("commits=%d rollbacks=%d; want 1,0", obs.commits, obs.rollbacks)
	}
}

func TestTransactionObserverSeesRollback(t *testing.T) {
	c := mustOpen(t, Config{})
	if _, err := c.Exec(`CREATE TABLE t(a)`); err != nil {
		t.Fatalf("CREATE TABLE: %v", err)
	}
	obs := &recordingObserver{}
	c.AddTransactionObserver(obs)

	sentinel := errors.New("boom")
	_ = c.InTransaction(nil, func() error {
		if _, err := c.Exec(`INSERT INTO t VALUES(1)`); err != nil {
			return err
		}
		return sentinel
	})
	if obs.commits != 0 || obs.rollbacks != 1 {
		t.Fatalf("commits=%d rollbacks=%d; want 0,1", obs.commits, obs.rollbacks)
	}
}

// §4.4: an observer may veto a commit; the engine forces a rollback and the
// caller sees the observer's own error rather than a generic engine error.
func TestTransactionObserverCanVetoCommit(t *testing.T) {
	c := mustOpen(t, Config{})
	if _, err := c.Exec(`CREATE TABLE t(a)`); err != nil {
		t.Fatalf("CREATE TABLE: %v", err)
	}
	vetoErr := errors.New("policy rejected this commit")
	obs := &recordingObserver{vetoErr: vetoErr}
	c.AddTransactionObserver(obs)

	err := c.InTransaction(nil, func() error {
		_, err := c.Exec(`INSERT INTO t VALUES(1)`)
		return err
	})
	if !errors.Is(err, vetoErr) {
		t.Fatalf("InTransaction() = %v; want the observer's veto error", err)
	}
	if obs.commits != 0 || obs.rollbacks != 1 {
		t.Fatalf("commits=%d rollbacks=%d; want 0,1", obs.commits, obs.rollbacks)
	}

	stmt, err := c.Query(`SELECT count(*) FROM t`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	var n int
	if err := stmt.Scan(&n); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if n != 0 {
		t.Fatalf("row count = %d after vetoed commit; want 0", n)
	}
}

func TestRemoveTransactionObserverStopsNotifications(t *testing.T) {
	c := mustOpen(t, Config{})
	if _, err := c.Exec(`CREATE TABLE t(a)`); err != nil {
		t.Fatalf("CREATE TABLE: %v", err)
	}
	obs := &recordingObserver{}
	c.AddTransactionObserver(obs)
	c.RemoveTransactionObserver(obs)

	if err := c.InTransaction(nil, func() error {
		_, err := c.Exec(`INSERT INTO t VALUES(1)`)
		return err
	}); err != nil {
		t.Fatalf("InTransaction: %v", err)
	}
	if obs.commits != 0 || len(obs.changes) != 0 {
		t.Fatalf("observer still notified after removal: %+v", obs)
	}
}
