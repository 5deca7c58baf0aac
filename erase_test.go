package sqlitekit

import "testing"

func TestEraseDropsEveryNonInternalObject(t *testing.T) {
	c := mustOpen(t, Config{})
	setupSchema(t, c)
	if _, err := c.Exec(`CREATE TRIGGER trg AFTER INSERT ON Author BEGIN SELECT 1; END`); err != nil {
		t.Fatalf("CREATE TRIGGER: %v", err)
	}
	if _, err := c.Exec(`INSERT INTO Author(name) VALUES('x')`); err != nil {
		t.Fatalf("INSERT: %v", err)
	}

	if err := c.Erase(); err != nil {
		t.Fatalf("Erase: %v", err)
	}

	if ok, err := c.TableExists("Author", nil); err != nil || ok {
		t.Fatalf("TableExists(Author) = (%v, %v) after Erase; want (false, nil)", ok, err)
	}
	if ok, err := c.TableExists("Book", nil); err != nil || ok {
		t.Fatalf("TableExists(Book) = (%v, %v) after Erase; want (false, nil)", ok, err)
	}
	if ok, err := c.ViewExists("AuthorNames", nil); err != nil || ok {
		t.Fatalf("ViewExists(AuthorNames) = (%v, %v) after Erase; want (false, nil)", ok, err)
	}
	if ok, err := c.TriggerExists("trg", nil); err != nil || ok {
		t.Fatalf("TriggerExists(trg) = (%v, %v) after Erase; want (false, nil)", ok, err)
	}

	// The connection remains usable afterward.
	if _, err := c.Exec(`CREATE TABLE fresh(a)`); err != nil {
		t.Fatalf("CREATE TABLE after Erase: %v", err)
	}
}

func TestEraseIgnoresInternalObjects(t *testing.T) {
	if !hasInternalPrefix("sqlite_sequence") {
		t.Fatalf("hasInternalPrefix(sqlite_sequence) = false")
	}
	if hasInternalPrefix("Sequence") {
		t.Fatalf("hasInternalPrefix(Sequence) = true")
	}
}

func TestEraseTogglesForeignKeysWhenConfigured(t *testing.T) {
	c := mustOpen(t, Config{ForeignKeysEnabled: true})
	setupSchema(t, c)
	// With FK enforcement on, dropping Author before Book would normally
	// fail; Erase must disable enforcement for the duration of the drop.
	if err := c.Erase(); err != nil {
		t.Fatalf("Erase with ForeignKeysEnabled: %v", err)
	}
	stmt, err := c.Query(`PRAGMA foreign_keys`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	var enabled int
	if err := stmt.Scan(&enabled); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if enabled != 1 {
		t.Fatalf("foreign_keys = %d after Erase; want re-enabled (1)", enabled)
	}
}
