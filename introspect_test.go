package sqlitekit

import "testing"

func setupSchema(t *testing.T, c *Connection) {
	t.Helper()
	stmts := []string{
		`CREATE TABLE Author(id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		`CREATE TABLE Book(
			authorId INTEGER NOT NULL REFERENCES Author(id),
			isbn TEXT NOT NULL,
			title TEXT NOT NULL,
			PRIMARY KEY(authorId, isbn)
		) WITHOUT ROWID`,
		`CREATE UNIQUE INDEX Book_isbn ON Book(isbn)`,
		`CREATE VIEW AuthorNames AS SELECT name FROM Author`,
	}
	for _, sql := range stmts {
		if _, err := c.Exec(sql); err != nil {
			t.Fatalf("Exec(%q): %v", sql, err)
		}
	}
}

func TestTableAndViewExists(t *testing.T) {
	c := mustOpen(t, Config{})
	setupSchema(t, c)

	if ok, err := c.TableExists("Author", nil); err != nil || !ok {
		t.Fatalf("TableExists(Author) = (%v, %v); want (true, nil)", ok, err)
	}
	if ok, err := c.TableExists("AuthorNames", nil); err != nil || ok {
		t.Fatalf("TableExists(AuthorNames) = (%v, %v); want (false, nil)", ok, err)
	}
	if ok, err := c.ViewExists("AuthorNames", nil); err != nil || !ok {
		t.Fatalf("ViewExists(AuthorNames) = (%v, %v); want (true, nil)", ok, err)
	}
}

func TestCanonicalTableNameIsCaseInsensitive(t *testing.T) {
	c := mustOpen(t, Config{})
	setupSchema(t, c)

	canon, ok, err := c.CanonicalTableName("author", nil)
	if err != nil {
		t.Fatalf("CanonicalTableName: %v", err)
	}
	if !ok || canon != "Author" {
		t.Fatalf("CanonicalTableName(\"author\") = (%q, %v); want (Author, true)", canon, ok)
	}

	if _, ok, err := c.CanonicalTableName("nope", nil); err != nil || ok {
		t.Fatalf("CanonicalTableName(\"nope\") = (_, %v, %v); want (_, false, nil)", ok, err)
	}
}

func TestColumnsReportsDeclarationOrderAndNotNull(t *testing.T) {
	c := mustOpen(t, Config{})
	setupSchema(t, c)

	cols, err := c.Columns("Author", nil)
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	if len(cols) != 2 || cols[0].Name != "id" || cols[1].Name != "name" {
		t.Fatalf("Columns(Author) = %+v; want [id name]", cols)
	}
	if !cols[1].NotNull {
		t.Fatalf("Columns(Author)[name].NotNull = false")
	}
}

func TestPrimaryKeyClassificationFromLiveSchema(t *testing.T) {
	c := mustOpen(t, Config{})
	setupSchema(t, c)

	pk, err := c.PrimaryKey("Author", nil)
	if err != nil {
		t.Fatalf("PrimaryKey(Author): %v", err)
	}
	if pk.Kind != PKRowID {
		t.Fatalf("PrimaryKey(Author).Kind = %v; want PKRowID", pk.Kind)
	}

	pk, err = c.PrimaryKey("Book", nil)
	if err != nil {
		t.Fatalf("PrimaryKey(Book): %v", err)
	}
	if pk.Kind != PKRegular || pk.TableHasRowID {
		t.Fatalf("PrimaryKey(Book) = %+v; want PKRegular, TableHasRowID=false", pk)
	}
	if !sameColumnSet(pk.Columns, []string{"authorId", "isbn"}) {
		t.Fatalf("PrimaryKey(Book).Columns = %v; want {authorId, isbn}", pk.Columns)
	}

	if _, err := c.PrimaryKey("AuthorNames", nil); err != ErrNoPrimaryKeyForView {
		t.Fatalf("PrimaryKey(AuthorNames) = %v; want ErrNoPrimaryKeyForView", err)
	}
}

func TestIndexesAndForeignKeys(t *testing.T) {
	c := mustOpen(t, Config{})
	setupSchema(t, c)

	idx, err := c.Indexes("Book", nil)
	if err != nil {
		t.Fatalf("Indexes(Book): %v", err)
	}
	found := false
	for _, i := range idx {
		if i.Name == "Book_isbn" {
			found = true
			if !i.Unique || !sameColumnSet(i.Columns, []string{"isbn"}) {
				t.Fatalf("Book_isbn = %+v; want unique on [isbn]", i)
			}
		}
	}
	if !found {
		t.Fatalf("Indexes(Book) missing Book_isbn: %+v", idx)
	}

	fks, err := c.ForeignKeys("Book", nil)
	if err != nil {
		t.Fatalf("ForeignKeys(Book): %v", err)
	}
	if len(fks) != 1 || fks[0].DestinationTable != "Author" {
		t.Fatalf("ForeignKeys(Book) = %+v; want one FK to Author", fks)
	}
}

func TestColumnsForUniqueKeyMatchesPrimaryKeyFirst(t *testing.T) {
	c := mustOpen(t, Config{})
	setupSchema(t, c)

	cols, ok, err := c.ColumnsForUniqueKey("Book", []string{"isbn", "authorId"}, nil)
	if err != nil {
		t.Fatalf("ColumnsForUniqueKey: %v", err)
	}
	if !ok || !sameColumnSet(cols, []string{"authorId", "isbn"}) {
		t.Fatalf("ColumnsForUniqueKey = (%v, %v); want the primary key columns", cols, ok)
	}

	cols, ok, err = c.ColumnsForUniqueKey("Book", []string{"isbn"}, nil)
	if err != nil {
		t.Fatalf("ColumnsForUniqueKey: %v", err)
	}
	if !ok || cols[0] != "isbn" {
		t.Fatalf("ColumnsForUniqueKey([isbn]) = (%v, %v); want the unique index", cols, ok)
	}

	_, ok, err = c.ColumnsForUniqueKey("Book", []string{"title"}, nil)
	if err != nil {
		t.Fatalf("ColumnsForUniqueKey: %v", err)
	}
	if ok {
		t.Fatalf("ColumnsForUniqueKey([title]) = ok; want no match")
	}
}

func TestForeignKeyViolationsDetectsBrokenReference(t *testing.T) {
	c := mustOpen(t, Config{})
	setupSchema(t, c)
	// Foreign keys are not enforced here (Config.ForeignKeysEnabled is
	// false), so this INSERT succeeds despite the dangling reference,
	// letting the pragma-driven check below find it after the fact.
	if _, err := c.Exec(`INSERT INTO Book(authorId, isbn, title) VALUES(99, 'x', 'y')`); err != nil {
		t.Fatalf("INSERT: %v", err)
	}

	violations, err := c.ForeignKeyViolations("Book", nil)
	if err != nil {
		t.Fatalf("ForeignKeyViolations: %v", err)
	}
	if len(violations) != 1 || violations[0].DestinationTable != "Author" {
		t.Fatalf("ForeignKeyViolations = %+v; want one violation against Author", violations)
	}

	if err := c.CheckForeignKeys("Book", nil); err == nil {
		t.Fatalf("CheckForeignKeys() = nil; want a failure")
	}
}
