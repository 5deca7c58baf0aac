package sqlitekit

import "testing"

func TestClassifyPrimaryKeyHiddenRowID(t *testing.T) {
	cols := []ColumnInfo{{CID: 0, Name: "a"}, {CID: 1, Name: "b"}}
	pk := classifyPrimaryKey(cols, true)
	if pk.Kind != PKHiddenRowID {
		t.Fatalf("Kind = %v; want PKHiddenRowID", pk.Kind)
	}
	if len(pk.Columns) != 1 || pk.Columns[0] != "rowid" {
		t.Fatalf("Columns = %v; want [rowid]", pk.Columns)
	}
	if _, ok := pk.FastPrimaryKeyColumn(); ok {
		t.Fatalf("FastPrimaryKeyColumn() ok = true for hidden rowid")
	}
}

func TestClassifyPrimaryKeyIntegerAliasesRowID(t *testing.T) {
	cols := []ColumnInfo{{Name: "id", DeclaredType: "INTEGER", PrimaryKeyOrdinal: 1}}
	pk := classifyPrimaryKey(cols, true)
	if pk.Kind != PKRowID {
		t.Fatalf("Kind = %v; want PKRowID", pk.Kind)
	}
	col, ok := pk.FastPrimaryKeyColumn()
	if !ok || col != "id" {
		t.Fatalf("FastPrimaryKeyColumn() = (%q, %v); want (id, true)", col, ok)
	}
	if !pk.IsRowID() {
		t.Fatalf("IsRowID() = false")
	}
}

// A column declared INT (not INTEGER) never aliases the rowid, even when it
// is the sole primary key column (§4.3 classification table).
func TestClassifyPrimaryKeyIntDoesNotAliasRowID(t *testing.T) {
	cols := []ColumnInfo{{Name: "id", DeclaredType: "INT", PrimaryKeyOrdinal: 1}}
	pk := classifyPrimaryKey(cols, true)
	if pk.Kind != PKRegular {
		t.Fatalf("Kind = %v; want PKRegular", pk.Kind)
	}
	if _, ok := pk.FastPrimaryKeyColumn(); ok {
		t.Fatalf("FastPrimaryKeyColumn() ok = true for INT primary key")
	}
}

func TestClassifyPrimaryKeyMultiColumnWithoutRowID(t *testing.T) {
	cols := []ColumnInfo{
		{Name: "b", PrimaryKeyOrdinal: 2},
		{Name: "a", PrimaryKeyOrdinal: 1},
		{Name: "unrelated"},
	}
	pk := classifyPrimaryKey(cols, false)
	if pk.Kind != PKRegular {
		t.Fatalf("Kind = %v; want PKRegular", pk.Kind)
	}
	if want := []string{"a", "b"}; !sameColumnSet(pk.Columns, want) || pk.Columns[0] != "a" {
		t.Fatalf("Columns = %v; want ordinal-sorted %v", pk.Columns, want)
	}
	if pk.TableHasRowID {
		t.Fatalf("TableHasRowID = true for WITHOUT ROWID table")
	}
	if _, ok := pk.FastPrimaryKeyColumn(); ok {
		t.Fatalf("FastPrimaryKeyColumn() ok = true for multi-column key")
	}
}

func TestSameColumnSetIsOrderInsensitive(t *testing.T) {
	if !sameColumnSet([]string{"a", "b"}, []string{"b", "a"}) {
		t.Fatalf("sameColumnSet reported false for a permutation")
	}
	if sameColumnSet([]string{"a"}, []string{"a", "b"}) {
		t.Fatalf("sameColumnSet reported true for different lengths")
	}
}
