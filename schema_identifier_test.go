package sqlitekit

import "testing"

func TestSchemaIdentifierSQL(t *testing.T) {
	cases := []struct {
		id   SchemaIdentifier
		want string
	}{
		{MainSchema, "main"},
		{TempSchema, "temp"},
		{AttachedSchema("Archive"), "Archive"},
	}
	for _, c := range cases {
		if got := c.id.SQL(); got != c.want {
			t.Errorf("SQL() = %q; want %q", got, c.want)
		}
	}
}

func TestSchemaIdentifierMasterTableName(t *testing.T) {
	if got := TempSchema.MasterTableName(); got != "sqlite_temp_master" {
		t.Fatalf("TempSchema.MasterTableName() = %q", got)
	}
	if got := MainSchema.MasterTableName(); got != "sqlite_master" {
		t.Fatalf("MainSchema.MasterTableName() = %q", got)
	}
	if got := AttachedSchema("x").MasterTableName(); got != "sqlite_master" {
		t.Fatalf("AttachedSchema.MasterTableName() = %q", got)
	}
}

func TestSchemaIdentifierEqual(t *testing.T) {
	if !MainSchema.Equal(MainSchema) {
		t.Fatalf("MainSchema.Equal(MainSchema) = false")
	}
	if MainSchema.Equal(TempSchema) {
		t.Fatalf("MainSchema.Equal(TempSchema) = true")
	}
	if !AttachedSchema("x").Equal(AttachedSchema("x")) {
		t.Fatalf("AttachedSchema(x).Equal(AttachedSchema(x)) = false")
	}
	// Attached schema names compare case-sensitively, unlike table lookups.
	if AttachedSchema("x").Equal(AttachedSchema("X")) {
		t.Fatalf("AttachedSchema(x).Equal(AttachedSchema(X)) = true")
	}
}

func TestTableIdentifierQuotedSQL(t *testing.T) {
	id := TableIdentifier{Schema: MainSchema, Name: `weird"name`}
	if got, want := id.QuotedSQL(), `"main"."weird""name"`; got != want {
		t.Fatalf("QuotedSQL() = %q; want %q", got, want)
	}
}
