package sqlitekit

import (
	"fmt"
	"strings"
)

// Erase drops every non-internal object from the main schema inside a
// single transaction, temporarily disabling foreign-key enforcement so
// drop order doesn't matter (§6 "Erase"). Objects whose name starts with
// "sqlite_" (the engine's own bookkeeping, e.g. sqlite_sequence) are left
// alone. ClearSchemaCache is called on return since every cached
// introspection result is now stale.
func (c *Connection) Erase() error {
	c.assertOwner()
	defer c.ClearSchemaCache()

	wasEnabled := c.config.ForeignKeysEnabled
	if wasEnabled {
		if _, err := c.execInternal("PRAGMA foreign_keys = OFF"); err != nil {
			return err
		}
	}

	err := c.InTransaction(nil, func() error {
		si, err := c.schemaInfo(MainSchema)
		if err != nil {
			return err
		}
		for _, typ := range []SchemaObjectType{ObjectTrigger, ObjectIndex, ObjectView, ObjectTable} {
			for _, obj := range si.Objects(typ) {
				if hasInternalPrefix(obj.Name) {
					continue
				}
				sql := fmt.Sprintf("DROP %s %s", strings.ToUpper(string(typ)),
					TableIdentifier{Schema: MainSchema, Name: obj.Name}.QuotedSQL())
				if _, err := c.execInternal(sql); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if wasEnabled {
		if _, err := c.execInternal("PRAGMA foreign_keys = ON"); err != nil {
			return err
		}
	}
	return nil
}

func hasInternalPrefix(name string) bool {
	return len(name) >= 7 && name[:7] == "sqlite_"
}
