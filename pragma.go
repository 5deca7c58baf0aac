package sqlitekit

import (
	"fmt"
	"io"
	"strings"
)

// Minimum SQLite versions gating the pragma dialects §4.3 calls for.
const (
	versionTableXInfo = 3026000 // PRAGMA table_xinfo exposes hidden/generated columns
	versionTableList  = 3037000 // PRAGMA table_list reports WITHOUT ROWID directly
)

// fetchSchemaIdentifiers queries PRAGMA database_list and reorders the
// result so temp (if present) comes first, matching SQLite's own name
// resolution order: temp, main, then attached databases in attach order
// (§4.3 "Schema identifier resolution").
func fetchSchemaIdentifiers(c *Connection) ([]SchemaIdentifier, error) {
	stmt, err := c.internalCache.prepare(c, "PRAGMA database_list")
	if err != nil {
		return nil, err
	}
	defer stmt.reset()

	var ids []SchemaIdentifier
	var tempIdx = -1
	err = stmt.Query()
	for ; err == nil; err = stmt.Next() {
		var seq int
		var name, file string
		if err := stmt.Scan(&seq, &name, &file); err != nil {
			return nil, err
		}
		var id SchemaIdentifier
		switch name {
		case "main":
			id = MainSchema
		case "temp":
			id = TempSchema
			tempIdx = len(ids)
		default:
			id = AttachedSchema(name)
		}
		ids = append(ids, id)
	}
	if err != io.EOF {
		return nil, err
	}
	if tempIdx > 0 {
		ids[0], ids[tempIdx] = ids[tempIdx], ids[0]
	}
	return ids, nil
}

// fetchSchemaVersion reads the 32-bit schema-version header value.
func fetchSchemaVersion(c *Connection) (int32, error) {
	stmt, err := c.internalCache.prepare(c, "PRAGMA schema_version")
	if err != nil {
		return 0, err
	}
	defer stmt.reset()
	if err := stmt.Query(); err != nil {
		return 0, err
	}
	var v int64
	if err := stmt.Scan(&v); err != nil {
		return 0, err
	}
	return int32(v), nil
}

// fetchJournalMode reads PRAGMA journal_mode through a direct, uncached
// prepared statement, as §4.8 requires ("never through the public cache").
// The result is cached for the connection's lifetime by the caller
// (suspension.go), since journal mode is assumed fixed after Setup.
func fetchJournalMode(c *Connection) (string, error) {
	stmt, err := newStmt(c, "PRAGMA journal_mode")
	if err != nil {
		return "", err
	}
	defer stmt.Close()
	if err := stmt.Query(); err != nil {
		return "", err
	}
	var mode string
	if err := stmt.Scan(&mode); err != nil {
		return "", err
	}
	return mode, nil
}

// fetchMasterObjects lists every table/view/index/trigger defined in one
// schema, from its master table (sqlite_master or sqlite_temp_master).
func fetchMasterObjects(c *Connection, schema SchemaIdentifier) ([]SchemaObject, error) {
	sql := fmt.Sprintf(`SELECT type, name, tbl_name, COALESCE(sql, '') FROM %s.%s`,
		quoteIdentifier(schema.SQL()), schema.MasterTableName())
	stmt, err := c.internalCache.prepare(c, sql)
	if err != nil {
		return nil, err
	}
	defer stmt.reset()

	var objects []SchemaObject
	for err := stmt.Query(); ; err = stmt.Next() {
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		var o SchemaObject
		var typ string
		if err := stmt.Scan(&typ, &o.Name, &o.TblName, &o.SQL); err != nil {
			return nil, err
		}
		o.Type = SchemaObjectType(typ)
		objects = append(objects, o)
	}
	return objects, nil
}

// fetchColumns runs PRAGMA table_xinfo (>= 3.26) or PRAGMA table_info
// (older engines) against schema.table and filters out hidden columns
// (xinfo's hidden == 1) so the result matches what "SELECT *" would
// produce (§4.3 "columns(in:schema:)").
func fetchColumns(c *Connection, schema SchemaIdentifier, table string) ([]ColumnInfo, error) {
	useXInfo := c.engineVersion >= versionTableXInfo
	pragmaName := "table_info"
	if useXInfo {
		pragmaName = "table_xinfo"
	}
	sql := fmt.Sprintf(`PRAGMA %s.%s(%s)`, quoteIdentifier(schema.SQL()), pragmaName, sqlQuote(table))
	stmt, err := c.internalCache.prepare(c, sql)
	if err != nil {
		return nil, err
	}
	defer stmt.reset()

	var cols []ColumnInfo
	for err := stmt.Query(); ; err = stmt.Next() {
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		var col ColumnInfo
		var notNull, hidden int
		var pk int
		if useXInfo {
			// cid, name, type, notnull, dflt_value, pk, hidden
			var defaultSQL any
			if err := stmt.Scan(&col.CID, &col.Name, &col.DeclaredType, &notNull, &defaultSQL, &pk, &hidden); err != nil {
				return nil, err
			}
			if defaultSQL != nil {
				s := fmt.Sprintf("%v", defaultSQL)
				col.DefaultSQL = &s
			}
		} else {
			var defaultSQL any
			if err := stmt.Scan(&col.CID, &col.Name, &col.DeclaredType, &notNull, &defaultSQL, &pk); err != nil {
				return nil, err
			}
			if defaultSQL != nil {
				s := fmt.Sprintf("%v", defaultSQL)
				col.DefaultSQL = &s
			}
		}
		if hidden == 1 {
			continue // matches "SELECT *" (§4.3)
		}
		col.NotNull = notNull != 0
		col.PrimaryKeyOrdinal = pk
		col.Hidden = hidden != 0
		cols = append(cols, col)
	}
	return cols, nil
}

// fetchIndexes runs PRAGMA index_list then PRAGMA index_info for each
// entry, omitting indexes on expressions (§4.3 known limitation).
func fetchIndexes(c *Connection, schema SchemaIdentifier, table string) ([]IndexInfo, error) {
	sql := fmt.Sprintf(`PRAGMA %s.index_list(%s)`, quoteIdentifier(schema.SQL()), sqlQuote(table))
	stmt, err := c.internalCache.prepare(c, sql)
	if err != nil {
		return nil, err
	}
	type rawIndex struct {
		name   string
		unique bool
		origin string
	}
	var raws []rawIndex
	for err := stmt.Query(); ; err = stmt.Next() {
		if err != nil {
			if err == io.EOF {
				break
			}
			stmt.reset()
			return nil, err
		}
		var seq int
		var r rawIndex
		var uniqueFlag int
		var partial int
		if err := stmt.Scan(&seq, &r.name, &uniqueFlag, &r.origin, &partial); err != nil {
			stmt.reset()
			return nil, err
		}
		r.unique = uniqueFlag != 0
		raws = append(raws, r)
	}
	stmt.reset()

	var indexes []IndexInfo
	for _, r := range raws {
		infoSQL := fmt.Sprintf(`PRAGMA %s.index_info(%s)`, quoteIdentifier(schema.SQL()), sqlQuote(r.name))
		infoStmt, err := c.internalCache.prepare(c, infoSQL)
		if err != nil {
			return nil, err
		}
		var cols []string
		expressionIndex := false
		for err := infoStmt.Query(); ; err = infoStmt.Next() {
			if err != nil {
				if err == io.EOF {
					break
				}
				infoStmt.reset()
				return nil, err
			}
			var seqno, cid int
			var name any
			if err := infoStmt.Scan(&seqno, &cid, &name); err != nil {
				infoStmt.reset()
				return nil, err
			}
			if name == nil {
				expressionIndex = true
				continue
			}
			cols = append(cols, fmt.Sprintf("%v", name))
		}
		infoStmt.reset()
		if expressionIndex {
			continue
		}
		indexes = append(indexes, IndexInfo{
			Name:    r.name,
			Columns: cols,
			Unique:  r.unique,
			Origin:  indexOriginFromPragma(r.origin),
		})
	}
	return indexes, nil
}

func indexOriginFromPragma(origin string) IndexOrigin {
	switch origin {
	case "u":
		return IndexOriginUniqueConstraint
	case "pk":
		return IndexOriginPrimaryKeyConstraint
	default:
		return IndexOriginCreateIndex
	}
}

// fetchForeignKeys runs PRAGMA foreign_key_list and groups rows by id,
// ordering each mapping's column pairs by the "seq" column and filling in
// missing destination names from the referenced table's primary key,
// zipped in order (§3 ForeignKeyInfo).
func fetchForeignKeys(c *Connection, schema SchemaIdentifier, table string) ([]ForeignKeyInfo, error) {
	sql := fmt.Sprintf(`PRAGMA %s.foreign_key_list(%s)`, quoteIdentifier(schema.SQL()), sqlQuote(table))
	stmt, err := c.internalCache.prepare(c, sql)
	if err != nil {
		return nil, err
	}
	defer stmt.reset()

	type row struct {
		id       int
		seq      int
		table    string
		from, to string // to may be ""
	}
	var rows []row
	for err := stmt.Query(); ; err = stmt.Next() {
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		var r row
		var onUpdate, onDelete, match string
		var toVal any
		if err := stmt.Scan(&r.id, &r.seq, &r.table, &r.from, &toVal, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}
		if toVal != nil {
			r.to = fmt.Sprintf("%v", toVal)
		}
		rows = append(rows, r)
	}

	byID := map[int][]row{}
	var order []int
	for _, r := range rows {
		if _, ok := byID[r.id]; !ok {
			order = append(order, r.id)
		}
		byID[r.id] = append(byID[r.id], r)
	}

	var fks []ForeignKeyInfo
	for _, id := range order {
		grouped := byID[id]
		for i := range grouped {
			for j := i + 1; j < len(grouped); j++ {
				if grouped[j].seq < grouped[i].seq {
					grouped[i], grouped[j] = grouped[j], grouped[i]
				}
			}
		}
		fk := ForeignKeyInfo{ID: id, DestinationTable: grouped[0].table}
		needsDestFill := false
		for _, r := range grouped {
			fk.Columns = append(fk.Columns, ForeignKeyColumnMapping{Origin: r.from, Destination: r.to})
			if r.to == "" {
				needsDestFill = true
			}
		}
		if needsDestFill {
			destPK, err := c.PrimaryKey(fk.DestinationTable, &schema)
			if err == nil && destPK != nil {
				for i := range fk.Columns {
					if fk.Columns[i].Destination == "" && i < len(destPK.Columns) {
						fk.Columns[i].Destination = destPK.Columns[i]
					}
				}
			}
		}
		fks = append(fks, fk)
	}
	return fks, nil
}

// fetchTableHasRowID implements §4.3 "table_has_rowid detection": prefer
// PRAGMA table_list (>= 3.37); on older engines, attempt to compile a
// SELECT using a distinctive alias so the intent is discoverable in error
// logs.
func fetchTableHasRowID(c *Connection, schema SchemaIdentifier, table string) (bool, error) {
	if c.engineVersion >= versionTableList {
		sql := fmt.Sprintf(`PRAGMA %s.table_list(%s)`, quoteIdentifier(schema.SQL()), sqlQuote(table))
		stmt, err := c.internalCache.prepare(c, sql)
		if err != nil {
			return false, err
		}
		defer stmt.reset()
		if err := stmt.Query(); err == nil {
			// schema, name, type, ncol, wr (without rowid), strict
			var schemaName, name, typ string
			var ncol, wr, strict int
			if err := stmt.Scan(&schemaName, &name, &typ, &ncol, &wr, &strict); err != nil {
				return false, err
			}
			return wr == 0, nil
		}
		return true, nil // table_list reported no row; treat the table as having a rowid
	}

	probeSQL := fmt.Sprintf(`SELECT rowid AS checkWithoutRowidOptimization FROM %s`,
		TableIdentifier{Schema: schema, Name: table}.QuotedSQL())
	stmt, err := newStmt(c, probeSQL)
	if err != nil {
		return false, nil // compile failure means no rowid (WITHOUT ROWID table)
	}
	stmt.Close()
	return true, nil
}

// sqlQuote renders an SQL string literal with '-escaping, for splicing a
// table/index name as the argument of a PRAGMA function-call form.
func sqlQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
