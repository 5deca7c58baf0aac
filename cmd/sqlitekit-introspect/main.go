// Command sqlitekit-introspect prints the schema of a SQLite database file
// using the sqlitekit package's introspection API, end to end.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mxkit/sqlitekit"
)

func main() {
	var (
		table = flag.String("table", "", "print detailed column/PK/index/FK info for a single table")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `sqlitekit-introspect - print a SQLite database's schema

Usage: sqlitekit-introspect [options] <database-path>

Options:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	conn, err := sqlitekit.Open(flag.Arg(0), sqlitekit.Config{ReadOnly: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "sqlitekit-introspect: %v\n", err)
		os.Exit(1)
	}
	defer conn.CloseV2()

	if *table != "" {
		if err := printTable(conn, *table); err != nil {
			fmt.Fprintf(os.Stderr, "sqlitekit-introspect: %v\n", err)
			os.Exit(1)
		}
		return
	}

	names, err := listTables(conn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sqlitekit-introspect: %v\n", err)
		os.Exit(1)
	}
	for _, name := range names {
		fmt.Println(name)
	}
}

func listTables(conn *sqlitekit.Connection) ([]string, error) {
	stmt, err := conn.Query(`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	var names []string
	for {
		var name string
		if err := stmt.Scan(&name); err != nil {
			break
		}
		names = append(names, name)
		if err := stmt.Next(); err != nil {
			break
		}
	}
	return names, nil
}

func printTable(conn *sqlitekit.Connection, name string) error {
	pk, err := conn.PrimaryKey(name, nil)
	if err != nil {
		return err
	}
	cols, err := conn.Columns(name, nil)
	if err != nil {
		return err
	}
	idx, err := conn.Indexes(name, nil)
	if err != nil {
		return err
	}
	fks, err := conn.ForeignKeys(name, nil)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n  primary key: %v (kind=%v)\n", name, pk.Columns, pk.Kind)
	for _, c := range cols {
		fmt.Printf("  column %-20s %-12s notnull=%v\n", c.Name, c.DeclaredType, c.NotNull)
	}
	for _, i := range idx {
		fmt.Printf("  index %-20s %v unique=%v\n", i.Name, i.Columns, i.Unique)
	}
	for _, fk := range fks {
		fmt.Printf("  fk -> %s %v\n", fk.DestinationTable, fk.Columns)
	}
	return nil
}
