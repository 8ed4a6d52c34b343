package artifact

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"gauntlet/internal/faults"
)

// sqliteAdapter creates SQLite database artifacts and runs sqlite_query
// calls against them. The colon-delimited argument segments of a call are
// re-joined before execution, so SQL containing colons passes through
// intact.
type sqliteAdapter struct{}

func (sqliteAdapter) Kind() string { return "sqlite" }

func sqliteDSN(path string) string {
	return path + "?_journal_mode=WAL&_busy_timeout=5000"
}

func (sqliteAdapter) Generate(ctx context.Context, path string, spec *ContentSpec, src *Source) (*Handle, error) {
	db, err := sql.Open("sqlite3", sqliteDSN(path))
	if err != nil {
		return nil, faults.Evalf("", path, "opening database: %v", err)
	}
	defer db.Close()

	h := &Handle{Kind: "sqlite", Path: path, Tables: make(map[string]int, len(spec.Tables))}
	for _, tbl := range spec.Tables {
		if err := fillTable(ctx, db, tbl, src); err != nil {
			return nil, err
		}
		h.Tables[tbl.Name] = tbl.Rows
		h.Rows += tbl.Rows
	}
	return h, nil
}

// fillTable creates one table and inserts its generated rows in a single
// transaction. Identifiers were validated when the content spec parsed,
// so building DDL with them is safe.
func fillTable(ctx context.Context, db *sql.DB, tbl Table, src *Source) error {
	defs := make([]string, len(tbl.Columns))
	marks := make([]string, len(tbl.Columns))
	for i, c := range tbl.Columns {
		defs[i] = c.Name + " " + sqlColumnType(c.Source)
		marks[i] = "?"
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", tbl.Name, strings.Join(defs, ", "))
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return faults.Evalf("", tbl.Name, "creating table: %v", err)
	}
	if tbl.Rows == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return faults.Evalf("", tbl.Name, "starting insert transaction: %v", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", tbl.Name, strings.Join(marks, ", ")))
	if err != nil {
		return faults.Evalf("", tbl.Name, "preparing insert: %v", err)
	}
	defer stmt.Close()

	for r := 0; r < tbl.Rows; r++ {
		vals := make([]any, len(tbl.Columns))
		for i, c := range tbl.Columns {
			cell, err := src.Cell(c.Source, r+1)
			if err != nil {
				return faults.Configf(c.Name, "generating column: %v", err)
			}
			if sqlColumnType(c.Source) == "INTEGER" {
				n, err := strconv.ParseInt(cell, 10, 64)
				if err != nil {
					return faults.Evalf("", c.Name, "integer column produced %q", cell)
				}
				vals[i] = n
			} else {
				vals[i] = cell
			}
		}
		if _, err := stmt.ExecContext(ctx, vals...); err != nil {
			return faults.Evalf("", tbl.Name, "inserting row %d: %v", r+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return faults.Evalf("", tbl.Name, "committing inserts: %v", err)
	}
	return nil
}

func sqlColumnType(source string) string {
	if source == "seq" || strings.HasPrefix(source, "int:") {
		return "INTEGER"
	}
	return "TEXT"
}

func (sqliteAdapter) Query(ctx context.Context, h *Handle, name string, args []string) (Value, error) {
	if name != "sqlite_query" {
		return Value{}, faults.Configf(name, "unknown template function")
	}
	if len(args) == 0 {
		return Value{}, faults.Configf(name, "takes a SELECT statement and a path")
	}

	stmt := strings.TrimSpace(strings.Join(args, ":"))
	upper := strings.ToUpper(stmt)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return Value{}, faults.Configf(name, "only SELECT statements may run against sqlite artifacts")
	}

	db, err := sql.Open("sqlite3", sqliteDSN(h.Path))
	if err != nil {
		return Value{}, faults.Evalf(name, h.Path, "opening database: %v", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, stmt)
	if err != nil {
		return Value{}, faults.Evalf(name, h.Path, "query failed: %v", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Value{}, faults.Evalf(name, h.Path, "reading result shape: %v", err)
	}
	if len(cols) != 1 {
		return Value{}, faults.Evalf(name, h.Path, "query must select exactly one column, got %d", len(cols))
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Value{}, faults.Evalf(name, h.Path, "reading result: %v", err)
		}
		return Value{}, faults.Evalf(name, h.Path, "query returned no rows")
	}

	var v any
	if err := rows.Scan(&v); err != nil {
		return Value{}, faults.Evalf(name, h.Path, "scanning result: %v", err)
	}
	if rows.Next() {
		return Value{}, faults.Evalf(name, h.Path, "query returned more than one row")
	}
	if err := rows.Err(); err != nil {
		return Value{}, faults.Evalf(name, h.Path, "reading result: %v", err)
	}
	return sqliteValue(name, h.Path, v)
}

func sqliteValue(fn, path string, v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Value{}, faults.Evalf(fn, path, "query returned NULL")
	case []byte:
		return Value{Single: string(t)}, nil
	case string:
		return Value{Single: t}, nil
	case int64:
		return Value{Single: strconv.FormatInt(t, 10)}, nil
	case float64:
		return Value{Single: formatNumber(t)}, nil
	case bool:
		return Value{Single: strconv.FormatBool(t)}, nil
	default:
		return Value{Single: fmt.Sprint(t)}, nil
	}
}
