package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

var ErrNoSuchTable = errors.New("no such table")

type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	Close() error
}

type Store struct{ db DB }

func OpenSQLite(dsn string) (*sql.DB, error) {
	return sql.Open("sqlite3", dsn)
}

// Open opens (creating if needed) the database file at path for writing.
func Open(path string) (*Store, error) {
	db, err := OpenSQLite("file:" + path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return NewStore(db), nil
}

// OpenReadOnly opens an existing database file. A missing file surfaces as an
// error on the first query.
func OpenReadOnly(path string) (*Store, error) {
	db, err := OpenSQLite("file:" + path + "?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return NewStore(db), nil
}

func NewStore(db DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

// Ping checks that the database file can be opened and read.
func (s *Store) Ping(ctx context.Context) error {
	var n int
	return s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master").Scan(&n)
}

// ReplaceTable drops any table called t.Name and recreates it with t's columns
// and rows, in a single transaction.
func (s *Store) ReplaceTable(ctx context.Context, t *Table) error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s: no columns", t.Name)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	name := QuoteIdent(t.Name)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return fmt.Errorf("drop %s: %w", t.Name, err)
	}

	defs := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = QuoteIdent(c.Name) + " " + string(c.Type)
		marks[i] = "?"
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("create %s: %w", t.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", name, strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert %s: %w", t.Name, err)
	}
	defer stmt.Close()
	for i, row := range t.Rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("insert %s row %d: %w", t.Name, i+1, err)
		}
	}
	return tx.Commit()
}

func (s *Store) HasTable(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) requireTable(ctx context.Context, name string) error {
	ok, err := s.HasTable(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchTable, name)
	}
	return nil
}

// Tables lists user tables in name order.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) CountRows(ctx context.Context, name string) (int64, error) {
	if err := s.requireTable(ctx, name); err != nil {
		return 0, err
	}
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+QuoteIdent(name)).Scan(&n)
	return n, err
}

// ReadTable returns every row of the named table in insertion order.
func (s *Store) ReadTable(ctx context.Context, name string) (*Table, error) {
	if err := s.requireTable(ctx, name); err != nil {
		return nil, err
	}
	cols, err := s.columns(ctx, name)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+QuoteIdent(name)+" ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	defer rows.Close()

	t := &Table{Name: name, Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		t.Rows = append(t.Rows, vals)
	}
	return t, rows.Err()
}

func (s *Store) columns(ctx context.Context, name string) ([]Column, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, type FROM pragma_table_info(?) ORDER BY cid", name)
	if err != nil {
		return nil, fmt.Errorf("columns %s: %w", name, err)
	}
	defer rows.Close()
	var out []Column
	for rows.Next() {
		var c Column
		var typ string
		if err := rows.Scan(&c.Name, &typ); err != nil {
			return nil, err
		}
		c.Type = ColumnType(strings.ToUpper(typ))
		out = append(out, c)
	}
	return out, rows.Err()
}

// DistinctYears returns the non-null values of the Year column, ascending.
func (s *Store) DistinctYears(ctx context.Context, name string) ([]int, error) {
	if err := s.requireTable(ctx, name); err != nil {
		return nil, err
	}
	// SQLite treats an unresolved double-quoted identifier as a string literal,
	// so the column has to be checked explicitly.
	cols, err := s.columns(ctx, name)
	if err != nil {
		return nil, err
	}
	if !(&Table{Columns: cols}).hasColumn("Year") {
		return nil, fmt.Errorf("years %s: no Year column", name)
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT CAST("+QuoteIdent("Year")+" AS INTEGER) AS y FROM "+QuoteIdent(name)+
			" WHERE "+QuoteIdent("Year")+" IS NOT NULL ORDER BY y")
	if err != nil {
		return nil, fmt.Errorf("years %s: %w", name, err)
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, rows.Err()
}
