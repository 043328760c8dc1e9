package storage

import "strings"

type ColumnType string

const (
	TypeInteger ColumnType = "INTEGER"
	TypeReal    ColumnType = "REAL"
	TypeText    ColumnType = "TEXT"
)

type Column struct {
	Name string
	Type ColumnType
}

// Table is an in-memory copy of a relational table. Cells hold nil, int64,
// float64 or string.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (t *Table) hasColumn(name string) bool { return t.ColumnIndex(name) >= 0 }

func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// QuoteIdent quotes an SQLite identifier so any table or column name can be
// used verbatim in a statement.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
