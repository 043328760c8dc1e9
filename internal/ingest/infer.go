package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"stockdash/internal/storage"
)

var errNoHeader = errors.New("no header row")

// buildTable turns a header row plus string records into a typed table. Each
// column gets the narrowest of INTEGER, REAL, TEXT that fits every non-empty
// cell; empty cells become NULL.
func buildTable(name string, records [][]string) (*storage.Table, error) {
	if len(records) == 0 {
		return nil, errNoHeader
	}
	header := normalizeHeader(records[0])
	if len(header) == 0 {
		return nil, errNoHeader
	}
	body := records[1:]

	cols := make([]storage.Column, len(header))
	for i, h := range header {
		cols[i] = storage.Column{Name: h, Type: inferType(body, i)}
	}

	rows := make([][]any, 0, len(body))
	for r, rec := range body {
		if len(rec) > len(cols) {
			return nil, fmt.Errorf("row %d: %d fields, header has %d", r+2, len(rec), len(cols))
		}
		row := make([]any, len(cols))
		for i, c := range cols {
			if i >= len(rec) {
				continue
			}
			v, err := convert(strings.TrimSpace(rec[i]), c.Type)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", r+2, c.Name, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return &storage.Table{Name: name, Columns: cols, Rows: rows}, nil
}

// normalizeHeader names blank headers "Unnamed: <i>" and suffixes repeated
// names with ".1", ".2", ...
func normalizeHeader(raw []string) []string {
	out := make([]string, len(raw))
	used := map[string]bool{}
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s.%d", h, n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// inferType picks the narrowest type holding every non-empty cell of col. A
// column with no values at all is REAL, like a column of missing numbers.
func inferType(body [][]string, col int) storage.ColumnType {
	typ, seen := storage.TypeInteger, false
	for _, rec := range body {
		if col >= len(rec) {
			continue
		}
		s := strings.TrimSpace(rec[col])
		if s == "" {
			continue
		}
		seen = true
		if typ == storage.TypeInteger {
			if _, err := strconv.ParseInt(s, 10, 64); err == nil {
				continue
			}
			typ = storage.TypeReal
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return storage.TypeText
		}
	}
	if !seen {
		return storage.TypeReal
	}
	return typ
}

func convert(s string, typ storage.ColumnType) (any, error) {
	if s == "" {
		return nil, nil
	}
	switch typ {
	case storage.TypeInteger:
		return strconv.ParseInt(s, 10, 64)
	case storage.TypeReal:
		return strconv.ParseFloat(s, 64)
	default:
		return s, nil
	}
}
