package metrics

import (
	"database/sql"
	"math"
	"strconv"
	"strings"

	"stockdash/internal/storage"
)

// Column names of a metrics table.
const (
	ColYear          = "Year"
	ColMonth         = "Month"
	ColMonthAvgPrice = "month_avg_price"
	ColYearReturn    = "year_return"
	ColSharpe        = "sharpe"
	ColMaxDrawdown   = "max_drawdown"
)

// Horizon is a fixed trailing window for annualised returns.
type Horizon struct {
	Label  string
	Column string
}

var Horizons = []Horizon{
	{Label: "1Y", Column: "1Y_Ann_Return"},
	{Label: "3Y", Column: "3Y_Ann_Return"},
	{Label: "5Y", Column: "5Y_Ann_Return"},
	{Label: "15Y", Column: "15Y_Ann_Return"},
	{Label: "20Y", Column: "20Y_Ann_Return"},
}

// Row is one record of a metrics table. Absent columns and NULL cells are
// invalid values.
type Row struct {
	Year          sql.NullInt64
	Month         sql.NullInt64
	MonthAvgPrice sql.NullFloat64
	YearReturn    sql.NullFloat64
	Sharpe        sql.NullFloat64
	MaxDrawdown   sql.NullFloat64
	AnnReturns    []sql.NullFloat64 // indexed like Horizons
}

// Rows decodes a metrics table, keeping its row order.
func Rows(t *storage.Table) []Row {
	idx := func(name string) int { return t.ColumnIndex(name) }
	year, month := idx(ColYear), idx(ColMonth)
	price, ret := idx(ColMonthAvgPrice), idx(ColYearReturn)
	sharpe, dd := idx(ColSharpe), idx(ColMaxDrawdown)
	hz := make([]int, len(Horizons))
	for i, h := range Horizons {
		hz[i] = idx(h.Column)
	}

	out := make([]Row, len(t.Rows))
	for i, cells := range t.Rows {
		r := Row{
			Year:          intAt(cells, year),
			Month:         intAt(cells, month),
			MonthAvgPrice: floatAt(cells, price),
			YearReturn:    floatAt(cells, ret),
			Sharpe:        floatAt(cells, sharpe),
			MaxDrawdown:   floatAt(cells, dd),
			AnnReturns:    make([]sql.NullFloat64, len(Horizons)),
		}
		for j, c := range hz {
			r.AnnReturns[j] = floatAt(cells, c)
		}
		out[i] = r
	}
	return out
}

func floatAt(cells []any, i int) sql.NullFloat64 {
	if i < 0 || i >= len(cells) {
		return sql.NullFloat64{}
	}
	v, ok := toFloat(cells[i])
	if !ok || math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// intAt accepts integral floats too, since a year column holding NULLs may
// have been stored as REAL upstream.
func intAt(cells []any, i int) sql.NullInt64 {
	f := floatAt(cells, i)
	if !f.Valid || f.Float64 != math.Trunc(f.Float64) {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(f.Float64), Valid: true}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// ForYear returns the rows whose Year equals year, in order.
func ForYear(rows []Row, year int) []Row {
	var out []Row
	for _, r := range rows {
		if r.Year.Valid && r.Year.Int64 == int64(year) {
			out = append(out, r)
		}
	}
	return out
}

// LastForYear is the annual record for a year: the last matching row in table
// order.
func LastForYear(rows []Row, year int) (Row, bool) {
	m := ForYear(rows, year)
	if len(m) == 0 {
		return Row{}, false
	}
	return m[len(m)-1], true
}
