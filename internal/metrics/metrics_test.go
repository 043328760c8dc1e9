package metrics

import (
	"database/sql"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdash/internal/storage"
)

func priceRow(y, m int64, p float64) Row {
	return Row{
		Year:          sql.NullInt64{Int64: y, Valid: true},
		Month:         sql.NullInt64{Int64: m, Valid: true},
		MonthAvgPrice: sql.NullFloat64{Float64: p, Valid: true},
	}
}

func TestRowsDecodesTable(t *testing.T) {
	tbl := &storage.Table{
		Columns: []storage.Column{
			{Name: "Year"}, {Name: "Month"}, {Name: "month_avg_price"}, {Name: "sharpe"},
			{Name: "5Y_Ann_Return"}, {Name: "max_drawdown"},
		},
		Rows: [][]any{
			{int64(2022), int64(1), 100.0, "1.25", 0.3, nil},
			{2023.0, nil, int64(7), nil, nil, -0.2},
			{2023.5, int64(2), "n/a", 0.5, nil, nil},
		},
	}
	rows := Rows(tbl)
	require.Len(t, rows, 3)

	assert.Equal(t, int64(2022), rows[0].Year.Int64)
	assert.Equal(t, 100.0, rows[0].MonthAvgPrice.Float64)
	assert.Equal(t, sql.NullFloat64{Float64: 1.25, Valid: true}, rows[0].Sharpe)
	assert.False(t, rows[0].MaxDrawdown.Valid)
	assert.False(t, rows[0].YearReturn.Valid, "absent column")
	assert.Equal(t, sql.NullFloat64{Float64: 0.3, Valid: true}, rows[0].AnnReturns[2])
	assert.False(t, rows[0].AnnReturns[0].Valid)

	assert.Equal(t, sql.NullInt64{Int64: 2023, Valid: true}, rows[1].Year, "integral REAL year")
	assert.False(t, rows[1].Month.Valid)
	assert.Equal(t, 7.0, rows[1].MonthAvgPrice.Float64)

	assert.False(t, rows[2].Year.Valid, "fractional year is not a year")
	assert.False(t, rows[2].MonthAvgPrice.Valid)
}

func TestLastForYear(t *testing.T) {
	rows := []Row{priceRow(2021, 12, 1), priceRow(2022, 1, 2), priceRow(2022, 2, 3), {}}

	r, ok := LastForYear(rows, 2022)
	require.True(t, ok)
	assert.Equal(t, 3.0, r.MonthAvgPrice.Float64)
	assert.Len(t, ForYear(rows, 2022), 2)

	_, ok = LastForYear(rows, 1999)
	assert.False(t, ok)
}

func TestJoinMonthly(t *testing.T) {
	a := []Row{priceRow(2022, 1, 100), priceRow(2022, 2, 110), priceRow(2022, 3, 120), {Year: sql.NullInt64{Int64: 2022, Valid: true}}}
	b := []Row{priceRow(2022, 2, 60), priceRow(2022, 1, 50), priceRow(2022, 1, 55)}

	pairs := JoinMonthly(a, b)
	assert.Equal(t, []Pair{
		{Year: 2022, Month: 1, A: 100, B: 50},
		{Year: 2022, Month: 1, A: 100, B: 55},
		{Year: 2022, Month: 2, A: 110, B: 60},
	}, pairs)
}

func TestPearsonPerfect(t *testing.T) {
	a := []Row{priceRow(2022, 1, 100), priceRow(2022, 2, 110)}
	b := []Row{priceRow(2022, 1, 50), priceRow(2022, 2, 60)}
	r, ok := Pearson(Split(JoinMonthly(a, b)))
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-9)
}

func TestPearsonKnownValue(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	ys := []float64{2, 4, 5, 4, 5}
	r, ok := Pearson(xs, ys)
	require.True(t, ok)
	// sxy=6, sxx=10, syy=6
	assert.InDelta(t, 6/math.Sqrt(60), r, 1e-9)

	r, ok = Pearson(xs, []float64{5, 4, 3, 2, 1})
	require.True(t, ok)
	assert.InDelta(t, -1.0, r, 1e-9)
}

func TestPearsonDegenerate(t *testing.T) {
	_, ok := Pearson([]float64{1}, []float64{2})
	assert.False(t, ok)
	_, ok = Pearson([]float64{1, 2}, []float64{3})
	assert.False(t, ok)
	_, ok = Pearson([]float64{1, 2, 3}, []float64{4, 4, 4})
	assert.False(t, ok, "zero variance")
}
