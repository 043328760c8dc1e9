package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdash/internal/dashboard"
)

const (
	csvA = "Year,Month,month_avg_price,year_return,sharpe,max_drawdown,1Y_Ann_Return\n" +
		"2021,12,90,0.05,0.9,-0.2,0.05\n" +
		"2022,1,100,0.12,1.5,-0.25,0.1\n" +
		"2022,2,110,0.12,1.5,-0.25,0.1\n"
	csvB = "Year,Month,month_avg_price,year_return,sharpe,max_drawdown,1Y_Ann_Return\n" +
		"2022,1,50,0.08,0.8,-0.1,0.04\n" +
		"2022,2,60,0.08,0.8,-0.1,0.04\n"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A_x.csv"), []byte(csvA), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "B_y.csv"), []byte(csvB), 0o644))
	db := filepath.Join(dir, "test.db")

	out, err := run(t, "load", "--db", db, "A_x.csv", "B_y.csv", "missing.csv", "notes.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "loaded   A_x.csv -> A_x (3 rows)")
	assert.Contains(t, out, "missing  missing.csv")
	assert.Contains(t, out, "skipped  notes.txt")
	return db
}

func TestTablesCommand(t *testing.T) {
	db := setup(t)
	out, err := run(t, "tables", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "A_x")
	assert.Contains(t, out, "B_y")
}

func TestYearsCommand(t *testing.T) {
	db := setup(t)
	out, err := run(t, "years", "A_x", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Selected Year: 2022")
	assert.Contains(t, out, "range: 2021-2022")
}

func TestCompareCommand(t *testing.T) {
	db := setup(t)
	out, err := run(t, "compare", "A_x", "B_y", "--year", "2022", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "1.0000")

	_, err = run(t, "compare", "A_x", "--db", db)
	assert.Error(t, err)
}

func TestCompareMissingDatabase(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := run(t, "compare", "A_x", "B_y", "--db", "absent.db")
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	year := 2022
	in := dashboard.Inputs{TickerA: "A_x", TickerB: "B_y", Year: &year}

	md := report(in, dashboard.Comparison{Status: dashboard.StatusNoData, CorrelationText: "No data for 2022"})
	assert.Contains(t, md, "# A vs B (2022)")
	assert.Contains(t, md, "**No data for 2022**")
	assert.NotContains(t, md, "Annualized Returns")

	cmp := dashboard.Comparison{
		Status:          dashboard.StatusOK,
		CorrelationText: "Statistical Correlation 1.0000",
		Correlation:     &dashboard.Correlation{Points: 2, Sufficient: true},
		Metrics:         &dashboard.MetricsTable{HeaderA: "A", HeaderB: "B"},
		MetricsMarkdown: "| Metric | A | B |\n|:---|---:|---:|\n",
		Bar: dashboard.Figure{
			Categories: []string{"1Y"},
			Traces:     []dashboard.Trace{{Name: "A", Y: []float64{10}}, {Name: "B", Y: []float64{4}}},
		},
	}
	md = report(in, cmp)
	assert.Contains(t, md, "_2 joined months_")
	assert.Contains(t, md, "| Horizon | A | B |")
	assert.Contains(t, md, "| 1Y | 10.0 | 4.0 |")
}
