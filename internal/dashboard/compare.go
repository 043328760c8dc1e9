package dashboard

import (
	"context"
	"fmt"

	"stockdash/internal/metrics"
)

type Status string

const (
	StatusOK               Status = "ok"
	StatusInvalidSelection Status = "invalid-selection"
	StatusStoreError       Status = "store-error"
	StatusNoData           Status = "no-data"
)

// Inputs is a session's current selection.
type Inputs struct {
	TickerA string `json:"ticker_a"`
	TickerB string `json:"ticker_b"`
	Year    *int   `json:"year"`
}

func (in Inputs) Valid() bool {
	return in.TickerA != "" && in.TickerB != "" && in.TickerA != in.TickerB && in.Year != nil
}

type Correlation struct {
	Points     int     `json:"points"`
	Sufficient bool    `json:"sufficient"` // at least two joined months
	Defined    bool    `json:"defined"`    // false for zero-variance series
	Value      float64 `json:"value"`
	Strong     bool    `json:"strong"` // value above 0.7
}

// Comparison holds every view derived from one (A, B, year) selection.
type Comparison struct {
	Status          Status        `json:"status"`
	CorrelationText string        `json:"correlation_text"`
	Correlation     *Correlation  `json:"correlation,omitempty"`
	Metrics         *MetricsTable `json:"metrics,omitempty"`
	MetricsMarkdown string        `json:"metrics_markdown"`
	MetricsHTML     string        `json:"metrics_html"`
	Scatter         Figure        `json:"scatter"`
	Bar             Figure        `json:"bar"`
	Sharpe          Figure        `json:"sharpe"`
	Drawdown        Figure        `json:"drawdown"`
}

const (
	titleScatter  = "Price Correlation"
	titleBar      = "Annualized Returns"
	titleSharpe   = "Historical Sharpe Ratio"
	titleDrawdown = "Max Drawdown"
)

func degraded(status Status, text string) Comparison {
	return Comparison{
		Status:          status,
		CorrelationText: text,
		Scatter:         emptyFigure(KindScatter, titleScatter),
		Bar:             emptyFigure(KindBar, titleBar),
		Sharpe:          emptyFigure(KindLine, titleSharpe),
		Drawdown:        emptyFigure(KindLine, titleDrawdown),
	}
}

// Compare recomputes the comparison views for a selection. It reads both
// tickers' full tables once and keeps no state between calls.
func Compare(ctx context.Context, store Reader, theme Theme, in Inputs) Comparison {
	if !in.Valid() {
		return degraded(StatusInvalidSelection, "Select two different tickers")
	}
	ta, err := store.ReadTable(ctx, in.TickerA)
	if err != nil {
		return degraded(StatusStoreError, "DB Error")
	}
	tb, err := store.ReadTable(ctx, in.TickerB)
	if err != nil {
		return degraded(StatusStoreError, "DB Error")
	}
	rowsA, rowsB := metrics.Rows(ta), metrics.Rows(tb)

	year := *in.Year
	recA, okA := metrics.LastForYear(rowsA, year)
	recB, okB := metrics.LastForYear(rowsB, year)
	if !okA || !okB {
		return degraded(StatusNoData, fmt.Sprintf("No data for %d", year))
	}

	nameA, nameB := DisplayName(in.TickerA), DisplayName(in.TickerB)
	out := Comparison{Status: StatusOK}

	table := MetricsTable{
		HeaderA: nameA,
		HeaderB: nameB,
		Lines: []MetricLine{
			{Metric: "Annual Return", A: percent(recA.YearReturn), B: percent(recB.YearReturn)},
			{Metric: "Sharpe Ratio", A: ratio(recA.Sharpe), B: ratio(recB.Sharpe)},
			{Metric: "Max Drawdown", A: percent(recA.MaxDrawdown), B: percent(recB.MaxDrawdown), Negative: true},
		},
	}
	out.Metrics = &table
	out.MetricsMarkdown = table.Markdown()
	if html, err := table.HTML(); err == nil {
		out.MetricsHTML = html
	}

	out.Bar = horizonBars(nameA, nameB, recA, recB, theme)
	out.Correlation, out.CorrelationText, out.Scatter = correlationView(in, rowsA, rowsB, theme)
	out.Sharpe = historyLines(titleSharpe, nameA, nameB, rowsA, rowsB, theme, false,
		func(r metrics.Row) (float64, bool) { return r.Sharpe.Float64, r.Sharpe.Valid })
	out.Drawdown = historyLines(titleDrawdown, nameA, nameB, rowsA, rowsB, theme, true,
		func(r metrics.Row) (float64, bool) { return r.MaxDrawdown.Float64 * 100, r.MaxDrawdown.Valid })
	out.Drawdown.YTitle = "%"
	return out
}

// horizonBars plots annualised returns in percent; missing horizons plot as 0.
func horizonBars(nameA, nameB string, a, b metrics.Row, theme Theme) Figure {
	labels := make([]string, len(metrics.Horizons))
	va := make([]float64, len(metrics.Horizons))
	vb := make([]float64, len(metrics.Horizons))
	for i, h := range metrics.Horizons {
		labels[i] = h.Label
		if v := a.AnnReturns[i]; v.Valid {
			va[i] = v.Float64 * 100
		}
		if v := b.AnnReturns[i]; v.Valid {
			vb[i] = v.Float64 * 100
		}
	}
	return Figure{
		Kind:       KindBar,
		Title:      titleBar,
		YTitle:     "%",
		Categories: labels,
		Traces: []Trace{
			{Name: nameA, Color: theme.Accent1, Y: va},
			{Name: nameB, Color: theme.Accent2, Y: vb},
		},
	}
}

func correlationView(in Inputs, a, b []metrics.Row, theme Theme) (*Correlation, string, Figure) {
	pairs := metrics.JoinMonthly(a, b)
	c := &Correlation{Points: len(pairs), Sufficient: len(pairs) > 1}
	if !c.Sufficient {
		return c, "Correlation Coeff: " + notAvailable, emptyFigure(KindScatter, titleScatter)
	}

	xs, ys := metrics.Split(pairs)
	text := "Statistical Correlation " + notAvailable
	if r, ok := metrics.Pearson(xs, ys); ok {
		c.Defined, c.Value, c.Strong = true, r, r > 0.7
		text = fmt.Sprintf("Statistical Correlation %.4f", r)
	}
	fig := Figure{
		Kind:   KindScatter,
		Title:  titleScatter,
		XTitle: in.TickerA + " Price",
		YTitle: in.TickerB + " Price",
		Traces: []Trace{{Name: DisplayName(in.TickerA) + " vs " + DisplayName(in.TickerB), Color: theme.Accent1, X: xs, Y: ys}},
	}
	return c, text, fig
}

// historyLines plots value(row) against Year for every row of both tickers,
// skipping rows without a year or value.
func historyLines(title, nameA, nameB string, a, b []metrics.Row, theme Theme, fill bool, value func(metrics.Row) (float64, bool)) Figure {
	series := func(name, color string, rows []metrics.Row) Trace {
		t := Trace{Name: name, Color: color, X: []float64{}, Y: []float64{}, Fill: fill}
		for _, r := range rows {
			v, ok := value(r)
			if !ok || !r.Year.Valid {
				continue
			}
			t.X = append(t.X, float64(r.Year.Int64))
			t.Y = append(t.Y, v)
		}
		return t
	}
	return Figure{
		Kind:   KindLine,
		Title:  title,
		XTitle: "Year",
		Traces: []Trace{
			series(nameA, theme.Accent1, a),
			series(nameB, theme.Accent2, b),
		},
	}
}
