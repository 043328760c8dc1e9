package dashboard

import (
	"bytes"
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const notAvailable = "N/A"

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// DisplayName shortens a table name to its leading token, e.g.
// "TSMC_2330_metrics" -> "TSMC".
func DisplayName(table string) string {
	name, _, _ := strings.Cut(table, "_")
	return name
}

// percent formats a fraction as a percentage with one decimal: 0.1234 -> "12.3%".
func percent(v sql.NullFloat64) string {
	if !v.Valid {
		return notAvailable
	}
	return fixed(v.Float64*100, 1) + "%"
}

func ratio(v sql.NullFloat64) string {
	if !v.Valid {
		return notAvailable
	}
	return fixed(v.Float64, 2)
}

// fixed formats f with the given number of decimals the way %.Nf does: the
// exact binary value is rounded half to even, and negative values that round
// to zero keep their sign.
func fixed(f float64, places int32) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', int(places), 64)
	}
	s := exact(f).RoundBank(places).StringFixed(places)
	if math.Signbit(f) && !strings.HasPrefix(s, "-") {
		s = "-" + s
	}
	return s
}

// exact converts a finite float64 to the decimal it represents, with no
// shortest-representation rounding: m*2^-k == m*5^k * 10^-k.
func exact(f float64) decimal.Decimal {
	frac, exp := math.Frexp(f)
	m := big.NewInt(int64(frac * (1 << 53)))
	exp -= 53
	if exp >= 0 {
		return decimal.NewFromBigInt(m.Lsh(m, uint(exp)), 0)
	}
	k := int64(-exp)
	pow := new(big.Int).Exp(big.NewInt(5), big.NewInt(k), nil)
	return decimal.NewFromBigInt(pow.Mul(pow, m), int32(-k))
}

// MetricLine is one row of the side-by-side metrics summary.
type MetricLine struct {
	Metric   string `json:"metric"`
	A        string `json:"a"`
	B        string `json:"b"`
	Negative bool   `json:"negative,omitempty"` // drawdown-style row
}

type MetricsTable struct {
	HeaderA string       `json:"header_a"`
	HeaderB string       `json:"header_b"`
	Lines   []MetricLine `json:"lines"`
}

// Markdown renders the table as a GitHub-style pipe table.
func (m MetricsTable) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "| Metric | %s | %s |\n", escapeCell(m.HeaderA), escapeCell(m.HeaderB))
	b.WriteString("|:---|---:|---:|\n")
	for _, l := range m.Lines {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", l.Metric, escapeCell(l.A), escapeCell(l.B))
	}
	return b.String()
}

// HTML converts the markdown table with goldmark.
func (m MetricsTable) HTML() (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(m.Markdown()), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
