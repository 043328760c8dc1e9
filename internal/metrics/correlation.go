package metrics

import "math"

// Pair is one month where both securities have an average price.
type Pair struct {
	Year, Month int64
	A, B        float64
}

// JoinMonthly inner-joins two row sets on (Year, Month) after dropping rows
// missing any of Year, Month or month_avg_price. Repeated keys yield every
// combination; output follows the order of a.
func JoinMonthly(a, b []Row) []Pair {
	type key struct{ y, m int64 }
	right := map[key][]float64{}
	for _, r := range b {
		if !r.Year.Valid || !r.Month.Valid || !r.MonthAvgPrice.Valid {
			continue
		}
		k := key{r.Year.Int64, r.Month.Int64}
		right[k] = append(right[k], r.MonthAvgPrice.Float64)
	}

	var out []Pair
	for _, r := range a {
		if !r.Year.Valid || !r.Month.Valid || !r.MonthAvgPrice.Valid {
			continue
		}
		for _, p := range right[key{r.Year.Int64, r.Month.Int64}] {
			out = append(out, Pair{Year: r.Year.Int64, Month: r.Month.Int64, A: r.MonthAvgPrice.Float64, B: p})
		}
	}
	return out
}

// Pearson returns the sample correlation coefficient of xs and ys. ok is false
// when there are fewer than two points or either series has zero variance.
func Pearson(xs, ys []float64) (r float64, ok bool) {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return 0, false
	}
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	r = sxy / math.Sqrt(sxx*syy)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	// clamp rounding drift
	return math.Max(-1, math.Min(1, r)), true
}

// Split returns the A and B price series of pairs.
func Split(pairs []Pair) (a, b []float64) {
	a = make([]float64, len(pairs))
	b = make([]float64, len(pairs))
	for i, p := range pairs {
		a[i], b[i] = p.A, p.B
	}
	return a, b
}
