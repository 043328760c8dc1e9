package dashboard

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"stockdash/internal/storage"
)

// FallbackYear is used when a ticker's years cannot be read.
const FallbackYear = 2022

// Reader is the read side of the store the dashboard needs.
type Reader interface {
	ReadTable(ctx context.Context, name string) (*storage.Table, error)
	DistinctYears(ctx context.Context, name string) ([]int, error)
}

type Mark struct {
	Year  int    `json:"year"`
	Label string `json:"label"`
}

// YearRange bounds and labels the year slider for one ticker.
type YearRange struct {
	Years    []int  `json:"years"`
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	Value    int    `json:"value"`
	Marks    []Mark `json:"marks"`
	Label    string `json:"label"`
	Fallback bool   `json:"fallback,omitempty"`
}

// ResolveYears never fails: a read error yields the single fallback year and
// a table without years yields an empty "No Data" range.
func ResolveYears(ctx context.Context, store Reader, ticker string) YearRange {
	years, err := store.DistinctYears(ctx, ticker)
	fallback := false
	if err != nil {
		years, fallback = []int{FallbackYear}, true
	}
	years = slices.Compact(slices.Sorted(slices.Values(years)))
	yr := yearRange(years)
	yr.Fallback = fallback
	return yr
}

func yearRange(years []int) YearRange {
	n := len(years)
	if n == 0 {
		return YearRange{Years: []int{}, Min: 0, Max: 100, Value: FallbackYear, Marks: []Mark{}, Label: "No Data"}
	}
	// at most ~8-10 marks: first, last and every step-th year
	step := max(1, n/8)
	marks := make([]Mark, 0, 10)
	for i, y := range years {
		if i == 0 || i == n-1 || i%step == 0 {
			marks = append(marks, Mark{Year: y, Label: strconv.Itoa(y)})
		}
	}
	last := years[n-1]
	return YearRange{
		Years: years,
		Min:   years[0],
		Max:   last,
		Value: last,
		Marks: marks,
		Label: fmt.Sprintf("Selected Year: %d", last),
	}
}
