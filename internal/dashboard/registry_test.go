package dashboard

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryEvents(t *testing.T) {
	r := NewRegistry(ThemeByName("dark"))
	assert.Equal(t, []string{"init", "ticker-a", "ticker-b", "year"}, r.Events())
	assert.True(t, r.Has(EventYear))
	assert.False(t, r.Has("nope"))
}

func TestDispatchTickerAResetsYear(t *testing.T) {
	r := NewRegistry(ThemeByName("dark"))
	out, err := r.Dispatch(context.Background(), EventTickerA,
		Inputs{TickerA: "A_x", TickerB: "B_y", Year: yearPtr(1990)}, sampleReader())
	require.NoError(t, err)
	require.NotNil(t, out.YearRange)
	assert.Equal(t, 2022, out.YearRange.Value)
	require.NotNil(t, out.Selection.Year)
	assert.Equal(t, 2022, *out.Selection.Year)
	require.NotNil(t, out.Comparison)
	assert.Equal(t, StatusOK, out.Comparison.Status)
}

func TestDispatchYearKeepsRange(t *testing.T) {
	r := NewRegistry(ThemeByName("dark"))
	out, err := r.Dispatch(context.Background(), EventYear,
		Inputs{TickerA: "A_x", TickerB: "B_y", Year: yearPtr(1990)}, sampleReader())
	require.NoError(t, err)
	assert.Nil(t, out.YearRange)
	assert.Equal(t, StatusNoData, out.Comparison.Status)
}

func TestDispatchUnknownEvent(t *testing.T) {
	r := NewRegistry(ThemeByName("dark"))
	_, err := r.Dispatch(context.Background(), "zoom", Inputs{}, sampleReader())
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestInputsApply(t *testing.T) {
	in := Inputs{TickerA: "A_x", TickerB: "B_y", Year: yearPtr(2020)}

	got, err := in.Apply(EventTickerB, json.RawMessage(`"C_z"`))
	require.NoError(t, err)
	assert.Equal(t, "C_z", got.TickerB)
	assert.Equal(t, "A_x", got.TickerA)

	got, err = in.Apply(EventTickerA, json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Empty(t, got.TickerA)

	got, err = in.Apply(EventYear, json.RawMessage(`2018`))
	require.NoError(t, err)
	assert.Equal(t, 2018, *got.Year)

	got, err = in.Apply(EventInit, json.RawMessage(`{"ticker_a":"X","ticker_b":"Y"}`))
	require.NoError(t, err)
	assert.Equal(t, Inputs{TickerA: "X", TickerB: "Y"}, got)

	got, err = in.Apply(EventInit, nil)
	require.NoError(t, err)
	assert.Equal(t, in, got)

	_, err = in.Apply(EventYear, json.RawMessage(`"soon"`))
	assert.Error(t, err)

	_, err = in.Apply("zoom", nil)
	assert.ErrorIs(t, err, ErrUnknownEvent)
}
