package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownEvent = errors.New("unknown event")

// Event names sent by the page.
const (
	EventInit    = "init"
	EventTickerA = "ticker-a"
	EventTickerB = "ticker-b"
	EventYear    = "year"
)

// Outputs is everything a handler may redraw. Selection echoes the inputs
// after the handler ran, so the caller can persist a changed year.
type Outputs struct {
	Selection  Inputs      `json:"selection"`
	YearRange  *YearRange  `json:"year_range,omitempty"`
	Comparison *Comparison `json:"comparison,omitempty"`
}

// Handler maps the current inputs and a store to render outputs.
type Handler func(ctx context.Context, in Inputs, store Reader) Outputs

// Registry maps event names to handlers. The caller owns the store's
// lifecycle around each Dispatch.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry registers the standard dashboard events for a theme.
func NewRegistry(theme Theme) *Registry {
	r := &Registry{handlers: map[string]Handler{}}

	primary := func(ctx context.Context, in Inputs, store Reader) Outputs {
		yr := ResolveYears(ctx, store, in.TickerA)
		year := yr.Value
		in.Year = &year
		cmp := Compare(ctx, store, theme, in)
		return Outputs{Selection: in, YearRange: &yr, Comparison: &cmp}
	}
	compare := func(ctx context.Context, in Inputs, store Reader) Outputs {
		cmp := Compare(ctx, store, theme, in)
		return Outputs{Selection: in, Comparison: &cmp}
	}

	r.Register(EventInit, primary)
	r.Register(EventTickerA, primary)
	r.Register(EventTickerB, compare)
	r.Register(EventYear, compare)
	return r
}

func (r *Registry) Register(event string, h Handler) { r.handlers[event] = h }

func (r *Registry) Events() []string {
	out := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Has(event string) bool {
	_, ok := r.handlers[event]
	return ok
}

func (r *Registry) Dispatch(ctx context.Context, event string, in Inputs, store Reader) (Outputs, error) {
	h, ok := r.handlers[event]
	if !ok {
		return Outputs{}, fmt.Errorf("%w: %s", ErrUnknownEvent, event)
	}
	return h(ctx, in, store), nil
}

// Apply returns in updated with an event's value: a ticker name for ticker
// events, a year number for the year event, or a full selection for init. A
// null or empty value clears the field.
func (in Inputs) Apply(event string, value json.RawMessage) (Inputs, error) {
	if len(value) == 0 {
		value = json.RawMessage("null")
	}
	switch event {
	case EventInit:
		if string(value) == "null" {
			return in, nil
		}
		var sel Inputs
		if err := json.Unmarshal(value, &sel); err != nil {
			return in, fmt.Errorf("init value: %w", err)
		}
		return sel, nil
	case EventTickerA, EventTickerB:
		var s *string
		if err := json.Unmarshal(value, &s); err != nil {
			return in, fmt.Errorf("%s value: %w", event, err)
		}
		v := ""
		if s != nil {
			v = *s
		}
		if event == EventTickerA {
			in.TickerA = v
		} else {
			in.TickerB = v
		}
		return in, nil
	case EventYear:
		var y *int
		if err := json.Unmarshal(value, &y); err != nil {
			return in, fmt.Errorf("year value: %w", err)
		}
		in.Year = y
		return in, nil
	default:
		return in, fmt.Errorf("%w: %s", ErrUnknownEvent, event)
	}
}
