package dashboard

type FigureKind string

const (
	KindScatter FigureKind = "scatter"
	KindBar     FigureKind = "bar"
	KindLine    FigureKind = "line"
)

// Trace is one plotted series. Bar traces use Figure.Categories instead of X.
type Trace struct {
	Name  string    `json:"name"`
	Color string    `json:"color"`
	X     []float64 `json:"x,omitempty"`
	Y     []float64 `json:"y"`
	Fill  bool      `json:"fill,omitempty"`
}

// Figure is a renderer-independent chart description.
type Figure struct {
	Kind       FigureKind `json:"kind"`
	Title      string     `json:"title"`
	XTitle     string     `json:"x_title,omitempty"`
	YTitle     string     `json:"y_title,omitempty"`
	Categories []string   `json:"categories,omitempty"`
	Traces     []Trace    `json:"traces"`
}

func (f Figure) Empty() bool {
	for _, t := range f.Traces {
		if len(t.Y) > 0 {
			return false
		}
	}
	return true
}

func emptyFigure(kind FigureKind, title string) Figure {
	return Figure{Kind: kind, Title: title, Traces: []Trace{}}
}
