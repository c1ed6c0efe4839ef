// Package chart builds Plotly-compatible figure payloads.
package chart

// Figure is a Plotly figure. The zero value is the empty figure and
// serialises as {}.
type Figure struct {
	Data   []Trace `json:"data,omitempty"`
	Layout *Layout `json:"layout,omitempty"`
}

// Empty reports whether the figure has nothing to draw.
func (f Figure) Empty() bool {
	return len(f.Data) == 0 && f.Layout == nil
}

// Trace is a single series on a figure.
type Trace struct {
	Type   string    `json:"type"`
	Name   string    `json:"name,omitempty"`
	Mode   string    `json:"mode,omitempty"`
	X      []string  `json:"x"`
	Y      []float64 `json:"y"`
	Text   []string  `json:"text,omitempty"`
	Marker *Style    `json:"marker,omitempty"`
	Line   *Style    `json:"line,omitempty"`
}

// Style carries trace colouring.
type Style struct {
	Color string `json:"color"`
}

// Layout is the figure layout.
type Layout struct {
	Title      Title  `json:"title"`
	XAxis      Axis   `json:"xaxis"`
	YAxis      Axis   `json:"yaxis"`
	BarMode    string `json:"barmode,omitempty"`
	UIRevision string `json:"uirevision,omitempty"`
}

type Title struct {
	Text string `json:"text"`
}

type Axis struct {
	Title Title `json:"title"`
}

// StableRevision keeps zoom and pan state across updates of the same figure.
const StableRevision = "constant"

// New assembles a figure from traces.
func New(title, xTitle, yTitle string, traces ...Trace) Figure {
	return Figure{
		Data: traces,
		Layout: &Layout{
			Title: Title{Text: title},
			XAxis: Axis{Title: Title{Text: xTitle}},
			YAxis: Axis{Title: Title{Text: yTitle}},
		},
	}
}

// TimeSeries builds a single-line figure over time labels. Zoom state is
// preserved between refreshes.
func TimeSeries(title, yTitle, series string, x []string, y []float64) Figure {
	f := New(title, "Time", yTitle, Trace{
		Type: "scatter",
		Mode: "lines",
		Name: series,
		X:    x,
		Y:    y,
	})
	f.Layout.UIRevision = StableRevision
	return f
}

// Bar returns a bar trace. An empty color leaves Plotly's default.
func Bar(name string, x []string, y []float64, color string) Trace {
	t := Trace{Type: "bar", Name: name, X: x, Y: y}
	if color != "" {
		t.Marker = &Style{Color: color}
	}
	return t
}

// Scatter returns a lines+markers trace.
func Scatter(name string, x []string, y []float64, color string) Trace {
	t := Trace{Type: "scatter", Mode: "lines+markers", Name: name, X: x, Y: y}
	if color != "" {
		t.Line = &Style{Color: color}
	}
	return t
}
