package model

import "github.com/playok/astermon/internal/chart"

// Frame is the render output of a single poll of one dashboard.
type Frame struct {
	Dashboard string                  `json:"dashboard"`
	Timestamp int64                   `json:"timestamp"`
	Texts     map[string]string       `json:"texts"`
	Figures   map[string]chart.Figure `json:"figures"`

	// Samples are the numeric values observed during the poll. They feed the
	// history store and are not sent to browsers.
	Samples []MetricSample `json:"-"`
}

// Layout describes the static structure of a dashboard page. The browser
// builds its DOM from it and fills the regions from frames.
type Layout struct {
	Title    string       `json:"title"`
	Texts    []string     `json:"texts"`
	Figures  []FigureSlot `json:"figures"`
	Interval int64        `json:"interval_ms"`
	History  bool         `json:"history"`
}

// FigureSlot is one chart region on the page.
type FigureSlot struct {
	ID     string `json:"id"`
	Height int    `json:"height,omitempty"`
}
