package collector

import (
	"context"

	"github.com/playok/astermon/internal/model"
)

// Poller produces one dashboard frame per tick. Failures never surface as
// errors: a poll that cannot reach its source returns zero values and empty
// figures, and the next tick tries again.
type Poller interface {
	// Name is the dashboard identifier.
	Name() string
	// Layout describes the page regions the poller fills.
	Layout() model.Layout
	// Poll gathers data and renders a frame.
	Poll(ctx context.Context) model.Frame
}

func makeSample(ts int64, dashboard, name string, value float64) model.MetricSample {
	return model.MetricSample{
		Timestamp:  ts,
		Dashboard:  dashboard,
		MetricName: name,
		Value:      value,
	}
}
