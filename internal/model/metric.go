package model

// MetricSample represents a single numeric data point produced by a poll.
type MetricSample struct {
	ID         int64   `json:"id,omitempty"`
	Timestamp  int64   `json:"timestamp"`
	Dashboard  string  `json:"dashboard"`
	MetricName string  `json:"metric_name"`
	Value      float64 `json:"value"`
	Labels     string  `json:"labels,omitempty"`
}

// MetricMeta describes a recorded metric.
type MetricMeta struct {
	MetricName string `json:"metric_name"`
	Dashboard  string `json:"dashboard"`
}
