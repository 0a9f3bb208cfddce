package types

import (
	"time"
)

// DeliveryQueryRequest carries the input parameters for delivery analytics queries.
type DeliveryQueryRequest struct {
	Start time.Time
	End   time.Time
}

// TimeSeriesPoint describes a single date/value pair returned by the query service.
type TimeSeriesPoint struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
}

// LabelValue represents a top-N entry such as category/channel/trigger.
type LabelValue struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// DeliveryQueryResponse wraps the delivery KPIs for the dashboard.
type DeliveryQueryResponse struct {
	CreatedSeries   []TimeSeriesPoint `json:"created"`
	DeliveredSeries []TimeSeriesPoint `json:"delivered"`
	FailedSeries    []TimeSeriesPoint `json:"failed"`
	ByCategory      []LabelValue      `json:"by_category"`
	ByPriority      []LabelValue      `json:"by_priority"`
	TopTriggers     []LabelValue      `json:"top_triggers"`
	DeliveryRate    float64           `json:"delivery_rate"`
	AvgAttempts     float64           `json:"avg_attempts"`
}
