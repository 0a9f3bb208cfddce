package query

import (
	"context"
	"fmt"

	cloudbigquery "cloud.google.com/go/bigquery"
	"github.com/alanwtom/travora-backend/internal/analytics/types"
	"github.com/alanwtom/travora-backend/pkg/bigquery"
	pkgerrors "github.com/alanwtom/travora-backend/pkg/errors"
	"google.golang.org/api/iterator"
)

const (
	createdSeriesSQL = `
SELECT
  FORMAT_DATE('%%F', DATE_TRUNC(occurred_at, DAY)) AS day,
  COUNT(*) AS value
FROM %s
WHERE event_type = 'notification_created'
  AND occurred_at BETWEEN @start AND @end
GROUP BY day
ORDER BY day ASC
`

	statusSeriesSQL = `
SELECT
  FORMAT_DATE('%%F', DATE_TRUNC(occurred_at, DAY)) AS day,
  COUNT(DISTINCT notification_id) AS value
FROM %s
WHERE event_type = 'notification_updated'
  AND status = @status
  AND occurred_at BETWEEN @start AND @end
GROUP BY day
ORDER BY day ASC
`

	byCategorySQL = `
SELECT category AS label, COUNT(*) AS value
FROM %s
WHERE event_type = 'notification_created'
  AND category IS NOT NULL
  AND occurred_at BETWEEN @start AND @end
GROUP BY category
ORDER BY value DESC
`

	byPrioritySQL = `
SELECT priority AS label, COUNT(*) AS value
FROM %s
WHERE event_type = 'notification_created'
  AND priority IS NOT NULL
  AND occurred_at BETWEEN @start AND @end
GROUP BY priority
ORDER BY value DESC
`

	topTriggersSQL = `
SELECT trigger_event AS label, COUNT(*) AS value
FROM %s
WHERE event_type = 'notification_created'
  AND trigger_event IS NOT NULL
  AND occurred_at BETWEEN @start AND @end
GROUP BY trigger_event
ORDER BY value DESC
LIMIT 5
`

	deliveryRateSQL = `
SELECT SAFE_DIVIDE(
  COUNT(DISTINCT IF(event_type = 'notification_updated' AND status = 'delivered', notification_id, NULL)),
  NULLIF(COUNT(DISTINCT IF(event_type = 'notification_created', notification_id, NULL)), 0)
) AS value
FROM %s
WHERE occurred_at BETWEEN @start AND @end
`

	avgAttemptsSQL = `
SELECT AVG(attempt_count) AS value
FROM %s
WHERE event_type = 'notification_updated'
  AND status IN ('delivered', 'failed')
  AND attempt_count IS NOT NULL
  AND occurred_at BETWEEN @start AND @end
`
)

// DeliveryService provides dashboard data from BigQuery delivery facts.
type DeliveryService interface {
	Query(ctx context.Context, req types.DeliveryQueryRequest) (*types.DeliveryQueryResponse, error)
}

type deliveryService struct {
	client   *bigquery.Client
	tableRef string
}

// NewDeliveryService builds a service backed by BigQuery.
func NewDeliveryService(client *bigquery.Client, project, dataset, table string) (DeliveryService, error) {
	if client == nil {
		return nil, fmt.Errorf("bigquery client required")
	}
	if project == "" || dataset == "" || table == "" {
		return nil, fmt.Errorf("project, dataset, and table are required")
	}
	return &deliveryService{
		client:   client,
		tableRef: fmt.Sprintf("`%s.%s.%s`", project, dataset, table),
	}, nil
}

func (s *deliveryService) Query(ctx context.Context, req types.DeliveryQueryRequest) (*types.DeliveryQueryResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	params := s.baseParams(req)

	created, err := s.querySeries(ctx, fmt.Sprintf(createdSeriesSQL, s.tableRef), params)
	if err != nil {
		return nil, err
	}
	delivered, err := s.querySeries(ctx, fmt.Sprintf(statusSeriesSQL, s.tableRef), withStatus(params, "delivered"))
	if err != nil {
		return nil, err
	}
	failed, err := s.querySeries(ctx, fmt.Sprintf(statusSeriesSQL, s.tableRef), withStatus(params, "failed"))
	if err != nil {
		return nil, err
	}

	byCategory, err := s.queryLabels(ctx, fmt.Sprintf(byCategorySQL, s.tableRef), params)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.queryLabels(ctx, fmt.Sprintf(byPrioritySQL, s.tableRef), params)
	if err != nil {
		return nil, err
	}
	topTriggers, err := s.queryLabels(ctx, fmt.Sprintf(topTriggersSQL, s.tableRef), params)
	if err != nil {
		return nil, err
	}

	rate, err := s.queryScalar(ctx, fmt.Sprintf(deliveryRateSQL, s.tableRef), params)
	if err != nil {
		return nil, err
	}
	avgAttempts, err := s.queryScalar(ctx, fmt.Sprintf(avgAttemptsSQL, s.tableRef), params)
	if err != nil {
		return nil, err
	}

	return &types.DeliveryQueryResponse{
		CreatedSeries:   created,
		DeliveredSeries: delivered,
		FailedSeries:    failed,
		ByCategory:      byCategory,
		ByPriority:      byPriority,
		TopTriggers:     topTriggers,
		DeliveryRate:    rate,
		AvgAttempts:     avgAttempts,
	}, nil
}

func validateRequest(req types.DeliveryQueryRequest) error {
	if req.Start.IsZero() || req.End.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start and end are required")
	}
	if req.End.Before(req.Start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end must be after start")
	}
	return nil
}

func (s *deliveryService) baseParams(req types.DeliveryQueryRequest) []cloudbigquery.QueryParameter {
	return []cloudbigquery.QueryParameter{
		{Name: "start", Value: req.Start},
		{Name: "end", Value: req.End},
	}
}

func withStatus(params []cloudbigquery.QueryParameter, status string) []cloudbigquery.QueryParameter {
	out := make([]cloudbigquery.QueryParameter, 0, len(params)+1)
	out = append(out, params...)
	out = append(out, cloudbigquery.QueryParameter{Name: "status", Value: status})
	return out
}

func (s *deliveryService) querySeries(ctx context.Context, sql string, params []cloudbigquery.QueryParameter) ([]types.TimeSeriesPoint, error) {
	iter, err := s.client.Query(ctx, sql, params)
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}

	var points []types.TimeSeriesPoint
	for {
		var row struct {
			Day   string `bigquery:"day"`
			Value int64  `bigquery:"value"`
		}
		if err := iter.Next(&row); err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("reading series row: %w", err)
		}
		points = append(points, types.TimeSeriesPoint{Date: row.Day, Value: row.Value})
	}
	return points, nil
}

func (s *deliveryService) queryLabels(ctx context.Context, sql string, params []cloudbigquery.QueryParameter) ([]types.LabelValue, error) {
	iter, err := s.client.Query(ctx, sql, params)
	if err != nil {
		return nil, fmt.Errorf("query labels: %w", err)
	}

	var result []types.LabelValue
	for {
		var row struct {
			Label string `bigquery:"label"`
			Value int64  `bigquery:"value"`
		}
		if err := iter.Next(&row); err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("reading label row: %w", err)
		}
		result = append(result, types.LabelValue{Label: row.Label, Value: row.Value})
	}
	return result, nil
}

func (s *deliveryService) queryScalar(ctx context.Context, sql string, params []cloudbigquery.QueryParameter) (float64, error) {
	iter, err := s.client.Query(ctx, sql, params)
	if err != nil {
		return 0, fmt.Errorf("query scalar: %w", err)
	}
	var row struct {
		Value cloudbigquery.NullFloat64 `bigquery:"value"`
	}
	if err := iter.Next(&row); err != nil {
		if err == iterator.Done {
			return 0, nil
		}
		return 0, fmt.Errorf("reading scalar row: %w", err)
	}
	if !row.Value.Valid {
		return 0, nil
	}
	return row.Value.Float64, nil
}
