package analytics

import (
	"context"
	"fmt"

	"github.com/alanwtom/travora-backend/internal/analytics/query"
	"github.com/alanwtom/travora-backend/internal/analytics/types"
	"github.com/alanwtom/travora-backend/pkg/bigquery"
)

// Service provides analytics reports based on delivery facts.
type Service interface {
	// Query returns delivery KPIs for the provided request.
	Query(ctx context.Context, req types.DeliveryQueryRequest) (*types.DeliveryQueryResponse, error)
}

type service struct {
	delivery query.DeliveryService
}

// NewService builds an analytics service backed by BigQuery.
func NewService(client *bigquery.Client, project, dataset, table string) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("bigquery client required")
	}

	delivery, err := query.NewDeliveryService(client, project, dataset, table)
	if err != nil {
		return nil, err
	}

	return &service{delivery: delivery}, nil
}

func (s *service) Query(ctx context.Context, req types.DeliveryQueryRequest) (*types.DeliveryQueryResponse, error) {
	return s.delivery.Query(ctx, req)
}
