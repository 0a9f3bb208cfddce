package analytics

import (
	"context"
	"time"

	"github.com/alanwtom/travora-backend/internal/analytics/types"
)

type testAnalyticsService struct {
	last     types.DeliveryQueryRequest
	response *types.DeliveryQueryResponse
	err      error
}

func (s *testAnalyticsService) Query(ctx context.Context, req types.DeliveryQueryRequest) (*types.DeliveryQueryResponse, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	if s.response == nil {
		s.response = &types.DeliveryQueryResponse{}
	}
	return s.response, nil
}

func (s *testAnalyticsService) called() bool {
	return !s.last.Start.IsZero()
}

func (s *testAnalyticsService) period() time.Duration {
	return s.last.End.Sub(s.last.Start)
}
