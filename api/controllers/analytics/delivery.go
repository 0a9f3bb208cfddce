package analytics

import (
	"net/http"

	"github.com/alanwtom/travora-backend/api/responses"
	"github.com/alanwtom/travora-backend/internal/analytics"
	"github.com/alanwtom/travora-backend/internal/analytics/types"
	pkgerrors "github.com/alanwtom/travora-backend/pkg/errors"
	"github.com/alanwtom/travora-backend/pkg/logger"
)

// DeliveryAnalytics serves aggregate delivery stats over a time window. The
// window comes from from/to RFC3339 params or a preset (7d/30d/90d).
func DeliveryAnalytics(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		start, end, err := resolveAnalyticsRange(r, timeNowUTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Query(r.Context(), types.DeliveryQueryRequest{Start: start, End: end})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}
