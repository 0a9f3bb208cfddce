package router

import (
	"context"

	"github.com/alanwtom/travora-backend/internal/analytics/types"
)

type fakeWriter struct {
	inserted []types.DeliveryFactRow
	err      error
}

func (f *fakeWriter) InsertDeliveryFact(_ context.Context, row types.DeliveryFactRow) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, row)
	return nil
}
