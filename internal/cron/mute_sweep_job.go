package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/alanwtom/travora-backend/pkg/logger"
)

type MuteSweepJobParams struct {
	Logger     *logger.Logger
	Repository muteSweepRepo
}

type muteSweepRepo interface {
	ClearExpiredMutes(ctx context.Context, now time.Time) (int64, error)
}

// NewMuteSweepJob builds the job that resets expired notification mutes.
// Reads already treat an expired mute as inactive; the sweep keeps the stored
// flags from drifting away from what users see in their settings.
func NewMuteSweepJob(params MuteSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("profiles repository required")
	}
	return &muteSweepJob{
		logg: params.Logger,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type muteSweepJob struct {
	logg *logger.Logger
	repo muteSweepRepo
	now  func() time.Time
}

func (j *muteSweepJob) Name() string { return "mute-sweep" }

func (j *muteSweepJob) Run(ctx context.Context) error {
	cleared, err := j.repo.ClearExpiredMutes(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("mute sweep: %w", err)
	}
	if cleared > 0 {
		j.logg.Info(j.logg.WithField(ctx, "rows_cleared", cleared), "expired mutes cleared")
	}
	return nil
}
