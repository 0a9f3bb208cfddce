package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alanwtom/travora-backend/pkg/logger"
)

type fakeMuteSweepRepo struct {
	lastNow time.Time
	cleared int64
	err     error
}

func (f *fakeMuteSweepRepo) ClearExpiredMutes(_ context.Context, now time.Time) (int64, error) {
	f.lastNow = now
	return f.cleared, f.err
}

func TestMuteSweepJobClearsExpiredMutes(t *testing.T) {
	now := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	repo := &fakeMuteSweepRepo{cleared: 5}

	jobIface, err := NewMuteSweepJob(MuteSweepJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewMuteSweepJob: %v", err)
	}
	job := jobIface.(*muteSweepJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !repo.lastNow.Equal(now) {
		t.Fatalf("expected sweep at %s, got %s", now, repo.lastNow)
	}
}

func TestMuteSweepJobPropagatesErrors(t *testing.T) {
	repo := &fakeMuteSweepRepo{err: errors.New("boom")}
	jobIface, err := NewMuteSweepJob(MuteSweepJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewMuteSweepJob: %v", err)
	}

	if err := jobIface.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
