package cron

import (
	"context"
	"fmt"

	"github.com/loftstay/loftstay-backend/pkg/logger"
)

const LockExpirySweepJobName = "lock-expiry-sweep"

type lockSweeper interface {
	SweepExpiredLocks(ctx context.Context) (int64, error)
}

type LockExpirySweepJobParams struct {
	Logger  *logger.Logger
	Sweeper lockSweeper
}

func NewLockExpirySweepJob(params LockExpirySweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("lock sweeper required")
	}
	return &lockExpirySweepJob{logg: params.Logger, sweeper: params.Sweeper}, nil
}

// lockExpirySweepJob deletes every reservation lock past its expiry.
type lockExpirySweepJob struct {
	logg    *logger.Logger
	sweeper lockSweeper
}

func (j *lockExpirySweepJob) Name() string { return LockExpirySweepJobName }

func (j *lockExpirySweepJob) Run(ctx context.Context) error {
	deleted, err := j.sweeper.SweepExpiredLocks(ctx)
	if err != nil {
		return fmt.Errorf("lock expiry sweep: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "locks_deleted", deleted), "expired reservation locks swept")
	return nil
}
