package cron

import (
	"context"
	"fmt"

	"github.com/loftstay/loftstay-backend/internal/availsync"
	"github.com/loftstay/loftstay-backend/pkg/logger"
)

const AvailabilitySyncJobName = "availability-sync"

type allUnitsSynchronizer interface {
	SynchronizeAll(ctx context.Context) (*availsync.Summary, error)
}

type AvailabilitySyncJobParams struct {
	Logger       *logger.Logger
	Synchronizer allUnitsSynchronizer
}

func NewAvailabilitySyncJob(params AvailabilitySyncJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Synchronizer == nil {
		return nil, fmt.Errorf("availability synchronizer required")
	}
	return &availabilitySyncJob{logg: params.Logger, sync: params.Synchronizer}, nil
}

// availabilitySyncJob marks confirmed reservation dates as reserved for every
// unit. Partial failures are logged with the summary and fail the run.
type availabilitySyncJob struct {
	logg *logger.Logger
	sync allUnitsSynchronizer
}

func (j *availabilitySyncJob) Name() string { return AvailabilitySyncJobName }

func (j *availabilitySyncJob) Run(ctx context.Context) error {
	summary, err := j.sync.SynchronizeAll(ctx)
	if summary != nil {
		ctx = j.logg.WithFields(ctx, map[string]any{
			"units":          summary.Units,
			"expired_locks":  summary.ExpiredLocks,
			"dates_reserved": summary.DatesReserved,
			"failed_dates":   summary.FailedDates,
			"failed_units":   summary.FailedUnitSync,
		})
	}
	if err != nil {
		return fmt.Errorf("availability sync: %w", err)
	}
	j.logg.Info(ctx, "availability sync pass complete")
	return nil
}
