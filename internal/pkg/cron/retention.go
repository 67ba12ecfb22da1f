package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/dineops/attendance-backend-go/internal/domain/shift"
	"github.com/dineops/attendance-backend-go/internal/pkg/storage"
)

// retentionBatchSize bounds one sweep so a large backlog cannot hold a
// connection for minutes.
const retentionBatchSize = 500

// RetentionJobs purges verification photos past the retention window.
// Shift records themselves are never deleted; only blob refs are
// cleared after their blobs go away.
type RetentionJobs struct {
	shiftRepo     shift.ShiftRepository
	blobs         storage.BlobStorage
	retentionDays int
}

func NewRetentionJobs(shiftRepo shift.ShiftRepository, blobs storage.BlobStorage, retentionDays int) *RetentionJobs {
	return &RetentionJobs{
		shiftRepo:     shiftRepo,
		blobs:         blobs,
		retentionDays: retentionDays,
	}
}

func (j *RetentionJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(Job{
		Name:     "purge_expired_photos",
		Interval: 6 * time.Hour,
		Timeout:  5 * time.Minute,
		Run:      j.PurgeExpiredPhotos,
	})
}

func (j *RetentionJobs) PurgeExpiredPhotos(ctx context.Context) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -j.retentionDays)

	refs, err := j.shiftRepo.ListExpiredPhotoRefs(ctx, cutoff, retentionBatchSize)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return nil
	}

	purged := 0
	for _, ref := range refs {
		if ref.StartPhotoRef != nil {
			if err := j.blobs.Delete(ctx, *ref.StartPhotoRef); err != nil {
				slog.Error("Failed to purge start photo", "shift_id", ref.ShiftID, "error", err)
				continue
			}
		}
		if ref.EndPhotoRef != nil {
			if err := j.blobs.Delete(ctx, *ref.EndPhotoRef); err != nil {
				slog.Error("Failed to purge end photo", "shift_id", ref.ShiftID, "error", err)
				continue
			}
		}

		// Clear refs only after the blobs are gone so a failed sweep
		// retries next run
		if err := j.shiftRepo.ClearPhotoRefs(ctx, ref.ShiftID); err != nil {
			slog.Error("Failed to clear photo refs", "shift_id", ref.ShiftID, "error", err)
			continue
		}
		purged++
	}

	slog.Info("Photo retention sweep completed", "candidates", len(refs), "purged", purged, "cutoff", cutoff)
	return nil
}
