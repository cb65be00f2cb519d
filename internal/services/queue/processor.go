package queue

import (
	"context"
	"errors"
	"time"

	"github.com/phambaophuc/image-thumbnails/internal/models"
	"github.com/phambaophuc/image-thumbnails/internal/services/processor"
	"github.com/phambaophuc/image-thumbnails/internal/services/storage"
	"go.uber.org/zap"
)

// processJob regenerates every key of job once. It returns the per-key
// outcome and the keys whose failure is worth retrying.
func (q *QueueService) processJob(ctx context.Context, job *models.RegenerateJob) ([]models.RegenerateResult, []string) {
	results := make([]models.RegenerateResult, 0, len(job.Keys))
	var retry []string

	for _, key := range job.Keys {
		if !q.processed.claim(job.ID, key) {
			results = append(results, models.RegenerateResult{Key: key, Status: models.StatusSkipped})
			continue
		}

		thumbs, err := q.regenerator.Regenerate(ctx, key)
		if err == nil {
			results = append(results, models.RegenerateResult{
				Key:        key,
				Status:     models.StatusCompleted,
				Thumbnails: len(thumbs),
			})
			continue
		}

		q.logger.Warn("Failed to regenerate thumbnails",
			zap.String("job_id", job.ID),
			zap.String("key", key),
			zap.Error(err))

		if permanent(err) {
			results = append(results, models.RegenerateResult{
				Key:    key,
				Status: models.StatusSkipped,
				Error:  err.Error(),
			})
			continue
		}

		q.processed.release(job.ID, key)
		retry = append(retry, key)
		results = append(results, models.RegenerateResult{
			Key:    key,
			Status: models.StatusFailed,
			Error:  err.Error(),
		})
	}

	return results, retry
}

// permanent reports failures that a retry cannot fix.
func permanent(err error) bool {
	return processor.IsUnreadable(err) ||
		errors.Is(err, storage.ErrConflict) ||
		errors.Is(err, storage.ErrNotFound)
}

// backoff is the delay before retry attempt n (1-based).
func (q *QueueService) backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return q.retryBackoff * time.Duration(1<<(attempt-1))
}
