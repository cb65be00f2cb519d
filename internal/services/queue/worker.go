package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/phambaophuc/image-thumbnails/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

func (q *QueueService) StartWorker(ctx context.Context, workerID int) error {
	msgs, err := q.channel.Consume(
		q.queueName,                        // queue
		fmt.Sprintf("worker-%d", workerID), // consumer
		false,                              // auto-ack
		false,                              // exclusive
		false,                              // no-local
		false,                              // no-wait
		nil,                                // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	q.logger.Info("Worker started", zap.Int("worker_id", workerID))

	go func() {
		for {
			select {
			case <-ctx.Done():
				q.logger.Info("Worker stopping", zap.Int("worker_id", workerID))
				return
			case msg, ok := <-msgs:
				if !ok {
					q.logger.Warn("Message channel closed", zap.Int("worker_id", workerID))
					return
				}

				q.processMessage(ctx, msg, workerID)
			}
		}
	}()

	return nil
}

func (q *QueueService) processMessage(ctx context.Context, msg amqp.Delivery, workerID int) {
	var job models.RegenerateJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		q.logger.Error("Failed to unmarshal job",
			zap.Error(err),
			zap.Int("worker_id", workerID))
		msg.Nack(false, false) // Don't requeue malformed messages
		return
	}

	q.logger.Info("Processing job",
		zap.String("job_id", job.ID),
		zap.Int("attempt", job.Attempt),
		zap.Int("worker_id", workerID))

	job.Status = models.StatusProcessing
	results, retry := q.processJob(ctx, &job)

	switch {
	case len(retry) == 0:
		job.Status = models.StatusCompleted
		q.completed.Add(1)
	case job.Attempt < q.maxRetries:
		job.Status = models.StatusPending
		q.retried.Add(1)
		q.scheduleRetry(ctx, job, retry)
	default:
		job.Status = models.StatusFailed
		job.Error = fmt.Sprintf("%d originals failed after %d attempts", len(retry), job.Attempt+1)
		q.failed.Add(1)
	}

	if err := msg.Ack(false); err != nil {
		q.logger.Error("Failed to ack message",
			zap.String("job_id", job.ID),
			zap.Error(err))
	}

	if job.Status != models.StatusPending {
		q.processed.finish(job.ID)
	}
	q.logJobResult(&job, results)
}

// scheduleRetry republishes the failed keys of job after an exponential
// backoff.
func (q *QueueService) scheduleRetry(ctx context.Context, job models.RegenerateJob, keys []string) {
	next := job
	next.Keys = keys
	next.Attempt = job.Attempt + 1
	next.Error = ""
	delay := q.backoff(next.Attempt)

	q.logger.Info("Retrying job",
		zap.String("job_id", job.ID),
		zap.Int("attempt", next.Attempt),
		zap.Duration("delay", delay))

	go func() {
		select {
		case <-ctx.Done():
			q.processed.finish(job.ID)
			return
		case <-time.After(delay):
		}
		if err := q.PublishJob(ctx, &next); err != nil {
			q.logger.Error("Failed to republish job",
				zap.String("job_id", job.ID),
				zap.Error(err))
			q.processed.finish(job.ID)
		}
	}()
}

func (q *QueueService) logJobResult(job *models.RegenerateJob, results []models.RegenerateResult) {
	counts := make(map[string]int)
	for _, r := range results {
		counts[r.Status]++
	}
	q.logger.Info("Job finished",
		zap.String("job_id", job.ID),
		zap.String("status", job.Status),
		zap.Int("completed", counts[models.StatusCompleted]),
		zap.Int("skipped", counts[models.StatusSkipped]),
		zap.Int("failed", counts[models.StatusFailed]))
}
