package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phambaophuc/image-thumbnails/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Enqueue publishes a new regeneration job for keys.
func (q *QueueService) Enqueue(ctx context.Context, keys []string) (*models.RegenerateJob, error) {
	if len(keys) == 0 {
		return nil, errors.New("no keys to regenerate")
	}
	job := &models.RegenerateJob{
		ID:        uuid.New().String(),
		Keys:      keys,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
	}
	if err := q.PublishJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (q *QueueService) PublishJob(ctx context.Context, job *models.RegenerateJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	jobBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = q.channel.Publish(
		"",          // exchange
		q.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         jobBytes,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    job.ID,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}

	q.logger.Info("Job published to queue",
		zap.String("job_id", job.ID),
		zap.Int("keys", len(job.Keys)),
		zap.Int("attempt", job.Attempt))
	return nil
}
