package queue

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/phambaophuc/image-thumbnails/internal/config"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

type QueueService struct {
	conn         *amqp.Connection
	channel      amqpChannel
	logger       *zap.Logger
	queueName    string
	maxRetries   int
	retryBackoff time.Duration
	regenerator  Regenerator
	processed    *processedSet

	completed atomic.Int64
	failed    atomic.Int64
	retried   atomic.Int64
}

func NewQueueService(
	cfg config.RabbitMQConfig,
	regenerator Regenerator,
	logger *zap.Logger,
) (*QueueService, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		cfg.Queue, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	q := newQueueService(channel, cfg, regenerator, logger)
	q.conn = conn
	return q, nil
}

func newQueueService(
	channel amqpChannel,
	cfg config.RabbitMQConfig,
	regenerator Regenerator,
	logger *zap.Logger,
) *QueueService {
	return &QueueService{
		channel:      channel,
		logger:       logger,
		queueName:    cfg.Queue,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		regenerator:  regenerator,
		processed:    newProcessedSet(),
	}
}

// Close closes the queue connection
func (q *QueueService) Close() error {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		q.conn.Close()
	}
	return nil
}
