package queue

import (
	"context"
	"sync"

	"github.com/phambaophuc/image-thumbnails/internal/models"
	"github.com/streadway/amqp"
)

// Regenerator rebuilds the thumbnails of one stored original.
type Regenerator interface {
	Regenerate(ctx context.Context, key string) ([]models.ThumbnailResult, error)
}

// amqpChannel is the part of *amqp.Channel the service uses.
type amqpChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	QueueInspect(name string) (amqp.Queue, error)
	Close() error
}

// processedSet remembers which originals a job already regenerated, so
// duplicates and retries of the same job skip them.
type processedSet struct {
	mu   sync.Mutex
	jobs map[string]map[string]struct{}
}

func newProcessedSet() *processedSet {
	return &processedSet{jobs: make(map[string]map[string]struct{})}
}

// claim marks key as processed for jobID and reports whether it was new.
func (s *processedSet) claim(jobID, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, ok := s.jobs[jobID]
	if !ok {
		keys = make(map[string]struct{})
		s.jobs[jobID] = keys
	}
	if _, done := keys[key]; done {
		return false
	}
	keys[key] = struct{}{}
	return true
}

// release forgets a key so a retry can process it again.
func (s *processedSet) release(jobID, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs[jobID], key)
}

func (s *processedSet) finish(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
}

func (s *processedSet) active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
