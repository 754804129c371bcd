package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gradekeeper/registrar-api/internal/models"
	"github.com/gradekeeper/registrar-api/pkg/jobs"
)

type auditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuditService records audit trail entries asynchronously through a worker queue.
type AuditService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// AuditQueueOptions tunes the background writer pool.
type AuditQueueOptions struct {
	Workers    int
	BufferSize int
}

// NewAuditService builds the service and its backing queue. Call Start before
// recording and Stop during shutdown.
func NewAuditService(repo auditStore, opts AuditQueueOptions, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		log, ok := job.Payload.(*models.AuditLog)
		if !ok {
			return fmt.Errorf("unexpected audit payload type %T", job.Payload)
		}
		return repo.Create(ctx, log)
	}
	queue := jobs.NewQueue("audit", handler, jobs.QueueConfig{
		Workers:    opts.Workers,
		BufferSize: opts.BufferSize,
		Logger:     logger,
	})
	return &AuditService{queue: queue, logger: logger}
}

// Start launches the queue workers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the queue workers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// Record enqueues an audit log entry. Failures are logged, never surfaced to
// the request path.
func (s *AuditService) Record(log *models.AuditLog) {
	if log == nil {
		return
	}
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Kind:    log.Action,
		Payload: log,
	})
	if err != nil {
		s.logger.Warn("failed to enqueue audit log", zap.String("action", log.Action), zap.Error(err))
	}
}
