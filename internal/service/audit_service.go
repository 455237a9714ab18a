package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civisuite/vitals-ledger/internal/models"
	"github.com/civisuite/vitals-ledger/internal/repository"
	"github.com/civisuite/vitals-ledger/pkg/jobs"
)

// auditRepository abstracts audit trail persistence.
type auditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, filter repository.AuditFilter) ([]models.AuditLog, error)
	Count(ctx context.Context, filter repository.AuditFilter) (int, error)
}

// AuditService records the audit trail asynchronously. Writes queue onto a
// worker pool so a slow or unavailable database never blocks a ledger step;
// a dropped audit row is logged and tolerated.
type AuditService struct {
	repo    auditRepository
	queue   *jobs.Queue
	logger  *zap.Logger
	enabled bool
}

// NewAuditService constructs the audit service and its backing queue. Call
// Start before use and Stop on shutdown.
func NewAuditService(repo auditRepository, logger *zap.Logger, workers, bufferSize int, enabled bool) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuditService{repo: repo, logger: logger, enabled: enabled && repo != nil}
	if s.enabled {
		s.queue = jobs.NewQueue("audit-trail", s.handleJob, jobs.QueueConfig{
			Workers:    workers,
			BufferSize: bufferSize,
			Logger:     logger,
		})
	}
	return s
}

// Start launches the queue workers.
func (s *AuditService) Start(ctx context.Context) {
	if s.queue != nil {
		s.queue.Start(ctx)
	}
}

// Stop drains the queue workers.
func (s *AuditService) Stop() {
	if s.queue != nil {
		s.queue.Stop()
	}
}

// Enabled reports whether the trail is being recorded.
func (s *AuditService) Enabled() bool {
	return s != nil && s.enabled
}

// CreateAuditLog enqueues one audit row for persistence.
func (s *AuditService) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if !s.Enabled() {
		return nil
	}
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	return s.queue.Enqueue(jobs.Job{
		ID:      log.ID,
		Type:    "audit-log",
		Payload: log,
	})
}

// List reads the persisted trail.
func (s *AuditService) List(ctx context.Context, filter repository.AuditFilter) ([]models.AuditLog, int, error) {
	if !s.Enabled() {
		return nil, 0, nil
	}
	logs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (s *AuditService) handleJob(ctx context.Context, job jobs.Job) error {
	log, ok := job.Payload.(*models.AuditLog)
	if !ok {
		return fmt.Errorf("unexpected audit job payload %T", job.Payload)
	}
	return s.repo.Create(ctx, log)
}
