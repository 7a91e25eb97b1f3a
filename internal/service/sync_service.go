package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/skoolhq/sms-portal-api/internal/models"
	"github.com/skoolhq/sms-portal-api/internal/remote"
	appErrors "github.com/skoolhq/sms-portal-api/pkg/errors"
)

type syncQueueRepository interface {
	List(ctx context.Context) ([]models.SyncQueueEntry, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type syncStudentRepository interface {
	MarkAllSynced(ctx context.Context) error
}

// SyncService replays queued offline mutations against the remote
// counterpart. Entries drain in enqueue order; an entry is removed only after
// its push succeeded, so a failed drain can be re-invoked and resumes where
// it stopped.
type SyncService struct {
	queue    syncQueueRepository
	students syncStudentRepository
	conn     connectivitySource
	endpoint remote.Endpoint
	logger   *zap.Logger
}

// NewSyncService constructs the sync service.
func NewSyncService(queue syncQueueRepository, students syncStudentRepository, conn connectivitySource, endpoint remote.Endpoint, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{queue: queue, students: students, conn: conn, endpoint: endpoint, logger: logger}
}

// Status reports connectivity and queue depth.
func (s *SyncService) Status(ctx context.Context) (*models.SyncStatus, error) {
	pending, err := s.queue.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count sync queue")
	}
	return &models.SyncStatus{Online: s.conn.Online(), Pending: pending}, nil
}

// Drain pushes every queued entry in FIFO order, then marks all students
// synced. Invoked while offline it fails fast with OFFLINE and performs no
// work at all.
func (s *SyncService) Drain(ctx context.Context) error {
	if !s.conn.Online() {
		return appErrors.Clone(appErrors.ErrOffline, "cannot sync while offline")
	}

	entries, err := s.queue.List(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read sync queue")
	}

	for _, entry := range entries {
		if err := s.endpoint.Push(ctx, entry); err != nil {
			s.logger.Warn("sync push failed, leaving remainder queued",
				zap.String("entry_id", entry.ID),
				zap.String("op", string(entry.Op)),
				zap.Error(err),
			)
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "remote push failed")
		}
		if err := s.queue.Delete(ctx, entry.ID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to dequeue sync entry")
		}
	}

	if err := s.students.MarkAllSynced(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark students synced")
	}

	if len(entries) > 0 {
		s.logger.Info("sync queue drained", zap.Int("entries", len(entries)))
	}
	return nil
}
