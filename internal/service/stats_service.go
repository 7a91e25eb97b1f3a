package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/skoolhq/sms-portal-api/internal/models"
	appErrors "github.com/skoolhq/sms-portal-api/pkg/errors"
)

const statsCacheKey = "stats:overview"

type studentLister interface {
	ListAll(ctx context.Context) ([]models.Student, error)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type cacheObserver interface {
	RecordCacheOperation(hit bool)
}

// StatsService derives summary metrics from a snapshot of the student
// collection. Compute is a pure scan; the optional cache only short-circuits
// repeated reads and is invalidated on every student mutation.
type StatsService struct {
	students studentLister
	cache    statsCache
	cacheTTL time.Duration
	observer cacheObserver
	logger   *zap.Logger
}

// NewStatsService constructs the stats service. Cache may be nil.
func NewStatsService(students studentLister, cache statsCache, cacheTTL time.Duration, logger *zap.Logger) *StatsService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{students: students, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// WithCacheObserver registers a hit/miss recorder, typically the metrics
// service. Returns the receiver for chaining at wiring time.
func (s *StatsService) WithCacheObserver(observer cacheObserver) *StatsService {
	s.observer = observer
	return s
}

// Compute returns the dashboard summary. An empty collection yields zeroes,
// never a division error.
func (s *StatsService) Compute(ctx context.Context) (*models.Stats, error) {
	if s.cache != nil {
		var cached models.Stats
		err := s.cache.Get(ctx, statsCacheKey, &cached)
		if err == nil {
			if s.observer != nil {
				s.observer.RecordCacheOperation(true)
			}
			return &cached, nil
		}
		if s.observer != nil {
			s.observer.RecordCacheOperation(false)
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
	}

	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan students")
	}

	stats := computeStats(students)

	if s.cache != nil {
		if err := s.cache.Set(ctx, statsCacheKey, stats, s.cacheTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// Invalidate drops the cached snapshot.
func (s *StatsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

func computeStats(students []models.Student) *models.Stats {
	stats := &models.Stats{TotalStudents: len(students)}

	var attendanceSum float64
	for _, st := range students {
		switch st.FeeStatus {
		case models.FeeStatusPaid:
			stats.TotalPaid++
		case models.FeeStatusPending:
			stats.TotalPending++
		case models.FeeStatusOverdue:
			stats.TotalOverdue++
		}
		attendanceSum += st.Attendance
		stats.TotalRevenue += st.FeePaid
		// May go negative for an overpaying student; deliberately unclamped.
		stats.PendingRevenue += st.FeeTotal - st.FeePaid
	}

	if len(students) > 0 {
		stats.AverageAttendance = int(math.Round(attendanceSum / float64(len(students))))
	}
	return stats
}
