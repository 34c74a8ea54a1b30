package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-ledger-api/internal/models"
	appErrors "github.com/noah-isme/attendance-ledger-api/pkg/errors"
	"github.com/noah-isme/attendance-ledger-api/pkg/logger"
)

const defaultStoreTimeout = 5 * time.Second

// AttendanceRepository abstracts keyed attendance persistence.
type AttendanceRepository interface {
	Get(ctx context.Context, key string) (*models.AttendanceRecord, error)
	Put(ctx context.Context, record *models.AttendanceRecord) error
}

// WriteSequencer issues increasing versions for writes to the same key. The
// store never lets a version go backwards, so a lagging stamp still lands.
type WriteSequencer interface {
	Next(ctx context.Context, key string) (int64, error)
}

// AttendanceService reads and writes the presence of a child on a calendar day.
type AttendanceService struct {
	repo      AttendanceRepository
	sequencer WriteSequencer
	timeout   time.Duration
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttendanceService constructs the attendance ledger.
func NewAttendanceService(repo AttendanceRepository, sequencer WriteSequencer, timeout time.Duration, metrics *MetricsService, logger *zap.Logger) *AttendanceService {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		repo:      repo,
		sequencer: sequencer,
		timeout:   timeout,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// GetPresence returns whether childID was marked present on date. A day
// without a record reads as absent.
func (s *AttendanceService) GetPresence(ctx context.Context, childID string, date time.Time) (bool, error) {
	if childID == "" {
		return false, appErrors.Invalid("child id is required")
	}
	key := models.AttendanceKey(childID, date)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	record, err := s.repo.Get(ctx, key)
	missing := errors.Is(err, appErrors.ErrNotFound)
	s.metrics.ObserveStoreOperation("attendance_get", time.Since(start), err != nil && !missing)
	if missing {
		return false, nil
	}
	if err != nil {
		s.metrics.RecordLedgerEvent(EventPersistenceFailure)
		logger.WithContext(ctx, s.logger).Warn("read attendance failed", zap.String("key", key), zap.Error(err))
		return false, appErrors.Persistence(err, "failed to read attendance")
	}
	return record.Present, nil
}

// SetPresence overwrites the record for childID on date. Writing the same
// value twice leaves the same state. The last write to reach the store wins.
func (s *AttendanceService) SetPresence(ctx context.Context, childID string, date time.Time, present bool) error {
	if childID == "" {
		return appErrors.Invalid("child id is required")
	}
	key := models.AttendanceKey(childID, date)
	log := logger.WithContext(ctx, s.logger).With(zap.String("key", key))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	version, err := s.nextVersion(ctx, key)
	if err != nil {
		s.metrics.RecordLedgerEvent(EventPersistenceFailure)
		log.Warn("stamp attendance write failed", zap.Error(err))
		return appErrors.Persistence(err, "failed to write attendance")
	}

	record := &models.AttendanceRecord{
		Key:       key,
		ChildID:   childID,
		Date:      models.FormatDate(date),
		Present:   present,
		Version:   version,
		UpdatedAt: s.now().UTC(),
	}

	start := time.Now()
	err = s.repo.Put(ctx, record)
	s.metrics.ObserveStoreOperation("attendance_put", time.Since(start), err != nil)
	if err != nil {
		s.metrics.RecordLedgerEvent(EventPersistenceFailure)
		log.Warn("write attendance failed", zap.Bool("present", present), zap.Error(err))
		return appErrors.Persistence(err, "failed to write attendance")
	}
	if record.Version != version {
		log.Debug("attendance version advanced past stamp", zap.Int64("stamp", version), zap.Int64("version", record.Version))
	}

	s.metrics.RecordLedgerEvent(EventAttendanceWrite)
	return nil
}

func (s *AttendanceService) nextVersion(ctx context.Context, key string) (int64, error) {
	if s.sequencer == nil {
		return s.now().UnixMicro(), nil
	}
	return s.sequencer.Next(ctx, key)
}
