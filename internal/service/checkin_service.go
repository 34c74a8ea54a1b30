package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-ledger-api/internal/models"
	appErrors "github.com/noah-isme/attendance-ledger-api/pkg/errors"
	"github.com/noah-isme/attendance-ledger-api/pkg/logger"
)

// ChildRepository abstracts roster persistence.
type ChildRepository interface {
	List(ctx context.Context) ([]models.Child, error)
	FindByCode(ctx context.Context, code string) (*models.Child, error)
	Create(ctx context.Context, child *models.Child) error
}

type presenceWriter interface {
	SetPresence(ctx context.Context, childID string, date time.Time, present bool) error
}

// CheckInService marks a child present from a scanned or typed code.
type CheckInService struct {
	children     ChildRepository
	attendance   presenceWriter
	validateCode bool
	timeout      time.Duration
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewCheckInService constructs the resolver. With validateCode off, codes are
// written verbatim as child identifiers without a roster lookup.
func NewCheckInService(children ChildRepository, attendance presenceWriter, validateCode bool, timeout time.Duration, metrics *MetricsService, logger *zap.Logger) *CheckInService {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckInService{
		children:     children,
		attendance:   attendance,
		validateCode: validateCode,
		timeout:      timeout,
		metrics:      metrics,
		logger:       logger,
	}
}

// ResolveAndMark marks the child identified by code as present on date and
// returns the child id the write was keyed by.
func (s *CheckInService) ResolveAndMark(ctx context.Context, code string, date time.Time) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		s.metrics.RecordLedgerEvent(EventCheckInRejected)
		return "", appErrors.Invalid("check-in code is required")
	}

	childID := code
	if s.validateCode {
		id, err := s.resolve(ctx, code)
		if err != nil {
			return "", err
		}
		childID = id
	}

	if err := s.attendance.SetPresence(ctx, childID, date, true); err != nil {
		return "", err
	}

	s.metrics.RecordLedgerEvent(EventCheckIn)
	logger.WithContext(ctx, s.logger).Info("child checked in",
		zap.String("child_id", childID),
		zap.String("date", models.FormatDate(date)),
	)
	return childID, nil
}

func (s *CheckInService) resolve(ctx context.Context, code string) (string, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	child, err := s.children.FindByCode(lookupCtx, code)
	missing := errors.Is(err, appErrors.ErrNotFound)
	s.metrics.ObserveStoreOperation("child_find_by_code", time.Since(start), err != nil && !missing)
	if missing {
		s.metrics.RecordLedgerEvent(EventCheckInRejected)
		return "", appErrors.Clone(appErrors.ErrNotFound, "no child matches the check-in code")
	}
	if err != nil {
		s.metrics.RecordLedgerEvent(EventPersistenceFailure)
		logger.WithContext(ctx, s.logger).Warn("resolve check-in code failed", zap.Error(err))
		return "", appErrors.Persistence(err, "failed to resolve check-in code")
	}
	return child.ID, nil
}
