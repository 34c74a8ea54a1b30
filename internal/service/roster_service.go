package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/attendance-ledger-api/internal/models"
	appErrors "github.com/noah-isme/attendance-ledger-api/pkg/errors"
	"github.com/noah-isme/attendance-ledger-api/pkg/logger"
)

const defaultViewConcurrency = 8

type presenceReader interface {
	GetPresence(ctx context.Context, childID string, date time.Time) (bool, error)
}

// RegisterChildRequest is the payload for adding a child to the roster.
type RegisterChildRequest struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Course      string `json:"course" validate:"required,course"`
	CheckInCode string `json:"check_in_code"`
}

// RosterServiceConfig carries roster behaviour settings.
type RosterServiceConfig struct {
	Organization    string
	ViewConcurrency int
	StoreTimeout    time.Duration
}

// RosterService builds per-day roster views and manages roster registration.
type RosterService struct {
	children  ChildRepository
	presence  presenceReader
	validator *validator.Validate
	cfg       RosterServiceConfig
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewRosterService constructs the roster service.
func NewRosterService(children ChildRepository, presence presenceReader, validate *validator.Validate, cfg RosterServiceConfig, metrics *MetricsService, logger *zap.Logger) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ViewConcurrency <= 0 {
		cfg.ViewConcurrency = defaultViewConcurrency
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = defaultStoreTimeout
	}
	svc := &RosterService{children: children, presence: presence, validator: validate, cfg: cfg, metrics: metrics, logger: logger}
	svc.validator.RegisterValidation("course", func(fl validator.FieldLevel) bool {
		return models.Course(fl.Field().String()).Valid()
	})
	return svc
}

// Courses returns the course catalogue in enrollment order.
func (s *RosterService) Courses() []models.Course {
	return models.Courses()
}

// ListChildren returns the roster sorted by course label.
func (s *RosterService) ListChildren(ctx context.Context) ([]models.Child, error) {
	children, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(children, func(i, j int) bool {
		return children[i].Course < children[j].Course
	})
	return children, nil
}

// BuildView pairs every child with its presence on date, sorted by course
// label. If any presence lookup fails the whole view fails; no lookup error is
// ever reported as an absence.
func (s *RosterService) BuildView(ctx context.Context, date time.Time) ([]models.RosterEntry, error) {
	children, err := s.list(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]models.RosterEntry, len(children))
	failures := make([]error, len(children))

	var g errgroup.Group
	g.SetLimit(s.cfg.ViewConcurrency)
	for i := range children {
		i := i
		g.Go(func() error {
			present, err := s.presence.GetPresence(ctx, children[i].ID, date)
			if err != nil {
				failures[i] = fmt.Errorf("child %s: %w", children[i].ID, err)
				return nil
			}
			entries[i] = models.RosterEntry{Child: children[i], Present: present}
			return nil
		})
	}
	_ = g.Wait()

	if joined := errors.Join(failures...); joined != nil {
		failed := 0
		for _, f := range failures {
			if f != nil {
				failed++
			}
		}
		s.metrics.RecordLedgerEvent(EventPartialView)
		logger.WithContext(ctx, s.logger).Warn("roster view incomplete",
			zap.String("date", models.FormatDate(date)),
			zap.Int("failed", failed),
			zap.Int("total", len(children)),
		)
		message := fmt.Sprintf("%d of %d attendance lookups failed", failed, len(children))
		return nil, appErrors.Wrap(joined, appErrors.ErrPartialFailure.Code, appErrors.ErrPartialFailure.Status, message)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Child.Course < entries[j].Child.Course
	})
	return entries, nil
}

// RegisterChild adds a child to the roster. Without an explicit check-in code
// the child checks in with its id.
func (s *RosterService) RegisterChild(ctx context.Context, req RegisterChildRequest) (*models.Child, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Course = strings.TrimSpace(req.Course)
	req.CheckInCode = strings.TrimSpace(req.CheckInCode)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid child payload")
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	child := &models.Child{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Course:    models.Course(req.Course),
		School:    s.cfg.Organization,
	}
	if req.CheckInCode != "" {
		_, err := s.children.FindByCode(ctx, req.CheckInCode)
		switch {
		case err == nil:
			return nil, appErrors.Invalid("check-in code already in use")
		case !errors.Is(err, appErrors.ErrNotFound):
			s.metrics.RecordLedgerEvent(EventPersistenceFailure)
			return nil, appErrors.Persistence(err, "failed to check check-in code")
		}
		code := req.CheckInCode
		child.CheckInCode = &code
	}

	start := time.Now()
	err := s.children.Create(ctx, child)
	s.metrics.ObserveStoreOperation("child_create", time.Since(start), err != nil)
	if err != nil {
		s.metrics.RecordLedgerEvent(EventPersistenceFailure)
		logger.WithContext(ctx, s.logger).Warn("register child failed", zap.Error(err))
		return nil, appErrors.Persistence(err, "failed to register child")
	}
	return child, nil
}

func (s *RosterService) list(ctx context.Context) ([]models.Child, error) {
	listCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	start := time.Now()
	children, err := s.children.List(listCtx)
	s.metrics.ObserveStoreOperation("child_list", time.Since(start), err != nil)
	if err != nil {
		s.metrics.RecordLedgerEvent(EventPersistenceFailure)
		logger.WithContext(ctx, s.logger).Warn("list roster failed", zap.Error(err))
		return nil, appErrors.Persistence(err, "failed to load roster")
	}
	if children == nil {
		children = []models.Child{}
	}
	return children, nil
}
