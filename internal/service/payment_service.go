package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-ledger-api/internal/models"
	appErrors "github.com/noah-isme/attendance-ledger-api/pkg/errors"
	"github.com/noah-isme/attendance-ledger-api/pkg/logger"
)

// PaymentRepository appends payment entries.
type PaymentRepository interface {
	Add(ctx context.Context, payment *models.PaymentRecord) error
}

// RegisterPaymentRequest is the payload for recording a payment. Amount is
// free text and must parse as a non-negative decimal.
type RegisterPaymentRequest struct {
	ChildID string `json:"child_id" validate:"required"`
	Period  string `json:"period" validate:"required,billing_period"`
	Amount  string `json:"amount" validate:"required"`
}

// PaymentService appends payments to the ledger. It never reads prior entries.
type PaymentService struct {
	repo      PaymentRepository
	validator *validator.Validate
	timeout   time.Duration
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewPaymentService constructs the payment ledger.
func NewPaymentService(repo PaymentRepository, validate *validator.Validate, timeout time.Duration, metrics *MetricsService, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &PaymentService{repo: repo, validator: validate, timeout: timeout, metrics: metrics, logger: logger}
	svc.validator.RegisterValidation("billing_period", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(models.PeriodLayout, fl.Field().String())
		return err == nil
	})
	return svc
}

// RegisterPayment appends a new payment entry and returns it with its assigned id.
// Registering the same child and period twice yields two entries.
func (s *PaymentService) RegisterPayment(ctx context.Context, req RegisterPaymentRequest) (*models.PaymentRecord, error) {
	req.ChildID = strings.TrimSpace(req.ChildID)
	req.Period = strings.TrimSpace(req.Period)
	req.Amount = strings.TrimSpace(req.Amount)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "amount must be a number")
	}
	if amount.IsNegative() {
		return nil, appErrors.Invalid("amount must not be negative")
	}

	payment := &models.PaymentRecord{
		ChildID: req.ChildID,
		Period:  req.Period,
		Amount:  amount,
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err = s.repo.Add(ctx, payment)
	s.metrics.ObserveStoreOperation("payment_add", time.Since(start), err != nil)
	if err != nil {
		s.metrics.RecordLedgerEvent(EventPersistenceFailure)
		logger.WithContext(ctx, s.logger).Warn("record payment failed",
			zap.String("child_id", payment.ChildID),
			zap.String("period", payment.Period),
			zap.Error(err),
		)
		return nil, appErrors.Persistence(err, "failed to record payment")
	}

	s.metrics.RecordLedgerEvent(EventPayment)
	return payment, nil
}
