package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-ledger-api/internal/models"
)

// PaymentRepository appends payment entries in PostgreSQL.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Add inserts a new payment and assigns its identifier.
func (r *PaymentRepository) Add(ctx context.Context, payment *models.PaymentRecord) error {
	payment.ID = uuid.NewString()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO payments (id, child_id, period, amount, created_at)
        VALUES (:id, :child_id, :period, :amount, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("add payment: %w", err)
	}
	return nil
}
