package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-ledger-api/internal/models"
	appErrors "github.com/noah-isme/attendance-ledger-api/pkg/errors"
)

const childColumns = "id, first_name, last_name, course, check_in_code, school, created_at"

// ChildRepository manages roster persistence in PostgreSQL.
type ChildRepository struct {
	db *sqlx.DB
}

// NewChildRepository constructs a ChildRepository.
func NewChildRepository(db *sqlx.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

// List returns the full roster.
func (r *ChildRepository) List(ctx context.Context) ([]models.Child, error) {
	query := "SELECT " + childColumns + " FROM children ORDER BY created_at ASC"
	children := []models.Child{}
	if err := r.db.SelectContext(ctx, &children, query); err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return children, nil
}

// FindByCode resolves a check-in code. An exact id match wins over a
// check_in_code match.
func (r *ChildRepository) FindByCode(ctx context.Context, code string) (*models.Child, error) {
	query := "SELECT " + childColumns + ` FROM children
WHERE id = $1 OR check_in_code = $1
ORDER BY (id = $1) DESC
LIMIT 1`
	var child models.Child
	if err := r.db.GetContext(ctx, &child, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("find child by code: %w", err)
	}
	return &child, nil
}

// Create inserts a new child, assigning its id when missing.
func (r *ChildRepository) Create(ctx context.Context, child *models.Child) error {
	if child.ID == "" {
		child.ID = uuid.NewString()
	}
	if child.CreatedAt.IsZero() {
		child.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO children (id, first_name, last_name, course, check_in_code, school, created_at)
        VALUES (:id, :first_name, :last_name, :course, :check_in_code, :school, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, child); err != nil {
		return fmt.Errorf("create child: %w", err)
	}
	return nil
}
