package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-ledger-api/internal/models"
	appErrors "github.com/noah-isme/attendance-ledger-api/pkg/errors"
)

// AttendanceRepository persists attendance records keyed by "<childID>_<date>".
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Get returns the record stored under key or appErrors.ErrNotFound.
func (r *AttendanceRepository) Get(ctx context.Context, key string) (*models.AttendanceRecord, error) {
	const query = `SELECT id, child_id, to_char(date, 'YYYY-MM-DD') AS date, present, version, updated_at
FROM attendance
WHERE id = $1`
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get attendance %s: %w", key, err)
	}
	return &record, nil
}

// Put overwrites the record for its key and always applies. The stored
// version becomes the greater of the previous version plus one and
// record.Version, and is written back to record.Version.
func (r *AttendanceRepository) Put(ctx context.Context, record *models.AttendanceRecord) error {
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attendance (id, child_id, date, present, version, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id)
DO UPDATE SET present = EXCLUDED.present,
	version = GREATEST(attendance.version + 1, EXCLUDED.version),
	updated_at = EXCLUDED.updated_at
RETURNING version`
	var stored int64
	err := r.db.QueryRowxContext(ctx, query, record.Key, record.ChildID, record.Date, record.Present, record.Version, record.UpdatedAt).Scan(&stored)
	if err != nil {
		return fmt.Errorf("put attendance %s: %w", record.Key, err)
	}
	record.Version = stored
	return nil
}
