package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-ledger-api/internal/models"
	appErrors "github.com/noah-isme/attendance-ledger-api/pkg/errors"
)

func newLedgerMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var childRowColumns = []string{"id", "first_name", "last_name", "course", "check_in_code", "school", "created_at"}

func TestChildRepositoryList(t *testing.T) {
	db, mock, cleanup := newLedgerMock(t)
	defer cleanup()
	repo := NewChildRepository(db)

	rows := sqlmock.NewRows(childRowColumns).
		AddRow("c1", "Ana", "Rojas", "Kínder", nil, "Sochides", time.Now()).
		AddRow("c2", "Luis", "Soto", "1° Básico", "QR-2", "Sochides", time.Now())
	mock.ExpectQuery("SELECT (.+) FROM children ORDER BY created_at ASC").WillReturnRows(rows)

	children, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Nil(t, children[0].CheckInCode)
	assert.Equal(t, "QR-2", children[1].Code())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChildRepositoryListEmptyIsNotNil(t *testing.T) {
	db, mock, cleanup := newLedgerMock(t)
	defer cleanup()
	repo := NewChildRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM children").WillReturnRows(sqlmock.NewRows(childRowColumns))

	children, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, children)
	assert.Empty(t, children)
}

func TestChildRepositoryFindByCode(t *testing.T) {
	db, mock, cleanup := newLedgerMock(t)
	defer cleanup()
	repo := NewChildRepository(db)

	mock.ExpectQuery(`FROM children\s+WHERE id = \$1 OR check_in_code = \$1`).
		WithArgs("QR-2").
		WillReturnRows(sqlmock.NewRows(childRowColumns).AddRow("c2", "Luis", "Soto", "1° Básico", "QR-2", "Sochides", time.Now()))

	child, err := repo.FindByCode(context.Background(), "QR-2")
	require.NoError(t, err)
	assert.Equal(t, "c2", child.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChildRepositoryFindByCodeUnknown(t *testing.T) {
	db, mock, cleanup := newLedgerMock(t)
	defer cleanup()
	repo := NewChildRepository(db)

	mock.ExpectQuery("FROM children").WithArgs("nope").WillReturnRows(sqlmock.NewRows(childRowColumns))

	_, err := repo.FindByCode(context.Background(), "nope")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestChildRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newLedgerMock(t)
	defer cleanup()
	repo := NewChildRepository(db)

	mock.ExpectExec("INSERT INTO children").
		WithArgs(sqlmock.AnyArg(), "Ana", "Rojas", "Kínder", sqlmock.AnyArg(), "Sochides", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	child := &models.Child{FirstName: "Ana", LastName: "Rojas", Course: models.CourseKinder, School: "Sochides"}
	require.NoError(t, repo.Create(context.Background(), child))
	assert.NotEmpty(t, child.ID)
	assert.False(t, child.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryGet(t *testing.T) {
	db, mock, cleanup := newLedgerMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(`FROM attendance\s+WHERE id = \$1`).
		WithArgs("c1_2024-03-05").
		WillReturnRows(sqlmock.NewRows([]string{"id", "child_id", "date", "present", "version", "updated_at"}).
			AddRow("c1_2024-03-05", "c1", "2024-03-05", true, int64(7), time.Now()))

	record, err := repo.Get(context.Background(), "c1_2024-03-05")
	require.NoError(t, err)
	assert.True(t, record.Present)
	assert.Equal(t, int64(7), record.Version)
	assert.Equal(t, "2024-03-05", record.Date)
}

func TestAttendanceRepositoryGetMissing(t *testing.T) {
	db, mock, cleanup := newLedgerMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("FROM attendance").
		WithArgs("c1_2024-03-05").
		WillReturnRows(sqlmock.NewRows([]string{"id", "child_id", "date", "present", "version", "updated_at"}))

	_, err := repo.Get(context.Background(), "c1_2024-03-05")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAttendanceRepositoryPut(t *testing.T) {
	cases := []struct {
		name   string
		stamp  int64
		stored int64
	}{
		{name: "stamp ahead of stored version", stamp: 10, stored: 10},
		{name: "stamp behind stored version still lands", stamp: 10, stored: 42},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, cleanup := newLedgerMock(t)
			defer cleanup()
			repo := NewAttendanceRepository(db)

			mock.ExpectQuery(`(?s)INSERT INTO attendance .+ON CONFLICT \(id\).+GREATEST\(attendance\.version \+ 1, EXCLUDED\.version\).+RETURNING version`).
				WithArgs("c1_2024-03-05", "c1", "2024-03-05", false, tc.stamp, sqlmock.AnyArg()).
				WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(tc.stored))

			record := &models.AttendanceRecord{
				Key: "c1_2024-03-05", ChildID: "c1", Date: "2024-03-05", Present: false, Version: tc.stamp,
			}
			require.NoError(t, repo.Put(context.Background(), record))
			assert.Equal(t, tc.stored, record.Version)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAttendanceRepositoryPutError(t *testing.T) {
	db, mock, cleanup := newLedgerMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("INSERT INTO attendance").WillReturnError(errors.New("connection reset"))

	err := repo.Put(context.Background(), &models.AttendanceRecord{Key: "c1_2024-03-05", ChildID: "c1", Date: "2024-03-05", Version: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestPaymentRepositoryAddAssignsDistinctIDs(t *testing.T) {
	db, mock, cleanup := newLedgerMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	for i := 0; i < 2; i++ {
		mock.ExpectExec("INSERT INTO payments").
			WithArgs(sqlmock.AnyArg(), "c1", "2024-03", "15000", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}

	first := &models.PaymentRecord{ChildID: "c1", Period: "2024-03", Amount: decimal.RequireFromString("15000")}
	second := &models.PaymentRecord{ChildID: "c1", Period: "2024-03", Amount: decimal.RequireFromString("15000")}
	require.NoError(t, repo.Add(context.Background(), first))
	require.NoError(t, repo.Add(context.Background(), second))

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryAddKeepsFullAmount(t *testing.T) {
	db, mock, cleanup := newLedgerMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	for _, amount := range []string{"15000.555", "10000000000000"} {
		mock.ExpectExec("INSERT INTO payments").
			WithArgs(sqlmock.AnyArg(), "c1", "2024-03", amount, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}

	fractional := &models.PaymentRecord{ChildID: "c1", Period: "2024-03", Amount: decimal.RequireFromString("15000.555")}
	large := &models.PaymentRecord{ChildID: "c1", Period: "2024-03", Amount: decimal.RequireFromString("1e13")}
	require.NoError(t, repo.Add(context.Background(), fractional))
	require.NoError(t, repo.Add(context.Background(), large))

	assert.NoError(t, mock.ExpectationsWereMet())
}
