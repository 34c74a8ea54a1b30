package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-ledger-api/internal/models"
	appErrors "github.com/noah-isme/attendance-ledger-api/pkg/errors"
)

func newCheckInFixture(validate bool, children ...models.Child) (*CheckInService, *AttendanceService, *fakeAttendanceRepo, *fakeChildRepo) {
	attendanceRepo := newFakeAttendanceRepo()
	childRepo := &fakeChildRepo{children: children}
	attendance := newAttendanceService(attendanceRepo)
	svc := NewCheckInService(childRepo, attendance, validate, time.Second, nil, nil)
	return svc, attendance, attendanceRepo, childRepo
}

func TestResolveAndMarkRejectsEmptyCode(t *testing.T) {
	for _, code := range []string{"", "   ", "\t\n"} {
		svc, _, repo, childRepo := newCheckInFixture(true, child("c123", "1° Básico"))

		_, err := svc.ResolveAndMark(context.Background(), code, march5)
		assert.ErrorIs(t, err, appErrors.ErrValidation)
		assert.Empty(t, repo.records)
		assert.Empty(t, childRepo.lookups)
	}
}

func TestResolveAndMarkEquivalentToSetPresence(t *testing.T) {
	svc, attendance, _, _ := newCheckInFixture(false)

	id, err := svc.ResolveAndMark(context.Background(), " c123 ", march5)
	require.NoError(t, err)
	assert.Equal(t, "c123", id)

	present, err := attendance.GetPresence(context.Background(), "c123", march5)
	require.NoError(t, err)
	assert.True(t, present)
}

func TestResolveAndMarkValidatesAgainstRoster(t *testing.T) {
	code := "QR-77"
	kid := child("c123", "1° Básico")
	kid.CheckInCode = &code
	svc, attendance, repo, _ := newCheckInFixture(true, kid)

	id, err := svc.ResolveAndMark(context.Background(), "QR-77", march5)
	require.NoError(t, err)
	assert.Equal(t, "c123", id)
	_, ok := repo.records["c123_2024-03-05"]
	assert.True(t, ok)

	present, err := attendance.GetPresence(context.Background(), "c123", march5)
	require.NoError(t, err)
	assert.True(t, present)
}

func TestResolveAndMarkUnknownCodeWritesNothing(t *testing.T) {
	svc, _, repo, _ := newCheckInFixture(true, child("c123", "1° Básico"))

	_, err := svc.ResolveAndMark(context.Background(), "ghost", march5)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, repo.records)
}

func TestResolveAndMarkLookupFailure(t *testing.T) {
	svc, _, repo, childRepo := newCheckInFixture(true)
	childRepo.findErr = errors.New("roster offline")

	_, err := svc.ResolveAndMark(context.Background(), "c123", march5)
	assert.ErrorIs(t, err, appErrors.ErrPersistence)
	assert.Empty(t, repo.records)
}

func TestResolveAndMarkWriteFailure(t *testing.T) {
	svc, _, repo, _ := newCheckInFixture(false)
	repo.putErr = errors.New("write rejected")

	id, err := svc.ResolveAndMark(context.Background(), "c123", march5)
	assert.ErrorIs(t, err, appErrors.ErrPersistence)
	assert.Empty(t, id)
}
