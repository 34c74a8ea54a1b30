package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-ledger-api/internal/models"
	"github.com/noah-isme/attendance-ledger-api/internal/service"
	appErrors "github.com/noah-isme/attendance-ledger-api/pkg/errors"
)

type attendanceLedgerMock struct {
	present    bool
	getErr     error
	setErr     error
	setCalled  bool
	lastChild  string
	lastDate   time.Time
	lastStatus bool
}

func (m *attendanceLedgerMock) GetPresence(ctx context.Context, childID string, date time.Time) (bool, error) {
	m.lastChild, m.lastDate = childID, date
	return m.present, m.getErr
}

func (m *attendanceLedgerMock) SetPresence(ctx context.Context, childID string, date time.Time, present bool) error {
	m.setCalled = true
	m.lastChild, m.lastDate, m.lastStatus = childID, date, present
	return m.setErr
}

type checkInMock struct {
	childID  string
	err      error
	lastCode string
	lastDate time.Time
}

func (m *checkInMock) ResolveAndMark(ctx context.Context, code string, date time.Time) (string, error) {
	m.lastCode, m.lastDate = code, date
	return m.childID, m.err
}

type viewBuilderMock struct {
	entries  []models.RosterEntry
	err      error
	lastDate time.Time
}

func (m *viewBuilderMock) BuildView(ctx context.Context, date time.Time) ([]models.RosterEntry, error) {
	m.lastDate = date
	return m.entries, m.err
}

type sheetExporterMock struct {
	sheet      *service.Sheet
	err        error
	lastFormat service.SheetFormat
}

func (m *sheetExporterMock) AttendanceSheet(ctx context.Context, date time.Time, format service.SheetFormat) (*service.Sheet, error) {
	m.lastFormat = format
	return m.sheet, m.err
}

type attendanceFixture struct {
	handler *AttendanceHandler
	ledger  *attendanceLedgerMock
	checkIn *checkInMock
	views   *viewBuilderMock
	sheets  *sheetExporterMock
}

func newAttendanceFixture() attendanceFixture {
	f := attendanceFixture{
		ledger:  &attendanceLedgerMock{},
		checkIn: &checkInMock{},
		views:   &viewBuilderMock{},
		sheets:  &sheetExporterMock{},
	}
	f.handler = NewAttendanceHandler(f.ledger, f.checkIn, f.views, f.sheets, time.UTC)
	f.handler.now = func() time.Time { return time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC) }
	return f
}

func newTestContext(method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var envelope struct {
		Data  map[string]interface{} `json:"data"`
		Error *appErrors.Error       `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestAttendanceHandlerViewDefaultsToToday(t *testing.T) {
	f := newAttendanceFixture()
	f.views.entries = []models.RosterEntry{
		{Child: models.Child{ID: "A", FirstName: "Ana", Course: models.CourseBasico1}, Present: true},
		{Child: models.Child{ID: "B", FirstName: "Beto", Course: models.CourseBasico2}},
	}
	c, w := newTestContext(http.MethodGet, "/attendance", nil)

	f.handler.View(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-03-05", models.FormatDate(f.views.lastDate))
	data := decodeData(t, w)
	assert.Equal(t, "2024-03-05", data["date"])
	entries := data["entries"].([]interface{})
	require.Len(t, entries, 2)
	assert.Equal(t, true, entries[0].(map[string]interface{})["present"])
	assert.Equal(t, "B", entries[1].(map[string]interface{})["code"])
}

func TestAttendanceHandlerViewPartialFailure(t *testing.T) {
	f := newAttendanceFixture()
	f.views.err = appErrors.Clone(appErrors.ErrPartialFailure, "1 of 2 attendance lookups failed")
	c, w := newTestContext(http.MethodGet, "/attendance?date=2024-03-05", nil)

	f.handler.View(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "PARTIAL_FAILURE")
}

func TestAttendanceHandlerViewRejectsBadDate(t *testing.T) {
	f := newAttendanceFixture()
	c, w := newTestContext(http.MethodGet, "/attendance?date=05-03-2024", nil)

	f.handler.View(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttendanceHandlerGet(t *testing.T) {
	f := newAttendanceFixture()
	f.ledger.present = true
	c, w := newTestContext(http.MethodGet, "/attendance/c123/2024-03-05", nil)
	c.Params = gin.Params{{Key: "childId", Value: "c123"}, {Key: "date", Value: "2024-03-05"}}

	f.handler.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c123", f.ledger.lastChild)
	assert.Equal(t, true, decodeData(t, w)["present"])
}

func TestAttendanceHandlerSet(t *testing.T) {
	f := newAttendanceFixture()
	c, w := newTestContext(http.MethodPut, "/attendance/c123/2024-03-05", []byte(`{"present": false}`))
	c.Params = gin.Params{{Key: "childId", Value: "c123"}, {Key: "date", Value: "2024-03-05"}}

	f.handler.Set(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.ledger.setCalled)
	assert.False(t, f.ledger.lastStatus)
}

func TestAttendanceHandlerSetRequiresPresent(t *testing.T) {
	f := newAttendanceFixture()
	c, w := newTestContext(http.MethodPut, "/attendance/c123/2024-03-05", []byte(`{}`))
	c.Params = gin.Params{{Key: "childId", Value: "c123"}, {Key: "date", Value: "2024-03-05"}}

	f.handler.Set(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, f.ledger.setCalled)
}

func TestAttendanceHandlerSetPersistenceFailure(t *testing.T) {
	f := newAttendanceFixture()
	f.ledger.setErr = appErrors.Persistence(errors.New("down"), "failed to write attendance")
	c, w := newTestContext(http.MethodPut, "/attendance/c123/2024-03-05", []byte(`{"present": true}`))
	c.Params = gin.Params{{Key: "childId", Value: "c123"}, {Key: "date", Value: "2024-03-05"}}

	f.handler.Set(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), `"data"`)
}

func TestAttendanceHandlerCheckIn(t *testing.T) {
	f := newAttendanceFixture()
	f.checkIn.childID = "c123"
	c, w := newTestContext(http.MethodPost, "/attendance/check-in", []byte(`{"code": "QR-1", "date": "2024-03-04"}`))

	f.handler.CheckIn(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "QR-1", f.checkIn.lastCode)
	assert.Equal(t, "2024-03-04", models.FormatDate(f.checkIn.lastDate))
	assert.Equal(t, "c123", decodeData(t, w)["child_id"])
}

func TestAttendanceHandlerCheckInErrors(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
	}{
		"empty code":   {err: appErrors.Invalid("check-in code is required"), status: http.StatusBadRequest},
		"unknown code": {err: appErrors.Clone(appErrors.ErrNotFound, "no child matches the check-in code"), status: http.StatusNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newAttendanceFixture()
			f.checkIn.err = tc.err
			c, w := newTestContext(http.MethodPost, "/attendance/check-in", []byte(`{"code": ""}`))

			f.handler.CheckIn(c)

			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestAttendanceHandlerSheet(t *testing.T) {
	f := newAttendanceFixture()
	f.sheets.sheet = &service.Sheet{Filename: "attendance_2024-03-05.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.3")}
	c, w := newTestContext(http.MethodGet, "/attendance/sheet?format=pdf", nil)

	f.handler.Sheet(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.SheetFormatPDF, f.sheets.lastFormat)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attendance_2024-03-05.pdf")
}

func TestAttendanceHandlerSheetRejectsUnknownFormat(t *testing.T) {
	f := newAttendanceFixture()
	c, w := newTestContext(http.MethodGet, "/attendance/sheet?format=xlsx", nil)

	f.handler.Sheet(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type versionedAttendanceStore struct {
	records map[string]models.AttendanceRecord
}

func (s *versionedAttendanceStore) Get(ctx context.Context, key string) (*models.AttendanceRecord, error) {
	record, ok := s.records[key]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	return &record, nil
}

func (s *versionedAttendanceStore) Put(ctx context.Context, record *models.AttendanceRecord) error {
	if existing, ok := s.records[record.Key]; ok && existing.Version+1 > record.Version {
		record.Version = existing.Version + 1
	}
	s.records[record.Key] = *record
	return nil
}

type backwardsSequencer struct {
	stamps []int64
}

func (s *backwardsSequencer) Next(ctx context.Context, key string) (int64, error) {
	stamp := s.stamps[0]
	s.stamps = s.stamps[1:]
	return stamp, nil
}

func TestAttendanceHandlerSetWithLaggingStampIsStored(t *testing.T) {
	store := &versionedAttendanceStore{records: map[string]models.AttendanceRecord{}}
	ledger := service.NewAttendanceService(store, &backwardsSequencer{stamps: []int64{200, 100}}, time.Second, nil, nil)
	h := NewAttendanceHandler(ledger, &checkInMock{}, &viewBuilderMock{}, &sheetExporterMock{}, time.UTC)
	params := gin.Params{{Key: "childId", Value: "c1"}, {Key: "date", Value: "2024-03-05"}}

	c, w := newTestContext(http.MethodPut, "/attendance/c1/2024-03-05", []byte(`{"present": true}`))
	c.Params = params
	h.Set(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = newTestContext(http.MethodPut, "/attendance/c1/2024-03-05", []byte(`{"present": false}`))
	c.Params = params
	h.Set(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeData(t, w)["present"])

	c, w = newTestContext(http.MethodGet, "/attendance/c1/2024-03-05", nil)
	c.Params = params
	h.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeData(t, w)["present"])
	assert.Equal(t, int64(201), store.records["c1_2024-03-05"].Version)
}
