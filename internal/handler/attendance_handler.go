package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-ledger-api/internal/dto"
	"github.com/noah-isme/attendance-ledger-api/internal/models"
	"github.com/noah-isme/attendance-ledger-api/internal/service"
	appErrors "github.com/noah-isme/attendance-ledger-api/pkg/errors"
	"github.com/noah-isme/attendance-ledger-api/pkg/response"
)

type attendanceLedger interface {
	GetPresence(ctx context.Context, childID string, date time.Time) (bool, error)
	SetPresence(ctx context.Context, childID string, date time.Time, present bool) error
}

type checkInResolver interface {
	ResolveAndMark(ctx context.Context, code string, date time.Time) (string, error)
}

type rosterViewBuilder interface {
	BuildView(ctx context.Context, date time.Time) ([]models.RosterEntry, error)
}

type sheetExporter interface {
	AttendanceSheet(ctx context.Context, date time.Time, format service.SheetFormat) (*service.Sheet, error)
}

// AttendanceHandler exposes the attendance ledger.
type AttendanceHandler struct {
	ledger  attendanceLedger
	checkIn checkInResolver
	views   rosterViewBuilder
	sheets  sheetExporter
	loc     *time.Location
	now     func() time.Time
}

// NewAttendanceHandler builds the handler. Dates without an explicit value
// resolve to today in loc.
func NewAttendanceHandler(ledger attendanceLedger, checkIn checkInResolver, views rosterViewBuilder, sheets sheetExporter, loc *time.Location) *AttendanceHandler {
	if loc == nil {
		loc = time.Local
	}
	return &AttendanceHandler{ledger: ledger, checkIn: checkIn, views: views, sheets: sheets, loc: loc, now: time.Now}
}

// View godoc
// @Summary Roster attendance view for a day
// @Tags Attendance
// @Produce json
// @Param date query string false "Day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) View(c *gin.Context) {
	date, err := resolveDate(c.Query("date"), h.loc, h.now)
	if err != nil {
		response.Error(c, err)
		return
	}
	entries, err := h.views.BuildView(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewRosterViewResponse(models.FormatDate(date), entries), map[string]interface{}{"total": len(entries)})
}

// Get godoc
// @Summary Presence of a child on a day
// @Tags Attendance
// @Produce json
// @Param childId path string true "Child ID"
// @Param date path string true "Day (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/{childId}/{date} [get]
func (h *AttendanceHandler) Get(c *gin.Context) {
	childID := c.Param("childId")
	date, err := models.ParseDate(c.Param("date"), h.loc)
	if err != nil {
		response.Error(c, appErrors.Invalid(err.Error()))
		return
	}
	present, err := h.ledger.GetPresence(c.Request.Context(), childID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.PresenceResponse{ChildID: childID, Date: models.FormatDate(date), Present: present})
}

// Set godoc
// @Summary Mark a child present or absent on a day
// @Tags Attendance
// @Accept json
// @Produce json
// @Param childId path string true "Child ID"
// @Param date path string true "Day (YYYY-MM-DD)"
// @Param payload body dto.SetPresenceRequest true "Presence payload"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /attendance/{childId}/{date} [put]
func (h *AttendanceHandler) Set(c *gin.Context) {
	childID := c.Param("childId")
	date, err := models.ParseDate(c.Param("date"), h.loc)
	if err != nil {
		response.Error(c, appErrors.Invalid(err.Error()))
		return
	}
	var req dto.SetPresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "present is required"))
		return
	}
	if err := h.ledger.SetPresence(c.Request.Context(), childID, date, *req.Present); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.PresenceResponse{ChildID: childID, Date: models.FormatDate(date), Present: *req.Present})
}

// CheckIn godoc
// @Summary Mark a child present by check-in code
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.CheckInRequest true "Check-in payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance/check-in [post]
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req dto.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid check-in payload"))
		return
	}
	date, err := resolveDate(req.Date, h.loc, h.now)
	if err != nil {
		response.Error(c, err)
		return
	}
	childID, err := h.checkIn.ResolveAndMark(c.Request.Context(), req.Code, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.PresenceResponse{ChildID: childID, Date: models.FormatDate(date), Present: true})
}

// Sheet godoc
// @Summary Download the attendance sheet for a day
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Param date query string false "Day (YYYY-MM-DD), defaults to today"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Router /attendance/sheet [get]
func (h *AttendanceHandler) Sheet(c *gin.Context) {
	date, err := resolveDate(c.Query("date"), h.loc, h.now)
	if err != nil {
		response.Error(c, err)
		return
	}
	format, err := service.ParseSheetFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	sheet, err := h.sheets.AttendanceSheet(c.Request.Context(), date, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, sheet.Filename, sheet.ContentType, sheet.Content)
}
