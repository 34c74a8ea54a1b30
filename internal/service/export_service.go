package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-ledger-api/internal/models"
	appErrors "github.com/noah-isme/attendance-ledger-api/pkg/errors"
	"github.com/noah-isme/attendance-ledger-api/pkg/export"
)

// SheetFormat selects the rendering of an attendance sheet.
type SheetFormat string

const (
	SheetFormatCSV SheetFormat = "csv"
	SheetFormatPDF SheetFormat = "pdf"
)

// ParseSheetFormat normalises raw into a supported format, defaulting to CSV.
func ParseSheetFormat(raw string) (SheetFormat, error) {
	switch SheetFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SheetFormatCSV:
		return SheetFormatCSV, nil
	case SheetFormatPDF:
		return SheetFormatPDF, nil
	default:
		return "", appErrors.Invalid(fmt.Sprintf("unsupported sheet format %q", raw))
	}
}

// Sheet is a rendered attendance sheet.
type Sheet struct {
	Filename    string
	ContentType string
	Content     []byte
}

type rosterViewBuilder interface {
	BuildView(ctx context.Context, date time.Time) ([]models.RosterEntry, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

var sheetHeaders = []string{"Course", "First name", "Last name", "Code", "Present"}

// ExportService renders the roster view of a day as a downloadable sheet.
type ExportService struct {
	views        rosterViewBuilder
	csv          csvRenderer
	pdf          pdfRenderer
	organization string
	logger       *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(views rosterViewBuilder, organization string, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{views: views, csv: csv, pdf: pdf, organization: organization, logger: logger}
}

// AttendanceSheet builds the view for date and renders it in format.
func (s *ExportService) AttendanceSheet(ctx context.Context, date time.Time, format SheetFormat) (*Sheet, error) {
	entries, err := s.views.BuildView(ctx, date)
	if err != nil {
		return nil, err
	}
	dataset := buildSheetDataset(entries)
	day := models.FormatDate(date)

	var (
		content     []byte
		contentType string
	)
	switch format {
	case SheetFormatPDF:
		content, err = s.pdf.Render(dataset, s.sheetTitle(day))
		contentType = "application/pdf"
	case SheetFormatCSV, "":
		format = SheetFormatCSV
		content, err = s.csv.Render(dataset)
		contentType = "text/csv"
	default:
		return nil, appErrors.Invalid(fmt.Sprintf("unsupported sheet format %q", format))
	}
	if err != nil {
		s.logger.Error("render attendance sheet", zap.String("date", day), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render attendance sheet")
	}

	return &Sheet{
		Filename:    fmt.Sprintf("attendance_%s.%s", day, format),
		ContentType: contentType,
		Content:     content,
	}, nil
}

func (s *ExportService) sheetTitle(day string) string {
	if s.organization == "" {
		return fmt.Sprintf("Attendance %s", day)
	}
	return fmt.Sprintf("%s attendance %s", s.organization, day)
}

func buildSheetDataset(entries []models.RosterEntry) export.Dataset {
	rows := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		present := "no"
		if entry.Present {
			present = "yes"
		}
		rows = append(rows, map[string]string{
			"Course":     string(entry.Child.Course),
			"First name": entry.Child.FirstName,
			"Last name":  entry.Child.LastName,
			"Code":       entry.Child.Code(),
			"Present":    present,
		})
	}
	return export.Dataset{Headers: sheetHeaders, Rows: rows}
}
