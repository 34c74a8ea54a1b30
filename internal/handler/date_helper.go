package handler

import (
	"time"

	"github.com/noah-isme/attendance-ledger-api/internal/models"
	appErrors "github.com/noah-isme/attendance-ledger-api/pkg/errors"
)

// resolveDate parses a YYYY-MM-DD day in loc, defaulting to today.
func resolveDate(raw string, loc *time.Location, now func() time.Time) (time.Time, error) {
	if raw == "" {
		return models.Today(now(), loc), nil
	}
	date, err := models.ParseDate(raw, loc)
	if err != nil {
		return time.Time{}, appErrors.Invalid(err.Error())
	}
	return date, nil
}
