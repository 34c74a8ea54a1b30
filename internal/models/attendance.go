package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-day layout used for attendance dates and keys.
const DateLayout = "2006-01-02"

// attendanceKeySeparator joins child id and date in composite attendance keys.
const attendanceKeySeparator = "_"

// AttendanceRecord is the presence state of one child on one calendar day.
// Key is the composite "<childID>_<YYYY-MM-DD>" identifier; Version orders
// competing writes for the same key.
type AttendanceRecord struct {
	Key       string    `db:"id" json:"key" bson:"_id"`
	ChildID   string    `db:"child_id" json:"child_id" bson:"childId"`
	Date      string    `db:"date" json:"date" bson:"date"`
	Present   bool      `db:"present" json:"present" bson:"present"`
	Version   int64     `db:"version" json:"-" bson:"version"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at" bson:"updatedAt"`
}

// AttendanceKey builds the composite key addressing the record of childID on date.
func AttendanceKey(childID string, date time.Time) string {
	return childID + attendanceKeySeparator + FormatDate(date)
}

// FormatDate truncates t to its calendar day in t's own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar day in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return t, nil
}

// Today returns the current calendar day in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
