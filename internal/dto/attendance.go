package dto

import "github.com/noah-isme/attendance-ledger-api/internal/models"

// SetPresenceRequest is the body of a manual attendance toggle.
type SetPresenceRequest struct {
	Present *bool `json:"present" binding:"required"`
}

// CheckInRequest marks a child present by code. Date defaults to today.
type CheckInRequest struct {
	Code string `json:"code"`
	Date string `json:"date,omitempty"`
}

// PresenceResponse reports the presence of one child on one day.
type PresenceResponse struct {
	ChildID string `json:"child_id"`
	Date    string `json:"date"`
	Present bool   `json:"present"`
}

// RosterEntryItem is one row of a roster view.
type RosterEntryItem struct {
	ChildID   string        `json:"child_id"`
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	Course    models.Course `json:"course"`
	Code      string        `json:"code"`
	Present   bool          `json:"present"`
}

// RosterViewResponse is the attendance view of the roster for a day.
type RosterViewResponse struct {
	Date    string            `json:"date"`
	Entries []RosterEntryItem `json:"entries"`
}

// NewRosterViewResponse flattens view entries for transport.
func NewRosterViewResponse(date string, entries []models.RosterEntry) RosterViewResponse {
	items := make([]RosterEntryItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, RosterEntryItem{
			ChildID:   entry.Child.ID,
			FirstName: entry.Child.FirstName,
			LastName:  entry.Child.LastName,
			Course:    entry.Child.Course,
			Code:      entry.Child.Code(),
			Present:   entry.Present,
		})
	}
	return RosterViewResponse{Date: date, Entries: items}
}
