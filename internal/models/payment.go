package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodLayout is the month layout identifying a billing period.
const PeriodLayout = "2006-01"

// PaymentRecord is one append-only payment entry. ChildID is a weak reference
// and is not checked against the roster.
type PaymentRecord struct {
	ID        string          `db:"id" json:"id"`
	ChildID   string          `db:"child_id" json:"child_id"`
	Period    string          `db:"period" json:"period"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
