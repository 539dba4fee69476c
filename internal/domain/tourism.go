package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type VisitorClass string

const (
	VisitorLocal   VisitorClass = "local"
	VisitorForeign VisitorClass = "foreign"
)

func (c VisitorClass) Valid() bool {
	return c == VisitorLocal || c == VisitorForeign
}

// TourismSite is a bookable location. Capacity is informational and is not
// checked when bookings are created.
type TourismSite struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	Description     string          `json:"description"`
	SiteType        string          `json:"site_type"`
	Location        string          `json:"location"`
	EntryFeeLocal   decimal.Decimal `json:"entry_fee_local"`
	EntryFeeForeign decimal.Decimal `json:"entry_fee_foreign"`
	Capacity        int             `json:"capacity"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
