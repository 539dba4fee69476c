package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// VisitDateLayout and VisitTimeLayout are the canonical encodings of a
// booking's visit slot.
const (
	VisitDateLayout = "2006-01-02"
	VisitTimeLayout = "15:04:05"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether the back-office workflow may move a booking
// from s to next. Cancelled and completed bookings are terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type VisitorContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Booking struct {
	ID                  uint            `json:"id"`
	SiteID              uint            `json:"site_id"`
	Visitor             VisitorContact  `json:"visitor"`
	VisitorClass        VisitorClass    `json:"visitor_type"`
	NumberOfVisitors    int             `json:"number_of_visitors"`
	VisitDate           time.Time       `json:"-"`
	VisitTime           string          `json:"visit_time"`
	SpecialRequirements string          `json:"special_requirements,omitempty"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	Status              BookingStatus   `json:"status"`
	Reference           string          `json:"reference"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func (b Booking) MarshalJSON() ([]byte, error) {
	type alias Booking
	return json.Marshal(struct {
		alias
		VisitDate string `json:"visit_date"`
	}{alias(b), b.VisitDate.Format(VisitDateLayout)})
}

// BookingRequest carries the visitor-supplied fields of a reservation.
type BookingRequest struct {
	SiteID              uint
	VisitDate           time.Time
	VisitTime           string
	VisitorClass        VisitorClass
	NumberOfVisitors    int
	Visitor             VisitorContact
	SpecialRequirements string
}

// ReferenceClaim tries to take code for the booking being created and reports
// false when another booking already holds it.
type ReferenceClaim func(ctx context.Context, code string) (bool, error)

// ReferenceIssuer produces a booking reference, driving claim until a free
// code is found.
type ReferenceIssuer func(ctx context.Context, claim ReferenceClaim) (string, error)
