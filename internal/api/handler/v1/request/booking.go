package request

import (
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
)

var visitTimeExp = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)

type CreateBookingRequest struct {
	VisitorName         string `json:"visitor_name" example:"Neema Kaduma"`
	VisitorEmail        string `json:"visitor_email" example:"neema@example.com"`
	VisitorPhone        string `json:"visitor_phone" example:"+255711000000"`
	VisitorType         string `json:"visitor_type" enums:"local,foreign" example:"local"`
	NumberOfVisitors    int    `json:"number_of_visitors" example:"3"`
	VisitDate           string `json:"visit_date" format:"YYYY-MM-DD" example:"2026-11-03"`
	VisitTime           string `json:"visit_time" format:"HH:MM[:SS]" example:"09:30"`
	SpecialRequirements string `json:"special_requirements,omitempty"`
}

func (req *CreateBookingRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.VisitorName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.VisitorEmail, validation.Required, is.Email),
		validation.Field(&req.VisitorPhone, validation.Required, validation.Match(phoneExp)),
		validation.Field(&req.VisitorType, validation.Required, validation.In(string(domain.VisitorLocal), string(domain.VisitorForeign))),
		validation.Field(&req.VisitDate, validation.Required, validation.Date(domain.VisitDateLayout)),
		validation.Field(&req.VisitTime, validation.Required, validation.Match(visitTimeExp)),
		validation.Field(&req.SpecialRequirements, validation.Length(0, 1000)),
	)
}

// ToDomain converts a validated request. A visit time given as HH:MM is
// stored with zero seconds.
func (req *CreateBookingRequest) ToDomain(siteID uint) (domain.BookingRequest, error) {
	date, err := time.Parse(domain.VisitDateLayout, req.VisitDate)
	if err != nil {
		return domain.BookingRequest{}, fmt.Errorf("visit_date: %w", err)
	}

	visitTime := req.VisitTime
	if len(visitTime) == len("15:04") {
		visitTime += ":00"
	}
	if _, err = time.Parse(domain.VisitTimeLayout, visitTime); err != nil {
		return domain.BookingRequest{}, fmt.Errorf("visit_time: %w", err)
	}

	return domain.BookingRequest{
		SiteID:           siteID,
		VisitDate:        date,
		VisitTime:        visitTime,
		VisitorClass:     domain.VisitorClass(req.VisitorType),
		NumberOfVisitors: req.NumberOfVisitors,
		Visitor: domain.VisitorContact{
			Name:  req.VisitorName,
			Email: req.VisitorEmail,
			Phone: req.VisitorPhone,
		},
		SpecialRequirements: req.SpecialRequirements,
	}, nil
}
