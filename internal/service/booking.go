package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
	"github.com/mkwawa-heritage/marketplace-api/internal/events"
	"github.com/mkwawa-heritage/marketplace-api/internal/metrics"
	"github.com/mkwawa-heritage/marketplace-api/internal/pricing"
	"github.com/mkwawa-heritage/marketplace-api/internal/repository"
)

var (
	ErrSiteNotFound       = repository.ErrSiteNotFound
	ErrBookingNotFound    = repository.ErrBookingNotFound
	ErrReferenceExhausted = domain.ErrReferenceExhausted
)

const publishTimeout = 5 * time.Second

type TourismRepository interface {
	CreateSite(ctx context.Context, site domain.TourismSite) (domain.TourismSite, error)
	FindSite(ctx context.Context, id uint) (domain.TourismSite, error)
	FindSiteBySlug(ctx context.Context, slug string) (domain.TourismSite, error)
	FindActiveSites(ctx context.Context, siteType string) ([]domain.TourismSite, error)
	CreateBooking(ctx context.Context, booking domain.Booking, issue domain.ReferenceIssuer) (domain.Booking, error)
	FindBookingByReference(ctx context.Context, reference string) (domain.Booking, error)
	UpdateBooking(ctx context.Context, reference string, mutate func(domain.Booking) (domain.Booking, error)) (domain.Booking, error)
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type BookingLedger struct {
	repo TourismRepository
	refs domain.ReferenceIssuer
	pub  EventPublisher
}

func NewBookingLedger(repo TourismRepository, refs domain.ReferenceIssuer, pub EventPublisher) *BookingLedger {
	return &BookingLedger{
		repo: repo,
		refs: refs,
		pub:  pub,
	}
}

// CreateBooking prices and records a pending reservation. Capacity is not
// checked; any number of bookings may share a site, date and time.
func (l *BookingLedger) CreateBooking(ctx context.Context, req domain.BookingRequest) (domain.Booking, error) {
	if err := validateBookingRequest(req); err != nil {
		metrics.ObserveBooking(metrics.OutcomeInvalid, req.VisitorClass)
		return domain.Booking{}, err
	}

	site, err := l.GetSite(ctx, req.SiteID)
	if err != nil {
		metrics.ObserveBooking(outcomeOf(err), req.VisitorClass)
		return domain.Booking{}, err
	}

	total, err := pricing.TotalFee(site, req.VisitorClass, req.NumberOfVisitors)
	if err != nil {
		metrics.ObserveBooking(metrics.OutcomeInvalid, req.VisitorClass)
		return domain.Booking{}, fmt.Errorf("pricing.TotalFee -> %w", err)
	}

	y, m, d := req.VisitDate.Date()
	created, err := l.repo.CreateBooking(ctx, domain.Booking{
		SiteID:              site.ID,
		Visitor:             req.Visitor,
		VisitorClass:        req.VisitorClass,
		NumberOfVisitors:    req.NumberOfVisitors,
		VisitDate:           time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		VisitTime:           req.VisitTime,
		SpecialRequirements: strings.TrimSpace(req.SpecialRequirements),
		TotalAmount:         total,
		Status:              domain.BookingPending,
	}, l.refs)
	if err != nil {
		metrics.ObserveBooking(outcomeOf(err), req.VisitorClass)
		if errors.Is(err, domain.ErrReferenceExhausted) {
			zap.L().Error("could not issue a booking reference", zap.Uint("site_id", site.ID), zap.Error(err))
		}
		return domain.Booking{}, fmt.Errorf("l.repo.CreateBooking -> %w", err)
	}

	metrics.ObserveBooking(metrics.OutcomeAccepted, req.VisitorClass)
	zap.L().Info("booking created",
		zap.String("reference", created.Reference),
		zap.Uint("site_id", created.SiteID),
		zap.Int("visitors", created.NumberOfVisitors),
		zap.String("total_amount", created.TotalAmount.StringFixed(2)),
	)
	l.publish(ctx, events.KeyBookingCreated, events.NewBookingEvent(created, ""))

	return created, nil
}

// GetSite returns an active site. Inactive sites are reported as not found.
func (l *BookingLedger) GetSite(ctx context.Context, id uint) (domain.TourismSite, error) {
	site, err := l.repo.FindSite(ctx, id)
	if err != nil {
		return domain.TourismSite{}, fmt.Errorf("l.repo.FindSite -> %w", err)
	}
	if !site.IsActive {
		return domain.TourismSite{}, fmt.Errorf("site %d is inactive -> %w", id, ErrSiteNotFound)
	}

	return site, nil
}

// GetSiteBySlug behaves like GetSite for the site holding slug.
func (l *BookingLedger) GetSiteBySlug(ctx context.Context, slug string) (domain.TourismSite, error) {
	site, err := l.repo.FindSiteBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return domain.TourismSite{}, fmt.Errorf("l.repo.FindSiteBySlug -> %w", err)
	}
	if !site.IsActive {
		return domain.TourismSite{}, fmt.Errorf("site %q is inactive -> %w", site.Slug, ErrSiteNotFound)
	}

	return site, nil
}

// ListSites returns the active sites, optionally narrowed to one site type.
func (l *BookingLedger) ListSites(ctx context.Context, siteType string) ([]domain.TourismSite, error) {
	sites, err := l.repo.FindActiveSites(ctx, strings.TrimSpace(siteType))
	if err != nil {
		return nil, fmt.Errorf("l.repo.FindActiveSites -> %w", err)
	}

	return sites, nil
}

func (l *BookingLedger) CreateSite(ctx context.Context, site domain.TourismSite) (domain.TourismSite, error) {
	if strings.TrimSpace(site.Name) == "" {
		return domain.TourismSite{}, domain.Invalid("site name is required")
	}
	if site.Capacity < 0 {
		return domain.TourismSite{}, domain.Invalid("capacity must not be negative")
	}
	if err := validateAmount("local entry fee", site.EntryFeeLocal, true); err != nil {
		return domain.TourismSite{}, err
	}
	if err := validateAmount("foreign entry fee", site.EntryFeeForeign, true); err != nil {
		return domain.TourismSite{}, err
	}

	siteSlug, err := slugFor(site.Slug, site.Name)
	if err != nil {
		return domain.TourismSite{}, err
	}
	site.Slug = siteSlug

	created, err := l.repo.CreateSite(ctx, site)
	if err != nil {
		return domain.TourismSite{}, fmt.Errorf("l.repo.CreateSite -> %w", err)
	}

	return created, nil
}

func (l *BookingLedger) GetBookingByReference(ctx context.Context, reference string) (domain.Booking, error) {
	b, err := l.repo.FindBookingByReference(ctx, strings.ToUpper(strings.TrimSpace(reference)))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("l.repo.FindBookingByReference -> %w", err)
	}

	return b, nil
}

// UpdateBookingStatus moves a booking along the back-office workflow.
func (l *BookingLedger) UpdateBookingStatus(ctx context.Context, reference string, status domain.BookingStatus) (domain.Booking, error) {
	if !status.Valid() {
		return domain.Booking{}, domain.Invalid("unknown booking status %q", status)
	}

	var previous domain.BookingStatus
	updated, err := l.repo.UpdateBooking(ctx, strings.ToUpper(strings.TrimSpace(reference)), func(b domain.Booking) (domain.Booking, error) {
		if !b.Status.CanTransitionTo(status) {
			return domain.Booking{}, domain.Invalid("booking cannot move from %s to %s", b.Status, status)
		}
		previous = b.Status
		b.Status = status
		return b, nil
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("l.repo.UpdateBooking -> %w", err)
	}

	zap.L().Info("booking status changed",
		zap.String("reference", updated.Reference),
		zap.String("from", string(previous)),
		zap.String("to", string(updated.Status)),
	)
	l.publish(ctx, events.KeyBookingStatusChanged, events.NewBookingEvent(updated, previous))

	return updated, nil
}

func (l *BookingLedger) publish(ctx context.Context, key string, ev events.BookingEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := l.pub.PublishJSON(ctx, key, ev); err != nil {
		zap.L().Warn("could not publish booking event",
			zap.String("key", key),
			zap.String("reference", ev.Reference),
			zap.Error(err),
		)
	}
}

func validateBookingRequest(req domain.BookingRequest) error {
	switch {
	case req.NumberOfVisitors < 1:
		return domain.Invalid("number of visitors must be at least 1")
	case !req.VisitorClass.Valid():
		return domain.Invalid("visitor type must be local or foreign")
	case strings.TrimSpace(req.Visitor.Name) == "":
		return domain.Invalid("visitor name is required")
	case strings.TrimSpace(req.Visitor.Email) == "":
		return domain.Invalid("visitor email is required")
	case strings.TrimSpace(req.Visitor.Phone) == "":
		return domain.Invalid("visitor phone is required")
	case req.VisitDate.IsZero():
		return domain.Invalid("visit date is required")
	}

	if _, err := time.Parse(domain.VisitTimeLayout, req.VisitTime); err != nil {
		return domain.Invalid("visit time must be formatted as HH:MM:SS")
	}

	return nil
}
