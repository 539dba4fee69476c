package repository

import (
	"context"
	"fmt"

	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
	"github.com/mkwawa-heritage/marketplace-api/internal/repository/dao"
)

var (
	ErrSiteNotFound    = dao.ErrSiteNotFound
	ErrBookingNotFound = dao.ErrBookingNotFound
)

type TourismDAO interface {
	InsertSite(ctx context.Context, site dao.TourismSite) (dao.TourismSite, error)
	FindSite(ctx context.Context, id uint) (dao.TourismSite, error)
	FindSiteBySlug(ctx context.Context, slug string) (dao.TourismSite, error)
	FindActiveSites(ctx context.Context, siteType string) ([]dao.TourismSite, error)
	InsertBooking(ctx context.Context, booking dao.Booking, issue domain.ReferenceIssuer) (dao.Booking, error)
	FindBookingByReference(ctx context.Context, reference string) (dao.Booking, error)
	UpdateBooking(ctx context.Context, reference string, mutate func(dao.Booking) (dao.Booking, error)) (dao.Booking, error)
}

type TourismRepository struct {
	dao TourismDAO
}

func NewTourismRepository(dao TourismDAO) *TourismRepository {
	return &TourismRepository{
		dao: dao,
	}
}

func (r *TourismRepository) CreateSite(ctx context.Context, site domain.TourismSite) (domain.TourismSite, error) {
	created, err := r.dao.InsertSite(ctx, dao.TourismSite{
		Name:            site.Name,
		Slug:            site.Slug,
		Description:     site.Description,
		SiteType:        site.SiteType,
		Location:        site.Location,
		EntryFeeLocal:   site.EntryFeeLocal,
		EntryFeeForeign: site.EntryFeeForeign,
		Capacity:        site.Capacity,
		IsActive:        site.IsActive,
	})
	if err != nil {
		return domain.TourismSite{}, fmt.Errorf("r.dao.InsertSite -> %w", err)
	}

	return siteDaoToDomain(created), nil
}

func (r *TourismRepository) FindSite(ctx context.Context, id uint) (domain.TourismSite, error) {
	found, err := r.dao.FindSite(ctx, id)
	if err != nil {
		return domain.TourismSite{}, fmt.Errorf("r.dao.FindSite -> %w", err)
	}

	return siteDaoToDomain(found), nil
}

func (r *TourismRepository) FindSiteBySlug(ctx context.Context, slug string) (domain.TourismSite, error) {
	found, err := r.dao.FindSiteBySlug(ctx, slug)
	if err != nil {
		return domain.TourismSite{}, fmt.Errorf("r.dao.FindSiteBySlug -> %w", err)
	}

	return siteDaoToDomain(found), nil
}

func (r *TourismRepository) FindActiveSites(ctx context.Context, siteType string) ([]domain.TourismSite, error) {
	found, err := r.dao.FindActiveSites(ctx, siteType)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindActiveSites -> %w", err)
	}

	sites := make([]domain.TourismSite, 0, len(found))
	for _, s := range found {
		sites = append(sites, siteDaoToDomain(s))
	}

	return sites, nil
}

func (r *TourismRepository) CreateBooking(ctx context.Context, booking domain.Booking, issue domain.ReferenceIssuer) (domain.Booking, error) {
	created, err := r.dao.InsertBooking(ctx, bookingDomainToDao(booking), issue)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("r.dao.InsertBooking -> %w", err)
	}

	return bookingDaoToDomain(created), nil
}

func (r *TourismRepository) FindBookingByReference(ctx context.Context, reference string) (domain.Booking, error) {
	found, err := r.dao.FindBookingByReference(ctx, reference)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("r.dao.FindBookingByReference -> %w", err)
	}

	return bookingDaoToDomain(found), nil
}

func (r *TourismRepository) UpdateBooking(ctx context.Context, reference string, mutate func(domain.Booking) (domain.Booking, error)) (domain.Booking, error) {
	updated, err := r.dao.UpdateBooking(ctx, reference, func(b dao.Booking) (dao.Booking, error) {
		next, err := mutate(bookingDaoToDomain(b))
		if err != nil {
			return dao.Booking{}, err
		}
		b.Status = string(next.Status)
		return b, nil
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("r.dao.UpdateBooking -> %w", err)
	}

	return bookingDaoToDomain(updated), nil
}

func siteDaoToDomain(s dao.TourismSite) domain.TourismSite {
	return domain.TourismSite{
		ID:              s.ID,
		Name:            s.Name,
		Slug:            s.Slug,
		Description:     s.Description,
		SiteType:        s.SiteType,
		Location:        s.Location,
		EntryFeeLocal:   s.EntryFeeLocal,
		EntryFeeForeign: s.EntryFeeForeign,
		Capacity:        s.Capacity,
		IsActive:        s.IsActive,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func bookingDomainToDao(b domain.Booking) dao.Booking {
	return dao.Booking{
		ID:                  b.ID,
		TourismSiteID:       b.SiteID,
		VisitorName:         b.Visitor.Name,
		VisitorEmail:        b.Visitor.Email,
		VisitorPhone:        b.Visitor.Phone,
		VisitorType:         string(b.VisitorClass),
		NumberOfVisitors:    b.NumberOfVisitors,
		VisitDate:           b.VisitDate,
		VisitTime:           b.VisitTime,
		SpecialRequirements: b.SpecialRequirements,
		TotalAmount:         b.TotalAmount,
		Status:              string(b.Status),
		BookingReference:    b.Reference,
	}
}

func bookingDaoToDomain(b dao.Booking) domain.Booking {
	return domain.Booking{
		ID:     b.ID,
		SiteID: b.TourismSiteID,
		Visitor: domain.VisitorContact{
			Name:  b.VisitorName,
			Email: b.VisitorEmail,
			Phone: b.VisitorPhone,
		},
		VisitorClass:        domain.VisitorClass(b.VisitorType),
		NumberOfVisitors:    b.NumberOfVisitors,
		VisitDate:           b.VisitDate,
		VisitTime:           b.VisitTime,
		SpecialRequirements: b.SpecialRequirements,
		TotalAmount:         b.TotalAmount,
		Status:              domain.BookingStatus(b.Status),
		Reference:           b.BookingReference,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
}
