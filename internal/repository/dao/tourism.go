package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
)

var (
	ErrSiteNotFound    = domain.ErrSiteNotFound
	ErrBookingNotFound = domain.ErrBookingNotFound
)

const (
	referenceConstraint = "uni_bookings_booking_reference"
	siteSlugConstraint  = "uni_tourism_sites_slug"
)

type TourismSite struct {
	ID              uint            `gorm:"primaryKey"`
	Name            string          `gorm:"not null"`
	Slug            string          `gorm:"unique;not null"`
	Description     string          `gorm:"type:text"`
	SiteType        string          `gorm:"not null;index"`
	Location        string          `gorm:"not null"`
	EntryFeeLocal   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	EntryFeeForeign decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Capacity        int             `gorm:"not null"`
	IsActive        bool            `gorm:"not null;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Booking struct {
	ID                  uint            `gorm:"primaryKey"`
	TourismSiteID       uint            `gorm:"not null;index"`
	VisitorName         string          `gorm:"not null"`
	VisitorEmail        string          `gorm:"not null"`
	VisitorPhone        string          `gorm:"not null"`
	VisitorType         string          `gorm:"not null"`
	NumberOfVisitors    int             `gorm:"not null;check:number_of_visitors >= 1"`
	VisitDate           time.Time       `gorm:"type:date;not null"`
	VisitTime           string          `gorm:"type:varchar(8);not null"`
	SpecialRequirements string          `gorm:"type:text"`
	TotalAmount         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status              string          `gorm:"not null;index"`
	BookingReference    string          `gorm:"unique;not null;size:16"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type TourismDAO struct {
	db *gorm.DB
}

func NewTourismDAO(db *gorm.DB) *TourismDAO {
	return &TourismDAO{
		db: db,
	}
}

func (d *TourismDAO) InsertSite(ctx context.Context, site TourismSite) (TourismSite, error) {
	if err := d.db.WithContext(ctx).Create(&site).Error; err != nil {
		if isUniqueViolation(err, siteSlugConstraint) {
			return TourismSite{}, ErrSlugTaken
		}

		return TourismSite{}, err
	}

	return site, nil
}

func (d *TourismDAO) FindSite(ctx context.Context, id uint) (TourismSite, error) {
	var site TourismSite

	result := d.db.WithContext(ctx).First(&site, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return TourismSite{}, ErrSiteNotFound
		}

		return TourismSite{}, result.Error
	}

	return site, nil
}

func (d *TourismDAO) FindSiteBySlug(ctx context.Context, slug string) (TourismSite, error) {
	var site TourismSite

	result := d.db.WithContext(ctx).First(&site, "slug = ?", slug)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return TourismSite{}, ErrSiteNotFound
		}

		return TourismSite{}, result.Error
	}

	return site, nil
}

// FindActiveSites lists active sites in creation order. An empty siteType
// matches every type.
func (d *TourismDAO) FindActiveSites(ctx context.Context, siteType string) ([]TourismSite, error) {
	var sites []TourismSite

	q := d.db.WithContext(ctx).Where("is_active")
	if siteType != "" {
		q = q.Where("site_type = ?", siteType)
	}

	if err := q.Order("id").Find(&sites).Error; err != nil {
		return nil, err
	}

	return sites, nil
}

// InsertBooking stores booking under a reference obtained from issue. Each
// claimed code is inserted behind a savepoint so a unique violation only
// rewinds that attempt, and the booking commits together with its reference.
func (d *TourismDAO) InsertBooking(ctx context.Context, booking Booking, issue domain.ReferenceIssuer) (Booking, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := issue(ctx, func(ctx context.Context, code string) (bool, error) {
			return claimReference(tx.WithContext(ctx), &booking, code)
		})
		return err
	})
	if err != nil {
		return Booking{}, err
	}

	return booking, nil
}

func claimReference(tx *gorm.DB, booking *Booking, code string) (bool, error) {
	var taken int64
	if err := tx.Model(&Booking{}).Where("booking_reference = ?", code).Count(&taken).Error; err != nil {
		return false, err
	}
	if taken > 0 {
		return false, nil
	}

	const savepoint = "booking_reference"
	if err := tx.SavePoint(savepoint).Error; err != nil {
		return false, err
	}

	attempt := *booking
	attempt.ID = 0
	attempt.BookingReference = code
	if err := tx.Create(&attempt).Error; err != nil {
		if isUniqueViolation(err, referenceConstraint) {
			if rbErr := tx.RollbackTo(savepoint).Error; rbErr != nil {
				return false, rbErr
			}
			return false, nil
		}
		return false, err
	}

	*booking = attempt
	return true, nil
}

func (d *TourismDAO) FindBookingByReference(ctx context.Context, reference string) (Booking, error) {
	var booking Booking

	result := d.db.WithContext(ctx).First(&booking, "booking_reference = ?", reference)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Booking{}, ErrBookingNotFound
		}

		return Booking{}, result.Error
	}

	return booking, nil
}

// UpdateBooking locks the booking row, lets mutate compute the new state and
// persists its status.
func (d *TourismDAO) UpdateBooking(ctx context.Context, reference string, mutate func(Booking) (Booking, error)) (Booking, error) {
	var saved Booking

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking Booking
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&booking, "booking_reference = ?", reference).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		updated, err := mutate(booking)
		if err != nil {
			return err
		}

		booking.Status = updated.Status
		if err = tx.Model(&booking).Update("status", booking.Status).Error; err != nil {
			return err
		}

		saved = booking
		return nil
	})
	if err != nil {
		return Booking{}, err
	}

	return saved, nil
}
