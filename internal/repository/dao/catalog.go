package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
)

var (
	ErrProductNotFound = domain.ErrItemNotFound
	ErrSlugTaken       = domain.ErrSlugTaken
)

const productSlugConstraint = "uni_products_slug"

type Product struct {
	ID            uint                `gorm:"primaryKey"`
	Name          string              `gorm:"not null"`
	Slug          string              `gorm:"unique;not null"`
	Description   string              `gorm:"type:text"`
	ProductType   string              `gorm:"not null;index"`
	ArtistName    string              `gorm:"not null"`
	BasePrice     decimal.Decimal     `gorm:"type:numeric(12,2);not null"`
	StartingBid   decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	CurrentBid    decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	Status        string              `gorm:"not null;index"`
	StockQuantity int                 `gorm:"not null;check:stock_quantity >= 0"`
	Bids          []Bid               `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Bid struct {
	ID          uint            `gorm:"primaryKey"`
	ProductID   uint            `gorm:"not null;index"`
	BidderName  string          `gorm:"not null"`
	BidderEmail string          `gorm:"not null"`
	BidderPhone string          `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	IsWinning   bool            `gorm:"not null"`
	CreatedAt   time.Time
}

// ProductFilter selects products for a listing. Empty strings match all.
type ProductFilter struct {
	ProductType   string
	Status        string
	ExcludeStatus string
	Search        string
}

func (f ProductFilter) scope(db *gorm.DB) *gorm.DB {
	if f.ProductType != "" {
		db = db.Where("product_type = ?", f.ProductType)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.ExcludeStatus != "" {
		db = db.Where("status <> ?", f.ExcludeStatus)
	}
	if f.Search != "" {
		pattern := "%" + likeEscaper.Replace(f.Search) + "%"
		db = db.Where("(name ILIKE ? OR description ILIKE ? OR artist_name ILIKE ?)", pattern, pattern, pattern)
	}

	return db
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Settlement receives the locked product and returns its new state together
// with the bid that becomes the winner.
type Settlement func(product Product) (Product, Bid, error)

type CatalogDAO struct {
	db *gorm.DB
}

func NewCatalogDAO(db *gorm.DB) *CatalogDAO {
	return &CatalogDAO{
		db: db,
	}
}

func (d *CatalogDAO) InsertProduct(ctx context.Context, product Product) (Product, error) {
	if err := d.db.WithContext(ctx).Omit(clause.Associations).Create(&product).Error; err != nil {
		if isUniqueViolation(err, productSlugConstraint) {
			return Product{}, ErrSlugTaken
		}

		return Product{}, err
	}

	return product, nil
}

func (d *CatalogDAO) FindProduct(ctx context.Context, id uint) (Product, error) {
	var product Product

	result := d.db.WithContext(ctx).First(&product, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Product{}, ErrProductNotFound
		}

		return Product{}, result.Error
	}

	return product, nil
}

func (d *CatalogDAO) FindProductBySlug(ctx context.Context, slug string) (Product, error) {
	var product Product

	result := d.db.WithContext(ctx).First(&product, "slug = ?", slug)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Product{}, ErrProductNotFound
		}

		return Product{}, result.Error
	}

	return product, nil
}

// FindProducts returns one page of matching products, newest first, and the
// number of products matching filter across all pages.
func (d *CatalogDAO) FindProducts(ctx context.Context, filter ProductFilter, limit, offset int) ([]Product, int64, error) {
	var total int64
	if err := d.db.WithContext(ctx).Model(&Product{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []Product
	err := d.db.WithContext(ctx).
		Scopes(filter.scope).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// FindBids returns the product's bids, highest amount first and newest first
// among equal amounts. A non-positive limit returns every bid.
func (d *CatalogDAO) FindBids(ctx context.Context, productID uint, limit int) ([]Bid, error) {
	var bids []Bid

	q := d.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("amount DESC").
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Find(&bids).Error; err != nil {
		return nil, err
	}

	return bids, nil
}

// PlaceBid settles one bid while holding the product row lock, so the floor
// read by settle cannot change before the new winner is written.
func (d *CatalogDAO) PlaceBid(ctx context.Context, productID uint, settle Settlement) (Bid, error) {
	var placed Bid

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, productID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		updated, bid, err := settle(product)
		if err != nil {
			return err
		}

		err = tx.Model(&Bid{}).
			Where("product_id = ? AND is_winning", product.ID).
			Update("is_winning", false).Error
		if err != nil {
			return err
		}

		bid.ProductID = product.ID
		bid.IsWinning = true
		if err = tx.Create(&bid).Error; err != nil {
			return err
		}

		err = tx.Model(&product).Updates(map[string]any{
			"current_bid": updated.CurrentBid,
			"status":      updated.Status,
		}).Error
		if err != nil {
			return err
		}

		placed = bid
		return nil
	})
	if err != nil {
		return Bid{}, err
	}

	return placed, nil
}
