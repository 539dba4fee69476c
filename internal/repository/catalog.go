package repository

import (
	"context"
	"fmt"

	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
	"github.com/mkwawa-heritage/marketplace-api/internal/repository/dao"
)

var (
	ErrItemNotFound = dao.ErrProductNotFound
	ErrSlugTaken    = dao.ErrSlugTaken
)

type CatalogDAO interface {
	InsertProduct(ctx context.Context, product dao.Product) (dao.Product, error)
	FindProduct(ctx context.Context, id uint) (dao.Product, error)
	FindProductBySlug(ctx context.Context, slug string) (dao.Product, error)
	FindProducts(ctx context.Context, filter dao.ProductFilter, limit, offset int) ([]dao.Product, int64, error)
	FindBids(ctx context.Context, productID uint, limit int) ([]dao.Bid, error)
	PlaceBid(ctx context.Context, productID uint, settle dao.Settlement) (dao.Bid, error)
}

type CatalogRepository struct {
	dao CatalogDAO
}

func NewCatalogRepository(dao CatalogDAO) *CatalogRepository {
	return &CatalogRepository{
		dao: dao,
	}
}

func (r *CatalogRepository) CreateItem(ctx context.Context, item domain.CatalogItem) (domain.CatalogItem, error) {
	created, err := r.dao.InsertProduct(ctx, productDomainToDao(item))
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("r.dao.InsertProduct -> %w", err)
	}

	return productDaoToDomain(created), nil
}

func (r *CatalogRepository) FindItem(ctx context.Context, id uint) (domain.CatalogItem, error) {
	found, err := r.dao.FindProduct(ctx, id)
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("r.dao.FindProduct -> %w", err)
	}

	return productDaoToDomain(found), nil
}

func (r *CatalogRepository) FindItemBySlug(ctx context.Context, slug string) (domain.CatalogItem, error) {
	found, err := r.dao.FindProductBySlug(ctx, slug)
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("r.dao.FindProductBySlug -> %w", err)
	}

	return productDaoToDomain(found), nil
}

func (r *CatalogRepository) FindItems(ctx context.Context, filter domain.ItemFilter, limit, offset int) ([]domain.CatalogItem, int64, error) {
	found, total, err := r.dao.FindProducts(ctx, dao.ProductFilter{
		ProductType:   string(filter.ProductType),
		Status:        string(filter.Status),
		ExcludeStatus: string(filter.ExcludeStatus),
		Search:        filter.Search,
	}, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.FindProducts -> %w", err)
	}

	items := make([]domain.CatalogItem, 0, len(found))
	for _, p := range found {
		items = append(items, productDaoToDomain(p))
	}

	return items, total, nil
}

func (r *CatalogRepository) ListBids(ctx context.Context, itemID uint, limit int) ([]domain.Bid, error) {
	found, err := r.dao.FindBids(ctx, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindBids -> %w", err)
	}

	bids := make([]domain.Bid, 0, len(found))
	for _, b := range found {
		bids = append(bids, bidDaoToDomain(b))
	}

	return bids, nil
}

// PlaceBid runs decide against the locked item and records its bid as the
// new winner in the same transaction.
func (r *CatalogRepository) PlaceBid(ctx context.Context, itemID uint, decide domain.BidDecision) (domain.Bid, error) {
	placed, err := r.dao.PlaceBid(ctx, itemID, func(p dao.Product) (dao.Product, dao.Bid, error) {
		item := productDaoToDomain(p)

		bid, err := decide(item)
		if err != nil {
			return dao.Product{}, dao.Bid{}, err
		}

		updated := item.ApplyWinningBid(bid.Amount)
		p.CurrentBid = updated.CurrentBid
		p.Status = string(updated.Status)

		return p, bidDomainToDao(bid), nil
	})
	if err != nil {
		return domain.Bid{}, fmt.Errorf("r.dao.PlaceBid -> %w", err)
	}

	return bidDaoToDomain(placed), nil
}

func productDomainToDao(i domain.CatalogItem) dao.Product {
	return dao.Product{
		ID:            i.ID,
		Name:          i.Name,
		Slug:          i.Slug,
		Description:   i.Description,
		ProductType:   string(i.ProductType),
		ArtistName:    i.ArtistName,
		BasePrice:     i.BasePrice,
		StartingBid:   i.StartingBid,
		CurrentBid:    i.CurrentBid,
		Status:        string(i.Status),
		StockQuantity: i.StockQuantity,
	}
}

func productDaoToDomain(p dao.Product) domain.CatalogItem {
	return domain.CatalogItem{
		ID:            p.ID,
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		ProductType:   domain.ProductType(p.ProductType),
		ArtistName:    p.ArtistName,
		BasePrice:     p.BasePrice,
		StartingBid:   p.StartingBid,
		CurrentBid:    p.CurrentBid,
		Status:        domain.ItemStatus(p.Status),
		StockQuantity: p.StockQuantity,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func bidDomainToDao(b domain.Bid) dao.Bid {
	return dao.Bid{
		ProductID:   b.ItemID,
		BidderName:  b.Bidder.Name,
		BidderEmail: b.Bidder.Email,
		BidderPhone: b.Bidder.Phone,
		Amount:      b.Amount,
		IsWinning:   b.IsWinning,
	}
}

func bidDaoToDomain(b dao.Bid) domain.Bid {
	return domain.Bid{
		ID:     b.ID,
		ItemID: b.ProductID,
		Bidder: domain.BidderContact{
			Name:  b.BidderName,
			Email: b.BidderEmail,
			Phone: b.BidderPhone,
		},
		Amount:    b.Amount,
		IsWinning: b.IsWinning,
		CreatedAt: b.CreatedAt,
	}
}
