package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
	"github.com/mkwawa-heritage/marketplace-api/internal/metrics"
	"github.com/mkwawa-heritage/marketplace-api/internal/pricing"
	"github.com/mkwawa-heritage/marketplace-api/internal/repository"
)

var (
	ErrItemNotFound = repository.ErrItemNotFound
	ErrBidTooLow    = domain.ErrBidTooLow
	ErrValidation   = domain.ErrValidation
	ErrSlugTaken    = repository.ErrSlugTaken
)

const recentBidsLimit = 5

// maxAmount is the first value a numeric(12,2) column cannot hold.
var maxAmount = decimal.New(1, 10)

type CatalogRepository interface {
	CreateItem(ctx context.Context, item domain.CatalogItem) (domain.CatalogItem, error)
	FindItem(ctx context.Context, id uint) (domain.CatalogItem, error)
	FindItemBySlug(ctx context.Context, slug string) (domain.CatalogItem, error)
	FindItems(ctx context.Context, filter domain.ItemFilter, limit, offset int) ([]domain.CatalogItem, int64, error)
	ListBids(ctx context.Context, itemID uint, limit int) ([]domain.Bid, error)
	PlaceBid(ctx context.Context, itemID uint, decide domain.BidDecision) (domain.Bid, error)
}

type BidLedger struct {
	repo CatalogRepository
}

func NewBidLedger(repo CatalogRepository) *BidLedger {
	return &BidLedger{
		repo: repo,
	}
}

// SubmitBid accepts amount as the item's new winning bid when it exceeds the
// current floor. The floor check and the write happen as one unit per item.
func (l *BidLedger) SubmitBid(ctx context.Context, itemID uint, bidder domain.BidderContact, amount decimal.Decimal) (domain.Bid, error) {
	started := time.Now()

	if err := validateBid(bidder, amount); err != nil {
		metrics.ObserveBid(metrics.OutcomeInvalid, started)
		return domain.Bid{}, err
	}

	bid, err := l.repo.PlaceBid(ctx, itemID, func(item domain.CatalogItem) (domain.Bid, error) {
		floor, err := pricing.MinimumBidFloor(item)
		if err != nil {
			return domain.Bid{}, err
		}
		if amount.LessThanOrEqual(floor) {
			return domain.Bid{}, &domain.BidTooLowError{Floor: floor}
		}

		return domain.Bid{
			ItemID: item.ID,
			Bidder: bidder,
			Amount: amount,
		}, nil
	})
	if err != nil {
		metrics.ObserveBid(outcomeOf(err), started)
		return domain.Bid{}, fmt.Errorf("l.repo.PlaceBid -> %w", err)
	}

	metrics.ObserveBid(metrics.OutcomeAccepted, started)
	zap.L().Info("bid accepted",
		zap.Uint("item_id", itemID),
		zap.Uint("bid_id", bid.ID),
		zap.String("amount", bid.Amount.StringFixed(2)),
	)

	return bid, nil
}

// GetItem returns the item with its most recent bids, highest first.
func (l *BidLedger) GetItem(ctx context.Context, id uint) (domain.CatalogItem, error) {
	item, err := l.repo.FindItem(ctx, id)
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("l.repo.FindItem -> %w", err)
	}

	return l.withRecentBids(ctx, item)
}

func (l *BidLedger) GetItemBySlug(ctx context.Context, slug string) (domain.CatalogItem, error) {
	item, err := l.repo.FindItemBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("l.repo.FindItemBySlug -> %w", err)
	}

	return l.withRecentBids(ctx, item)
}

func (l *BidLedger) withRecentBids(ctx context.Context, item domain.CatalogItem) (domain.CatalogItem, error) {
	bids, err := l.repo.ListBids(ctx, item.ID, recentBidsLimit)
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("l.repo.ListBids -> %w", err)
	}
	item.RecentBids = bids

	return item, nil
}

// ListItems returns one page of the catalog, newest first. Sold items are
// left out unless filter asks for a status. A page past the end is clamped
// to the last page.
func (l *BidLedger) ListItems(ctx context.Context, filter domain.ItemFilter) (domain.ItemPage, error) {
	if filter.ProductType != "" && !filter.ProductType.Valid() {
		return domain.ItemPage{}, domain.Invalid("unknown product type %q", filter.ProductType)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return domain.ItemPage{}, domain.Invalid("unknown item status %q", filter.Status)
	}
	filter.ExcludeStatus = ""
	if filter.Status == "" {
		filter.ExcludeStatus = domain.ItemSold
	}
	filter.Search = strings.TrimSpace(filter.Search)

	const size = domain.ItemsPageSize
	page := max(filter.Page, 1)

	items, total, err := l.repo.FindItems(ctx, filter, size, (page-1)*size)
	if err != nil {
		return domain.ItemPage{}, fmt.Errorf("l.repo.FindItems -> %w", err)
	}

	pages := max(int((total+size-1)/size), 1)
	if page > pages {
		page = pages
		items, total, err = l.repo.FindItems(ctx, filter, size, (page-1)*size)
		if err != nil {
			return domain.ItemPage{}, fmt.Errorf("l.repo.FindItems -> %w", err)
		}
	}

	return domain.ItemPage{
		Items:      items,
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: pages,
	}, nil
}

func (l *BidLedger) ListBids(ctx context.Context, itemID uint) ([]domain.Bid, error) {
	if _, err := l.repo.FindItem(ctx, itemID); err != nil {
		return nil, fmt.Errorf("l.repo.FindItem -> %w", err)
	}

	bids, err := l.repo.ListBids(ctx, itemID, 0)
	if err != nil {
		return nil, fmt.Errorf("l.repo.ListBids -> %w", err)
	}

	return bids, nil
}

func (l *BidLedger) CreateItem(ctx context.Context, item domain.CatalogItem) (domain.CatalogItem, error) {
	if item.Status == "" {
		item.Status = domain.ItemAvailable
	}
	if item.ProductType == "" {
		item.ProductType = domain.ProductPhysical
	}
	if err := validateItem(item); err != nil {
		return domain.CatalogItem{}, err
	}

	itemSlug, err := slugFor(item.Slug, item.Name)
	if err != nil {
		return domain.CatalogItem{}, err
	}
	item.Slug = itemSlug
	item.CurrentBid = decimal.NullDecimal{}

	created, err := l.repo.CreateItem(ctx, item)
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("l.repo.CreateItem -> %w", err)
	}

	return created, nil
}

func validateBid(bidder domain.BidderContact, amount decimal.Decimal) error {
	switch {
	case strings.TrimSpace(bidder.Name) == "":
		return domain.Invalid("bidder name is required")
	case strings.TrimSpace(bidder.Email) == "":
		return domain.Invalid("bidder email is required")
	case strings.TrimSpace(bidder.Phone) == "":
		return domain.Invalid("bidder phone is required")
	}

	return validateAmount("bid amount", amount, false)
}

func validateItem(item domain.CatalogItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return domain.Invalid("item name is required")
	}
	if !item.Status.Valid() {
		return domain.Invalid("unknown item status %q", item.Status)
	}
	if !item.ProductType.Valid() {
		return domain.Invalid("unknown product type %q", item.ProductType)
	}
	if item.StockQuantity < 0 {
		return domain.Invalid("stock quantity must not be negative")
	}
	if err := validateAmount("base price", item.BasePrice, true); err != nil {
		return err
	}
	if item.StartingBid.Valid {
		return validateAmount("starting bid", item.StartingBid.Decimal, true)
	}

	return nil
}

// slugFor keeps an explicit slug when it is well formed and otherwise
// derives one from name.
func slugFor(given, name string) (string, error) {
	if given = strings.TrimSpace(given); given != "" {
		if !slug.IsSlug(given) {
			return "", domain.Invalid("slug %q must be lowercase ASCII words joined by hyphens", given)
		}
		return given, nil
	}

	derived := slug.Make(name)
	if derived == "" {
		return "", domain.Invalid("cannot derive a slug from name %q", name)
	}

	return derived, nil
}

func validateAmount(field string, v decimal.Decimal, allowZero bool) error {
	if v.IsNegative() {
		return domain.Invalid("%s must not be negative", field)
	}
	if !allowZero && v.IsZero() {
		return domain.Invalid("%s must be positive", field)
	}
	if !v.Equal(v.Round(2)) {
		return domain.Invalid("%s must have at most 2 decimal places", field)
	}
	if v.GreaterThanOrEqual(maxAmount) {
		return domain.Invalid("%s is too large", field)
	}

	return nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrBidTooLow):
		return metrics.OutcomeTooLow
	case errors.Is(err, domain.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, domain.ErrValidation):
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeError
}
