package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ItemStatus string

const (
	ItemAvailable ItemStatus = "available"
	ItemBidding   ItemStatus = "bidding"
	ItemSold      ItemStatus = "sold"
	ItemReserved  ItemStatus = "reserved"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemAvailable, ItemBidding, ItemSold, ItemReserved:
		return true
	}
	return false
}

type ProductType string

const (
	ProductNFT      ProductType = "nft"
	ProductPhysical ProductType = "physical"
	ProductBoth     ProductType = "both"
)

func (t ProductType) Valid() bool {
	switch t {
	case ProductNFT, ProductPhysical, ProductBoth:
		return true
	}
	return false
}

// ItemsPageSize is the number of items on one catalog listing page.
const ItemsPageSize = 12

// ItemFilter narrows a catalog listing. Empty fields match every item.
// Search matches name, description or artist name, ignoring case.
type ItemFilter struct {
	ProductType   ProductType
	Status        ItemStatus
	ExcludeStatus ItemStatus
	Search        string
	Page          int
}

type ItemPage struct {
	Items      []CatalogItem `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalItems int64         `json:"total_items"`
	TotalPages int           `json:"total_pages"`
}

// CatalogItem is a product offered on the marketplace. CurrentBid is only
// ever changed by an accepted bid.
type CatalogItem struct {
	ID            uint                `json:"id"`
	Name          string              `json:"name"`
	Slug          string              `json:"slug"`
	Description   string              `json:"description"`
	ProductType   ProductType         `json:"product_type"`
	ArtistName    string              `json:"artist_name"`
	BasePrice     decimal.Decimal     `json:"base_price"`
	StartingBid   decimal.NullDecimal `json:"starting_bid"`
	CurrentBid    decimal.NullDecimal `json:"current_bid"`
	Status        ItemStatus          `json:"status"`
	StockQuantity int                 `json:"stock_quantity"`
	RecentBids    []Bid               `json:"recent_bids,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ApplyWinningBid returns a copy of the item carrying amount as its current
// bid. An available item moves to bidding; any other status is kept.
func (i CatalogItem) ApplyWinningBid(amount decimal.Decimal) CatalogItem {
	i.CurrentBid = decimal.NewNullDecimal(amount)
	if i.Status == ItemAvailable {
		i.Status = ItemBidding
	}
	i.RecentBids = nil
	return i
}

type BidderContact struct {
	Name  string `json:"name"`
	Email string `json:"-"`
	Phone string `json:"-"`
}

type Bid struct {
	ID        uint            `json:"id"`
	ItemID    uint            `json:"item_id"`
	Bidder    BidderContact   `json:"bidder"`
	Amount    decimal.Decimal `json:"amount"`
	IsWinning bool            `json:"is_winning"`
	CreatedAt time.Time       `json:"created_at"`
}

// BidDecision inspects the locked item and returns the bid to record as the
// new winner, or an error to abort the whole settlement.
type BidDecision func(item CatalogItem) (Bid, error)
