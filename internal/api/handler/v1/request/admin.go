package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
)

type CreateItemRequest struct {
	Name          string              `json:"name" example:"Hehe shield"`
	Slug          string              `json:"slug" example:"hehe-shield"`
	Description   string              `json:"description" example:"Cowhide war shield"`
	ProductType   string              `json:"product_type" enums:"nft,physical,both"`
	ArtistName    string              `json:"artist_name" example:"Iringa Carvers"`
	BasePrice     decimal.Decimal     `json:"base_price" swaggertype:"string" example:"250000.00"`
	StartingBid   decimal.NullDecimal `json:"starting_bid" swaggertype:"string" example:"200000.00"`
	Status        string              `json:"status" enums:"available,bidding,sold,reserved"`
	StockQuantity int                 `json:"stock_quantity" example:"1"`
}

func (req *CreateItemRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Slug, validation.Length(0, 200)),
		validation.Field(&req.ArtistName, validation.Length(0, 200)),
		validation.Field(&req.ProductType, validation.In(
			string(domain.ProductNFT), string(domain.ProductPhysical), string(domain.ProductBoth),
		)),
		validation.Field(&req.Status, validation.In(
			string(domain.ItemAvailable), string(domain.ItemBidding), string(domain.ItemSold), string(domain.ItemReserved),
		)),
		validation.Field(&req.StockQuantity, validation.Min(0)),
	)
}

func (req *CreateItemRequest) ToDomain() domain.CatalogItem {
	return domain.CatalogItem{
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		ProductType:   domain.ProductType(req.ProductType),
		ArtistName:    req.ArtistName,
		BasePrice:     req.BasePrice,
		StartingBid:   req.StartingBid,
		Status:        domain.ItemStatus(req.Status),
		StockQuantity: req.StockQuantity,
	}
}

type CreateSiteRequest struct {
	Name            string          `json:"name" example:"Kalenga Museum"`
	Slug            string          `json:"slug" example:"kalenga-museum"`
	Description     string          `json:"description" example:"Home of the skull of Chief Mkwawa"`
	SiteType        string          `json:"site_type" example:"museum"`
	Location        string          `json:"location" example:"Kalenga, Iringa"`
	EntryFeeLocal   decimal.Decimal `json:"entry_fee_local" swaggertype:"string" example:"5000.00"`
	EntryFeeForeign decimal.Decimal `json:"entry_fee_foreign" swaggertype:"string" example:"10000.00"`
	Capacity        int             `json:"capacity" example:"40"`
	IsActive        *bool           `json:"is_active"`
}

func (req *CreateSiteRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Slug, validation.Length(0, 200)),
		validation.Field(&req.SiteType, validation.Length(0, 50)),
		validation.Field(&req.Location, validation.Length(0, 200)),
		validation.Field(&req.Capacity, validation.Min(0)),
	)
}

// ToDomain converts the request; sites are active unless stated otherwise.
func (req *CreateSiteRequest) ToDomain() domain.TourismSite {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	return domain.TourismSite{
		Name:            req.Name,
		Slug:            req.Slug,
		Description:     req.Description,
		SiteType:        req.SiteType,
		Location:        req.Location,
		EntryFeeLocal:   req.EntryFeeLocal,
		EntryFeeForeign: req.EntryFeeForeign,
		Capacity:        req.Capacity,
		IsActive:        active,
	}
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" enums:"pending,confirmed,cancelled,completed" example:"confirmed"`
}

func (req *UpdateBookingStatusRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required, validation.In(
			string(domain.BookingPending), string(domain.BookingConfirmed), string(domain.BookingCancelled), string(domain.BookingCompleted),
		)),
	)
}
