package request

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/shopspring/decimal"

	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
)

var phoneExp = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)

type SubmitBidRequest struct {
	BidderName  string              `json:"bidder_name" example:"Asha Mwakalinga"`
	BidderEmail string              `json:"bidder_email" example:"asha@example.com"`
	BidderPhone string              `json:"bidder_phone" example:"+255700000001"`
	BidAmount   decimal.NullDecimal `json:"bid_amount" swaggertype:"string" example:"260000.00"`
}

func (req *SubmitBidRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.BidderName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.BidderEmail, validation.Required, is.Email),
		validation.Field(&req.BidderPhone, validation.Required, validation.Match(phoneExp)),
		validation.Field(&req.BidAmount, validation.Required),
	)
}

// Amount is only meaningful after Validate has succeeded.
func (req *SubmitBidRequest) Amount() decimal.Decimal {
	return req.BidAmount.Decimal
}

func (req *SubmitBidRequest) Bidder() domain.BidderContact {
	return domain.BidderContact{
		Name:  req.BidderName,
		Email: req.BidderEmail,
		Phone: req.BidderPhone,
	}
}

// ListItemsRequest holds the catalog listing query string.
type ListItemsRequest struct {
	Type   string `form:"type" enums:"nft,physical,both"`
	Status string `form:"status" enums:"available,bidding,sold,reserved"`
	Search string `form:"search"`
	Page   int    `form:"page" example:"1"`
}

func (req *ListItemsRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Type, validation.In(
			string(domain.ProductNFT), string(domain.ProductPhysical), string(domain.ProductBoth),
		)),
		validation.Field(&req.Status, validation.In(
			string(domain.ItemAvailable), string(domain.ItemBidding), string(domain.ItemSold), string(domain.ItemReserved),
		)),
		validation.Field(&req.Search, validation.Length(0, 100)),
	)
}

func (req *ListItemsRequest) ToDomain() domain.ItemFilter {
	return domain.ItemFilter{
		ProductType: domain.ProductType(req.Type),
		Status:      domain.ItemStatus(req.Status),
		Search:      req.Search,
		Page:        req.Page,
	}
}
