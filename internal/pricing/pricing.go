// Package pricing derives fees for bookings and minimum amounts for bids.
// Every function is pure.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
)

// FeePerVisitor returns the entry fee a single visitor of class pays at site.
func FeePerVisitor(site domain.TourismSite, class domain.VisitorClass) (decimal.Decimal, error) {
	var fee decimal.Decimal
	switch class {
	case domain.VisitorLocal:
		fee = site.EntryFeeLocal
	case domain.VisitorForeign:
		fee = site.EntryFeeForeign
	default:
		return decimal.Zero, domain.Invalid("unknown visitor type %q", class)
	}

	if fee.IsNegative() {
		return decimal.Zero, domain.Invalid("site %d has a negative %s entry fee", site.ID, class)
	}

	return fee, nil
}

// TotalFee is FeePerVisitor multiplied by the party size.
func TotalFee(site domain.TourismSite, class domain.VisitorClass, visitors int) (decimal.Decimal, error) {
	if visitors < 1 {
		return decimal.Zero, domain.Invalid("number of visitors must be at least 1")
	}

	fee, err := FeePerVisitor(site, class)
	if err != nil {
		return decimal.Zero, err
	}

	return fee.Mul(decimal.NewFromInt(int64(visitors))), nil
}

// MinimumBidFloor returns the amount a new bid must exceed. The current bid
// wins over the starting bid, which wins over the base price.
func MinimumBidFloor(item domain.CatalogItem) (decimal.Decimal, error) {
	floor := item.BasePrice
	switch {
	case item.CurrentBid.Valid:
		floor = item.CurrentBid.Decimal
	case item.StartingBid.Valid:
		floor = item.StartingBid.Decimal
	}

	if floor.IsNegative() {
		return decimal.Zero, domain.Invalid("item %d has a negative price", item.ID)
	}

	return floor, nil
}
