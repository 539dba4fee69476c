package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrBidTooLow          = errors.New("bid too low")
	ErrReferenceExhausted = errors.New("booking reference space exhausted")

	ErrItemNotFound    = fmt.Errorf("catalog item %w", ErrNotFound)
	ErrSiteNotFound    = fmt.Errorf("tourism site %w", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("booking %w", ErrNotFound)
	ErrStaffNotFound   = fmt.Errorf("staff %w", ErrNotFound)

	ErrStaffEmailExists = errors.New("staff already exists")
	ErrSlugTaken        = fmt.Errorf("%w: slug is already in use", ErrValidation)
)

// Invalid builds an ErrValidation carrying a caller-facing message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// BidTooLowError rejects a bid that does not exceed the item's floor.
type BidTooLowError struct {
	Floor decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid must be higher than %s", e.Floor.StringFixed(2))
}

func (e *BidTooLowError) Is(target error) bool {
	return target == ErrBidTooLow
}
