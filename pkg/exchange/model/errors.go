package model

import "errors"

// Rejection reasons returned synchronously from PlaceOrder. All are terminal
// for the call; the engine applies no state change when rejecting.
var (
	ErrInvalidPriceOrQuantity = errors.New("invalid price or quantity")
	ErrInsufficientCapital    = errors.New("insufficient capital")
	ErrNoSuchHolding          = errors.New("security not held")
	ErrInsufficientQuantity   = errors.New("insufficient quantity of shares")
	ErrSecurityNotFound       = errors.New("security not found")
	ErrTraderNotFound         = errors.New("trader not found")
)
