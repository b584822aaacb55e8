package book

import "errors"

var (
	errOrderNotFound   = errors.New("order not found in book")
	errNotRestable     = errors.New("order is not open or has no open quantity")
	errInvalidQuantity = errors.New("invalid new quantity")
)
