package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlaceOrder is the validated command the engine consumes. Trader and Ticker
// are expected to reference records registered with the exchange; the engine
// fails closed when they do not.
type PlaceOrder struct {
	Trader       string
	Ticker       string
	Side         OrderSide
	Price        decimal.Decimal
	Quantity     int64
	TransactTime time.Time
}
