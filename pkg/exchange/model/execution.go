package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Execution is one match step between two opposed orders. Immutable once
// created; the permanent audit trail of trades.
type Execution struct {
	ExecID string
	Seq    int64

	Ticker      string
	Buyer       string
	Seller      string
	BuyOrderID  int64
	SellOrderID int64

	Price    decimal.Decimal
	Quantity int64

	Timestamp time.Time
}

// Notional is the cash that moved from buyer to seller for this execution.
func (e *Execution) Notional() decimal.Decimal {
	return e.Price.Mul(decimal.NewFromInt(e.Quantity))
}
