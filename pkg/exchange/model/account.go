package model

import "github.com/shopspring/decimal"

// Trader identity plus cash balance. Created externally, mutated only by the
// ledger.
type Trader struct {
	Name string
	Cash decimal.Decimal
}

// Security is identified by its ticker; the engine owns no other state for it.
type Security struct {
	Ticker string
}

// Holding is a trader's owned quantity of a security. A holding with
// quantity 0 does not exist; the ledger deletes it instead of storing zero.
type Holding struct {
	Trader   string
	Ticker   string
	Quantity int64
}
