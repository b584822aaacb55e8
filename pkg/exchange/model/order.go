package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

type OrderStatus string

const (
	OrderStatusOpen   OrderStatus = "OPEN"
	OrderStatusFilled OrderStatus = "FILLED"
)

// Order is a single-security limit order. ID doubles as the time-priority
// key: it is assigned from a monotonically increasing sequence at acceptance.
type Order struct {
	ID int64

	Ticker string
	Trader string
	Side   OrderSide
	Price  decimal.Decimal

	Quantity       int64
	CumQuantity    int64
	LeavesQuantity int64

	Status       OrderStatus
	TransactTime time.Time
}

func NewOrder(id int64, ticker, trader string, side OrderSide, price decimal.Decimal, quantity int64, ts time.Time) *Order {
	return &Order{
		ID:             id,
		Ticker:         ticker,
		Trader:         trader,
		Side:           side,
		Price:          price,
		Quantity:       quantity,
		LeavesQuantity: quantity,
		Status:         OrderStatusOpen,
		TransactTime:   ts,
	}
}

// Notional is the capital required to rest the open part of a buy order.
func (o *Order) Notional() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(o.LeavesQuantity))
}
