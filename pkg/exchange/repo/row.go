package repo

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-engine/pkg/exchange/model"
)

// Row types carry the gorm mapping so the engine's model stays free of
// persistence tags.

type orderRow struct {
	ID             int64           `gorm:"primaryKey"`
	Ticker         string          `gorm:"index"`
	Trader         string          `gorm:"index"`
	Side           string
	Price          decimal.Decimal `gorm:"type:numeric"`
	Quantity       int64
	CumQuantity    int64
	LeavesQuantity int64
	Status         string
	TransactTime   time.Time
}

func (orderRow) TableName() string { return "orders" }

func newOrderRow(o *model.Order) *orderRow {
	return &orderRow{
		ID:             o.ID,
		Ticker:         o.Ticker,
		Trader:         o.Trader,
		Side:           string(o.Side),
		Price:          o.Price,
		Quantity:       o.Quantity,
		CumQuantity:    o.CumQuantity,
		LeavesQuantity: o.LeavesQuantity,
		Status:         string(o.Status),
		TransactTime:   o.TransactTime,
	}
}

type executionRow struct {
	ExecID      string          `gorm:"primaryKey"`
	Seq         int64           `gorm:"index"`
	Ticker      string          `gorm:"index"`
	Buyer       string
	Seller      string
	BuyOrderID  int64
	SellOrderID int64
	Price       decimal.Decimal `gorm:"type:numeric"`
	Quantity    int64
	Timestamp   time.Time
}

func (executionRow) TableName() string { return "executions" }

func newExecutionRow(e *model.Execution) *executionRow {
	return &executionRow{
		ExecID:      e.ExecID,
		Seq:         e.Seq,
		Ticker:      e.Ticker,
		Buyer:       e.Buyer,
		Seller:      e.Seller,
		BuyOrderID:  e.BuyOrderID,
		SellOrderID: e.SellOrderID,
		Price:       e.Price,
		Quantity:    e.Quantity,
		Timestamp:   e.Timestamp,
	}
}

type traderRow struct {
	Name string          `gorm:"primaryKey"`
	Cash decimal.Decimal `gorm:"type:numeric"`
}

func (traderRow) TableName() string { return "traders" }

type holdingRow struct {
	Trader   string `gorm:"primaryKey"`
	Ticker   string `gorm:"primaryKey"`
	Quantity int64
}

func (holdingRow) TableName() string { return "holdings" }
