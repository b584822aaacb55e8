package repo

import (
	"gorm.io/gorm"
)

type IRepo interface {
	Order() IOrder
	Execution() IExecution
	Trader() ITrader
	Holding() IHolding
}

type Repo struct {
	exchangeDB *gorm.DB
}

func NewRepo(exchangeDB *gorm.DB) IRepo {
	return &Repo{
		exchangeDB: exchangeDB,
	}
}

func (r *Repo) Order() IOrder {
	return NewOrderSQLRepo(r.exchangeDB)
}

func (r *Repo) Execution() IExecution {
	return NewExecutionSQLRepo(r.exchangeDB)
}

func (r *Repo) Trader() ITrader {
	return NewTraderSQLRepo(r.exchangeDB)
}

func (r *Repo) Holding() IHolding {
	return NewHoldingSQLRepo(r.exchangeDB)
}
