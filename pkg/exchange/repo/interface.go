package repo

import (
	"context"

	"github.com/joripage/exchange-engine/pkg/exchange/model"
)

type IOrder interface {
	Upsert(ctx context.Context, order *model.Order) error
}

type IExecution interface {
	Create(ctx context.Context, exec *model.Execution) error
	BulkCreate(ctx context.Context, execs []*model.Execution) error
}

type ITrader interface {
	Upsert(ctx context.Context, trader *model.Trader) error
}

type IHolding interface {
	Upsert(ctx context.Context, holding *model.Holding) error
	Delete(ctx context.Context, trader, ticker string) error
}
