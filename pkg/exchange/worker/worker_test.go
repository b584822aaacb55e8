package worker

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-engine/pkg/exchange/changelog"
	"github.com/joripage/exchange-engine/pkg/exchange/model"
	"github.com/joripage/exchange-engine/pkg/exchange/repo"
)

type fakeOrderRepo struct{ orders []*model.Order }

func (f *fakeOrderRepo) Upsert(ctx context.Context, order *model.Order) error {
	f.orders = append(f.orders, order)
	return nil
}

type fakeExecutionRepo struct{ executions []*model.Execution }

func (f *fakeExecutionRepo) Create(ctx context.Context, exec *model.Execution) error {
	f.executions = append(f.executions, exec)
	return nil
}

func (f *fakeExecutionRepo) BulkCreate(ctx context.Context, execs []*model.Execution) error {
	f.executions = append(f.executions, execs...)
	return nil
}

type fakeTraderRepo struct{ traders []*model.Trader }

func (f *fakeTraderRepo) Upsert(ctx context.Context, trader *model.Trader) error {
	f.traders = append(f.traders, trader)
	return nil
}

type fakeHoldingRepo struct {
	holdings []*model.Holding
	deleted  []string
}

func (f *fakeHoldingRepo) Upsert(ctx context.Context, holding *model.Holding) error {
	f.holdings = append(f.holdings, holding)
	return nil
}

func (f *fakeHoldingRepo) Delete(ctx context.Context, trader, ticker string) error {
	f.deleted = append(f.deleted, trader+"/"+ticker)
	return nil
}

type fakeRepo struct {
	order     *fakeOrderRepo
	execution *fakeExecutionRepo
	trader    *fakeTraderRepo
	holding   *fakeHoldingRepo
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		order:     &fakeOrderRepo{},
		execution: &fakeExecutionRepo{},
		trader:    &fakeTraderRepo{},
		holding:   &fakeHoldingRepo{},
	}
}

func (f *fakeRepo) Order() repo.IOrder         { return f.order }
func (f *fakeRepo) Execution() repo.IExecution { return f.execution }
func (f *fakeRepo) Trader() repo.ITrader       { return f.trader }
func (f *fakeRepo) Holding() repo.IHolding     { return f.holding }

func TestHandleEventDispatch(t *testing.T) {
	f := newFakeRepo()
	w := NewWorker(f)
	ctx := context.Background()

	events := []*changelog.Event{
		{Type: changelog.EventOrder, Order: &model.Order{ID: 1, Ticker: "AAPL"}},
		{Type: changelog.EventExecution, Execution: &model.Execution{ExecID: "e1", Ticker: "AAPL"}},
		{Type: changelog.EventBalance, Trader: &model.Trader{Name: "GS", Cash: decimal.NewFromInt(100)}},
		{Type: changelog.EventHolding, Holding: &model.Holding{Trader: "GS", Ticker: "AAPL", Quantity: 10}},
		{Type: changelog.EventHolding, Holding: &model.Holding{Trader: "GS", Ticker: "AAPL", Quantity: 0}},
	}

	for _, ev := range events {
		if err := w.handleEvent(ctx, ev); err != nil {
			t.Fatalf("handle %s failed: %v", ev.Type, err)
		}
	}

	if len(f.order.orders) != 1 {
		t.Errorf("expected 1 order upsert, got %d", len(f.order.orders))
	}
	if len(f.execution.executions) != 1 {
		t.Errorf("expected 1 execution, got %d", len(f.execution.executions))
	}
	if len(f.trader.traders) != 1 {
		t.Errorf("expected 1 trader upsert, got %d", len(f.trader.traders))
	}
	if len(f.holding.holdings) != 1 {
		t.Errorf("expected 1 holding upsert, got %d", len(f.holding.holdings))
	}
	// quantity zero means the holding record is gone
	if len(f.holding.deleted) != 1 || f.holding.deleted[0] != "GS/AAPL" {
		t.Errorf("expected GS/AAPL delete, got %v", f.holding.deleted)
	}
}

func TestHandleEventTolerantOfEmptyPayload(t *testing.T) {
	f := newFakeRepo()
	w := NewWorker(f)

	for _, typ := range []changelog.EventType{
		changelog.EventOrder, changelog.EventExecution,
		changelog.EventBalance, changelog.EventHolding,
	} {
		if err := w.handleEvent(context.Background(), &changelog.Event{Type: typ}); err != nil {
			t.Errorf("empty %s event should be ignored, got %v", typ, err)
		}
	}
}
