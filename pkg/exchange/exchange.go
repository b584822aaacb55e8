package exchange

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/exchange-engine/pkg/exchange/changelog"
	"github.com/joripage/exchange-engine/pkg/exchange/execstore"
	"github.com/joripage/exchange-engine/pkg/exchange/ledger"
	"github.com/joripage/exchange-engine/pkg/exchange/model"
	"github.com/joripage/exchange-engine/pkg/exchange/pretrade"
)

// QuoteCallback receives the top of book for a security after an order was
// processed. Callbacks must not block for long; they run outside the
// security's exclusive section.
type QuoteCallback func(ticker string, bid, ask *model.Order)

// OrderCallback receives a snapshot of every order an accepted order touched:
// the incoming order itself and each resting counterparty it filled against.
// Gateways use this to report fills back to the session that owns the order.
type OrderCallback func(order model.Order)

// Exchange routes orders to per-security matchers. Traders and securities
// are registered externally; an order referencing an unknown one is rejected
// without touching any state.
type Exchange struct {
	ledger *ledger.Ledger
	execs  *execstore.Store
	rules  []pretrade.Rule

	matchers sync.Map // ticker -> *matcher
	orderSeq atomic.Int64
	execSeq  atomic.Int64

	publisher changelog.Publisher
	quoteCbs  []QuoteCallback
	orderCbs  []OrderCallback
}

func New(ldg *ledger.Ledger, execs *execstore.Store) *Exchange {
	return &Exchange{
		ledger: ldg,
		execs:  execs,
		rules:  pretrade.Defaults(ldg),
	}
}

// SetChangelog attaches a publisher that receives order, execution, balance
// and holding deltas after each processed order.
func (e *Exchange) SetChangelog(pub changelog.Publisher) {
	e.publisher = pub
}

func (e *Exchange) RegisterQuoteCallback(cb QuoteCallback) {
	e.quoteCbs = append(e.quoteCbs, cb)
}

func (e *Exchange) RegisterOrderCallback(cb OrderCallback) {
	e.orderCbs = append(e.orderCbs, cb)
}

func (e *Exchange) RegisterTrader(name string, cash decimal.Decimal) {
	e.ledger.RegisterTrader(name, cash)
}

func (e *Exchange) RegisterSecurity(ticker string) {
	m := newMatcher(ticker, e.ledger, e.execs, e.rules,
		func() int64 { return e.orderSeq.Add(1) },
		func() int64 { return e.execSeq.Add(1) },
	)
	e.matchers.LoadOrStore(ticker, m)
}

func (e *Exchange) Ledger() *ledger.Ledger {
	return e.ledger
}

// PlaceOrder validates and matches one order, returning the fills produced
// and whether a remainder rests in the book. Rejections are terminal: the
// caller must resubmit, nothing was applied.
func (e *Exchange) PlaceOrder(ctx context.Context, cmd *model.PlaceOrder) (*ExecutionReport, error) {
	m, err := e.matcher(cmd.Ticker)
	if err != nil {
		return nil, err
	}
	if !e.ledger.HasTrader(cmd.Trader) {
		return nil, model.ErrTraderNotFound
	}

	outcome, err := m.placeOrder(cmd)
	if err != nil {
		return nil, err
	}

	e.emit(ctx, m, outcome)
	return outcome.report, nil
}

func (e *Exchange) BestBid(ticker string) (*model.Order, error) {
	m, err := e.matcher(ticker)
	if err != nil {
		return nil, err
	}
	return m.bestBid(), nil
}

func (e *Exchange) BestAsk(ticker string) (*model.Order, error) {
	m, err := e.matcher(ticker)
	if err != nil {
		return nil, err
	}
	return m.bestAsk(), nil
}

// LastExecuted returns the most recent fully-executed order for the trader,
// ticker and side, or nil when there is none.
func (e *Exchange) LastExecuted(ticker, trader string, side model.OrderSide) (*model.Order, error) {
	if _, err := e.matcher(ticker); err != nil {
		return nil, err
	}
	return e.execs.LastExecuted(ticker, trader, side), nil
}

func (e *Exchange) matcher(ticker string) (*matcher, error) {
	val, ok := e.matchers.Load(ticker)
	if !ok {
		return nil, model.ErrSecurityNotFound
	}
	return val.(*matcher), nil
}

// emit publishes the call's deltas and refreshes quote subscribers. Both are
// side effects of an already-final result; failures are logged, never
// propagated to the caller.
func (e *Exchange) emit(ctx context.Context, m *matcher, outcome *matchOutcome) {
	if e.publisher != nil {
		now := time.Now()
		events := []*changelog.Event{
			{Type: changelog.EventOrder, Ticker: m.ticker, Order: &outcome.report.Order, Timestamp: now},
		}
		for i := range outcome.counterparties {
			events = append(events, &changelog.Event{
				Type: changelog.EventOrder, Ticker: m.ticker, Order: &outcome.counterparties[i], Timestamp: now,
			})
		}
		for _, fill := range outcome.report.Fills {
			events = append(events, &changelog.Event{
				Type: changelog.EventExecution, Ticker: m.ticker, Execution: fill, Timestamp: now,
			})
		}
		events = append(events, e.balanceEvents(m.ticker, outcome, now)...)

		for _, ev := range events {
			if err := e.publisher.Publish(ctx, ev); err != nil {
				zap.S().Warnf("changelog publish fail: %v", err)
			}
		}
	}

	for _, cb := range e.orderCbs {
		cb(outcome.report.Order)
		for _, counter := range outcome.counterparties {
			cb(counter)
		}
	}

	if len(e.quoteCbs) > 0 {
		bid, ask := m.bestBid(), m.bestAsk()
		for _, cb := range e.quoteCbs {
			cb(m.ticker, bid, ask)
		}
	}
}

func (e *Exchange) balanceEvents(ticker string, outcome *matchOutcome, now time.Time) []*changelog.Event {
	touched := map[string]bool{outcome.report.Order.Trader: true}
	for i := range outcome.counterparties {
		touched[outcome.counterparties[i].Trader] = true
	}

	var events []*changelog.Event
	for trader := range touched {
		cash, err := e.ledger.Cash(trader)
		if err != nil {
			continue
		}
		qty, _ := e.ledger.HoldingQty(trader, ticker)
		events = append(events,
			&changelog.Event{
				Type: changelog.EventBalance, Ticker: ticker,
				Trader:    &model.Trader{Name: trader, Cash: cash},
				Timestamp: now,
			},
			&changelog.Event{
				Type: changelog.EventHolding, Ticker: ticker,
				Holding:   &model.Holding{Trader: trader, Ticker: ticker, Quantity: qty},
				Timestamp: now,
			},
		)
	}
	return events
}
