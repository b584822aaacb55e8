package exchange

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-engine/pkg/exchange/book"
	"github.com/joripage/exchange-engine/pkg/exchange/execstore"
	"github.com/joripage/exchange-engine/pkg/exchange/ledger"
	"github.com/joripage/exchange-engine/pkg/exchange/model"
	"github.com/joripage/exchange-engine/pkg/exchange/pretrade"
)

// matcher is the matching unit of one security. It is the sole writer of its
// book and the sole initiator of ledger movements while an order is being
// processed; mu serializes placeOrder calls for the security. Different
// securities run in parallel on their own matchers.
type matcher struct {
	ticker string
	book   *book.Book
	ledger *ledger.Ledger
	execs  *execstore.Store
	rules  []pretrade.Rule

	nextOrderID func() int64
	nextExecSeq func() int64

	mu sync.Mutex
}

// matchOutcome carries everything one placeOrder call produced, with
// counterparty state captured as snapshots before the lock is released.
type matchOutcome struct {
	report         *ExecutionReport
	counterparties []model.Order
}

func newMatcher(ticker string, ldg *ledger.Ledger, execs *execstore.Store, rules []pretrade.Rule, nextOrderID, nextExecSeq func() int64) *matcher {
	return &matcher{
		ticker:      ticker,
		book:        book.New(ticker),
		ledger:      ldg,
		execs:       execs,
		rules:       rules,
		nextOrderID: nextOrderID,
		nextExecSeq: nextExecSeq,
	}
}

func (m *matcher) placeOrder(cmd *model.PlaceOrder) (*matchOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Validation runs to completion before any book or ledger mutation.
	for _, rule := range m.rules {
		if err := rule.Check(cmd); err != nil {
			return nil, err
		}
	}

	ts := cmd.TransactTime
	if ts.IsZero() {
		ts = time.Now()
	}
	order := model.NewOrder(m.nextOrderID(), m.ticker, cmd.Trader, cmd.Side, cmd.Price, cmd.Quantity, ts)

	// Sell orders reserve the full offered quantity up front; the holding is
	// reduced (or deleted on exact depletion) before any matching happens.
	if order.Side == model.OrderSideSell {
		if err := m.ledger.DecreaseHolding(order.Trader, m.ticker, order.Quantity); err != nil {
			return nil, err
		}
	}

	outcome := &matchOutcome{}
	fills, total, err := m.match(order, outcome, ts)
	if err != nil {
		return nil, err
	}

	// One net cash adjustment per call for the incoming trader, covering
	// every fill at its own match price.
	if total.IsPositive() {
		if order.Side == model.OrderSideBuy {
			err = m.ledger.DebitCash(order.Trader, total)
		} else {
			err = m.ledger.CreditCash(order.Trader, total)
		}
		if err != nil {
			return nil, err
		}
	}

	if order.LeavesQuantity > 0 {
		// Residual rests at the limit price. A resting buy locks capital at
		// the limit, so matching against it later moves no further buyer cash.
		if order.Side == model.OrderSideBuy {
			if err := m.ledger.DebitCash(order.Trader, order.Notional()); err != nil {
				return nil, err
			}
		}
		if err := m.book.Insert(order); err != nil {
			return nil, err
		}
	} else {
		order.Status = model.OrderStatusFilled
		m.execs.AddExecutedOrder(*order)
	}

	outcome.report = newExecutionReport(order, fills)
	return outcome, nil
}

// match walks the opposite side while the incoming order crosses, producing
// one execution per step at the resting order's price. Returns the fills and
// the incoming trader's total matched notional.
func (m *matcher) match(order *model.Order, outcome *matchOutcome, ts time.Time) ([]*model.Execution, decimal.Decimal, error) {
	var fills []*model.Execution
	total := decimal.Zero

	for order.LeavesQuantity > 0 {
		resting := m.bestOpposite(order)
		if resting == nil || !crosses(order, resting) {
			break
		}

		matchQty := order.LeavesQuantity
		if resting.LeavesQuantity < matchQty {
			matchQty = resting.LeavesQuantity
		}

		// The resting side has pricing power: execution happens at its price.
		exec := &model.Execution{
			ExecID:    uuid.NewString(),
			Seq:       m.nextExecSeq(),
			Ticker:    m.ticker,
			Price:     resting.Price,
			Quantity:  matchQty,
			Timestamp: ts,
		}

		if order.Side == model.OrderSideBuy {
			exec.Buyer, exec.Seller = order.Trader, resting.Trader
			exec.BuyOrderID, exec.SellOrderID = order.ID, resting.ID

			// Seller is paid per fill; buyer's shares arrive per fill. The
			// buyer's cash leaves in one net debit after the loop.
			if err := m.ledger.CreditCash(resting.Trader, exec.Notional()); err != nil {
				return nil, decimal.Zero, err
			}
			if err := m.ledger.IncreaseHolding(order.Trader, m.ticker, matchQty); err != nil {
				return nil, decimal.Zero, err
			}
		} else {
			exec.Buyer, exec.Seller = resting.Trader, order.Trader
			exec.BuyOrderID, exec.SellOrderID = resting.ID, order.ID

			// The resting buyer paid when the bid was inserted; only the
			// shares move now. The seller's cash arrives after the loop.
			if err := m.ledger.IncreaseHolding(resting.Trader, m.ticker, matchQty); err != nil {
				return nil, decimal.Zero, err
			}
		}

		if err := m.book.ReduceOrRemove(resting, resting.LeavesQuantity-matchQty); err != nil {
			return nil, decimal.Zero, err
		}
		if resting.Status == model.OrderStatusFilled {
			m.execs.AddExecutedOrder(*resting)
		}
		outcome.counterparties = append(outcome.counterparties, *resting)

		order.CumQuantity += matchQty
		order.LeavesQuantity -= matchQty

		m.execs.AddExecution(exec)
		fills = append(fills, exec)
		total = total.Add(exec.Notional())
	}

	return fills, total, nil
}

func (m *matcher) bestOpposite(order *model.Order) *model.Order {
	if order.Side == model.OrderSideBuy {
		return m.book.BestAsk()
	}
	return m.book.BestBid()
}

// crosses reports whether the incoming order's limit permits trading against
// the resting order. Compared on exact decimal prices.
func crosses(order, resting *model.Order) bool {
	if order.Side == model.OrderSideBuy {
		return resting.Price.LessThanOrEqual(order.Price)
	}
	return resting.Price.GreaterThanOrEqual(order.Price)
}

func (m *matcher) bestBid() *model.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	if o := m.book.BestBid(); o != nil {
		snapshot := *o
		return &snapshot
	}
	return nil
}

func (m *matcher) bestAsk() *model.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	if o := m.book.BestAsk(); o != nil {
		snapshot := *o
		return &snapshot
	}
	return nil
}

// reservedNotional sums the capital locked by resting bids; used by tests to
// check conservation of cash.
func (m *matcher) reservedNotional() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := decimal.Zero
	m.book.RestingBids(func(o *model.Order) {
		total = total.Add(o.Notional())
	})
	return total
}
