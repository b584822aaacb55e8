package ledger

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-engine/pkg/exchange/model"
)

type holdingKey struct {
	trader string
	ticker string
}

// Ledger owns every trader's cash balance and per-security holdings. It is
// the only legal path to mutate them. Matching for one security runs inside
// that security's exclusive section, so a match's debit and credit are never
// observed half-applied; the internal lock only protects concurrent access
// from engines of different securities.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[string]*model.Trader
	holdings map[holdingKey]int64
}

func New() *Ledger {
	return &Ledger{
		accounts: make(map[string]*model.Trader),
		holdings: make(map[holdingKey]int64),
	}
}

// RegisterTrader seeds an account. Master data is managed externally; the
// engine itself never creates traders.
func (l *Ledger) RegisterTrader(name string, cash decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.accounts[name] = &model.Trader{Name: name, Cash: cash}
}

func (l *Ledger) HasTrader(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.accounts[name]
	return ok
}

func (l *Ledger) Cash(trader string) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acct, ok := l.accounts[trader]
	if !ok {
		return decimal.Zero, model.ErrTraderNotFound
	}
	return acct.Cash, nil
}

func (l *Ledger) DebitCash(trader string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[trader]
	if !ok {
		return model.ErrTraderNotFound
	}
	next := acct.Cash.Sub(amount)
	if next.IsNegative() {
		return model.ErrInsufficientCapital
	}
	acct.Cash = next
	return nil
}

func (l *Ledger) CreditCash(trader string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[trader]
	if !ok {
		return model.ErrTraderNotFound
	}
	acct.Cash = acct.Cash.Add(amount)
	return nil
}

func (l *Ledger) HoldingQty(trader, ticker string) (int64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	qty, ok := l.holdings[holdingKey{trader, ticker}]
	return qty, ok
}

// IncreaseHolding creates the holding if none exists, otherwise adds to it.
func (l *Ledger) IncreaseHolding(trader, ticker string, qty int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[trader]; !ok {
		return model.ErrTraderNotFound
	}
	l.holdings[holdingKey{trader, ticker}] += qty
	return nil
}

// DecreaseHolding removes qty shares. Exact depletion deletes the record:
// a zero-quantity holding is never stored.
func (l *Ledger) DecreaseHolding(trader, ticker string, qty int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := holdingKey{trader, ticker}
	held, ok := l.holdings[key]
	if !ok {
		return model.ErrNoSuchHolding
	}
	if held < qty {
		return model.ErrInsufficientQuantity
	}
	if held == qty {
		delete(l.holdings, key)
		return nil
	}
	l.holdings[key] = held - qty
	return nil
}

// Holdings returns a snapshot of every stored holding for a trader.
func (l *Ledger) Holdings(trader string) []model.Holding {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []model.Holding
	for key, qty := range l.holdings {
		if key.trader == trader {
			out = append(out, model.Holding{Trader: key.trader, Ticker: key.ticker, Quantity: qty})
		}
	}
	return out
}
