package execstore

import (
	"sync"

	"github.com/joripage/exchange-engine/pkg/exchange/model"
)

// Store is the in-memory audit trail: every execution ever produced plus a
// copy of every order at the moment it became fully executed. Persistence is
// a downstream concern; the changelog worker flushes the same records to
// durable storage.
type Store struct {
	mu sync.RWMutex

	executions map[string][]*model.Execution // ticker -> executions in sequence order
	executed   map[string][]model.Order      // ticker -> filled orders in sequence order
}

func NewStore() *Store {
	return &Store{
		executions: make(map[string][]*model.Execution),
		executed:   make(map[string][]model.Order),
	}
}

func (s *Store) AddExecution(ex *model.Execution) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.executions[ex.Ticker] = append(s.executions[ex.Ticker], ex)
}

// AddExecutedOrder records an immutable snapshot of a fully-executed order.
// Executed orders are never requeued into a book.
func (s *Store) AddExecutedOrder(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.executed[order.Ticker] = append(s.executed[order.Ticker], order)
}

// Executions returns a copy of the execution history for a ticker.
func (s *Store) Executions(ticker string) []*model.Execution {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Execution, len(s.executions[ticker]))
	copy(out, s.executions[ticker])
	return out
}

// LastExecuted returns the most recent fully-executed order for a trader,
// ticker and side, by descending sequence, or nil if there is none.
func (s *Store) LastExecuted(ticker, trader string, side model.OrderSide) *model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *model.Order
	orders := s.executed[ticker]
	for i := len(orders) - 1; i >= 0; i-- {
		if orders[i].Trader == trader && orders[i].Side == side {
			if found == nil || orders[i].ID > found.ID {
				o := orders[i]
				found = &o
			}
		}
	}
	return found
}
