package book

import (
	"container/heap"

	"github.com/gammazero/deque"

	"github.com/joripage/exchange-engine/pkg/exchange/model"
)

// Book holds the resting orders of one security: bids ordered by price
// descending then sequence ascending, asks by price ascending then sequence
// ascending. Price lookup is O(log n) through a heap of price levels; each
// level is a FIFO queue, which realizes the sequence tie-break because order
// IDs are assigned monotonically.
//
// Book does no locking of its own. The matching engine owning it serializes
// all access per security.
type Book struct {
	ticker string

	bidLevels map[float64]*deque.Deque[*model.Order]
	askLevels map[float64]*deque.Deque[*model.Order]

	bidHeap *priceHeap
	askHeap *priceHeap
}

func New(ticker string) *Book {
	return &Book{
		ticker:    ticker,
		bidLevels: make(map[float64]*deque.Deque[*model.Order]),
		askLevels: make(map[float64]*deque.Deque[*model.Order]),
		bidHeap:   newPriceHeap(func(i, j float64) bool { return i > j }), // max-heap
		askHeap:   newPriceHeap(func(i, j float64) bool { return i < j }), // min-heap
	}
}

func (b *Book) Ticker() string {
	return b.ticker
}

// BestBid returns the highest-price, earliest-sequence resting buy order,
// or nil if the bid side is empty.
func (b *Book) BestBid() *model.Order {
	return best(b.bidLevels, b.bidHeap)
}

// BestAsk returns the lowest-price, earliest-sequence resting sell order,
// or nil if the ask side is empty.
func (b *Book) BestAsk() *model.Order {
	return best(b.askLevels, b.askHeap)
}

func best(levels map[float64]*deque.Deque[*model.Order], prices *priceHeap) *model.Order {
	for {
		price, ok := prices.Peek()
		if !ok {
			return nil
		}
		q := levels[price]
		if q == nil || q.Len() == 0 {
			// drained level, drop it and re-read the next price
			heap.Pop(prices)
			delete(levels, price)
			continue
		}
		return q.Front()
	}
}

// Insert appends an open order at the back of its price level, creating the
// level if needed. Only OPEN orders with open quantity belong in the book.
func (b *Book) Insert(order *model.Order) error {
	if order.Status != model.OrderStatusOpen || order.LeavesQuantity <= 0 {
		return errNotRestable
	}

	levels, prices := b.side(order.Side)
	price := order.Price.InexactFloat64()
	if levels[price] == nil {
		levels[price] = &deque.Deque[*model.Order]{}
		heap.Push(prices, price)
	}
	levels[price].PushBack(order)
	return nil
}

// ReduceOrRemove sets the order's open quantity. Reaching zero marks the
// order FILLED and removes it from the book.
func (b *Book) ReduceOrRemove(order *model.Order, newLeaves int64) error {
	if newLeaves < 0 || newLeaves > order.LeavesQuantity {
		return errInvalidQuantity
	}

	order.CumQuantity += order.LeavesQuantity - newLeaves
	order.LeavesQuantity = newLeaves
	if newLeaves > 0 {
		return nil
	}

	order.Status = model.OrderStatusFilled
	return b.Remove(order)
}

// Remove takes an order out of its price level. The matching loop only ever
// consumes the front of the best level, so the scan is effectively O(1); the
// general walk covers removal of orders deeper in the level.
func (b *Book) Remove(order *model.Order) error {
	levels, prices := b.side(order.Side)
	price := order.Price.InexactFloat64()
	q := levels[price]
	if q == nil {
		return errOrderNotFound
	}

	for i := 0; i < q.Len(); i++ {
		if q.At(i).ID == order.ID {
			q.Remove(i)
			if q.Len() == 0 {
				remove(prices, price)
				delete(levels, price)
			}
			return nil
		}
	}
	return errOrderNotFound
}

// Depth reports how many orders rest on a side.
func (b *Book) Depth(side model.OrderSide) int {
	levels, _ := b.side(side)
	n := 0
	for _, q := range levels {
		n += q.Len()
	}
	return n
}

// RestingBids walks every resting buy order; used for reserved-capital
// accounting and snapshots.
func (b *Book) RestingBids(fn func(o *model.Order)) {
	for _, q := range b.bidLevels {
		for i := 0; i < q.Len(); i++ {
			fn(q.At(i))
		}
	}
}

// RestingAsks walks every resting sell order.
func (b *Book) RestingAsks(fn func(o *model.Order)) {
	for _, q := range b.askLevels {
		for i := 0; i < q.Len(); i++ {
			fn(q.At(i))
		}
	}
}

func (b *Book) side(side model.OrderSide) (map[float64]*deque.Deque[*model.Order], *priceHeap) {
	if side == model.OrderSideBuy {
		return b.bidLevels, b.bidHeap
	}
	return b.askLevels, b.askHeap
}

func remove(h *priceHeap, price float64) {
	for i, p := range h.prices {
		if p == price {
			heap.Remove(h, i)
			return
		}
	}
}
