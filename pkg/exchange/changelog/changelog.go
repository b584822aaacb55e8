package changelog

import (
	"context"
	"time"

	"github.com/joripage/exchange-engine/pkg/exchange/model"
)

type EventType string

const (
	EventOrder     EventType = "ORDER"
	EventExecution EventType = "EXECUTION"
	EventBalance   EventType = "BALANCE"
	EventHolding   EventType = "HOLDING"
)

// Event is one delta of the engine's working set: an order snapshot, an
// execution, or a post-trade balance/holding state. The engine mutates its
// in-memory structures first and emits events as a side effect; subscribers
// (the persistence worker, downstream feeds) flush them to durable storage.
type Event struct {
	Type   EventType `json:"type"`
	Ticker string    `json:"ticker,omitempty"`

	Order     *model.Order     `json:"order,omitempty"`
	Execution *model.Execution `json:"execution,omitempty"`
	Trader    *model.Trader    `json:"trader,omitempty"`
	// A holding event with Quantity 0 means the record was deleted.
	Holding *model.Holding `json:"holding,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, ev *Event) error
}
