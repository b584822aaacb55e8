package worker

import (
	"context"
	"encoding/json"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/joripage/exchange-engine/pkg/exchange/changelog"
	"github.com/joripage/exchange-engine/pkg/exchange/repo"
)

// Worker drains the engine's changelog stream and flushes each delta to the
// durable store. The engine's in-memory structures stay authoritative; this
// is the persistence checkpoint behind them.
type Worker struct {
	order     repo.IOrder
	execution repo.IExecution
	trader    repo.ITrader
	holding   repo.IHolding
}

func NewWorker(r repo.IRepo) *Worker {
	return &Worker{
		order:     r.Order(),
		execution: r.Execution(),
		trader:    r.Trader(),
		holding:   r.Holding(),
	}
}

func (w *Worker) StartConsumer(ctx context.Context, js nats.JetStreamContext, subject, durable string) error {
	cons, err := js.PullSubscribe(subject, durable)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msgs, err := cons.Fetch(10, nats.Context(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}

		for _, msg := range msgs {
			var ev changelog.Event
			if err := json.Unmarshal(msg.Data, &ev); err != nil {
				zap.S().Warnf("unmarshal changelog event fail: %v", err)
				_ = msg.Ack()
				continue
			}
			if err := w.handleEvent(ctx, &ev); err != nil {
				zap.S().Errorf("handle changelog event fail: %v", err)
				continue
			}
			_ = msg.Ack()
		}
	}
}

func (w *Worker) handleEvent(ctx context.Context, ev *changelog.Event) error {
	switch ev.Type {
	case changelog.EventOrder:
		if ev.Order == nil {
			return nil
		}
		return w.order.Upsert(ctx, ev.Order)
	case changelog.EventExecution:
		if ev.Execution == nil {
			return nil
		}
		return w.execution.Create(ctx, ev.Execution)
	case changelog.EventBalance:
		if ev.Trader == nil {
			return nil
		}
		return w.trader.Upsert(ctx, ev.Trader)
	case changelog.EventHolding:
		if ev.Holding == nil {
			return nil
		}
		if ev.Holding.Quantity == 0 {
			return w.holding.Delete(ctx, ev.Holding.Trader, ev.Holding.Ticker)
		}
		return w.holding.Upsert(ctx, ev.Holding)
	}
	return nil
}
