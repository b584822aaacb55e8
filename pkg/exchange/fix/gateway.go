package fixgateway

import (
	"context"
	"log"
	"sync"

	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/quickfix"
	"go.uber.org/zap"

	"github.com/joripage/exchange-engine/pkg/exchange"
	"github.com/joripage/exchange-engine/pkg/exchange/model"
	"github.com/joripage/exchange-engine/pkg/logging"
)

// Gateway bridges FIX 4.4 order entry onto the exchange. Each accepted order
// remembers the session and ClOrdID it arrived on so later fills against the
// resting remainder can be reported back to the same counterparty.
type Gateway struct {
	cfg      *GatewayConfig
	app      *Application
	exchange *exchange.Exchange

	restingOrders sync.Map // order ID -> *orderEntry
}

type GatewayConfig struct {
	ConfigFilepath string
}

type orderEntry struct {
	clOrdID   string
	sessionID *quickfix.SessionID
}

func NewGateway(cfg *GatewayConfig, ex *exchange.Exchange) *Gateway {
	g := &Gateway{
		cfg:      cfg,
		exchange: ex,
	}
	ex.RegisterOrderCallback(g.onOrderUpdate)

	return g
}

func (g *Gateway) Start(ctx context.Context) error {
	app, err := startApp(g.cfg.ConfigFilepath, g)
	if err != nil {
		log.Printf("start app err=%v", err)
		return err
	}
	g.app = app
	return nil
}

func (g *Gateway) Stop() {
	if g.app != nil {
		stopApp(g.app)
	}
}

// AddOrder translates a NewOrderSingle into a PlaceOrder command, runs it
// through the exchange and reports the outcome to the submitting session.
// A rejected order produces a single REJECTED report; an accepted one
// produces a NEW ack followed by one TRADE report per fill.
func (g *Gateway) AddOrder(ctx context.Context, newOrderSingle *NewOrderSingle) {
	ctx = logging.WithRequestID(ctx, logging.NewRequestID())
	logger, ctx := logging.GetLogger(ctx)

	side := map[enum.Side]model.OrderSide{
		enum.Side_BUY:  model.OrderSideBuy,
		enum.Side_SELL: model.OrderSideSell,
	}[newOrderSingle.Side]

	cmd := &model.PlaceOrder{
		Trader:       newOrderSingle.Account,
		Ticker:       newOrderSingle.Symbol,
		Side:         side,
		Price:        newOrderSingle.Price,
		Quantity:     newOrderSingle.OrderQty.IntPart(),
		TransactTime: newOrderSingle.TransactTime,
	}

	report, err := g.exchange.PlaceOrder(ctx, cmd)
	if err != nil {
		logger.Warn(ctx, "order rejected",
			zap.String("cl_ord_id", newOrderSingle.ClOrdID),
			zap.String("account", newOrderSingle.Account),
			zap.Error(err))
		g.send(buildRejectReport(cmd, newOrderSingle.ClOrdID, err), newOrderSingle.SessionID)
		return
	}

	logger.Info(ctx, "order accepted",
		zap.String("cl_ord_id", newOrderSingle.ClOrdID),
		zap.Int64("order_id", report.Order.ID),
		zap.Int("fills", len(report.Fills)))

	if report.RestingOrderID != nil {
		g.restingOrders.Store(*report.RestingOrderID, &orderEntry{
			clOrdID:   newOrderSingle.ClOrdID,
			sessionID: newOrderSingle.SessionID,
		})
	}

	for _, msg := range buildOrderReports(report, newOrderSingle.ClOrdID) {
		g.send(msg, newOrderSingle.SessionID)
	}
}

// onOrderUpdate reports fills against resting orders. The order that was
// just placed is not in the mapping yet when its own update fires, so its
// reports come only from AddOrder.
func (g *Gateway) onOrderUpdate(order model.Order) {
	val, ok := g.restingOrders.Load(order.ID)
	if !ok {
		return
	}
	entry := val.(*orderEntry)

	if order.Status == model.OrderStatusFilled {
		g.restingOrders.Delete(order.ID)
	}

	// resting orders always trade at their own limit price
	msg := buildExecutionReport(order, entry.clOrdID, enum.ExecType_TRADE, ordStatusOf(order), order.Price)
	g.send(msg, entry.sessionID)
}

func (g *Gateway) send(msg *quickfix.Message, sessionID *quickfix.SessionID) {
	if sessionID == nil {
		return
	}
	if err := quickfix.SendToTarget(msg, *sessionID); err != nil {
		log.Printf("send err=%v", err)
	}
}
