package fixgateway

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/field"
	"github.com/quickfixgo/fix44/executionreport"
	"github.com/quickfixgo/quickfix"
	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-engine/pkg/exchange"
	"github.com/joripage/exchange-engine/pkg/exchange/model"
)

var sideMapping map[model.OrderSide]enum.Side = map[model.OrderSide]enum.Side{
	model.OrderSideBuy:  enum.Side_BUY,
	model.OrderSideSell: enum.Side_SELL,
}

func ordStatusOf(order model.Order) enum.OrdStatus {
	switch {
	case order.Status == model.OrderStatusFilled:
		return enum.OrdStatus_FILLED
	case order.CumQuantity > 0:
		return enum.OrdStatus_PARTIALLY_FILLED
	default:
		return enum.OrdStatus_NEW
	}
}

// buildOrderReports turns an accepted order into its outbound report
// sequence: the NEW ack first, then one TRADE per fill with running
// cumulative quantity and average price.
func buildOrderReports(report *exchange.ExecutionReport, clOrdID string) []*quickfix.Message {
	ack := report.Order
	ack.CumQuantity = 0
	ack.LeavesQuantity = ack.Quantity
	ack.Status = model.OrderStatusOpen

	msgs := []*quickfix.Message{
		buildExecutionReport(ack, clOrdID, enum.ExecType_NEW, enum.OrdStatus_NEW, decimal.Zero),
	}

	cum := int64(0)
	notional := decimal.Zero
	for _, fill := range report.Fills {
		cum += fill.Quantity
		notional = notional.Add(fill.Notional())
		avgPx := notional.Div(decimal.NewFromInt(cum))

		state := report.Order
		state.CumQuantity = cum
		state.LeavesQuantity = state.Quantity - cum
		if state.LeavesQuantity > 0 {
			state.Status = model.OrderStatusOpen
		} else {
			state.Status = model.OrderStatusFilled
		}

		msg := buildExecutionReport(state, clOrdID, enum.ExecType_TRADE, ordStatusOf(state), avgPx)
		execReport := executionreport.FromMessage(msg)
		execReport.SetLastQty(decimal.NewFromInt(fill.Quantity), 0)
		execReport.SetLastPx(fill.Price, 2)
		msgs = append(msgs, msg)
	}

	return msgs
}

func buildExecutionReport(order model.Order, clOrdID string, execType enum.ExecType, ordStatus enum.OrdStatus, avgPx decimal.Decimal) *quickfix.Message {
	execReportMsg := executionreport.New(
		field.NewOrderID(strconv.FormatInt(order.ID, 10)),
		field.NewExecID(uuid.New().String()),
		field.NewExecType(execType),
		field.NewOrdStatus(ordStatus),
		field.NewSide(sideMapping[order.Side]),
		field.NewLeavesQty(decimal.NewFromInt(order.LeavesQuantity), 0),
		field.NewCumQty(decimal.NewFromInt(order.CumQuantity), 0),
		field.NewAvgPx(avgPx, 2),
	)

	execReportMsg.SetClOrdID(clOrdID)
	execReportMsg.SetAccount(order.Trader)
	execReportMsg.SetSymbol(order.Ticker)
	execReportMsg.SetOrderQty(decimal.NewFromInt(order.Quantity), 0)
	execReportMsg.SetPrice(order.Price, 2)
	execReportMsg.SetTransactTime(order.TransactTime)

	return execReportMsg.ToMessage()
}

func buildRejectReport(cmd *model.PlaceOrder, clOrdID string, reason error) *quickfix.Message {
	execReportMsg := executionreport.New(
		field.NewOrderID("NONE"),
		field.NewExecID(uuid.New().String()),
		field.NewExecType(enum.ExecType_REJECTED),
		field.NewOrdStatus(enum.OrdStatus_REJECTED),
		field.NewSide(sideMapping[cmd.Side]),
		field.NewLeavesQty(decimal.Zero, 0),
		field.NewCumQty(decimal.Zero, 0),
		field.NewAvgPx(decimal.Zero, 2),
	)

	execReportMsg.SetClOrdID(clOrdID)
	execReportMsg.SetAccount(cmd.Trader)
	execReportMsg.SetSymbol(cmd.Ticker)
	execReportMsg.SetOrderQty(decimal.NewFromInt(cmd.Quantity), 0)
	execReportMsg.SetPrice(cmd.Price, 2)
	execReportMsg.SetTransactTime(cmd.TransactTime)
	execReportMsg.SetText(reason.Error())

	return execReportMsg.ToMessage()
}
