package exchange

import "github.com/joripage/exchange-engine/pkg/exchange/model"

// ExecutionReport is the caller-visible result of a placed order: the fills
// it produced and, when a remainder rested, the resting order's ID. Order is
// a snapshot taken when the call finished; the live order keeps mutating as
// later counter-orders fill it.
type ExecutionReport struct {
	Order          model.Order
	Fills          []*model.Execution
	RestingOrderID *int64
}

func newExecutionReport(order *model.Order, fills []*model.Execution) *ExecutionReport {
	report := &ExecutionReport{
		Order: *order,
		Fills: fills,
	}
	if order.Status == model.OrderStatusOpen {
		id := order.ID
		report.RestingOrderID = &id
	}
	return report
}

// Filled reports whether the incoming order was fully executed.
func (r *ExecutionReport) Filled() bool {
	return r.Order.Status == model.OrderStatusFilled
}
