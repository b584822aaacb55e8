package pretrade

import "github.com/joripage/exchange-engine/pkg/exchange/model"

// HoldingRule rejects a sell order when the trader does not hold the
// security, or holds less than the offered quantity. Short selling is not
// supported.
type HoldingRule struct {
	view BalanceView
}

func NewHoldingRule(view BalanceView) *HoldingRule {
	return &HoldingRule{view: view}
}

func (r *HoldingRule) Check(cmd *model.PlaceOrder) error {
	if cmd.Side != model.OrderSideSell {
		return nil
	}

	held, ok := r.view.HoldingQty(cmd.Trader, cmd.Ticker)
	if !ok {
		return model.ErrNoSuchHolding
	}
	if held < cmd.Quantity {
		return model.ErrInsufficientQuantity
	}
	return nil
}
