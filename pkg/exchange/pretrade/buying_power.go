package pretrade

import (
	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-engine/pkg/exchange/model"
)

// BuyingPowerRule rejects a buy order whose full notional at the limit price
// exceeds the trader's cash. Capital for any resting remainder is reserved
// at the limit price, so the check is against price*quantity regardless of
// where the fills land.
type BuyingPowerRule struct {
	view BalanceView
}

func NewBuyingPowerRule(view BalanceView) *BuyingPowerRule {
	return &BuyingPowerRule{view: view}
}

func (r *BuyingPowerRule) Check(cmd *model.PlaceOrder) error {
	if cmd.Side != model.OrderSideBuy {
		return nil
	}

	cash, err := r.view.Cash(cmd.Trader)
	if err != nil {
		return err
	}

	notional := cmd.Price.Mul(decimal.NewFromInt(cmd.Quantity))
	if notional.GreaterThan(cash) {
		return model.ErrInsufficientCapital
	}
	return nil
}
