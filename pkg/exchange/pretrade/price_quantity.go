package pretrade

import "github.com/joripage/exchange-engine/pkg/exchange/model"

// PriceQuantityRule rejects non-positive prices and quantities.
type PriceQuantityRule struct{}

func (r *PriceQuantityRule) Check(cmd *model.PlaceOrder) error {
	if !cmd.Price.IsPositive() || cmd.Quantity <= 0 {
		return model.ErrInvalidPriceOrQuantity
	}
	return nil
}
