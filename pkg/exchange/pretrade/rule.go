package pretrade

import (
	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-engine/pkg/exchange/model"
)

// Rule is one pre-trade check. Rules have no side effects and all of them
// run to completion before the matching engine touches any state.
type Rule interface {
	Check(cmd *model.PlaceOrder) error
}

// BalanceView is the read-only slice of the ledger the rules need.
type BalanceView interface {
	Cash(trader string) (decimal.Decimal, error)
	HoldingQty(trader, ticker string) (int64, bool)
}

// Defaults returns the standard rule chain in checking order: price and
// quantity sanity, buy-side capital, sell-side holdings.
func Defaults(view BalanceView) []Rule {
	return []Rule{
		&PriceQuantityRule{},
		&BuyingPowerRule{view: view},
		&HoldingRule{view: view},
	}
}
