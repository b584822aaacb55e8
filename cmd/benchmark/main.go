package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-engine/pkg/exchange"
	"github.com/joripage/exchange-engine/pkg/exchange/execstore"
	"github.com/joripage/exchange-engine/pkg/exchange/ledger"
	"github.com/joripage/exchange-engine/pkg/exchange/model"
)

const (
	numOrders  = 1_000_000
	numTraders = 100
	minPrice   = 100
	maxPrice   = 200
	minQty     = 1
	maxQty     = 100
	ticker     = "ABC"
)

func randomOrder(rnd *rand.Rand) *model.PlaceOrder {
	side := model.OrderSideBuy
	if rnd.Intn(2) == 0 {
		side = model.OrderSideSell
	}
	price := minPrice + rnd.Intn(maxPrice-minPrice+1)
	qty := int64(rnd.Intn(maxQty-minQty+1) + minQty)

	return &model.PlaceOrder{
		Trader:       fmt.Sprintf("TRADER-%03d", rnd.Intn(numTraders)),
		Ticker:       ticker,
		Side:         side,
		Price:        decimal.NewFromInt(int64(price)),
		Quantity:     qty,
		TransactTime: time.Now(),
	}
}

func main() {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	ex := exchange.New(ledger.New(), execstore.NewStore())
	ex.RegisterSecurity(ticker)

	// every trader gets enough cash and shares that rejections stay rare
	for i := 0; i < numTraders; i++ {
		name := fmt.Sprintf("TRADER-%03d", i)
		ex.RegisterTrader(name, decimal.NewFromInt(1_000_000_000))
		ex.Ledger().IncreaseHolding(name, ticker, 10_000_000) // nolint
	}

	ctx := context.Background()
	totalMatched := 0
	totalQty := int64(0)
	totalRejected := 0

	start := time.Now()
	for i := 0; i < numOrders; i++ {
		report, err := ex.PlaceOrder(ctx, randomOrder(rnd))
		if err != nil {
			totalRejected++
			continue
		}
		for _, fill := range report.Fills {
			totalMatched++
			totalQty += fill.Quantity
			if totalMatched <= 5 {
				log.Printf("✅ Match: BUY[%d] <=> SELL[%d] @ %s Qty %d\n",
					fill.BuyOrderID, fill.SellOrderID, fill.Price, fill.Quantity)
			}
		}
	}

	elapsed := time.Since(start)

	fmt.Println("--------")
	fmt.Printf("🏁 Total Orders     : %d\n", numOrders)
	fmt.Printf("✅ Total Matches    : %d\n", totalMatched)
	fmt.Printf("📦 Total Matched Qty: %d\n", totalQty)
	fmt.Printf("🚫 Total Rejected   : %d\n", totalRejected)
	fmt.Printf("⏱️ Time Taken       : %s\n", elapsed)
}
