package exchange

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-engine/pkg/exchange/changelog"
	"github.com/joripage/exchange-engine/pkg/exchange/execstore"
	"github.com/joripage/exchange-engine/pkg/exchange/ledger"
	"github.com/joripage/exchange-engine/pkg/exchange/model"
)

func newTestExchange() *Exchange {
	ex := New(ledger.New(), execstore.NewStore())
	ex.RegisterSecurity("AAPL")
	ex.RegisterTrader("GS", decimal.NewFromInt(10000))
	ex.RegisterTrader("MS", decimal.NewFromInt(10000))
	ex.Ledger().IncreaseHolding("GS", "AAPL", 100) // nolint
	return ex
}

func place(t *testing.T, ex *Exchange, trader string, side model.OrderSide, price int64, qty int64) *ExecutionReport {
	t.Helper()
	report, err := ex.PlaceOrder(context.Background(), &model.PlaceOrder{
		Trader:   trader,
		Ticker:   "AAPL",
		Side:     side,
		Price:    decimal.NewFromInt(price),
		Quantity: qty,
	})
	if err != nil {
		t.Fatalf("place %s %s %dx%d failed: %v", trader, side, qty, price, err)
	}
	return report
}

func cashOf(t *testing.T, ex *Exchange, trader string) decimal.Decimal {
	t.Helper()
	cash, err := ex.Ledger().Cash(trader)
	if err != nil {
		t.Fatalf("cash lookup for %s failed: %v", trader, err)
	}
	return cash
}

func expectCash(t *testing.T, ex *Exchange, trader string, want int64) {
	t.Helper()
	cash := cashOf(t, ex, trader)
	if !cash.Equal(decimal.NewFromInt(want)) {
		t.Errorf("%s cash = %s, want %d", trader, cash, want)
	}
}

func expectHolding(t *testing.T, ex *Exchange, trader string, want int64) {
	t.Helper()
	qty, ok := ex.Ledger().HoldingQty(trader, "AAPL")
	if want == 0 {
		if ok {
			t.Errorf("%s should hold nothing, got %d", trader, qty)
		}
		return
	}
	if !ok || qty != want {
		t.Errorf("%s holding = %d (ok=%v), want %d", trader, qty, ok, want)
	}
}

func TestSellRestsThenPartialBuyExecutes(t *testing.T) {
	ex := newTestExchange()

	// GS offers 50 shares at 75; nothing to match, the order rests and the
	// shares are reserved out of the holding.
	sellReport := place(t, ex, "GS", model.OrderSideSell, 75, 50)
	if len(sellReport.Fills) != 0 {
		t.Fatalf("expected no fills, got %d", len(sellReport.Fills))
	}
	if sellReport.RestingOrderID == nil {
		t.Fatal("expected the sell to rest")
	}
	expectHolding(t, ex, "GS", 50)
	expectCash(t, ex, "GS", 10000)

	// MS bids 80 for 25; trades at the resting 75.
	buyReport := place(t, ex, "MS", model.OrderSideBuy, 80, 25)
	if len(buyReport.Fills) != 1 {
		t.Fatalf("expected 1 fill, got %d", len(buyReport.Fills))
	}
	fill := buyReport.Fills[0]
	if !fill.Price.Equal(decimal.NewFromInt(75)) {
		t.Errorf("expected execution at resting price 75, got %s", fill.Price)
	}
	if fill.Quantity != 25 {
		t.Errorf("expected quantity 25, got %d", fill.Quantity)
	}
	if fill.Buyer != "MS" || fill.Seller != "GS" {
		t.Errorf("wrong counterparties: %+v", fill)
	}
	if !buyReport.Filled() {
		t.Error("buy should be fully executed")
	}

	expectCash(t, ex, "MS", 8125)
	expectCash(t, ex, "GS", 11875)
	expectHolding(t, ex, "MS", 25)

	ask, err := ex.BestAsk("AAPL")
	if err != nil {
		t.Fatalf("best ask failed: %v", err)
	}
	if ask == nil || ask.LeavesQuantity != 25 || !ask.Price.Equal(decimal.NewFromInt(75)) {
		t.Errorf("expected 25 resting at 75, got %+v", ask)
	}
}

func TestIncomingBuySweepsMultipleLevels(t *testing.T) {
	ex := newTestExchange()

	place(t, ex, "GS", model.OrderSideSell, 101, 5)
	place(t, ex, "GS", model.OrderSideSell, 102, 5)
	place(t, ex, "GS", model.OrderSideSell, 103, 5)

	report := place(t, ex, "MS", model.OrderSideBuy, 105, 15)
	if len(report.Fills) != 3 {
		t.Fatalf("expected 3 fills, got %d", len(report.Fills))
	}
	if !report.Fills[0].Price.Equal(decimal.NewFromInt(101)) ||
		!report.Fills[2].Price.Equal(decimal.NewFromInt(103)) {
		t.Errorf("expected matching from best price upward, got %+v", report.Fills)
	}

	// buyer pays each level's own price, not the limit
	expectCash(t, ex, "MS", 10000-(101+102+103)*5)
	expectCash(t, ex, "GS", 10000+(101+102+103)*5)
	expectHolding(t, ex, "MS", 15)
	expectHolding(t, ex, "GS", 85)
}

func TestPriceTimePriorityAtSameLevel(t *testing.T) {
	ex := newTestExchange()
	ex.RegisterTrader("JPM", decimal.NewFromInt(10000))
	ex.Ledger().IncreaseHolding("JPM", "AAPL", 100) // nolint

	first := place(t, ex, "GS", model.OrderSideSell, 100, 5)
	second := place(t, ex, "JPM", model.OrderSideSell, 100, 5)

	report := place(t, ex, "MS", model.OrderSideBuy, 100, 5)
	if len(report.Fills) != 1 {
		t.Fatalf("expected 1 fill, got %d", len(report.Fills))
	}
	if report.Fills[0].SellOrderID != *first.RestingOrderID {
		t.Errorf("expected earliest order at the level to trade first, got %+v", report.Fills[0])
	}

	ask, _ := ex.BestAsk("AAPL")
	if ask == nil || ask.ID != *second.RestingOrderID {
		t.Errorf("expected second arrival still resting, got %+v", ask)
	}
}

func TestRestingBuyReservesCashAtLimit(t *testing.T) {
	ex := newTestExchange()

	bidReport := place(t, ex, "MS", model.OrderSideBuy, 100, 10)
	if bidReport.RestingOrderID == nil {
		t.Fatal("expected the bid to rest")
	}
	// full notional locked up front
	expectCash(t, ex, "MS", 9000)

	// a lower sell still trades at the resting bid's price
	report := place(t, ex, "GS", model.OrderSideSell, 90, 10)
	if len(report.Fills) != 1 {
		t.Fatalf("expected 1 fill, got %d", len(report.Fills))
	}
	if !report.Fills[0].Price.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected execution at resting bid 100, got %s", report.Fills[0].Price)
	}

	// no further buyer cash moves: the reservation covered the trade exactly
	expectCash(t, ex, "MS", 9000)
	expectCash(t, ex, "GS", 11000)
	expectHolding(t, ex, "MS", 10)
	expectHolding(t, ex, "GS", 90)
}

func TestRejectionLeavesStateUntouched(t *testing.T) {
	ex := newTestExchange()

	cases := []struct {
		name string
		cmd  *model.PlaceOrder
		want error
	}{
		{
			name: "buy beyond cash",
			cmd:  &model.PlaceOrder{Trader: "MS", Ticker: "AAPL", Side: model.OrderSideBuy, Price: decimal.NewFromInt(101), Quantity: 100},
			want: model.ErrInsufficientCapital,
		},
		{
			name: "sell without holding",
			cmd:  &model.PlaceOrder{Trader: "MS", Ticker: "AAPL", Side: model.OrderSideSell, Price: decimal.NewFromInt(100), Quantity: 1},
			want: model.ErrNoSuchHolding,
		},
		{
			name: "sell beyond holding",
			cmd:  &model.PlaceOrder{Trader: "GS", Ticker: "AAPL", Side: model.OrderSideSell, Price: decimal.NewFromInt(100), Quantity: 101},
			want: model.ErrInsufficientQuantity,
		},
		{
			name: "non-positive price",
			cmd:  &model.PlaceOrder{Trader: "GS", Ticker: "AAPL", Side: model.OrderSideBuy, Price: decimal.Zero, Quantity: 10},
			want: model.ErrInvalidPriceOrQuantity,
		},
		{
			name: "non-positive quantity",
			cmd:  &model.PlaceOrder{Trader: "GS", Ticker: "AAPL", Side: model.OrderSideSell, Price: decimal.NewFromInt(100), Quantity: 0},
			want: model.ErrInvalidPriceOrQuantity,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report, err := ex.PlaceOrder(context.Background(), tc.cmd)
			if err != tc.want {
				t.Fatalf("expected %v, got %v (report=%+v)", tc.want, err, report)
			}

			expectCash(t, ex, "GS", 10000)
			expectCash(t, ex, "MS", 10000)
			expectHolding(t, ex, "GS", 100)
			if bid, _ := ex.BestBid("AAPL"); bid != nil {
				t.Errorf("rejected order must not rest, found bid %+v", bid)
			}
			if ask, _ := ex.BestAsk("AAPL"); ask != nil {
				t.Errorf("rejected order must not rest, found ask %+v", ask)
			}
		})
	}
}

func TestUnknownTraderAndSecurity(t *testing.T) {
	ex := newTestExchange()

	_, err := ex.PlaceOrder(context.Background(), &model.PlaceOrder{
		Trader: "GS", Ticker: "MSFT", Side: model.OrderSideBuy, Price: decimal.NewFromInt(10), Quantity: 1,
	})
	if err != model.ErrSecurityNotFound {
		t.Errorf("expected ErrSecurityNotFound, got %v", err)
	}

	_, err = ex.PlaceOrder(context.Background(), &model.PlaceOrder{
		Trader: "NOBODY", Ticker: "AAPL", Side: model.OrderSideBuy, Price: decimal.NewFromInt(10), Quantity: 1,
	})
	if err != model.ErrTraderNotFound {
		t.Errorf("expected ErrTraderNotFound, got %v", err)
	}

	if _, err := ex.BestBid("MSFT"); err != model.ErrSecurityNotFound {
		t.Errorf("expected ErrSecurityNotFound, got %v", err)
	}
	if _, err := ex.LastExecuted("MSFT", "GS", model.OrderSideSell); err != model.ErrSecurityNotFound {
		t.Errorf("expected ErrSecurityNotFound, got %v", err)
	}
}

func TestResubmissionIsNotIdempotent(t *testing.T) {
	ex := newTestExchange()

	// the first sell reserves 60 shares; the identical resubmission only
	// finds 40 left and is rejected
	first := place(t, ex, "GS", model.OrderSideSell, 75, 60)
	if first.RestingOrderID == nil {
		t.Fatal("expected the first sell to rest")
	}

	_, err := ex.PlaceOrder(context.Background(), &model.PlaceOrder{
		Trader: "GS", Ticker: "AAPL", Side: model.OrderSideSell, Price: decimal.NewFromInt(75), Quantity: 60,
	})
	if err != model.ErrInsufficientQuantity {
		t.Fatalf("expected ErrInsufficientQuantity on resubmission, got %v", err)
	}

	// identical buys are two distinct orders with two reservations
	b1 := place(t, ex, "MS", model.OrderSideBuy, 50, 10)
	b2 := place(t, ex, "MS", model.OrderSideBuy, 50, 10)
	if b1.Order.ID == b2.Order.ID {
		t.Error("resubmitted order must get a fresh ID")
	}
	expectCash(t, ex, "MS", 9000)
}

func TestLastExecuted(t *testing.T) {
	ex := newTestExchange()

	if got, _ := ex.LastExecuted("AAPL", "GS", model.OrderSideSell); got != nil {
		t.Errorf("expected nil before any execution, got %+v", got)
	}

	place(t, ex, "GS", model.OrderSideSell, 75, 10)
	place(t, ex, "MS", model.OrderSideBuy, 75, 10)

	sell, err := ex.LastExecuted("AAPL", "GS", model.OrderSideSell)
	if err != nil {
		t.Fatalf("last executed failed: %v", err)
	}
	if sell == nil || sell.Status != model.OrderStatusFilled || sell.CumQuantity != 10 {
		t.Errorf("expected filled sell of 10, got %+v", sell)
	}

	buy, _ := ex.LastExecuted("AAPL", "MS", model.OrderSideBuy)
	if buy == nil || buy.Status != model.OrderStatusFilled {
		t.Errorf("expected filled buy, got %+v", buy)
	}

	// later execution supersedes
	place(t, ex, "GS", model.OrderSideSell, 80, 5)
	place(t, ex, "MS", model.OrderSideBuy, 80, 5)

	latest, _ := ex.LastExecuted("AAPL", "GS", model.OrderSideSell)
	if latest == nil || latest.ID <= sell.ID {
		t.Errorf("expected a later sell, got %+v", latest)
	}
}

// Cash never appears or disappears: the sum of all trader balances plus the
// capital locked by resting bids is constant, and shares likewise live either
// in holdings or reserved behind resting asks.
func TestConservation(t *testing.T) {
	ex := newTestExchange()
	initialCash := decimal.NewFromInt(20000)
	initialShares := int64(100)

	orders := []struct {
		trader string
		side   model.OrderSide
		price  int64
		qty    int64
	}{
		{"GS", model.OrderSideSell, 75, 50},
		{"MS", model.OrderSideBuy, 80, 25},
		{"MS", model.OrderSideBuy, 70, 30},
		{"GS", model.OrderSideSell, 70, 20},
		{"MS", model.OrderSideBuy, 76, 40},
		{"GS", model.OrderSideSell, 60, 30},
	}

	m, err := ex.matcher("AAPL")
	if err != nil {
		t.Fatalf("matcher lookup failed: %v", err)
	}

	for _, o := range orders {
		if _, err := ex.PlaceOrder(context.Background(), &model.PlaceOrder{
			Trader: o.trader, Ticker: "AAPL", Side: o.side,
			Price: decimal.NewFromInt(o.price), Quantity: o.qty,
		}); err != nil {
			t.Fatalf("place %+v failed: %v", o, err)
		}

		total := cashOf(t, ex, "GS").Add(cashOf(t, ex, "MS")).Add(m.reservedNotional())
		if !total.Equal(initialCash) {
			t.Fatalf("cash not conserved after %+v: %s != %s", o, total, initialCash)
		}

		shares := int64(0)
		for _, trader := range []string{"GS", "MS"} {
			if qty, ok := ex.Ledger().HoldingQty(trader, "AAPL"); ok {
				shares += qty
			}
		}
		m.book.RestingAsks(func(o *model.Order) { shares += o.LeavesQuantity })
		if shares != initialShares {
			t.Fatalf("shares not conserved after %+v: %d != %d", o, shares, initialShares)
		}
	}
}

type capturePublisher struct {
	events []*changelog.Event
}

func (c *capturePublisher) Publish(_ context.Context, ev *changelog.Event) error {
	c.events = append(c.events, ev)
	return nil
}

func TestChangelogEvents(t *testing.T) {
	ex := newTestExchange()
	pub := &capturePublisher{}
	ex.SetChangelog(pub)

	place(t, ex, "GS", model.OrderSideSell, 75, 50)
	place(t, ex, "MS", model.OrderSideBuy, 80, 25)

	counts := map[changelog.EventType]int{}
	for _, ev := range pub.events {
		counts[ev.Type]++
	}

	// order events: resting sell, then incoming buy plus its counterparty
	if counts[changelog.EventOrder] != 3 {
		t.Errorf("expected 3 order events, got %d", counts[changelog.EventOrder])
	}
	if counts[changelog.EventExecution] != 1 {
		t.Errorf("expected 1 execution event, got %d", counts[changelog.EventExecution])
	}
	// one balance and one holding snapshot per touched trader per call
	if counts[changelog.EventBalance] != 3 {
		t.Errorf("expected 3 balance events, got %d", counts[changelog.EventBalance])
	}
	if counts[changelog.EventHolding] != 3 {
		t.Errorf("expected 3 holding events, got %d", counts[changelog.EventHolding])
	}
}

func TestQuoteCallback(t *testing.T) {
	ex := newTestExchange()

	var lastBid, lastAsk *model.Order
	calls := 0
	ex.RegisterQuoteCallback(func(ticker string, bid, ask *model.Order) {
		if ticker != "AAPL" {
			t.Errorf("unexpected ticker %s", ticker)
		}
		lastBid, lastAsk = bid, ask
		calls++
	})

	place(t, ex, "GS", model.OrderSideSell, 75, 50)
	if calls != 1 {
		t.Fatalf("expected 1 quote callback, got %d", calls)
	}
	if lastBid != nil || lastAsk == nil || !lastAsk.Price.Equal(decimal.NewFromInt(75)) {
		t.Errorf("expected ask-only top of book, got bid=%+v ask=%+v", lastBid, lastAsk)
	}

	place(t, ex, "MS", model.OrderSideBuy, 70, 10)
	if lastBid == nil || !lastBid.Price.Equal(decimal.NewFromInt(70)) {
		t.Errorf("expected bid at 70, got %+v", lastBid)
	}
}

func TestOrderCallbackSeesCounterparties(t *testing.T) {
	ex := newTestExchange()

	var seen []model.Order
	ex.RegisterOrderCallback(func(order model.Order) {
		seen = append(seen, order)
	})

	sellReport := place(t, ex, "GS", model.OrderSideSell, 75, 50)
	seen = nil

	place(t, ex, "MS", model.OrderSideBuy, 80, 25)
	if len(seen) != 2 {
		t.Fatalf("expected incoming order plus 1 counterparty, got %d", len(seen))
	}
	if seen[0].Trader != "MS" {
		t.Errorf("expected the incoming order first, got %+v", seen[0])
	}
	if seen[1].ID != *sellReport.RestingOrderID || seen[1].CumQuantity != 25 {
		t.Errorf("expected the touched resting sell snapshot, got %+v", seen[1])
	}
}

func TestConcurrentSecuritiesStayIsolated(t *testing.T) {
	ex := newTestExchange()
	ex.RegisterSecurity("MSFT")
	ex.Ledger().IncreaseHolding("GS", "MSFT", 100) // nolint

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			ex.PlaceOrder(context.Background(), &model.PlaceOrder{ // nolint
				Trader: "GS", Ticker: "MSFT", Side: model.OrderSideSell,
				Price: decimal.NewFromInt(10), Quantity: 1,
			})
			ex.PlaceOrder(context.Background(), &model.PlaceOrder{ // nolint
				Trader: "MS", Ticker: "MSFT", Side: model.OrderSideBuy,
				Price: decimal.NewFromInt(10), Quantity: 1,
			})
		}
	}()

	for i := 0; i < 100; i++ {
		place(t, ex, "GS", model.OrderSideSell, 75, 1)
		place(t, ex, "MS", model.OrderSideBuy, 75, 1)
	}
	<-done

	expectHolding(t, ex, "MS", 100)
}
