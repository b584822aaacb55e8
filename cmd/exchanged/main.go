package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/exchange-engine/config"
	"github.com/joripage/exchange-engine/pkg/exchange"
	"github.com/joripage/exchange-engine/pkg/exchange/changelog"
	"github.com/joripage/exchange-engine/pkg/exchange/execstore"
	fixgateway "github.com/joripage/exchange-engine/pkg/exchange/fix"
	"github.com/joripage/exchange-engine/pkg/exchange/ledger"
	"github.com/joripage/exchange-engine/pkg/exchange/model"
	"github.com/joripage/exchange-engine/pkg/exchange/quote"
	redis_wrapper "github.com/joripage/exchange-engine/pkg/infra/redis"
	"github.com/joripage/exchange-engine/pkg/kafkawrapper"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	configBytes, err := json.MarshalIndent(cfg, "", "   ")
	if err != nil {
		zap.S().Warnf("could not convert config to JSON: %v", err)
	} else {
		zap.S().Debugf("load config %s", string(configBytes))
	}

	go func() {
		http.ListenAndServe("localhost:6060", nil) // nolint
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	ex := exchange.New(ledger.New(), execstore.NewStore())
	seed(ex, cfg)

	if cfg.Nats != nil {
		nc, err := nats.Connect(cfg.Nats.URL)
		if err != nil {
			zap.S().Errorf("connect nats fail with err: %v", err)
			panic(err)
		}
		js, _ := nc.JetStream()
		if err := changelog.EnsureStream(js, cfg.Nats.Stream, cfg.Nats.Subject); err != nil {
			zap.S().Warnf("ensure stream fail: %v", err)
		}
		ex.SetChangelog(changelog.NewJetStreamPublisher(js, cfg.Nats.Subject))
	} else if cfg.Kafka != nil {
		producer := kafkawrapper.NewProducer(*cfg.Kafka)
		defer producer.Close() // nolint
		ex.SetChangelog(changelog.NewKafkaPublisher(producer, cfg.Kafka.Topic))
	}

	if cfg.Redis != nil {
		rdb, err := redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			zap.S().Errorf("init redis fail with err: %v", err)
			panic(err)
		}
		cache := quote.NewCache(rdb, time.Minute)
		ex.RegisterQuoteCallback(func(ticker string, bid, ask *model.Order) {
			if err := cache.Update(ctx, ticker, bid, ask); err != nil {
				zap.S().Warnf("update quote cache fail: %v", err)
			}
		})
	}

	if cfg.Fix != nil {
		gateway := fixgateway.NewGateway(&fixgateway.GatewayConfig{
			ConfigFilepath: cfg.Fix.ConfigFilepath,
		}, ex)
		if err := gateway.Start(ctx); err != nil {
			panic(err)
		}
		defer gateway.Stop()
	}

	fmt.Println("Exchange started. Press Ctrl+C to exit.")

	<-sigs
	fmt.Println("Shutting down...")

	cancel()

	fmt.Println("Exited cleanly.")
}

func seed(ex *exchange.Exchange, cfg *config.AppConfig) {
	for _, ticker := range cfg.Tickers {
		ex.RegisterSecurity(ticker)
	}
	for _, trader := range cfg.Traders {
		cash, err := decimal.NewFromString(trader.Cash)
		if err != nil {
			zap.S().Errorf("invalid seed cash for %s: %v", trader.Name, err)
			panic(err)
		}
		ex.RegisterTrader(trader.Name, cash)
	}
	for _, holding := range cfg.Holdings {
		if err := ex.Ledger().IncreaseHolding(holding.Trader, holding.Ticker, holding.Quantity); err != nil {
			zap.S().Errorf("seed holding fail for %s/%s: %v", holding.Trader, holding.Ticker, err)
			panic(err)
		}
	}
}
