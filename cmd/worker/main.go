package main

import (
	"context"
	"encoding/json"
	"flag"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/joripage/exchange-engine/config"
	"github.com/joripage/exchange-engine/pkg/exchange/changelog"
	"github.com/joripage/exchange-engine/pkg/exchange/repo"
	"github.com/joripage/exchange-engine/pkg/exchange/worker"
	postgres_wrapper "github.com/joripage/exchange-engine/pkg/infra/postgres"
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

	ctx := context.Background()

	nc, err := nats.Connect(cfg.Nats.URL)
	if err != nil {
		zap.S().Errorf("connect nats fail with err: %v", err)
		panic(err)
	}
	js, _ := nc.JetStream()

	if err := changelog.EnsureStream(js, cfg.Nats.Stream, cfg.Nats.Subject); err != nil {
		zap.S().Warnf("ensure stream fail: %v", err)
	}

	db, err := postgres_wrapper.InitPostgres(cfg.ExchangeDB)
	if err != nil {
		zap.S().Errorf("init db fail with err: %v", err)
		panic(err)
	}

	sqlRepo := repo.NewRepo(db)

	w := worker.NewWorker(sqlRepo)
	go w.StartConsumer(ctx, js, cfg.Nats.Subject, cfg.Nats.Durable) // nolint

	select {}
}
