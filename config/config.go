package config

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	postgres_wrapper "github.com/joripage/exchange-engine/pkg/infra/postgres"
	redis_wrapper "github.com/joripage/exchange-engine/pkg/infra/redis"
	"github.com/joripage/exchange-engine/pkg/kafkawrapper"
)

type NatsConfig struct {
	URL     string `yaml:"url"`
	Stream  string `yaml:"stream"`
	Subject string `yaml:"subject"`
	Durable string `yaml:"durable"`
}

type FixConfig struct {
	ConfigFilepath string `yaml:"config_filepath"`
}

type SeedTrader struct {
	Name string `yaml:"name"`
	Cash string `yaml:"cash"`
}

type SeedHolding struct {
	Trader   string `yaml:"trader"`
	Ticker   string `yaml:"ticker"`
	Quantity int64  `yaml:"quantity"`
}

type AppConfig struct {
	ServiceName string                           `yaml:"service_name"`
	ExchangeDB  *postgres_wrapper.PostgresConfig `yaml:"exchange_db"`
	Redis       *redis_wrapper.RedisConfig       `yaml:"redis"`
	Nats        *NatsConfig                      `yaml:"nats"`
	Kafka       *kafkawrapper.ProducerConfig     `yaml:"kafka"`
	Fix         *FixConfig                       `yaml:"fix"`

	// master data seeded at startup; the engine never creates it on its own
	Tickers  []string      `yaml:"tickers"`
	Traders  []SeedTrader  `yaml:"traders"`
	Holdings []SeedHolding `yaml:"holdings"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	fields := []interface{}{
		"func",
		"config.readFromFile",
		"filePath",
		filePath,
	}

	sugar := zap.S().With(fields...)

	sugar.Debug("Load config...")
	zap.S().Debugf("CONFIG_FILE=%v", filePath)

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}

	err = yaml.Unmarshal(configBytes, cfg)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}
