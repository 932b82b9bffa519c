package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// CurrencyConfig holds the rate table used to convert declared prices into
// the canonical currency. Keys are lowercase currency codes.
type CurrencyConfig struct {
	Rates    map[string]string `env:"CURRENCY_RATES" envKeyValSeparator:":" envDefault:"eur:25.00,usd:23.00"`
	RatesURL string            `env:"CURRENCY_RATES_URL"`
	RatesTTL time.Duration     `env:"CURRENCY_RATES_TTL" envDefault:"1h"`
}

func LoadCurrency() (CurrencyConfig, error) {
	loadDotEnv()
	var cfg CurrencyConfig
	err := env.Parse(&cfg)
	return cfg, err
}
