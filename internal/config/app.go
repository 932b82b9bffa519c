package config

import (
	"sync"

	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// loadDotEnv reads an optional .env file once per process. Variables that
// are already set in the environment win.
func loadDotEnv() {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})
}

type AppConfig struct {
	Server   ServerConfig
	Currency CurrencyConfig
	Log      LogConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	currencyCfg, err := LoadCurrency()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server:   serverCfg,
		Currency: currencyCfg,
		Log:      logCfg,
	}, nil
}
