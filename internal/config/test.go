package config

import "github.com/caarlos0/env/v11"

// TestConfig points integration tests at a disposable Postgres. Each test
// works inside its own schema.
type TestConfig struct {
	PostgresDSN string `env:"TEST_POSTGRES_DSN,required,notEmpty"`
}

func LoadTest() (TestConfig, error) {
	loadDotEnv()
	var cfg TestConfig
	if err := env.Parse(&cfg); err != nil {
		return TestConfig{}, err
	}
	return cfg, nil
}
