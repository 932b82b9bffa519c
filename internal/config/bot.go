package config

import "github.com/caarlos0/env/v11"

type BotConfig struct {
	WSURL    string `env:"WS_URL" envDefault:"ws://localhost:8080/ws/room"`
	RoomID   string `env:"ROOM_ID"`
	UserID   string `env:"USER_ID" envDefault:"bot"`
	Currency string `env:"BOT_CURRENCY" envDefault:"czk"`
	Evaluate bool   `env:"BOT_EVALUATE" envDefault:"false"`
}

func LoadBot() (BotConfig, error) {
	loadDotEnv()
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
