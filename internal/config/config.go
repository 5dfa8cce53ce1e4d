package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	SerperAPIKey      string `env:"SERPER_API_KEY,required,notEmpty"`
	OpenAIAPIKey      string `env:"OPENAI_API_KEY,required,notEmpty"`
	ListenAddr        string `env:"LISTEN_ADDR"         envDefault:":8080"`
	DBPath            string `env:"DB_PATH"             envDefault:"postsmith.sqlite"`
	TelegramToken     string `env:"TELEGRAM_TOKEN"`
	TelegramChatID    int64  `env:"TELEGRAM_CHAT_ID"`
	RunTimeoutSeconds int64  `env:"RUN_TIMEOUT_SECONDS" envDefault:"120"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
