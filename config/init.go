package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/ledgerstack/ledgerstack/internal/logger"
	"github.com/ledgerstack/ledgerstack/internal/tracing"
)

type Config struct {
	AppConfig            *AppConfig
	Logger               *logger.Config
	Tracing              *tracing.JaegerConfig
	LedgerDatabaseConfig *LedgerDatabaseConfig
	GoogleOAuthConfig    *GoogleOAuthConfig
	GeminiConfig         *GeminiConfig
	SyncConfig           *SyncConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:            &AppConfig{},
		Logger:               &logger.Config{},
		Tracing:              &tracing.JaegerConfig{},
		LedgerDatabaseConfig: &LedgerDatabaseConfig{},
		GoogleOAuthConfig:    &GoogleOAuthConfig{},
		GeminiConfig:         &GeminiConfig{},
		SyncConfig:           &SyncConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		log.Fatalf("Error loading ledgerstack config: %v", err)
	}

	return config, nil
}
