package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"pos_client/api"
	"pos_client/internal/backend"
)

// AppConfig defines all configurable parameters for the client daemon,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8081"`
	Backend    backend.Config
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	client := cfg.Backend.New(logger)
	defer client.Close()

	r := gin.Default()
	api.InitRoutes(r, api.Gateways{Sale: client, Catalog: client}, logger)

	logger.Info("pos client listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("backend", cfg.Backend.BaseURL))

	if err := r.Run(cfg.ListenAddr); err != nil {
		panic(fmt.Errorf("error trying to start server: %v", err))
	}
}
