package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/godilite/kpi-server/internal/app"
	"github.com/godilite/kpi-server/internal/config"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("score weights loaded",
		zap.Float64("hold", cfg.ScoreWeights.Hold),
		zap.Float64("wrap", cfg.ScoreWeights.Wrap),
		zap.Float64("csat_behaviour", cfg.ScoreWeights.CSATBehaviour),
		zap.Float64("csat_resolution", cfg.ScoreWeights.CSATResolution),
		zap.Float64("auto_on", cfg.ScoreWeights.AutoOn),
		zap.Int("top_n", cfg.TopN))

	ctx := context.Background()
	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}

	if err := application.Run(); err != nil {
		logger.Fatal("Application exited with error", zap.Error(err))
	}
}
