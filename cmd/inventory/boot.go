package main

import (
	"fmt"
	"log/slog"
	"os"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/inventory/config"
	"github.com/shashiranjanraj/inventory/pkg/database"
	"github.com/shashiranjanraj/inventory/pkg/logger"
)

// bootLogger rebuilds the base logger from config and, when LOG_MONGO_URI
// is set, fans records out to MongoDB. The returned func flushes the sink.
func bootLogger() func() {
	uri := config.LogMongoURI()
	if uri == "" {
		logger.Replace(logger.New(os.Stdout, config.AppEnv()))
		return func() {}
	}

	sink, err := logger.NewMongoHandler(uri, config.LogMongoDB(), config.LogMongoCollection(), slog.LevelInfo)
	if err != nil {
		logger.Replace(logger.New(os.Stdout, config.AppEnv()))
		logger.Warn("mongo log sink disabled", "error", err)
		return func() {}
	}
	logger.Replace(logger.New(os.Stdout, config.AppEnv(), sink))
	return sink.Close
}

// bootDB loads config and opens the configured database.
func bootDB() (*gorm.DB, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	db, err := database.Open(config.DatabaseDriver(), config.DatabaseDSN())
	if err != nil {
		return nil, err
	}
	return db, nil
}
