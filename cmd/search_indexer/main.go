package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subtitle_platform_service/internal/search/app"
	"subtitle_platform_service/internal/video/repository"
	"subtitle_platform_service/pkg/config"
	"subtitle_platform_service/pkg/database"
	"subtitle_platform_service/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.SearchIndexer, config.EnvConfig.SearchIndexerLogPath)

	cfg := config.LoadConfig[config.SearchIndexer](config.EnvConfig.SearchIndexer, config.EnvConfig.SearchIndexerYAMLPath)

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		cfg.PostgreSQL.Host, cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Database, cfg.PostgreSQL.Port)
	db, err := database.NewGormConnection(database.Connection{
		ConnectStr:    dsn,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to open gorm connection after retries", zap.Error(err))
	}
	videoRepo := repository.NewVideoRepo(db)

	masterName, sentinel := config.GetRedisSetting()
	docs, err := database.NewRedisRepository[app.SearchDoc](masterName, sentinel, cfg.RedisIndex.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}

	reader := database.NewKafkaReader(database.KafkaConnection{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer reader.Close()

	indexer := app.NewIndexer(reader, videoRepo, docs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := indexer.Run(ctx); err != nil {
			logger.Log.Fatal("indexer stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("SearchIndexer shutting down")
}
