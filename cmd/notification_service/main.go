package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subtitle_platform_service/internal/notification/app"
	"subtitle_platform_service/internal/notification/domain"
	"subtitle_platform_service/internal/notification/repository"
	"subtitle_platform_service/pkg/config"
	"subtitle_platform_service/pkg/database"
	"subtitle_platform_service/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.NotificationService, config.EnvConfig.NotificationServiceLogPath)

	cfg := config.LoadConfig[config.Notification](config.EnvConfig.NotificationService, config.EnvConfig.NotificationServiceYAMLPath)

	sqlParams := fmt.Sprintf("postgres://%s:%s@%s:%d/%s", cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database)
	pool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    sqlParams,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to postgreSQL database after retries",
			zap.String("address", fmt.Sprintf("[%s]", sqlParams)),
			zap.Error(err),
		)
	}
	defer pool.Close()

	notificationRepo := repository.NewNotificationRepository(pool)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := notificationRepo.Migrate(ctx); err != nil {
			cancel()
			log.Fatalf("notification migration failed: %v", err)
		}
		cancel()
	}

	conn, err := database.ConnectRabbitMQWithRetry(database.Connection{
		ConnectStr:    cfg.Rabbit.URL,
		RetryCount:    cfg.Rabbit.RetryCount,
		RetryInterval: time.Duration(cfg.Rabbit.RetryInterval),
	})
	if err != nil {
		log.Fatalf("RabbitMQ connect failed: %v", err)
	}
	defer conn.Close()

	rabbitChannel, err := database.GetRabbitMQChannelWithRetry(conn, cfg.Rabbit.RetryCount, time.Duration(cfg.Rabbit.RetryInterval))
	if err != nil {
		log.Fatalf("RabbitMQ channel failed: %v", err)
	}
	defer rabbitChannel.Close()

	deliveryQueue := domain.DeliveryQueue(cfg.Rabbit.Queue)
	if _, err := rabbitChannel.QueueDeclare(
		deliveryQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		log.Fatalf("Queue Declare failed: %v", err)
	}

	timeout := cfg.WebhookTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	delivery := app.NewDeliveryUseCase(notificationRepo, timeout)
	consumer := app.NewConsumer(rabbitChannel, delivery, deliveryQueue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go consumer.StartConsumer(ctx)

	logger.Log.Info("NotificationService consuming delivery jobs")

	// 等待中斷訊號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("NotificationService shutting down")
}
