package main

import (
	"context"
	"fmt"
	"log"
	"time"

	accounthandlers "subtitle_platform_service/internal/account/api/handlers"
	accountrouter "subtitle_platform_service/internal/account/api/router"
	accountapp "subtitle_platform_service/internal/account/app"
	accountdomain "subtitle_platform_service/internal/account/domain"
	accountrepo "subtitle_platform_service/internal/account/repository"
	notifhandlers "subtitle_platform_service/internal/notification/api/handlers"
	notifrouter "subtitle_platform_service/internal/notification/api/router"
	notifapp "subtitle_platform_service/internal/notification/app"
	notifdomain "subtitle_platform_service/internal/notification/domain"
	notifrepo "subtitle_platform_service/internal/notification/repository"
	searchapp "subtitle_platform_service/internal/search/app"
	subhandlers "subtitle_platform_service/internal/subtitles/api/handlers"
	subrouter "subtitle_platform_service/internal/subtitles/api/router"
	subapp "subtitle_platform_service/internal/subtitles/app"
	subrepo "subtitle_platform_service/internal/subtitles/repository"
	teamhandlers "subtitle_platform_service/internal/team/api/handlers"
	teamrouter "subtitle_platform_service/internal/team/api/router"
	teamapp "subtitle_platform_service/internal/team/app"
	teamrepo "subtitle_platform_service/internal/team/repository"
	videohandlers "subtitle_platform_service/internal/video/api/handlers"
	videorouter "subtitle_platform_service/internal/video/api/router"
	videoapp "subtitle_platform_service/internal/video/app"
	videorepo "subtitle_platform_service/internal/video/repository"
	vishandlers "subtitle_platform_service/internal/visibility/api/handlers"
	visrouter "subtitle_platform_service/internal/visibility/api/router"
	visapp "subtitle_platform_service/internal/visibility/app"
	visrepo "subtitle_platform_service/internal/visibility/repository"
	"subtitle_platform_service/pkg/config"
	"subtitle_platform_service/pkg/database"
	"subtitle_platform_service/pkg/logger"
	testtool "subtitle_platform_service/pkg/test_tool"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.PlatformService, config.EnvConfig.PlatformServiceLogPath)

	cfg := config.LoadConfig[config.Platform](config.EnvConfig.PlatformService, config.EnvConfig.PlatformServiceYAMLPath)

	testtool.StartPprof()

	// 1. PostgreSQL: pgx pool 給 account 跟 notification ledger
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

	// gorm 給 video / team / visibility / subtitles
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

	userRepo := accountrepo.NewUserRepository(pool)
	notificationRepo := notifrepo.NewNotificationRepository(pool)
	videoRepo := videorepo.NewVideoRepo(db)
	teamRepo := teamrepo.NewTeamRepo(db)
	policyRepo := visrepo.NewPolicyRepo(db)
	subtitleRepo := subrepo.NewSubtitleRepo(db)

	migrateAll(userRepo, notificationRepo, videoRepo, teamRepo, policyRepo, subtitleRepo)

	// 2. Redis session store
	masterName, sentinel := config.GetRedisSetting()
	redisRepo, err := database.NewRedisRepository[accountdomain.UserSession](masterName, sentinel, cfg.RedisSession.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}

	// 3. RabbitMQ: webhook delivery queue
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

	deliveryQueue := notifdomain.DeliveryQueue(cfg.Rabbit.Queue)
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

	// 4. Kafka: reindex event stream
	kafkaWriter, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
		Brokers:       cfg.Kafka.Brokers,
		Topic:         cfg.Kafka.Topic,
		RetryCount:    cfg.Kafka.RetryCount,
		RetryInterval: time.Duration(cfg.Kafka.RetryInterval),
	})
	if err != nil {
		log.Fatalf("Kafka writer failed: %v", err)
	}
	defer kafkaWriter.Close()

	// 5. MinIO: subtitle content bodies
	minioClient, err := database.NewMinIOConnection(database.MinIOConnection{
		Endpoint:   cfg.MinIO.Endpoint,
		User:       cfg.MinIO.User,
		Password:   cfg.MinIO.Password,
		BucketName: cfg.MinIO.Bucket,
		UseSSL:     cfg.MinIO.UseSSL,

		RetryCount:    cfg.MinIO.RetryCount,
		RetryInterval: time.Duration(cfg.MinIO.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to minio after retries", zap.Error(err))
	}

	// 6. 組裝 usecase
	reindexer := searchapp.NewReindexPublisher(kafkaWriter)
	sender := notifapp.NewAMQPSender(database.NewRabbitRepository(rabbitChannel), deliveryQueue)
	registry := notifapp.DefaultRegistry()
	dispatcher := notifapp.NewDispatcher(notificationRepo, registry, sender)

	userUC := accountapp.NewUserUseCase(userRepo, cfg.SessionTTL*time.Minute, redisRepo, teamRepo, dispatcher)
	teamUC := teamapp.NewTeamUseCase(teamRepo, dispatcher, userUC)
	videoUC := videoapp.NewVideoUseCase(videoRepo, dispatcher, reindexer)
	visibilityUC := visapp.NewVisibilityUseCase(policyRepo, teamUC, reindexer)
	subtitleUC := subapp.NewSubtitleUseCase(subtitleRepo, videoRepo, minioClient, dispatcher, reindexer)
	notificationUC := notifapp.NewNotificationUseCase(notificationRepo, registry, sender)

	// 7. fiber app 與路由
	r := fiber.New()

	accountrouter.RegisterRoutes(r, &accounthandlers.UserHandler{Usecase: userUC})
	teamrouter.RegisterRoutes(r, &teamhandlers.TeamHandler{Usecase: teamUC})
	videorouter.RegisterRoutes(r, &videohandlers.VideoHandler{Usecase: videoUC, Visibility: visibilityUC})
	visrouter.RegisterRoutes(r, &vishandlers.PolicyHandler{Usecase: visibilityUC, Videos: videoUC})
	subrouter.RegisterRoutes(r, &subhandlers.SubtitleHandler{Usecase: subtitleUC, Videos: videoUC, Visibility: visibilityUC})
	notifrouter.RegisterRoutes(r, &notifhandlers.NotificationHandler{Usecase: notificationUC})

	logger.Log.Info(fmt.Sprintf("PlatformService listening on : %s", cfg.Port))
	if err := r.Listen(cfg.IP + ":" + cfg.Port); err != nil {
		logger.Log.Fatal("Server failed to start", zap.Error(err))
	}
}

func migrateAll(userRepo accountrepo.UserRepository,
	notificationRepo notifrepo.NotificationRepository,
	videoRepo videorepo.VideoRepo,
	teamRepo teamrepo.TeamRepo,
	policyRepo visrepo.PolicyRepo,
	subtitleRepo subrepo.SubtitleRepo,
) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := userRepo.Migrate(ctx); err != nil {
		log.Fatalf("accounts migration failed: %v", err)
	}
	if err := notificationRepo.Migrate(ctx); err != nil {
		log.Fatalf("notification migration failed: %v", err)
	}
	if err := videoRepo.AutoMigrate(); err != nil {
		log.Fatalf("videos migration failed: %v", err)
	}
	if err := teamRepo.AutoMigrate(); err != nil {
		log.Fatalf("teams migration failed: %v", err)
	}
	if err := policyRepo.AutoMigrate(); err != nil {
		log.Fatalf("visibility migration failed: %v", err)
	}
	if err := subtitleRepo.AutoMigrate(); err != nil {
		log.Fatalf("subtitles migration failed: %v", err)
	}
}
