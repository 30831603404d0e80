package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/feconecta/feconecta-api/internal/config"
	"github.com/feconecta/feconecta-api/internal/database"
	"github.com/feconecta/feconecta-api/internal/handler"
	"github.com/feconecta/feconecta-api/internal/middleware"
	"github.com/feconecta/feconecta-api/internal/models"
	"github.com/feconecta/feconecta-api/internal/realtime"
	"github.com/feconecta/feconecta-api/internal/repository"
	"github.com/feconecta/feconecta-api/internal/router"
	"github.com/feconecta/feconecta-api/internal/scripture"
	"github.com/feconecta/feconecta-api/internal/service"
	"github.com/feconecta/feconecta-api/internal/session"
	"github.com/feconecta/feconecta-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Profile{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
		&models.Hashtag{},
		&models.PostHashtag{},
		&models.Follow{},
		&models.Notification{},
		&models.Transaction{},
		&models.Community{},
		&models.CommunityMember{},
		&models.Event{},
		&models.EventRSVP{},
		&models.StudyPlan{},
		&models.PlanDay{},
		&models.PlanProgress{},
		&models.Note{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := realtime.NewBroker(redisClient, natsConn, "feconecta", logger)
	broker.Start(rootCtx)

	validate := validator.New(validator.WithRequiredStructEnabled())

	profileRepo := repository.NewProfileRepository(db)
	postRepo := repository.NewPostRepository(db)
	hashtagRepo := repository.NewHashtagRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	sessions := session.NewManager(profileRepo, validate, cfg.JWTSecret, logger)

	aiClient, err := ai.NewClient(ai.Config{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.AIModel,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("failed to create ai client: %v", err)
	}

	scriptures := scripture.NewClient(cfg.ScriptureBaseURL, logger)
	searches := service.NewSearchService(profileRepo, hashtagRepo, cfg.SearchDebounce, logger)
	dailyMessages := service.NewDailyMessageService(scriptures, aiClient, redisClient, cfg.DailyMessageTTL, logger, nil)
	analytics := service.NewAnalyticsService(analyticsRepo, aiClient, redisClient, 15*time.Minute, logger)

	authHandler := handler.NewAuthHandler(sessions, logger)
	feedHandler := handler.NewFeedHandler(postRepo, broker, cfg.FeedPageSize, logger)
	searchHandler := handler.NewSearchHandler(searches, logger)
	dailyMessageHandler := handler.NewDailyMessageHandler(dailyMessages, logger)
	analyticsHandler := handler.NewAnalyticsHandler(analytics, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app)
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         authHandler,
		FeedHandler:         feedHandler,
		SearchHandler:       searchHandler,
		DailyMessageHandler: dailyMessageHandler,
		AnalyticsHandler:    analyticsHandler,
		JWTMiddleware:       middleware.Protected(sessions),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
