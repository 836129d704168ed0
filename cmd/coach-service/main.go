package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-trading-coach/internal/coach/config"
	"go-trading-coach/internal/coach/delivery/consumer"
	delivery "go-trading-coach/internal/coach/delivery/http"
	_ "go-trading-coach/internal/coach/docs"
	"go-trading-coach/internal/coach/repository"
	"go-trading-coach/internal/coach/service"
	"go-trading-coach/pkg/common"
	"go-trading-coach/pkg/logger"
	"go-trading-coach/pkg/postgres"
	"go-trading-coach/pkg/redis"
	"go-trading-coach/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the coach service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Coach Service", zap.String("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Create the consumer group if it doesn't exist
	// MKSTREAM creates the stream if it doesn't exist
	if err := redisClient.XGroupCreateMkStream(context.Background(), common.RedisStreamChatAnalyze, common.RedisStreamGroup, "0").Err(); err != nil {
		if err.Error() != "BUSYGROUP Consumer Group name already exists" {
			appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err))
		}
	}

	// Initialize AI provider
	var aiRepo repository.AIRepository
	switch cfg.AI.Provider {
	case "gemini":
		genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI client", zap.Error(err))
		}
		repo, err := repository.NewGeminiAIRepository(cfg, appLogger, genAiClient)
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI repository", zap.Error(err))
		}
		aiRepo = repo
	default:
		appLogger.Fatal("Invalid AI provider specified in config", zap.String("provider", cfg.AI.Provider))
	}

	// Telegram ops notifier (optional)
	var notifier telegram.Notifier
	if cfg.Telegram.Enabled {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", zap.Error(err))
		}
	}

	// Initialize repositories and services
	analysisRepo := repository.NewAnalysisRepository(db.DB)
	usageTracker := service.NewUsageTracker(prometheus.DefaultRegisterer)
	coachSvc := service.NewCoachService(cfg, appLogger, aiRepo, analysisRepo, usageTracker)

	// Initialize and start the Redis consumer
	redisConsumer := consumer.NewRedisConsumer(cfg, redisClient.Client, coachSvc, notifier, appLogger)
	redisConsumer.Start(ctx)

	// Daily usage digest
	cronScheduler := cron.New()
	if notifier != nil && cfg.Coach.UsageDigestSchedule != "" {
		if _, err := cronScheduler.AddFunc(cfg.Coach.UsageDigestSchedule, func() {
			digest := telegram.FormatUsageDigestMessage(time.Now(), coachSvc.Usage())
			if err := notifier.SendMessage(digest); err != nil {
				appLogger.Error("Failed to send usage digest", logger.ErrorField(err))
			}
		}); err != nil {
			appLogger.Fatal("Failed to schedule usage digest", zap.Error(err))
		}
		cronScheduler.Start()
	}

	// HTTP server
	e := echo.New()
	e.HideBanner = true

	analysisHandler := delivery.NewAnalysisHandler(coachSvc, appLogger)
	apiGroup := e.Group("/api/v1")
	analysisHandler.RegisterRoutes(apiGroup.Group("/analyses"))
	apiGroup.GET("/usage", analysisHandler.GetUsage)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", swagger.WrapHandler)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	appLogger.Info("Coach service started. Waiting for messages...")

	// Wait for interrupt signal to gracefully shut down the service
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down coach service...")
	cancel()
	redisConsumer.Stop()
	cronScheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Failed to shut down HTTP server", logger.ErrorField(err))
	}

	appLogger.Info("Coach service stopped.")
}

func main() {
	rootCmd := &cobra.Command{Use: "coach-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-coach.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing coach-service CLI: %s\n", err)
		os.Exit(1)
	}
}
