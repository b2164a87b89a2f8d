package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/threadpost/threadpost-backend/internal/config"
	"github.com/threadpost/threadpost-backend/internal/dispatch"
	"github.com/threadpost/threadpost-backend/internal/handler"
	"github.com/threadpost/threadpost-backend/internal/middleware"
	"github.com/threadpost/threadpost-backend/internal/migration"
	"github.com/threadpost/threadpost-backend/internal/repository"
	"github.com/threadpost/threadpost-backend/internal/routes"
	"github.com/threadpost/threadpost-backend/internal/service"
	pkgcache "github.com/threadpost/threadpost-backend/pkg/cache"
	pkglogger "github.com/threadpost/threadpost-backend/pkg/logger"
	pkgredis "github.com/threadpost/threadpost-backend/pkg/redis"
)

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	zlog := pkglogger.GetLogger()
	zlog.Info().Str("env", env).Strs("dotenv", dotenvFiles).Msg("starting")

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", configPath, err)
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	zlog.Info().Str("db", cfg.Database.Name).Msg("connected to MySQL")

	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		zlog.Warn().Err(err).Msg("redis unavailable, continuing without cache and rate limiting")
		redisClient = nil
	}

	var cacheService pkgcache.Service
	if redisClient != nil {
		cacheService = pkgcache.NewService(redisClient)
	}

	messageRepo := repository.NewMessageRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Hooks are registered here, once, so the dispatcher's behavior is
	// visible at the composition root.
	dispatcher := dispatch.New()
	dispatcher.Register(dispatch.EventBeforeWrite, "archive-edit", dispatch.ArchiveOnEdit(historyRepo))
	dispatcher.Register(dispatch.EventAfterCreate, "notify-receiver", dispatch.NotifyOnCreate(notificationRepo))
	dispatcher.Register(dispatch.EventAfterDeleteIdentity, "cascade-delete",
		dispatch.CascadeOnIdentityDelete(messageRepo, historyRepo, notificationRepo))

	messageService := service.NewMessageService(db, messageRepo, historyRepo, notificationRepo, dispatcher, cfg.Thread.MaxDepth)
	threadService := service.NewThreadService(messageRepo, cfg.Thread.MaxDepth)
	notificationService := service.NewNotificationService(db, notificationRepo, messageRepo, cacheService)

	if env != "local" && env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	rateCfg := middleware.DefaultRateLimitConfig()
	rateCfg.RequestsPerMinute = cfg.RateLimit.RequestsPerMinute

	routes.Setup(r, routes.Deps{
		Messages:      handler.NewMessageHandler(messageService, threadService),
		Notifications: handler.NewNotificationHandler(notificationService),
		Redis:         redisClient,
		RateLimit:     rateCfg,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	zlog.Info().Str("addr", addr).Msg("listening")
	if err := r.Run(addr); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
