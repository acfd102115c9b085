package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	authapp "github.com/wyfcoding/medsupply/internal/auth/application"
	authdomain "github.com/wyfcoding/medsupply/internal/auth/domain"
	authhttp "github.com/wyfcoding/medsupply/internal/auth/interfaces/http"
	catalogapp "github.com/wyfcoding/medsupply/internal/catalog/application"
	catalogdomain "github.com/wyfcoding/medsupply/internal/catalog/domain"
	catalogmysql "github.com/wyfcoding/medsupply/internal/catalog/infrastructure/persistence/mysql"
	cataloghttp "github.com/wyfcoding/medsupply/internal/catalog/interfaces/http"
	notifapp "github.com/wyfcoding/medsupply/internal/notification/application"
	notifdomain "github.com/wyfcoding/medsupply/internal/notification/domain"
	notifmysql "github.com/wyfcoding/medsupply/internal/notification/infrastructure/persistence/mysql"
	"github.com/wyfcoding/medsupply/internal/notification/infrastructure/sender"
	orderapp "github.com/wyfcoding/medsupply/internal/order/application"
	orderdomain "github.com/wyfcoding/medsupply/internal/order/domain"
	"github.com/wyfcoding/medsupply/internal/order/infrastructure/messaging"
	ordermysql "github.com/wyfcoding/medsupply/internal/order/infrastructure/persistence/mysql"
	orderhttp "github.com/wyfcoding/medsupply/internal/order/interfaces/http"
	settingsapp "github.com/wyfcoding/medsupply/internal/settings/application"
	settingsdomain "github.com/wyfcoding/medsupply/internal/settings/domain"
	settingsmysql "github.com/wyfcoding/medsupply/internal/settings/infrastructure/persistence/mysql"
	settingshttp "github.com/wyfcoding/medsupply/internal/settings/interfaces/http"
	userapp "github.com/wyfcoding/medsupply/internal/user/application"
	userdomain "github.com/wyfcoding/medsupply/internal/user/domain"
	usermysql "github.com/wyfcoding/medsupply/internal/user/infrastructure/persistence/mysql"
	userhttp "github.com/wyfcoding/medsupply/internal/user/interfaces/http"
	"github.com/wyfcoding/medsupply/pkg/cache"
	"github.com/wyfcoding/medsupply/pkg/config"
	"github.com/wyfcoding/medsupply/pkg/db"
	"github.com/wyfcoding/medsupply/pkg/logger"
	"github.com/wyfcoding/medsupply/pkg/metrics"
	"github.com/wyfcoding/medsupply/pkg/middleware"
	"github.com/wyfcoding/medsupply/pkg/mq"
	"github.com/wyfcoding/medsupply/pkg/ratelimit"
	"github.com/wyfcoding/medsupply/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/portal/config.toml", "path to config file")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "Starting portal service",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	// 3. 初始化数据库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to init database", "error", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(
		&userdomain.User{},
		&catalogdomain.Category{},
		&catalogdomain.Product{},
		&catalogdomain.UserProductAssignment{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&settingsdomain.Setting{},
		&notifdomain.Notification{},
	); err != nil {
		logger.Fatal(ctx, "Failed to migrate database", "error", err)
	}

	// 4. 初始化 Redis（缓存与限流）
	var redisCache *cache.RedisCache
	if cfg.Redis.Host != "" {
		redisCache, err = cache.New(cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to init Redis", "error", err)
		}
		defer redisCache.Close()
	}

	// 5. 初始化 Kafka 生产者（可选）
	var producer *mq.KafkaProducer
	if cfg.Kafka.Enabled {
		producer, err = mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to init Kafka producer", "error", err)
		}
		defer producer.Close()
	}

	// 6. 初始化指标
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New("portal")
		if err := m.Register(); err != nil {
			logger.Fatal(ctx, "Failed to register metrics", "error", err)
		}
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Fatal(ctx, "Failed to start metrics server", "error", err)
		}
	}

	// 7. 装配仓储
	userRepo := usermysql.NewUserRepository(database.DB)
	productRepo := catalogmysql.NewProductRepository(database.DB)
	categoryRepo := catalogmysql.NewCategoryRepository(database.DB)
	assignmentRepo := catalogmysql.NewAssignmentRepository(database.DB)
	orderRepo := ordermysql.NewOrderRepository(database)
	settingRepo := settingsmysql.NewSettingRepository(database.DB)
	notificationRepo := notifmysql.NewNotificationRepository(database.DB)

	// 8. 装配服务
	tokens := authdomain.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTL)*time.Hour)
	authService := authapp.NewAuthApplicationService(userRepo, tokens)
	userService := userapp.NewUserApplicationService(userRepo)
	catalogService := catalogapp.NewCatalogApplicationService(productRepo, categoryRepo, assignmentRepo)
	settingService := settingsapp.NewSettingApplicationService(settingRepo, redisCache)

	smtpSender := sender.NewSMTPSender(
		cfg.SMTP.Host, cfg.SMTP.Port,
		cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From,
	)
	dispatcher := notifapp.NewDispatcher(settingService, userRepo, smtpSender, notificationRepo, m)
	dispatcher.SetRetryPolicy(cfg.Notification.MaxAttempts, time.Duration(cfg.Notification.RetryDelay)*time.Second)

	var publisher orderdomain.EventPublisher
	if producer != nil {
		publisher = messaging.NewKafkaEventPublisher(producer, cfg.Kafka.OrderTopic)
	}
	idgen := utils.NewSnowflakeID(1)
	orderService := orderapp.NewOrderApplicationService(orderRepo, publisher, dispatcher, idgen, m)

	// 9. 装配 HTTP 路由
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	if m != nil {
		router.Use(middleware.GinMetricsMiddleware(m))
	}
	if cfg.RateLimit.Enabled && redisCache != nil {
		limiter := ratelimit.NewRedisRateLimiter(redisCache.GetClient())
		router.Use(middleware.GinRateLimitMiddleware(limiter, ratelimit.Limit{
			Rate:   cfg.RateLimit.Rate,
			Period: time.Duration(cfg.RateLimit.Period) * time.Second,
			Burst:  cfg.RateLimit.Burst,
		}))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName})
	})

	api := router.Group("/api/v1")
	authhttp.NewAuthHandler(authService).RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(authhttp.AuthRequired(tokens))
	adminOnly := authhttp.AdminRequired()

	cataloghttp.NewCatalogHandler(catalogService).RegisterRoutes(protected, adminOnly)
	orderhttp.NewOrderHandler(orderService).RegisterRoutes(protected, adminOnly)
	userhttp.NewUserHandler(userService).RegisterRoutes(protected, adminOnly)
	settingshttp.NewSettingHandler(settingService).RegisterRoutes(protected, adminOnly)

	// 10. 启动 HTTP 服务并等待退出信号
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "HTTP server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "Shutting down portal service")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server forced to shutdown", "error", err)
	}
	logger.Info(ctx, "Portal service stopped")
}
