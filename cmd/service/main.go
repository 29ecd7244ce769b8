package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"retail-service/config"
	"retail-service/internal/cache"
	"retail-service/internal/cleanup"
	"retail-service/internal/database"
	"retail-service/internal/handlers"
	"retail-service/internal/hashing"
	"retail-service/internal/logger"
	"retail-service/internal/producer"
	"retail-service/internal/repository"
	"retail-service/internal/router"
	"retail-service/internal/service"
	"retail-service/internal/session"
	"retail-service/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)
	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	var sessionStore session.Store
	var scheduler *cleanup.Scheduler
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Fatal("failed to create redis client", zap.Error(err))
		}
		defer redisClient.Close()
		sessionStore = session.NewRedisStore(redisClient)
		log.Info("web sessions stored in redis")
	} else {
		sessionStore = session.NewGormStore(repos.Sessions)
		scheduler = cleanup.NewScheduler(
			cleanup.NewCleanupService(db, cfg.Session.IdleTimeout, log),
			cfg.Session.SweepInterval,
			log,
		)
		log.Info("web sessions stored in postgres")
	}

	var events service.EventBus
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		p := producer.NewOrderEventProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrders)
		defer p.Close()
		events = p
		log.Info("order events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.TopicOrders))
	}

	verifier := hashing.ForScheme(cfg.Auth.PasswordScheme, cfg.Auth.BcryptCost)
	tokens := token.NewHSProvider(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)
	binder := session.NewBinder(sessionStore, cfg.Session.IdleTimeout)

	authSvc := service.NewAuthService(repos.Users, verifier, tokens, binder, cfg.JWT.AccessExp, log)
	catalogSvc := service.NewCatalogService(repos.Products, repos.References, log)
	orderSvc := service.NewOrderService(repos, repos, events, service.OrderOptions{
		EnableStockDecrement: cfg.Orders.EnableStockDecrement,
		DeliveryLeadTime:     cfg.Orders.DeliveryLeadTime,
		MaxNumberAttempts:    cfg.Orders.MaxNumberAttempts,
		Transitions:          service.AllowAnyTransition,
		Rand:                 service.DefaultRand,
		Location:             cfg.Orders.Location,
	}, log)

	r := router.Router(router.Deps{
		Auth:        authSvc,
		Catalog:     catalogSvc,
		Orders:      orderSvc,
		Policy:      service.NewPolicy(),
		Cookie:      handlers.CookieOptions{Name: cfg.Session.CookieName, Secure: cfg.Session.Secure},
		CORSOrigins: cfg.CORSOrigins,
	}, log)

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	if scheduler != nil {
		scheduler.Start(bgCtx)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("starting http server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-quit
	log.Info("shutting down http server")

	if scheduler != nil {
		scheduler.Stop()
	}
	bgCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		return
	}
	log.Info("http server stopped gracefully")
}
