package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	cartcache "github.com/leonjames-san/familiams/internal/cart/cache"
	cartrepo "github.com/leonjames-san/familiams/internal/cart/repository"
	cartservice "github.com/leonjames-san/familiams/internal/cart/service"
	catalogrepo "github.com/leonjames-san/familiams/internal/catalog/repository"
	"github.com/leonjames-san/familiams/internal/checkout"
	h "github.com/leonjames-san/familiams/internal/http"
	"github.com/leonjames-san/familiams/internal/order/publisher"
	orderrepo "github.com/leonjames-san/familiams/internal/order/repository"
	"github.com/leonjames-san/familiams/internal/telemetry"
)

type Config struct {
	HTTPPort          string
	MongoURI          string
	MongoDatabase     string
	RedisAddr         string
	CatalogDBPath     string
	CatalogMigrations string
	KafkaBrokers      []string
	Postgres          *orderrepo.Credentials
	RequestTimeout    time.Duration
	ShutdownTimeout   time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:     getEnv("MONGO_DATABASE", "storefront"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		CatalogDBPath:     getEnv("CATALOG_DB_PATH", "storefront.db"),
		CatalogMigrations: getEnv("CATALOG_MIGRATIONS_PATH", "internal/catalog/repository/migrations"),
		KafkaBrokers:      strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		Postgres: &orderrepo.Credentials{
			Host:              getEnv("POSTGRES_HOST", "localhost"),
			Port:              getEnvInt("POSTGRES_PORT", 5432),
			User:              getEnv("POSTGRES_USER", "postgres"),
			Password:          getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:            getEnv("POSTGRES_DB", "orders"),
			MigrationsDirPath: getEnv("ORDERS_MIGRATIONS_PATH", "internal/order/repository/migrations"),
		},
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func main() {
	telemetry.InitLogger(slog.LevelInfo)
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Cart storage: mongo for durability, redis in front of it.
	mongoDB, err := cartrepo.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		slog.Error("mongo connection failed", "error", err)
		os.Exit(1)
	}
	cartRepository := cartrepo.NewMongoRepository(mongoDB)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	cartCache := cartcache.NewRedisCache(redisClient)

	cartService := cartservice.NewCartService(cartRepository, cartCache)

	// Orders live in postgres; the outbox table feeds kafka.
	orderRepository, err := orderrepo.NewRepository(cfg.Postgres)
	if err != nil {
		slog.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer orderRepository.Close()
	if err := orderRepository.RunMigrations(cfg.Postgres); err != nil {
		slog.Error("orders migrations failed", "error", err)
		os.Exit(1)
	}

	catalogRepository, err := catalogrepo.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		slog.Error("catalog database open failed", "error", err)
		os.Exit(1)
	}
	defer catalogRepository.Close()
	if err := catalogRepository.RunMigrations(cfg.CatalogMigrations); err != nil {
		slog.Error("catalog migrations failed", "error", err)
		os.Exit(1)
	}

	checkoutService := checkout.NewService(cartService, orderRepository)

	poller := publisher.NewOutboxPoller(orderRepository, cfg.KafkaBrokers...)
	defer poller.Close()
	go poller.Run(ctx)

	janitor := cartservice.NewJanitor(cartRepository, cartservice.DefaultSweepInterval, cartservice.DefaultIdleTTL)
	go janitor.Run(ctx)

	router := h.NewRouter(h.RouterConfig{
		Cart:     h.NewCartHandler(cartService, catalogRepository, cfg.RequestTimeout),
		Catalog:  h.NewCatalogHandler(catalogRepository, catalogRepository, cfg.RequestTimeout),
		Checkout: h.NewCheckoutHandler(checkoutService, orderRepository, cfg.RequestTimeout),
		Admin:    h.NewAdminHandler(catalogRepository, orderRepository, cfg.RequestTimeout),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("storefront starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
}
