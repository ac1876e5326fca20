package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"barterhub-api/internal/cache"
	"barterhub-api/internal/classify"
	"barterhub-api/internal/config"
	"barterhub-api/internal/handler"
	"barterhub-api/internal/repository"
	"barterhub-api/internal/router"
	"barterhub-api/internal/service"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting BarterHub API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize storage backend based on config
	var store repository.Store
	switch cfg.Database.Type {
	case "mysql":
		db, err := sql.Open("mysql", cfg.Database.MySQLDSN())
		if err != nil {
			log.Fatalf("Failed to open MySQL: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.Ping(); err != nil {
			log.Fatalf("MySQL ping failed: %v", err)
		}
		mysqlStore, err := repository.NewMySQLStore(db)
		if err != nil {
			log.Fatalf("Failed to initialize MySQL store: %v", err)
		}
		store = mysqlStore
		log.Println("MySQL store initialized")
	case "memory":
		store = repository.NewMemoryStore()
		log.Println("In-memory store initialized (data is not persisted)")
	default: // sqlite
		sqliteStore, err := repository.NewSQLiteStore(cfg.Database.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite store: %v", err)
		}
		store = sqliteStore
		log.Println("SQLite store initialized")
	}
	defer store.Close()

	// Initialize recommendation-result cache
	var resultCache cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Printf("Warning: Redis connection failed, falling back to memory cache: %v", err)
			resultCache = cache.NewMemoryCache()
		} else {
			resultCache = cache.NewRedisCache(redisClient, "barterhub:cache")
			log.Println("Redis cache initialized")
		}
	default:
		resultCache = cache.NewMemoryCache()
		log.Println("Memory cache initialized")
	}

	// Initialize services
	userService := service.NewUserService(store)
	itemService := service.NewItemService(store, store, classify.Category, classify.PriceBand)
	swapService := service.NewSwapServiceWithCache(store, store, classify.Category, resultCache, cfg.Cache.TTL)
	negotiationService := service.NewNegotiationService(store, store)

	// Initialize handlers
	healthHandler := handler.New(cfg.App.Version)

	// Create router
	r := router.New(router.Config{
		Handler:       healthHandler,
		UserHandler:   handler.NewUserHandler(userService),
		ItemHandler:   handler.NewItemHandler(itemService),
		SwapHandler:   handler.NewSwapHandler(swapService),
		InviteHandler: handler.NewInviteHandler(negotiationService),
		ChatHandler:   handler.NewChatHandler(negotiationService),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
