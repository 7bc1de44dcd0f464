package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shelterfinder/shelterfinder/internal/config"
	"github.com/shelterfinder/shelterfinder/internal/database"
	"github.com/shelterfinder/shelterfinder/internal/geocode"
	"github.com/shelterfinder/shelterfinder/internal/handlers"
	"github.com/shelterfinder/shelterfinder/internal/middleware"
	"github.com/shelterfinder/shelterfinder/internal/repository"
	"github.com/shelterfinder/shelterfinder/internal/routes"
	"github.com/shelterfinder/shelterfinder/internal/server"
	"github.com/shelterfinder/shelterfinder/internal/services"
	"github.com/shelterfinder/shelterfinder/internal/utils"
	"github.com/shelterfinder/shelterfinder/internal/ws"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.App.Env)
	defer func() {
		_ = logger.Sync()
	}()
	sugar := logger.Sugar()
	sugar.Infof("Starting shelterfinder in %s environment on port %d", cfg.App.Env, cfg.App.Port)

	db, mongoClient, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout, sugar)
	if err != nil {
		sugar.Fatal(err)
	}

	// redis only backs the auth rate limiter; the service runs without it
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, sugar)
		if err != nil {
			sugar.Warnf("Redis unavailable, auth rate limiting disabled: %v", err)
			rdb = nil
		}
	} else {
		sugar.Warn("REDIS_ADDR not set, auth rate limiting disabled")
	}

	geocoder := geocode.NewClient(cfg.Geocode.APIKey, cfg.Geocode.BaseURL, sugar)
	if !geocoder.IsConfigured() {
		sugar.Warn("Geocoding API key not configured. Shelters will be stored without coordinates.")
	}

	shelterRepo := repository.NewMongoShelterRepo(db, "shelters", sugar)
	userRepo := repository.NewMongoUserRepo(db, "users", sugar)

	jwtManager := utils.NewJWTManager(cfg.App.JWT.Secret, time.Duration(cfg.App.JWT.TTLHours)*time.Hour)
	hub := ws.NewHub(sugar)

	shelterSvc := services.NewShelterService(shelterRepo, geocoder, sugar)
	authSvc := services.NewAuthService(userRepo, jwtManager, sugar)
	userSvc := services.NewUserService(userRepo, shelterRepo, hub, sugar)

	h := routes.Handlers{
		Shelter: handlers.NewShelterHandler(shelterSvc, sugar),
		Auth:    handlers.NewAuthHandler(authSvc, sugar),
		User:    handlers.NewUserHandler(userSvc, sugar),
	}

	protect := middleware.Protect(jwtManager, userRepo)
	authLimit := middleware.NewRateLimiter(rdb, "auth_rate_limit", cfg.Security.AuthRateLimitPerMinute, time.Minute).ByIP()

	app := server.New(cfg, h, hub, protect, authLimit, logger)

	go func() {
		listenAddr := fmt.Sprintf(":%d", cfg.App.Port)
		sugar.Infof("Server listening on %s", listenAddr)
		if err := app.Listen(listenAddr); err != nil {
			sugar.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Info("Shutting down server...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := app.ShutdownWithContext(ctxShut); err != nil {
		sugar.Errorf("Fiber app shutdown error: %v", err)
	}
	if err := mongoClient.Disconnect(ctxShut); err != nil {
		sugar.Errorf("MongoDB disconnect error: %v", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			sugar.Errorf("Redis client close error: %v", err)
		}
	}

	sugar.Info("Graceful shutdown complete.")
}
