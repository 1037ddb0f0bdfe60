package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/fixmarket/fixmarket/internal/cache"
	"github.com/fixmarket/fixmarket/internal/database"
	"github.com/fixmarket/fixmarket/internal/gazetteer"
	"github.com/fixmarket/fixmarket/internal/geocode"
	"github.com/fixmarket/fixmarket/internal/httpapi"
	"github.com/fixmarket/fixmarket/internal/middleware"
	"github.com/fixmarket/fixmarket/internal/monitoring"
	"github.com/fixmarket/fixmarket/internal/services"
	"github.com/fixmarket/fixmarket/internal/telemetry"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	if err := telemetry.InitGlobalLogger(&telemetry.LogConfig{
		Level:  telemetry.LogLevel(getEnv("LOG_LEVEL", "info")),
		Format: getEnv("LOG_FORMAT", "json"),
		Output: getEnv("LOG_OUTPUT", "stdout"),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	shutdownOtel, err := telemetry.InitializeOpenTelemetry(ctx, telemetry.LoadConfigFromEnv())
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer shutdownOtel()

	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   getEnv("DB_NAME", "fixmarket"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	db, err := database.NewInstrumentedConnection(dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it geocode and autocomplete caching is
	// skipped, nothing else changes.
	var redisService *cache.RedisService
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisService, err = cache.NewInstrumentedRedisService(&cache.RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
		PoolSize: 10,
	})
	if err != nil {
		log.Printf("Warning: Redis unavailable, caching disabled: %v", err)
		redisService = nil
	} else {
		defer redisService.Close()
	}

	gaz, err := gazetteer.Load()
	if err != nil {
		log.Fatalf("Failed to load gazetteer dataset: %v", err)
	}

	geocodeTimeout, _ := time.ParseDuration(getEnv("GEOCODER_TIMEOUT", "10s"))
	geocoder := geocode.NewClient(geocode.Config{
		BaseURL:     getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		CountryCode: getEnv("GEOCODER_COUNTRY", "pl"),
		UserAgent:   getEnv("GEOCODER_USER_AGENT", "fixmarket/1.0"),
		Timeout:     geocodeTimeout,
	}, nil, redisService)

	repo := database.NewOfferRepository(db)
	resolver := services.NewLocationResolver(gaz, geocoder, redisService)
	searchService := services.NewSearchService(repo)
	offerService := services.NewOfferService(repo, resolver)

	router := gin.New()
	router.Use(
		otelgin.Middleware("fixmarket"),
		middleware.RequestLogging(),
		middleware.ErrorHandler(),
	)

	health := monitoring.NewHealthChecker(db, redisService, gaz)
	router.GET("/health", health.Handler())
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	writeLimit := middleware.NewRateLimiter(5, 10)
	handler := httpapi.NewHandler(resolver, searchService, offerService)
	handler.RegisterRoutes(router, writeLimit.Middleware())

	srv := &http.Server{
		Addr:    ":" + getEnv("PORT", "8080"),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
