package main

import (
	"context"
	"log"
	"time"

	"admissions/backend/config"
	"admissions/backend/identity"
	"admissions/backend/middleware"
	"admissions/backend/routes"
	"admissions/backend/services"
	"admissions/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger(utils.LoggerConfig{
		Format:       cfg.LogFormat,
		EnableColors: cfg.LogFormat != "json",
	})

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	exchanger, err := identity.New(cfg)
	if err != nil {
		log.Fatalf("Error initializing identity provider: %v", err)
	}
	svc := services.New(db, cfg, exchanger, logger)

	// Login rate limiter: shared through Redis when configured
	var limiter middleware.Limiter = middleware.NewMemoryLimiter()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Printf("redis %s unreachable, using in-memory rate limiter: %v", cfg.RedisAddr, err)
			_ = client.Close()
		} else {
			limiter = middleware.NewRedisLimiter(client)
			defer client.Close()
		}
		cancel()
	}

	// Create Fiber app
	app := fiber.New(routes.AppConfig(cfg))

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.RequestIDHeader,
	}))
	app.Use(middleware.RequestID())
	app.Use(middleware.LoggingMiddleware(logger, cfg.LogFormat != "json"))

	// Setup routes
	routes.SetupRoutes(app, svc, cfg, limiter)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
