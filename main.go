package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"tienda/internal/config"
	"tienda/internal/database"
	"tienda/internal/handlers"
	"tienda/internal/repositories"
	"tienda/internal/services"
	"tienda/pkg/rabbitmq"
)

// application owns the HTTP app and the resources it was built on.
type application struct {
	fiber *fiber.App
	db    *gorm.DB
	mq    *rabbitmq.Client
}

// newApp wires configuration, storage, messaging, services and routes.
func newApp(cfg config.Config) (*application, error) {
	// --- Database ---
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if cfg.SeedData {
		if err := database.Seed(db); err != nil {
			_ = database.Close(db)
			return nil, err
		}
	}

	// --- RabbitMQ (optional) ---
	// Orders never depend on the broker; without it events are simply not sent.
	var mqClient *rabbitmq.Client
	var publisher services.OrderEventPublisher
	if cfg.RabbitMQEnabled {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, order events disabled: %v", err)
		} else {
			publisher = mqClient
		}
	}

	// --- Repositories ---
	repos := repositories.Repositories{
		Products: repositories.NewGORMProductRepository(db),
		Carts:    repositories.NewGORMCartRepository(db),
		Orders:   repositories.NewGORMOrderRepository(db),
	}
	userRepo := repositories.NewGORMUserRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	svc := handlers.Services{
		Auth:    authService,
		Catalog: services.NewCatalogService(repos.Products, categoryRepo),
		Cart:    services.NewCartService(repos.Carts, repos.Products),
		Order:   services.NewOrderService(repositories.NewGORMTxManager(db), repos, publisher, cfg.Currency.String()),
	}

	if cfg.AdminPassword != "" {
		if err := authService.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Printf("Warning: could not create admin user: %v", err)
		}
	}

	// --- Fiber App ---
	app := fiber.New(fiber.Config{AppName: "tienda"})
	app.Use(recover.New())
	app.Use(logger.New()) // Request logger

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "up",
			"rabbitmq": "disabled",
		}
		if mqClient != nil {
			status["rabbitmq"] = "connected"
		}
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			status["status"] = "unhealthy"
			status["database"] = "down"
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		return c.JSON(status)
	})

	// --- API Routes ---
	handlers.SetupRoutes(app, svc)

	return &application{fiber: app, db: db, mq: mqClient}, nil
}

// close releases the broker connection and the database pool.
func (a *application) close() {
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			log.Printf("Error closing RabbitMQ client: %v", err)
		}
	}
	if err := database.Close(a.db); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := newApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Start RabbitMQ Consumer ---
	if app.mq != nil {
		log.Println("Starting RabbitMQ consumer for orders...")
		if err := app.mq.ConsumeOrderEvents(ctx, rabbitmq.LogOrderPlaced); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.fiber.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.fiber.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
