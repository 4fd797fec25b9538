package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/floracart/floracart_backend/config"
	"github.com/floracart/floracart_backend/middleware"
	"github.com/floracart/floracart_backend/routes"
	"github.com/floracart/floracart_backend/services"
	"github.com/floracart/floracart_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Connect to Redis (optional: sweeps and caching degrade without it)
	rdb := config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()
	db := client.Database(config.DatabaseName())

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Commission workflow services
	engine := services.NewAccrualEngine(db, wsHub)
	monitor := services.NewOverdueMonitor(db, rdb, wsHub)
	generator := services.NewReportGenerator(db, rdb)
	gateway := services.NewCardGatewayService(services.CardGatewayConfigFromEnv())

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeaders())

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "FloraCart Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Register routes
	routes.RegisterAuthRoutes(e, db)
	routes.RegisterStoreRoutes(e, db, wsHub)
	routes.RegisterCommissionRoutes(e, db, wsHub, engine, gateway)
	routes.RegisterNotificationRoutes(e, db, wsHub)
	routes.RegisterAdminRoutes(e, db, rdb, wsHub, engine, monitor, generator)

	// Daily overdue sweep: mark invoices overdue and suspend sellers past the
	// grace period. Runs once at startup, then on the ticker.
	go func() {
		runSweep := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if _, err := monitor.Run(ctx); err != nil {
				log.Printf("Scheduled overdue sweep failed: %v", err)
			}
		}
		runSweep()
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			runSweep()
		}
	}()

	// Period close: shortly after each month begins, accrue commission for the
	// month that just ended and generate its report. The unique indexes make
	// both steps idempotent, so checking hourly is safe.
	go func() {
		runClose := func() {
			now := time.Now()
			if now.Day() != 1 {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()
			month, year := services.PreviousPeriod(now)
			engine.RunPeriodClose(ctx, month, year)
			generator.RunPeriodClose(ctx, now)
		}
		runClose()
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			runClose()
		}
	}()

	// Ensure uploads directory exists
	os.MkdirAll("uploads", 0755)
	os.MkdirAll("uploads/products", 0755)
	os.MkdirAll("uploads/logos", 0755)

	e.Static("/uploads", "uploads")

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
