package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/config"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/errx"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/logx"
)

func main() {
	// 1. Initialize Logger
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		logx.SetLevel(logx.LevelDebug)
	case "warn":
		logx.SetLevel(logx.LevelWarn)
	case "error":
		logx.SetLevel(logx.LevelError)
	default:
		logx.SetLevel(logx.LevelInfo)
	}

	logx.Info("🚀 Starting Bootcamp Registration API Server...")

	// 2. Load Configuration & Build Container
	cfg := config.Load()
	container := NewContainer(cfg)
	defer container.Cleanup()

	// 3. Create Fiber App with Config
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler(cfg),
		BodyLimit:             cfg.Server.BodyLimit,
	})

	// 4. Global Middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return uuid.NewString()
		},
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, X-Request-ID",
		AllowMethods:  "GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS",
		ExposeHeaders: "X-Request-ID",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${reqHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	// 5. Health Check
	app.Get("/health", healthCheckHandler(container))
	app.Get("/", infoHandler(cfg))

	// 6. Register Routes
	container.ApplicantHandler.RegisterRoutes(app)
	logx.Info("✓ Applicant routes registered")

	container.BulkMailHandler.RegisterRoutes(app)
	logx.Info("✓ Mailing routes registered")

	// 7. 404 Handler
	app.Use(notFoundHandler)

	// 8. Start Server with Graceful Shutdown
	startServer(app, cfg)
}

// healthCheckHandler reports dependency health.
func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := fiber.Map{
			"status":  "healthy",
			"service": container.Config.App.Name,
			"version": container.Config.App.Version,
		}

		if err := container.DB.Ping(); err != nil {
			health["db"] = "unhealthy"
			health["db_error"] = err.Error()
			health["status"] = "degraded"
		} else {
			health["db"] = "healthy"
		}

		if err := container.Redis.Ping(c.Context()).Err(); err != nil {
			health["redis"] = "unhealthy"
			health["redis_error"] = err.Error()
			health["status"] = "degraded"
		} else {
			health["redis"] = "healthy"
		}

		status := fiber.StatusOK
		if health["status"] == "degraded" {
			status = fiber.StatusServiceUnavailable
		}

		return c.Status(status).JSON(health)
	}
}

func infoHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service":     cfg.App.Name,
			"version":     cfg.App.Version,
			"description": "Bootcamp applicant registration and cohort mailing",
			"endpoints": fiber.Map{
				"applicants": "/api/v1/applicants",
				"mailing":    "/api/v1/mailing",
				"health":     "/health",
			},
		})
	}
}

func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":      "Route not found",
		"code":       "NOT_FOUND",
		"path":       c.Path(),
		"method":     c.Method(),
		"request_id": c.Get("X-Request-ID"),
	})
}

// globalErrorHandler converts internal errors to standard HTTP responses.
func globalErrorHandler(cfg *config.Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		logx.WithFields(logx.Fields{
			"path":       c.Path(),
			"method":     c.Method(),
			"ip":         c.IP(),
			"request_id": c.Get("X-Request-ID"),
		}).Errorf("Request error: %v", err)

		if e, ok := err.(*fiber.Error); ok {
			return c.Status(e.Code).JSON(fiber.Map{
				"error":      e.Message,
				"code":       "FIBER_ERROR",
				"status":     e.Code,
				"request_id": c.Get("X-Request-ID"),
			})
		}

		if e, ok := err.(*errx.Error); ok {
			response := fiber.Map{
				"error":      e.Message,
				"code":       e.Code,
				"type":       string(e.Type),
				"status":     e.HTTPStatus,
				"request_id": c.Get("X-Request-ID"),
			}
			if len(e.Details) > 0 {
				response["details"] = e.Details
			}
			if cfg.App.Debug && e.Err != nil {
				response["underlying_error"] = e.Err.Error()
			}
			return c.Status(e.HTTPStatus).JSON(response)
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":      "Internal Server Error",
			"type":       "INTERNAL",
			"code":       "INTERNAL_ERROR",
			"request_id": c.Get("X-Request-ID"),
		})
	}
}

// startServer starts the server and blocks until shutdown.
func startServer(app *fiber.App, cfg *config.Config) {
	go func() {
		logx.Infof("🚀 Server listening on port %s", cfg.Server.Port)
		logx.Infof("💚 Health Check: http://localhost:%s/health", cfg.Server.Port)

		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	gracefulShutdown(app, cfg)
}

func gracefulShutdown(app *fiber.App, cfg *config.Config) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logx.Infof("🛑 Received signal: %v", sig)
	logx.Info("Shutting down gracefully...")

	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	logx.Info("✅ Server exited successfully")
}
