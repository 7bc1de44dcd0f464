package server

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/shelterfinder/shelterfinder/internal/config"
	"github.com/shelterfinder/shelterfinder/internal/routes"
	"github.com/shelterfinder/shelterfinder/internal/ws"
)

// New initializes the Fiber application with config, middlewares, routes
// and static file serving.
func New(cfg *config.Config, h routes.Handlers, hub *ws.Hub, protect, authLimit fiber.Handler, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
		IdleTimeout:  cfg.App.IdleTimeout,
	})

	app.Use(cors.New())
	app.Use(zapLoggerMiddleware(logger))

	routes.Setup(app, h, hub, protect, authLimit)

	// static site, with an SPA-style fallback: unmatched extensionless
	// non-API paths serve the entry page, everything else stays a 404
	app.Static("/", cfg.App.StaticDir)
	indexPath := filepath.Join(cfg.App.StaticDir, "index.html")
	app.Use(func(c *fiber.Ctx) error {
		path := c.Path()
		if strings.HasPrefix(path, "/api") || strings.Contains(filepath.Base(path), ".") {
			return fiber.ErrNotFound
		}
		return c.SendFile(indexPath)
	})

	return app
}

// zapLoggerMiddleware logs incoming HTTP requests using Zap.
func zapLoggerMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)
		status := c.Response().StatusCode()

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		}

		if err != nil {
			logger.Error("HTTP Request Error", append(fields, zap.Error(err))...)
			return err
		}

		logger.Info("HTTP Request", fields...)
		return nil
	}
}
