package app

import (
	"context"
	"time"

	"purchaselog/internal/handlers"
	"purchaselog/internal/repositories"
	"purchaselog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

// Options carries the collaborators of the HTTP application.
type Options struct {
	Store              repositories.Store
	Logger             *logrus.Logger
	Publisher          services.EventPublisher
	VerifyPurchaseUser bool
	// AccessLog enables the request logger middleware.
	AccessLog bool
}

// New wires services and handlers onto a new Fiber app.
func New(opts Options) *fiber.App {
	purchaseOpts := []services.PurchaseOption{services.WithUserCheck(opts.VerifyPurchaseUser)}
	if opts.Publisher != nil {
		purchaseOpts = append(purchaseOpts, services.WithPublisher(opts.Publisher))
	}

	userService := services.NewUserService(opts.Store, opts.Logger)
	purchaseService := services.NewPurchaseService(opts.Store, opts.Logger, purchaseOpts...)

	userHandler := handlers.NewUserHandler(userService)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService)

	app := fiber.New(fiber.Config{
		AppName:               "purchaselog",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{Output: opts.Logger.Writer()}))
	}

	userHandler.RegisterRoutes(app)
	purchaseHandler.RegisterRoutes(app)

	app.Get("/health", healthHandler(opts.Store, opts.Logger))

	return app
}

func healthHandler(store repositories.Store, log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			log.WithError(err).Warn("Health check failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"time":   time.Now().Format(time.RFC3339),
				"error":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}
