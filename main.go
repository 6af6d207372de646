package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"purchaselog/internal/app"
	"purchaselog/internal/config"
	"purchaselog/internal/database"
	"purchaselog/internal/logging"
	"purchaselog/internal/services"
	"purchaselog/pkg/rabbitmq"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load(viper.New())
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	// run returns instead of exiting so its deferred cleanup always happens.
	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	store, err := database.NewStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Error("Error closing storage")
		}
	}()

	// --- Purchase events ---
	var publisher services.EventPublisher
	if cfg.RabbitMQ.Enabled() {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue}, log)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer func() {
			if err := mqClient.Close(); err != nil {
				log.WithError(err).Error("Error closing RabbitMQ client")
			}
		}()
		publisher = mqClient

		if cfg.RabbitMQ.Consume {
			err := mqClient.Consume(func(msg amqp.Delivery) error {
				log.WithFields(logrus.Fields{"type": msg.Type, "message_id": msg.MessageId}).Infof("Received purchase event: %s", msg.Body)
				return nil
			})
			if err != nil {
				log.WithError(err).Error("Failed to start RabbitMQ consumer")
			}
		}
	}

	// --- HTTP server ---
	server := app.New(app.Options{
		Store:              store,
		Logger:             log,
		Publisher:          publisher,
		VerifyPurchaseUser: cfg.VerifyPurchaseUser,
		AccessLog:          true,
	})

	listenErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on port %s", cfg.AppPort)
		listenErr <- server.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	if err := server.Shutdown(); err != nil {
		log.WithError(err).Error("Error during Fiber shutdown")
	}
	log.Info("Server gracefully stopped")
	return nil
}
