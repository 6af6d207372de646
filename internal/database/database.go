package database

import (
	"context"
	"fmt"
	"time"

	"purchaselog/internal/config"
	"purchaselog/internal/logging"
	"purchaselog/internal/models"
	"purchaselog/internal/repositories"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Dialector returns the gorm dialector for the configured SQL driver.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		return postgres.Open(cfg.Postgres.DSN()), nil
	case config.DriverSQLite:
		return sqlite.Open(SQLiteDSN(cfg.SQLitePath)), nil
	default:
		return nil, fmt.Errorf("driver %q is not a SQL driver", cfg.StorageDriver)
	}
}

// SQLiteDSN enables foreign key enforcement, which SQLite leaves off by default.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on", path)
}

// NewStore builds the Store selected by cfg.StorageDriver.
func NewStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (repositories.Store, error) {
	if cfg.StorageDriver == config.DriverMemory {
		log.Warn("Using in-memory storage; data is lost on restart")
		return repositories.NewMemoryStore(), nil
	}

	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := Connect(ctx, dialector, cfg.ConnectAttempts, cfg.ConnectBackoff, log)
	if err != nil {
		return nil, err
	}
	return repositories.NewGORMStore(db), nil
}

// Connect opens the database, retrying up to attempts times with a fixed
// backoff, then creates the tables.
func Connect(ctx context.Context, dialector gorm.Dialector, attempts int, backoff time.Duration, log *logrus.Logger) (*gorm.DB, error) {
	var db *gorm.DB
	err := retry(ctx, attempts, backoff, func(attempt int) error {
		var err error
		db, err = open(ctx, dialector, log)
		if err != nil {
			log.WithError(err).WithField("attempt", attempt).Warn("Waiting for database")
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	log.Info("Database connection successful")

	if err := db.WithContext(ctx).AutoMigrate(&models.User{}, &models.Purchase{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("Database tables created successfully")
	return db, nil
}

func open(ctx context.Context, dialector gorm.Dialector, log *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logging.GORM(log),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// retry calls fn until it succeeds, attempts are exhausted or ctx is done.
func retry(ctx context.Context, attempts int, backoff time.Duration, fn func(attempt int) error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-timer.C:
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", attempts, err)
}
