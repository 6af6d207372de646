package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// GORMStore is a Store backed by a gorm connection.
type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore wraps an opened gorm connection.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

type gormTx struct {
	users     *GORMUserRepository
	purchases *GORMPurchaseRepository
}

func (t gormTx) Users() UserRepository         { return t.users }
func (t gormTx) Purchases() PurchaseRepository { return t.purchases }

// WithinTransaction runs fn inside a database transaction.
func (s *GORMStore) WithinTransaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormTx{
			users:     NewGORMUserRepository(tx),
			purchases: NewGORMPurchaseRepository(tx),
		})
	})
}

// Ping checks that the database is reachable.
func (s *GORMStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *GORMStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}
