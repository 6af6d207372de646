package repositories

import "context"

// Tx exposes the repositories bound to a single transaction.
type Tx interface {
	Users() UserRepository
	Purchases() PurchaseRepository
}

// Store is the transactional system of record. WithinTransaction commits
// when fn returns nil and rolls back otherwise, including on panic.
type Store interface {
	WithinTransaction(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
	Close() error
}
