package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"purchaselog/internal/models"
)

// MemoryStore is an in-process implementation of Store. It enforces the same
// unique and foreign key constraints as the relational schema and serializes
// transactions with a single lock.
type MemoryStore struct {
	mu    sync.Mutex
	state memoryState
}

type memoryState struct {
	users          map[uint]models.User
	purchases      []models.Purchase
	nextUserID     uint
	nextPurchaseID uint
}

func (s memoryState) clone() memoryState {
	users := make(map[uint]models.User, len(s.users))
	for id, u := range s.users {
		users[id] = u
	}
	return memoryState{
		users:          users,
		purchases:      append([]models.Purchase(nil), s.purchases...),
		nextUserID:     s.nextUserID,
		nextPurchaseID: s.nextPurchaseID,
	}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: memoryState{
			users:          make(map[uint]models.User),
			nextUserID:     1,
			nextPurchaseID: 1,
		},
	}
}

// WithinTransaction runs fn with exclusive access to the store. Changes made
// by fn are discarded if it returns an error or panics.
func (s *MemoryStore) WithinTransaction(ctx context.Context, fn func(tx Tx) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	defer func() {
		if p := recover(); p != nil {
			s.state = snapshot
			panic(p)
		}
		if err != nil {
			s.state = snapshot
		}
	}()

	return fn(memoryTx{state: &s.state})
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

type memoryTx struct {
	state *memoryState
}

func (t memoryTx) Users() UserRepository         { return memoryUserRepository{state: t.state} }
func (t memoryTx) Purchases() PurchaseRepository { return memoryPurchaseRepository{state: t.state} }

type memoryUserRepository struct {
	state *memoryState
}

func (r memoryUserRepository) Create(user *models.User) error {
	for _, u := range r.state.users {
		if u.Username == user.Username {
			return fmt.Errorf("failed to create user: %w: username %s", ErrDuplicateKey, user.Username)
		}
		if u.Email == user.Email {
			return fmt.Errorf("failed to create user: %w: email %s", ErrDuplicateKey, user.Email)
		}
	}
	user.ID = r.state.nextUserID
	r.state.nextUserID++
	r.state.users[user.ID] = *user
	return nil
}

func (r memoryUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.find("username", username, func(u models.User) bool { return u.Username == username })
}

func (r memoryUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.find("email", email, func(u models.User) bool { return u.Email == email })
}

func (r memoryUserRepository) GetByID(id uint) (*models.User, error) {
	if u, ok := r.state.users[id]; ok {
		return &u, nil
	}
	return nil, fmt.Errorf("user with id %d: %w", id, ErrNotFound)
}

func (r memoryUserRepository) find(column string, value string, match func(models.User) bool) (*models.User, error) {
	for _, u := range r.state.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with %s %s: %w", column, value, ErrNotFound)
}

type memoryPurchaseRepository struct {
	state *memoryState
}

func (r memoryPurchaseRepository) Create(purchase *models.Purchase) error {
	if _, ok := r.state.users[purchase.UserID]; !ok {
		return fmt.Errorf("failed to create purchase: %w: user %d does not exist", ErrForeignKey, purchase.UserID)
	}
	purchase.ID = r.state.nextPurchaseID
	r.state.nextPurchaseID++
	stored := *purchase
	stored.User = nil
	r.state.purchases = append(r.state.purchases, stored)
	return nil
}

func (r memoryPurchaseRepository) ListRecentByUser(userID uint, limit int) ([]models.Purchase, error) {
	purchases := make([]models.Purchase, 0, limit)
	for _, p := range r.state.purchases {
		if p.UserID == userID {
			purchases = append(purchases, p)
		}
	}
	sort.Slice(purchases, func(i, j int) bool {
		if !purchases[i].Timestamp.Equal(purchases[j].Timestamp) {
			return purchases[i].Timestamp.After(purchases[j].Timestamp)
		}
		return purchases[i].ID > purchases[j].ID
	})
	if len(purchases) > limit {
		purchases = purchases[:limit]
	}
	return purchases, nil
}
