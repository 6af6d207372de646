package services_test

import (
	"context"

	"purchaselog/internal/models"
	"purchaselog/internal/repositories"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of repositories.Store that runs every
// transaction against the same MockTx.
type MockStore struct {
	mock.Mock
	tx *MockTx
}

func newMockStore() *MockStore {
	return &MockStore{tx: &MockTx{users: new(MockUserRepository), purchases: new(MockPurchaseRepository)}}
}

func (m *MockStore) WithinTransaction(ctx context.Context, fn func(tx repositories.Tx) error) error {
	return fn(m.tx)
}

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockTx struct {
	users     *MockUserRepository
	purchases *MockPurchaseRepository
}

func (t *MockTx) Users() repositories.UserRepository         { return t.users }
func (t *MockTx) Purchases() repositories.PurchaseRepository { return t.purchases }

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockPurchaseRepository is a mock implementation of repositories.PurchaseRepository
type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) Create(purchase *models.Purchase) error {
	args := m.Called(purchase)
	return args.Error(0)
}

func (m *MockPurchaseRepository) ListRecentByUser(userID uint, limit int) ([]models.Purchase, error) {
	args := m.Called(userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Purchase), args.Error(1)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, body []byte) error {
	args := m.Called(routingKey, body)
	return args.Error(0)
}
