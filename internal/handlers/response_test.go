package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"purchaselog/internal/handlers"
	"purchaselog/internal/models"
	"purchaselog/internal/repositories"
	"purchaselog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore runs every transaction against tx, or fails with txErr when set.
type stubStore struct {
	tx    repositories.Tx
	txErr error
}

func (s stubStore) WithinTransaction(_ context.Context, fn func(tx repositories.Tx) error) error {
	if s.txErr != nil {
		return s.txErr
	}
	return fn(s.tx)
}

func (s stubStore) Ping(context.Context) error { return nil }
func (s stubStore) Close() error               { return nil }

type stubTx struct {
	users repositories.UserRepository
}

func (t stubTx) Users() repositories.UserRepository         { return t.users }
func (t stubTx) Purchases() repositories.PurchaseRepository { return nil }

// racingUsers finds no existing user but loses the insert to a concurrent registration.
type racingUsers struct{}

func (racingUsers) Create(*models.User) error {
	return fmt.Errorf("failed to create user: %w", repositories.ErrDuplicateKey)
}

func (racingUsers) GetByUsername(username string) (*models.User, error) {
	return nil, fmt.Errorf("user with username %s: %w", username, repositories.ErrNotFound)
}

func (racingUsers) GetByEmail(email string) (*models.User, error) {
	return nil, fmt.Errorf("user with email %s: %w", email, repositories.ErrNotFound)
}

func (racingUsers) GetByID(id uint) (*models.User, error) {
	return nil, fmt.Errorf("user with id %d: %w", id, repositories.ErrNotFound)
}

func newStubApp(store repositories.Store) *fiber.App {
	log, _ := test.NewNullLogger()
	app := fiber.New()
	handlers.NewUserHandler(services.NewUserService(store, log)).RegisterRoutes(app)
	handlers.NewPurchaseHandler(services.NewPurchaseService(store, log)).RegisterRoutes(app)
	return app
}

func TestErrorMapping(t *testing.T) {
	unavailable := stubStore{txErr: errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")}

	tests := []struct {
		name   string
		store  repositories.Store
		method string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{
			name:   "insert conflict",
			store:  stubStore{tx: stubTx{users: racingUsers{}}},
			method: http.MethodPost,
			path:   "/users/",
			body:   map[string]string{"username": "alice", "email": "a@x.com"},
			status: http.StatusBadRequest,
			code:   handlers.CodeConflictOnInsert,
		},
		{
			name:   "storage down on register",
			store:  unavailable,
			method: http.MethodPost,
			path:   "/users/",
			body:   map[string]string{"username": "alice", "email": "a@x.com"},
			status: http.StatusInternalServerError,
			code:   handlers.CodeStorage,
		},
		{
			name:   "storage down on record",
			store:  unavailable,
			method: http.MethodPost,
			path:   "/purchases/",
			body:   map[string]interface{}{"user_id": 1, "sku_name": "widget", "price": 1, "quantity": 1},
			status: http.StatusInternalServerError,
			code:   handlers.CodeStorage,
		},
		{
			name:   "storage down on history",
			store:  unavailable,
			method: http.MethodGet,
			path:   "/users/1/purchases/",
			status: http.StatusInternalServerError,
			code:   handlers.CodeStorage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, newStubApp(tt.store), tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, resp.StatusCode)

			var errResp errorResponse
			require.NoError(t, json.Unmarshal(body, &errResp))
			assert.Equal(t, tt.code, errResp.Code)
			assert.NotEmpty(t, errResp.Message)
			assert.NotEmpty(t, errResp.Error)
		})
	}
}
