package services

import (
	"context"
	"errors"
	"fmt"

	"purchaselog/internal/models"
	"purchaselog/internal/repositories"

	"github.com/sirupsen/logrus"
)

// UserService handles business logic for user registration.
type UserService struct {
	store repositories.Store
	log   logrus.FieldLogger
}

// NewUserService creates a new UserService.
func NewUserService(store repositories.Store, log logrus.FieldLogger) *UserService {
	return &UserService{
		store: store,
		log:   log,
	}
}

// RegisterUser checks that the email and username are free and saves the user.
// The lookups only give a friendlier error; the unique constraints decide, and
// a violation at insert time is reported as ErrConflictOnInsert.
func (s *UserService) RegisterUser(ctx context.Context, user *models.User) error {
	if user.Username == "" || user.Email == "" {
		return fmt.Errorf("%w: username and email are required", ErrValidation)
	}

	err := s.store.WithinTransaction(ctx, func(tx repositories.Tx) error {
		if _, err := tx.Users().GetByEmail(user.Email); err == nil {
			return fmt.Errorf("%w: '%s'", ErrDuplicateEmail, user.Email)
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}

		if _, err := tx.Users().GetByUsername(user.Username); err == nil {
			return fmt.Errorf("%w: '%s'", ErrDuplicateUsername, user.Username)
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}

		if err := tx.Users().Create(user); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return fmt.Errorf("%w: %v", ErrConflictOnInsert, err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return classify(s.log, err, "register user")
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("User registered")
	return nil
}
