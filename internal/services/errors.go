package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Errors returned by the services. Handlers map them onto HTTP responses with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrConflictOnInsert  = errors.New("user conflicts with a concurrent registration")
	ErrUnknownUser       = errors.New("user does not exist")
	ErrStorage           = errors.New("storage unavailable")
)

var domainErrors = []error{
	ErrValidation,
	ErrDuplicateEmail,
	ErrDuplicateUsername,
	ErrConflictOnInsert,
	ErrUnknownUser,
}

// classify logs err and passes domain errors through unchanged. Anything else
// is a storage failure and gets wrapped as ErrStorage.
func classify(log logrus.FieldLogger, err error, op string) error {
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			log.WithError(err).Warnf("Failed to %s", op)
			return err
		}
	}
	log.WithError(err).Errorf("Failed to %s", op)
	return fmt.Errorf("%w: failed to %s: %v", ErrStorage, op, err)
}
