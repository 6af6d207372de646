package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"purchaselog/internal/models"
	"purchaselog/internal/repositories"

	"github.com/sirupsen/logrus"
)

// PurchaseRecordedEvent is the routing key of events published for new purchases.
const PurchaseRecordedEvent = "purchase.recorded"

// EventPublisher delivers serialized events to a message broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// PurchaseService handles business logic related to purchases.
type PurchaseService struct {
	store      repositories.Store
	publisher  EventPublisher
	log        logrus.FieldLogger
	now        func() time.Time
	verifyUser bool
}

// PurchaseOption configures a PurchaseService.
type PurchaseOption func(*PurchaseService)

// WithPublisher publishes an event for every recorded purchase.
func WithPublisher(p EventPublisher) PurchaseOption {
	return func(s *PurchaseService) { s.publisher = p }
}

// WithClock overrides the source of purchase timestamps.
func WithClock(now func() time.Time) PurchaseOption {
	return func(s *PurchaseService) { s.now = now }
}

// WithUserCheck makes RecordPurchase look the user up before inserting
// instead of relying on the foreign key alone.
func WithUserCheck(enabled bool) PurchaseOption {
	return func(s *PurchaseService) { s.verifyUser = enabled }
}

// NewPurchaseService creates a new PurchaseService.
func NewPurchaseService(store repositories.Store, log logrus.FieldLogger, opts ...PurchaseOption) *PurchaseService {
	s := &PurchaseService{
		store: store,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordPurchase stores a purchase stamped with the current server time.
// Any ID or timestamp already set on purchase is overwritten.
func (s *PurchaseService) RecordPurchase(ctx context.Context, purchase *models.Purchase) error {
	if purchase.SkuName == "" {
		return fmt.Errorf("%w: sku_name is required", ErrValidation)
	}
	if purchase.Price < 0 || math.IsNaN(purchase.Price) || math.IsInf(purchase.Price, 0) {
		return fmt.Errorf("%w: price must be a non-negative number", ErrValidation)
	}
	// Quantity is stored as given; zero and negative values are accepted.

	purchase.ID = 0
	purchase.User = nil
	purchase.Timestamp = s.now().UTC().Truncate(time.Microsecond)

	err := s.store.WithinTransaction(ctx, func(tx repositories.Tx) error {
		if s.verifyUser {
			if _, err := tx.Users().GetByID(purchase.UserID); err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return fmt.Errorf("%w: %d", ErrUnknownUser, purchase.UserID)
				}
				return err
			}
		}

		if err := tx.Purchases().Create(purchase); err != nil {
			if errors.Is(err, repositories.ErrForeignKey) {
				return fmt.Errorf("%w: %d", ErrUnknownUser, purchase.UserID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return classify(s.log, err, "record purchase")
	}

	s.log.WithFields(logrus.Fields{
		"purchase_id": purchase.ID,
		"user_id":     purchase.UserID,
		"sku_name":    purchase.SkuName,
	}).Info("Purchase recorded")

	s.publish(*purchase)
	return nil
}

// ListRecentPurchases returns the user's newest purchases, at most
// repositories.RecentPurchasesLimit of them. An unknown user has no purchases.
func (s *PurchaseService) ListRecentPurchases(ctx context.Context, userID uint) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := s.store.WithinTransaction(ctx, func(tx repositories.Tx) error {
		var err error
		purchases, err = tx.Purchases().ListRecentByUser(userID, repositories.RecentPurchasesLimit)
		return err
	})
	if err != nil {
		return nil, classify(s.log, err, "list purchases")
	}
	if purchases == nil {
		purchases = []models.Purchase{}
	}
	return purchases, nil
}

// publish sends the purchase to the broker. Failures are logged and never
// reach the caller because the purchase is already committed.
func (s *PurchaseService) publish(purchase models.Purchase) {
	if s.publisher == nil {
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"event":    PurchaseRecordedEvent,
		"purchase": purchase,
	})
	if err != nil {
		s.log.WithError(err).Error("Failed to marshal purchase event")
		return
	}

	if err := s.publisher.Publish(PurchaseRecordedEvent, body); err != nil {
		s.log.WithError(err).WithField("purchase_id", purchase.ID).Warn("Failed to publish purchase event")
		return
	}
	s.log.WithField("purchase_id", purchase.ID).Debug("Published purchase event")
}
