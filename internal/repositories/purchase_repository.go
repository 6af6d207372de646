package repositories

import "purchaselog/internal/models"

// RecentPurchasesLimit caps the number of purchases returned by ListRecentByUser.
const RecentPurchasesLimit = 10

// PurchaseRepository defines the interface for purchase data access.
type PurchaseRepository interface {
	Create(purchase *models.Purchase) error
	// ListRecentByUser returns up to limit purchases of the user, newest
	// first. Ties on timestamp are broken by descending ID.
	ListRecentByUser(userID uint, limit int) ([]models.Purchase, error)
}
