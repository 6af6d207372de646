package repositories

import (
	"fmt"

	"purchaselog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMPurchaseRepository is a GORM implementation of PurchaseRepository.
type GORMPurchaseRepository struct {
	db *gorm.DB
}

// NewGORMPurchaseRepository creates a new instance of GORMPurchaseRepository.
func NewGORMPurchaseRepository(db *gorm.DB) *GORMPurchaseRepository {
	return &GORMPurchaseRepository{
		db: db,
	}
}

// Create inserts a new purchase. A missing user surfaces as ErrForeignKey.
func (r *GORMPurchaseRepository) Create(purchase *models.Purchase) error {
	if err := r.db.Omit("User").Create(purchase).Error; err != nil {
		return fmt.Errorf("failed to create purchase: %w", translateError(err))
	}
	return nil
}

// ListRecentByUser retrieves the newest purchases of a user.
func (r *GORMPurchaseRepository) ListRecentByUser(userID uint, limit int) ([]models.Purchase, error) {
	purchases := make([]models.Purchase, 0, limit)
	err := r.db.
		Where("user_id = ?", userID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
		Limit(limit).
		Find(&purchases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases for user %d: %w", userID, translateError(err))
	}
	return purchases, nil
}
