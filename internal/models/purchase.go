package models

import "time"

// Purchase represents a single purchase made by a user.
type Purchase struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint      `json:"user_id" gorm:"not null;index:idx_purchases_user_timestamp,priority:1"`
	Timestamp time.Time `json:"timestamp" gorm:"column:timestamp;not null;index:idx_purchases_user_timestamp,priority:2"` // Assigned by the server
	SkuName   string    `json:"sku_name" gorm:"not null;type:varchar(255)"`
	Price     float64   `json:"price" gorm:"not null"`
	Quantity  int       `json:"quantity" gorm:"not null"`

	// User only declares the foreign key; it is never loaded.
	User *User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
}
