package models

// User represents a registered user. Users are never updated or deleted.
type User struct {
	ID       uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Username string `json:"username" gorm:"uniqueIndex;not null;type:varchar(100)"`
	Email    string `json:"email" gorm:"uniqueIndex;not null;type:varchar(255)"`
}
