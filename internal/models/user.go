package models

import "time"

// User represents a registered account.
// Email is nullable at column level so rows created before email became
// mandatory can still be found (and purged) by the admin cleanup.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"size:64;uniqueIndex;not null"`
	Email        *string   `gorm:"size:255;uniqueIndex"`
	PasswordHash string    `gorm:"size:255;not null"`
	CreatedAt    time.Time
}
