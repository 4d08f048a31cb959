package models

import "time"

// Post is a short text message owned by a user.
// Timestamp is assigned by the server at insert time.
type Post struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	Content   string    `gorm:"type:text;not null"`
	Timestamp time.Time `gorm:"index;not null"`

	User User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
