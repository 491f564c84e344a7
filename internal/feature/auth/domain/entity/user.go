// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered user in the system.
type User struct {
	// ID is the unique identifier for the user, assigned by the store.
	ID uint `gorm:"primaryKey"`

	// Name is the display name given at registration.
	Name string `gorm:"size:255;not null"`

	// Email is the login identifier. It is unique and compared case-sensitively.
	// On MySQL the tables are created with a binary collation so the unique index
	// and lookups stay case-sensitive there too.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// PasswordHash is the encoded password digest (argon2id PHC string, or a legacy bcrypt hash).
	// It must never be sent to clients or written to logs.
	PasswordHash string `gorm:"column:password_hash;size:255;not null" json:"-"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM.
func (User) TableName() string {
	return "users"
}
