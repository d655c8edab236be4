// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered author in the Inkwell application.
// A user is the root owner of its posts, comments, and outgoing follow
// edges; deleting the account cascades to all three.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	IsAdmin   bool      `gorm:"default:false" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Posts []Post `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"posts,omitempty"`
}
