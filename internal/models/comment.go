package models

import (
	"time"
)

// Comment is a reply attached to exactly one post. Post and author are
// required and immutable; the row disappears with either parent.
type Comment struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	Text    string    `gorm:"not null" json:"text"`
	Created time.Time `gorm:"autoCreateTime" json:"created"`

	PostID uint `gorm:"not null;index" json:"post_id"`
	Post   Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`

	AuthorID uint `gorm:"not null;index" json:"author_id"`
	User     User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
}
