package models

import (
	"time"
)

// Post is a unit of authored content. The author is required and immutable;
// the group reference is optional and becomes null if the group is deleted.
// PubDate is set exactly once at creation and is never touched by edits.
type Post struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	Text    string    `gorm:"not null;index" json:"text"`
	PubDate time.Time `gorm:"not null;index" json:"pub_date"`
	Image   string    `json:"image,omitempty"`

	AuthorID uint `gorm:"not null;index" json:"author_id"`
	User     User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`

	GroupID *uint  `gorm:"index" json:"group_id,omitempty"`
	Group   *Group `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`

	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}
