package models

import (
	"time"
)

// Follow is a directed social edge: UserID follows AuthorID.
// The (user, author) pair is unique; concurrent identical follow requests
// are resolved by the index plus a conflict-tolerant upsert, never by a
// check-then-insert.
type Follow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_follow_pair" json:"user_id"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_follow_pair" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`

	Follower User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Author   User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
