package models

// Group is a named topic that posts may optionally belong to.
// Groups are created administratively and are only weakly referenced by
// posts: deleting a group nulls the reference, it never removes posts.
type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `json:"description"`
}
