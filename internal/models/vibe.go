package models

import (
	"time"

	"gorm.io/gorm"
)

// Vibe is a reaction sent to a post. A user holds at most one vibe per post.
type Vibe struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PostID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_vibes_post_user" json:"postId"`
	UserID    string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_vibes_post_user" json:"userId"`
	Type      string    `gorm:"type:varchar(50);not null" json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM.
func (Vibe) TableName() string {
	return "vibes"
}

// BeforeCreate assigns a UUID when none is set.
func (v *Vibe) BeforeCreate(*gorm.DB) error {
	newID(&v.ID)
	return nil
}
