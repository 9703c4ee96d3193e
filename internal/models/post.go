package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a mood-tagged experience shared by a user.
type Post struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string    `gorm:"type:varchar(255);not null;index" json:"userId"`
	User        *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Mood        Mood      `gorm:"type:mood_type;not null;index" json:"mood"`
	IsAnonymous bool      `gorm:"not null;default:false;index" json:"isAnonymous"`
	ImageURL    string    `gorm:"type:varchar(1024)" json:"imageUrl"`
	MusicURL    string    `gorm:"type:varchar(1024)" json:"musicUrl"`
	MusicTitle  string    `gorm:"type:varchar(255)" json:"musicTitle"`
	Location    string    `gorm:"type:varchar(255)" json:"location"`
	Latitude    *float64  `gorm:"type:decimal(10,8)" json:"latitude"`
	Longitude   *float64  `gorm:"type:decimal(11,8)" json:"longitude"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name for GORM.
func (Post) TableName() string {
	return "posts"
}

// BeforeCreate assigns a UUID when none is set.
func (p *Post) BeforeCreate(*gorm.DB) error {
	newID(&p.ID)
	return nil
}

// Redacted returns a copy safe for public listings: anonymous posts lose
// every trace of their author.
func (p Post) Redacted() Post {
	if p.IsAnonymous {
		p.UserID = ""
		p.User = nil
	}
	return p
}
