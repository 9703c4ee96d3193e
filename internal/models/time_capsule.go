package models

import (
	"time"

	"gorm.io/gorm"
)

// TimeCapsule is a message sealed until its owner opens it.
type TimeCapsule struct {
	ID         string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     string     `gorm:"type:varchar(255);not null;index" json:"userId"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	Mood       Mood       `gorm:"type:mood_type;not null" json:"mood"`
	ImageURL   string     `gorm:"type:varchar(1024)" json:"imageUrl"`
	MusicURL   string     `gorm:"type:varchar(1024)" json:"musicUrl"`
	MusicTitle string     `gorm:"type:varchar(255)" json:"musicTitle"`
	UnlockDate time.Time  `gorm:"not null;index" json:"unlockDate"`
	IsPublic   bool       `gorm:"not null;default:false" json:"isPublic"`
	IsOpened   bool       `gorm:"not null;default:false" json:"isOpened"`
	OpenedAt   *time.Time `json:"openedAt"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// TableName specifies the table name for GORM.
func (TimeCapsule) TableName() string {
	return "time_capsules"
}

// BeforeCreate assigns a UUID when none is set.
func (c *TimeCapsule) BeforeCreate(*gorm.DB) error {
	newID(&c.ID)
	return nil
}
