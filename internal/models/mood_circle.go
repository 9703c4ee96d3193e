package models

import (
	"time"

	"gorm.io/gorm"
)

// MoodCircle is a community gathered around one mood.
type MoodCircle struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Mood        Mood      `gorm:"type:mood_type;not null;index" json:"mood"`
	CreatedBy   string    `gorm:"type:varchar(255);not null" json:"createdBy"`
	MemberCount int       `gorm:"not null;default:0" json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM.
func (MoodCircle) TableName() string {
	return "mood_circles"
}

// BeforeCreate assigns a UUID when none is set.
func (c *MoodCircle) BeforeCreate(*gorm.DB) error {
	newID(&c.ID)
	return nil
}

// CircleMember links a user to a mood circle. (circle_id, user_id) is unique.
type CircleMember struct {
	ID       string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CircleID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_circle_members_circle_user" json:"circleId"`
	UserID   string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_circle_members_circle_user" json:"userId"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joinedAt"`
}

// TableName specifies the table name for GORM.
func (CircleMember) TableName() string {
	return "circle_members"
}

// BeforeCreate assigns a UUID when none is set.
func (m *CircleMember) BeforeCreate(*gorm.DB) error {
	newID(&m.ID)
	return nil
}
