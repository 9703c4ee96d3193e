package models

import (
	"time"

	"gorm.io/gorm"
)

// ActivityType classifies an aura ledger entry.
type ActivityType string

const (
	ActivitySharedExperience  ActivityType = "shared_experience"
	ActivitySupportiveGesture ActivityType = "supportive_gesture"
	ActivityTimeCapsule       ActivityType = "time_capsule"
	ActivityGlobalExchange    ActivityType = "global_exchange"
)

// Points awarded per activity.
const (
	PointsSharedExperience  = 10
	PointsSupportiveGesture = 5
	PointsTimeCapsule       = 15
)

// AuraActivity is one append-only row of a user's points ledger.
type AuraActivity struct {
	ID          string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string       `gorm:"type:varchar(255);not null;index" json:"userId"`
	Type        ActivityType `gorm:"type:varchar(50);not null" json:"type"`
	Points      int          `gorm:"not null" json:"points"`
	Description string       `gorm:"type:text" json:"description"`
	CreatedAt   time.Time    `gorm:"index" json:"createdAt"`
}

// TableName specifies the table name for GORM.
func (AuraActivity) TableName() string {
	return "aura_activities"
}

// BeforeCreate assigns a UUID when none is set.
func (a *AuraActivity) BeforeCreate(*gorm.DB) error {
	newID(&a.ID)
	return nil
}
