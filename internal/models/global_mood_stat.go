package models

import (
	"time"

	"gorm.io/gorm"
)

// GlobalMoodStat counts posts per mood and country for one day.
type GlobalMoodStat struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Mood       Mood      `gorm:"type:mood_type;not null;index:idx_global_mood_stats_lookup" json:"mood"`
	Country    string    `gorm:"type:varchar(255);index:idx_global_mood_stats_lookup" json:"country"`
	Region     string    `gorm:"type:varchar(255)" json:"region"`
	Count      int       `gorm:"not null;default:1" json:"count"`
	Percentage *float64  `gorm:"type:decimal(5,2)" json:"percentage"`
	Date       time.Time `gorm:"not null;index:idx_global_mood_stats_lookup" json:"date"`
}

// TableName specifies the table name for GORM.
func (GlobalMoodStat) TableName() string {
	return "global_mood_stats"
}

// BeforeCreate assigns a UUID when none is set.
func (s *GlobalMoodStat) BeforeCreate(*gorm.DB) error {
	newID(&s.ID)
	return nil
}

// StartOfDay returns midnight UTC of the day containing t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
