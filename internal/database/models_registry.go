package database

import "aura/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.TimeCapsule{},
		&models.MoodCircle{},
		&models.CircleMember{},
		&models.Vibe{},
		&models.AuraActivity{},
		&models.GlobalMoodStat{},
	}
}
