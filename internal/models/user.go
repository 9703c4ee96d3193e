// Package models defines the persisted Aura entities and API error types.
package models

import "time"

// User is an Aura member. The ID is the subject claim issued by the identity provider.
type User struct {
	ID              string    `gorm:"primaryKey;type:varchar(255)" json:"id"`
	Email           *string   `gorm:"uniqueIndex;type:varchar(255)" json:"email"`
	FirstName       string    `gorm:"type:varchar(255)" json:"firstName"`
	LastName        string    `gorm:"type:varchar(255)" json:"lastName"`
	ProfileImageURL string    `gorm:"type:varchar(1024)" json:"profileImageUrl"`
	DisplayName     string    `gorm:"type:varchar(255)" json:"displayName"`
	Bio             string    `gorm:"type:text" json:"bio"`
	Location        string    `gorm:"type:varchar(255)" json:"location"`
	AuraPoints      int       `gorm:"not null;default:0" json:"auraPoints"`
	TreeLevel       int       `gorm:"not null;default:1" json:"treeLevel"`
	TreeType        string    `gorm:"type:varchar(50);not null;default:oak" json:"treeType"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TableName returns the database table name for User.
func (User) TableName() string {
	return "users"
}

// PublicName is the name shown next to a user's content.
func (u *User) PublicName() string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return "Aura member"
}
