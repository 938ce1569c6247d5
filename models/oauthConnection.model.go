package models

import (
	"time"

	"gorm.io/gorm"
)

// OAuth provider identifiers
const (
	ProviderGoogle = "GOOGLE"
	ProviderZoom   = "ZOOM"
)

// OAuthConnection stores a user's credential set for a meeting provider.
// At most one row per (user, provider) may be active at a time; disconnects
// deactivate rather than delete.
type OAuthConnection struct {
	gorm.Model
	UserID       uint      `gorm:"not null;index:idx_oauth_user_provider" json:"userId"`
	Provider     string    `gorm:"not null;index:idx_oauth_user_provider" json:"provider"`
	AccessToken  string    `gorm:"type:text;not null" json:"-"`
	RefreshToken string    `gorm:"type:text" json:"-"`
	ExpiresAt    time.Time `gorm:"not null" json:"expiresAt"`
	Scope        string    `gorm:"default:''" json:"scope"`
	IsActive     bool      `gorm:"default:true" json:"isActive"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (OAuthConnection) TableName() string {
	return "oauth_connections"
}
