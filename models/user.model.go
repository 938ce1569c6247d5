package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleMember = "MEMBER"
	RoleHost   = "HOST"
	RoleAdmin  = "ADMIN"
)

type User struct {
	gorm.Model
	ProfileImage        string    `gorm:"default:''"`
	Name                string    `gorm:"default:''"`
	Email               string    `gorm:"unique;not null"`
	Role                string    `gorm:"default:'MEMBER'"` // MEMBER, HOST, ADMIN
	Password            string    `gorm:"not null"`
	Timezone            string    `gorm:"default:'UTC'"`
	IsEmailVerified     bool      `gorm:"default:false"`
	LastLogin           time.Time `gorm:"default:NULL"`
	FailedLoginAttempts int       `gorm:"default:0"`
	IsBlocked           bool      `gorm:"default:false"`
	IsDeleted           bool      `gorm:"default:false"`
}
