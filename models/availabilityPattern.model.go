package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Meeting types supported by availability patterns
const (
	MeetingTypeGoogle   = "GOOGLE_MEET"
	MeetingTypeZoom     = "ZOOM"
	MeetingTypeManual   = "MANUAL_LINK"
	MeetingTypePhysical = "PHYSICAL_LOCATION"
)

// AvailabilityPattern is a host's recurring weekly availability. Slots are
// derived from it on read; only bookings are persisted.
type AvailabilityPattern struct {
	gorm.Model
	OwnerID         uint           `gorm:"not null;index" json:"ownerId"`
	Title           string         `gorm:"not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	DurationMinutes int            `gorm:"not null" json:"durationMinutes"`
	WeeklySchedule  datatypes.JSON `gorm:"not null" json:"weeklySchedule"` // {"MON":[{"start":"09:00","end":"12:00"}],...}
	Timezone        string         `gorm:"default:'UTC'" json:"timezone"`
	DateRangeStart  time.Time      `gorm:"not null;type:date" json:"dateRangeStart"`
	DateRangeEnd    *time.Time     `gorm:"type:date" json:"dateRangeEnd"` // nil = open-ended
	MeetingType     string         `gorm:"not null;default:'MANUAL_LINK'" json:"meetingType"`
	ManualValue     string         `gorm:"default:''" json:"manualValue"` // link or address for MANUAL_LINK / PHYSICAL_LOCATION
	IsActive        bool           `gorm:"default:true" json:"isActive"`
	IsDeleted       bool           `gorm:"default:false" json:"isDeleted"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (AvailabilityPattern) TableName() string {
	return "availability_patterns"
}

// RequiresGeneration reports whether booking this pattern needs a remote
// meeting to be provisioned.
func (p *AvailabilityPattern) RequiresGeneration() bool {
	return p.MeetingType == MeetingTypeGoogle || p.MeetingType == MeetingTypeZoom
}
