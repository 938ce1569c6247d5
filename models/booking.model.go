package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking status values. Transitions are forward-only:
// UPCOMING -> COMPLETED, UPCOMING -> CANCELLED. Terminal states stay terminal.
const (
	BookingStatusUpcoming  = "UPCOMING"
	BookingStatusCompleted = "COMPLETED"
	BookingStatusCancelled = "CANCELLED"
)

// Booking is a confirmed reservation of one slot (or an ad hoc time).
// Start/end are authoritative once the row exists, regardless of later
// pattern edits.
type Booking struct {
	gorm.Model
	Reference         string     `gorm:"uniqueIndex;not null" json:"reference"`
	PatternID         *uint      `gorm:"index" json:"patternId"` // nil for ad hoc bookings
	OwnerID           uint       `gorm:"not null;index" json:"ownerId"`
	SubjectID         *uint      `json:"subjectId"` // member identity, XOR guest fields
	GuestName         string     `gorm:"default:''" json:"guestName"`
	GuestEmail        string     `gorm:"default:''" json:"guestEmail"`
	Title             string     `gorm:"not null" json:"title"`
	Notes             string     `gorm:"type:text" json:"notes"`
	BookingStartTime  time.Time  `gorm:"not null;index" json:"bookingStartTime"`
	BookingEndTime    time.Time  `gorm:"not null" json:"bookingEndTime"`
	Timezone          string     `gorm:"default:'UTC'" json:"timezone"`
	Status            string     `gorm:"not null;default:'UPCOMING';index" json:"status"`
	MeetingType       string     `gorm:"not null;default:'MANUAL_LINK'" json:"meetingType"`
	MeetingURL        string     `gorm:"default:''" json:"meetingUrl"`
	ProviderMeetingID string     `gorm:"default:''" json:"providerMeetingId"`
	ProvisionKey      string     `gorm:"default:''" json:"-"` // generated before the first remote call
	ReminderSent      bool       `gorm:"default:false" json:"-"`
	CancelledAt       *time.Time `json:"cancelledAt"`

	Pattern *AvailabilityPattern `gorm:"foreignKey:PatternID" json:"-"`
	Owner   User                 `gorm:"foreignKey:OwnerID" json:"-"`
}

func (Booking) TableName() string {
	return "bookings"
}

// AttendeeEmail returns the email of whoever booked the slot.
func (b *Booking) AttendeeEmail(db *gorm.DB) string {
	if b.SubjectID != nil {
		var u User
		if err := db.Select("email").First(&u, *b.SubjectID).Error; err == nil {
			return u.Email
		}
		return ""
	}
	return b.GuestEmail
}

// AttendeeName returns the display name of whoever booked the slot.
func (b *Booking) AttendeeName(db *gorm.DB) string {
	if b.SubjectID != nil {
		var u User
		if err := db.Select("name").First(&u, *b.SubjectID).Error; err == nil {
			return u.Name
		}
		return ""
	}
	return b.GuestName
}
