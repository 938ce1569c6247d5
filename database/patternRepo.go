package database

import (
	"meetly/models"

	"gorm.io/gorm"
)

// PatternRepo is the persistence gateway for availability patterns.
type PatternRepo struct {
	db *gorm.DB
}

func NewPatternRepo(db *gorm.DB) *PatternRepo {
	return &PatternRepo{db: db}
}

// Delete removes a pattern. One that never produced a booking is hard
// deleted; one with booking history is only deactivated and hidden, so its
// bookings keep a resolvable pattern reference. Reports whether the row was
// hard deleted.
func (r *PatternRepo) Delete(pattern *models.AvailabilityPattern) (bool, error) {
	booked, err := NewBookingRepo(r.db).HasBookings(pattern.ID)
	if err != nil {
		return false, err
	}
	if booked {
		err := r.db.Model(pattern).Updates(map[string]interface{}{
			"is_deleted": true,
			"is_active":  false,
		}).Error
		return false, err
	}
	return true, r.db.Unscoped().Delete(pattern).Error
}
