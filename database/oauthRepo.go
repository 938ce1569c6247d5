package database

import (
	"errors"

	"meetly/meeting"
	"meetly/models"

	"gorm.io/gorm"
)

// ConnectionRepo is the persistence gateway for OAuth connections. It
// implements meeting.TokenStore.
type ConnectionRepo struct {
	db *gorm.DB
}

func NewConnectionRepo(db *gorm.DB) *ConnectionRepo {
	return &ConnectionRepo{db: db}
}

// GetActiveConnection loads the single active connection for (user, provider).
func (r *ConnectionRepo) GetActiveConnection(userID uint, provider string) (*meeting.Connection, error) {
	var conn models.OAuthConnection
	err := r.db.Where("user_id = ? AND provider = ? AND is_active = true", userID, provider).
		Order("created_at DESC").First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, meeting.ErrNoActiveConnection
		}
		return nil, err
	}
	return &meeting.Connection{
		ID:           conn.ID,
		UserID:       conn.UserID,
		Provider:     conn.Provider,
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		ExpiresAt:    conn.ExpiresAt,
	}, nil
}

// SaveTokens rotates the connection's tokens in place.
func (r *ConnectionRepo) SaveTokens(connectionID uint, tokens meeting.TokenPair) error {
	return r.db.Model(&models.OAuthConnection{}).Where("id = ?", connectionID).
		Updates(map[string]interface{}{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.ExpiresAt,
		}).Error
}

// Upsert installs a fresh token set for (user, provider) as the single
// active connection, deactivating any previous one first.
func (r *ConnectionRepo) Upsert(userID uint, provider string, tokens meeting.TokenPair) (*models.OAuthConnection, error) {
	var saved models.OAuthConnection
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OAuthConnection{}).
			Where("user_id = ? AND provider = ? AND is_active = true", userID, provider).
			Update("is_active", false).Error; err != nil {
			return err
		}
		saved = models.OAuthConnection{
			UserID:       userID,
			Provider:     provider,
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
			ExpiresAt:    tokens.ExpiresAt,
			Scope:        tokens.Scope,
			IsActive:     true,
		}
		return tx.Create(&saved).Error
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// Deactivate disables the active connection on disconnect/revoke. Rows are
// kept, never deleted.
func (r *ConnectionRepo) Deactivate(userID uint, provider string) error {
	result := r.db.Model(&models.OAuthConnection{}).
		Where("user_id = ? AND provider = ? AND is_active = true", userID, provider).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return meeting.ErrNoActiveConnection
	}
	return nil
}

// ListForUser returns all of the user's connections, newest first.
func (r *ConnectionRepo) ListForUser(userID uint) ([]models.OAuthConnection, error) {
	var conns []models.OAuthConnection
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&conns).Error
	return conns, err
}
