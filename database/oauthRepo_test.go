package database

import (
	"testing"
	"time"

	"meetly/meeting"
	"meetly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionLifecycle(t *testing.T) {
	db := testDB(t)
	repo := NewConnectionRepo(db)

	_, err := repo.GetActiveConnection(42, models.ProviderGoogle)
	assert.ErrorIs(t, err, meeting.ErrNoActiveConnection)

	expiry := time.Now().Add(time.Hour).UTC()
	first, err := repo.Upsert(42, models.ProviderGoogle, meeting.TokenPair{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    expiry,
	})
	require.NoError(t, err)

	conn, err := repo.GetActiveConnection(42, models.ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "access-1", conn.AccessToken)

	// Reconnecting installs a new active connection and deactivates the old
	// one; at most one row per (user, provider) stays active.
	second, err := repo.Upsert(42, models.ProviderGoogle, meeting.TokenPair{
		AccessToken:  "access-2",
		RefreshToken: "refresh-2",
		ExpiresAt:    expiry,
	})
	require.NoError(t, err)

	var active int64
	require.NoError(t, db.Model(&models.OAuthConnection{}).
		Where("user_id = ? AND provider = ? AND is_active = true", 42, models.ProviderGoogle).
		Count(&active).Error)
	assert.EqualValues(t, 1, active)

	conn, err = repo.GetActiveConnection(42, models.ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, second.ID, conn.ID)
	assert.NotEqual(t, first.ID, conn.ID)
}

func TestSaveTokensRotatesInPlace(t *testing.T) {
	db := testDB(t)
	repo := NewConnectionRepo(db)

	saved, err := repo.Upsert(42, models.ProviderZoom, meeting.TokenPair{
		AccessToken:  "old-access",
		RefreshToken: "old-refresh",
		ExpiresAt:    time.Now().Add(time.Minute).UTC(),
	})
	require.NoError(t, err)

	newExpiry := time.Now().Add(time.Hour).UTC()
	require.NoError(t, repo.SaveTokens(saved.ID, meeting.TokenPair{
		AccessToken:  "new-access",
		RefreshToken: "new-refresh",
		ExpiresAt:    newExpiry,
	}))

	conn, err := repo.GetActiveConnection(42, models.ProviderZoom)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, conn.ID)
	assert.Equal(t, "new-access", conn.AccessToken)
	assert.Equal(t, "new-refresh", conn.RefreshToken)
}

func TestDeactivateKeepsRow(t *testing.T) {
	db := testDB(t)
	repo := NewConnectionRepo(db)

	_, err := repo.Upsert(42, models.ProviderGoogle, meeting.TokenPair{
		AccessToken: "access",
		ExpiresAt:   time.Now().Add(time.Hour).UTC(),
	})
	require.NoError(t, err)

	require.NoError(t, repo.Deactivate(42, models.ProviderGoogle))

	_, err = repo.GetActiveConnection(42, models.ProviderGoogle)
	assert.ErrorIs(t, err, meeting.ErrNoActiveConnection)

	// Disconnect deactivates, never deletes.
	var total int64
	require.NoError(t, db.Model(&models.OAuthConnection{}).
		Where("user_id = ?", 42).Count(&total).Error)
	assert.EqualValues(t, 1, total)

	assert.ErrorIs(t, repo.Deactivate(42, models.ProviderGoogle), meeting.ErrNoActiveConnection)
}
