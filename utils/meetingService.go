package utils

import (
	"sync"

	"meetly/config"
	"meetly/database"
	"meetly/meeting"
	"meetly/models"
)

var (
	provisionerOnce sync.Once
	provisioner     *meeting.Provisioner
)

// MeetingProvisioner returns the process-wide provisioner, wired to the
// configured providers and the OAuth connection store.
func MeetingProvisioner() *meeting.Provisioner {
	provisionerOnce.Do(func() {
		store := database.NewConnectionRepo(database.Database.Db)
		provisioner = meeting.NewProvisioner(store,
			meeting.NewGoogleProvider(config.AppConfig.GoogleClientID, config.AppConfig.GoogleClientSecret),
			meeting.NewZoomProvider(config.AppConfig.ZoomClientID, config.AppConfig.ZoomClientSecret),
		)
	})
	return provisioner
}

// ProviderNameFor maps a meeting type to its OAuth provider. Manual links
// and physical locations have none.
func ProviderNameFor(meetingType string) (string, bool) {
	switch meetingType {
	case models.MeetingTypeGoogle:
		return models.ProviderGoogle, true
	case models.MeetingTypeZoom:
		return models.ProviderZoom, true
	}
	return "", false
}

// OAuthRedirectURI is the provider callback URL registered with each app.
func OAuthRedirectURI(provider string) string {
	return config.AppConfig.OAuthRedirectBase + "/oauth/callback?provider=" + provider
}
