package meeting

import (
	"fmt"
	"time"
)

// MeetingRequest carries everything a provider needs to create or move a
// remote meeting.
type MeetingRequest struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Timezone    string
	Attendees   []string
	RequestID   string // per-booking provision key, sent where the provider accepts one
}

// MeetingResult is the normalized outcome of a successful create call.
type MeetingResult struct {
	JoinURL   string `json:"joinUrl"`
	MeetingID string `json:"meetingId"`
}

// TokenPair is a provider token set returned by code exchange or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string // empty when the provider did not rotate it
	ExpiresAt    time.Time
	Scope        string
}

// ProviderError wraps a non-2xx provider response. It is always surfaced to
// the caller so they can choose between retrying, entering a manual link, or
// aborting.
type ProviderError struct {
	Provider string `json:"provider"`
	Status   int    `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error (status %d, code %s): %s", e.Provider, e.Status, e.Code, e.Message)
}

// Gone reports whether the remote resource no longer exists. Deletion treats
// this as success.
func (e *ProviderError) Gone() bool {
	return e.Status == 404 || e.Status == 410
}

// Provider is one meeting backend (Google Meet, Zoom). Implementations make
// the provider's HTTP calls with explicit timeouts and normalize failures
// into ProviderError.
type Provider interface {
	Name() string
	AuthorizeURL(state, redirectURI string) string
	ExchangeCode(code, redirectURI string) (*TokenPair, error)
	RefreshToken(refreshToken string) (*TokenPair, error)
	CreateMeeting(accessToken string, req MeetingRequest) (*MeetingResult, error)
	UpdateMeeting(accessToken, meetingID string, req MeetingRequest) error
	DeleteMeeting(accessToken, meetingID string) error
}
