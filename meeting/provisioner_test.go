package meeting

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu    sync.Mutex
	conn  *Connection
	saved []TokenPair
}

func (s *fakeStore) GetActiveConnection(userID uint, provider string) (*Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || s.conn.UserID != userID || s.conn.Provider != provider {
		return nil, ErrNoActiveConnection
	}
	c := *s.conn
	return &c, nil
}

func (s *fakeStore) SaveTokens(connectionID uint, tokens TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, tokens)
	s.conn.AccessToken = tokens.AccessToken
	s.conn.RefreshToken = tokens.RefreshToken
	s.conn.ExpiresAt = tokens.ExpiresAt
	return nil
}

type fakeProvider struct {
	mu               sync.Mutex
	refreshCalls     int
	refreshErr       error
	omitRefreshToken bool
	createdTokens    []string
	deleteErr        error
}

func (p *fakeProvider) Name() string { return "FAKE" }

func (p *fakeProvider) AuthorizeURL(state, redirect string) string { return "https://fake/auth" }

func (p *fakeProvider) ExchangeCode(code, redirectURI string) (*TokenPair, error) {
	return &TokenPair{AccessToken: "exchanged", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (p *fakeProvider) RefreshToken(refreshToken string) (*TokenPair, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshCalls++
	if p.refreshErr != nil {
		return nil, p.refreshErr
	}
	pair := &TokenPair{
		AccessToken:  "fresh-token",
		RefreshToken: "fresh-refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	if p.omitRefreshToken {
		pair.RefreshToken = ""
	}
	return pair, nil
}

func (p *fakeProvider) CreateMeeting(accessToken string, req MeetingRequest) (*MeetingResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.createdTokens = append(p.createdTokens, accessToken)
	return &MeetingResult{JoinURL: "https://fake/join", MeetingID: "m-1"}, nil
}

func (p *fakeProvider) UpdateMeeting(accessToken, meetingID string, req MeetingRequest) error {
	return nil
}

func (p *fakeProvider) DeleteMeeting(accessToken, meetingID string) error {
	return p.deleteErr
}

func freshConn() *Connection {
	return &Connection{
		ID:           1,
		UserID:       42,
		Provider:     "FAKE",
		AccessToken:  "stale-token",
		RefreshToken: "stale-refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

func TestCreateMeetingUsesStoredTokenWhenFresh(t *testing.T) {
	store := &fakeStore{conn: freshConn()}
	provider := &fakeProvider{}
	pv := NewProvisioner(store, provider)

	result, err := pv.CreateMeeting(42, "FAKE", MeetingRequest{Title: "Intro call"})
	require.NoError(t, err)
	assert.Equal(t, "https://fake/join", result.JoinURL)
	assert.Equal(t, "m-1", result.MeetingID)

	assert.Equal(t, 0, provider.refreshCalls)
	assert.Equal(t, []string{"stale-token"}, provider.createdTokens)
}

func TestCreateMeetingRefreshesNearExpiryToken(t *testing.T) {
	conn := freshConn()
	conn.ExpiresAt = time.Now().Add(2 * time.Minute) // inside the 5min margin
	store := &fakeStore{conn: conn}
	provider := &fakeProvider{}
	pv := NewProvisioner(store, provider)

	_, err := pv.CreateMeeting(42, "FAKE", MeetingRequest{Title: "Intro call"})
	require.NoError(t, err)

	// The stale token must never reach the provider's create endpoint.
	assert.Equal(t, 1, provider.refreshCalls)
	assert.Equal(t, []string{"fresh-token"}, provider.createdTokens)

	// Rotated tokens were persisted before the create call.
	require.Len(t, store.saved, 1)
	assert.Equal(t, "fresh-token", store.saved[0].AccessToken)
	assert.Equal(t, "fresh-refresh", store.saved[0].RefreshToken)
}

func TestCreateMeetingKeepsOldRefreshTokenWhenNotRotated(t *testing.T) {
	conn := freshConn()
	conn.ExpiresAt = time.Now().Add(time.Minute)
	store := &fakeStore{conn: conn}
	// Provider refresh that omits a new refresh token.
	provider := &fakeProvider{omitRefreshToken: true}
	pv := NewProvisioner(store, provider)

	_, err := pv.CreateMeeting(42, "FAKE", MeetingRequest{})
	require.NoError(t, err)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "stale-refresh", store.saved[0].RefreshToken)
}

func TestCreateMeetingFailsWithoutConnection(t *testing.T) {
	store := &fakeStore{}
	pv := NewProvisioner(store, &fakeProvider{})

	_, err := pv.CreateMeeting(42, "FAKE", MeetingRequest{})
	assert.ErrorIs(t, err, ErrNoActiveConnection)
}

func TestCreateMeetingSurfacesRefreshFailure(t *testing.T) {
	conn := freshConn()
	conn.ExpiresAt = time.Now().Add(time.Minute)
	store := &fakeStore{conn: conn}
	provider := &fakeProvider{refreshErr: errors.New("invalid_grant")}
	pv := NewProvisioner(store, provider)

	_, err := pv.CreateMeeting(42, "FAKE", MeetingRequest{})
	assert.ErrorIs(t, err, ErrTokenRefreshFailed)

	// No create call was made and the stored tokens are untouched.
	assert.Empty(t, provider.createdTokens)
	assert.Empty(t, store.saved)
	assert.Equal(t, "stale-token", store.conn.AccessToken)
}

func TestCreateMeetingUnknownProvider(t *testing.T) {
	pv := NewProvisioner(&fakeStore{conn: freshConn()}, &fakeProvider{})
	_, err := pv.CreateMeeting(42, "TEAMS", MeetingRequest{})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestDeleteMeetingToleratesGoneMeeting(t *testing.T) {
	store := &fakeStore{conn: freshConn()}
	provider := &fakeProvider{
		deleteErr: &ProviderError{Provider: "FAKE", Status: 404, Message: "meeting not found"},
	}
	pv := NewProvisioner(store, provider)

	assert.NoError(t, pv.DeleteMeeting(42, "FAKE", "m-1"))

	provider.deleteErr = &ProviderError{Provider: "FAKE", Status: 410, Message: "gone"}
	assert.NoError(t, pv.DeleteMeeting(42, "FAKE", "m-1"))

	// Other remote failures are still surfaced.
	provider.deleteErr = &ProviderError{Provider: "FAKE", Status: 500, Message: "boom"}
	err := pv.DeleteMeeting(42, "FAKE", "m-1")
	var pErr *ProviderError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, 500, pErr.Status)
}

func TestConcurrentRefreshesAreSerialized(t *testing.T) {
	conn := freshConn()
	conn.ExpiresAt = time.Now().Add(time.Minute)
	store := &fakeStore{conn: conn}
	provider := &fakeProvider{}
	pv := NewProvisioner(store, provider)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pv.CreateMeeting(42, "FAKE", MeetingRequest{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// The first caller rotates the token; everyone after sees a fresh expiry
	// and must not trigger another refresh.
	assert.Equal(t, 1, provider.refreshCalls)
	assert.Len(t, store.saved, 1)
}
