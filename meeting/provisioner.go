package meeting

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// RefreshMargin is how close to expiry an access token may get before it is
// refreshed instead of used.
const RefreshMargin = 5 * time.Minute

var (
	// ErrNoActiveConnection means the owner has no usable credential set for
	// the requested provider.
	ErrNoActiveConnection = errors.New("no active provider connection")
	// ErrTokenRefreshFailed means the refresh call was rejected; the stored
	// token is left untouched.
	ErrTokenRefreshFailed = errors.New("token refresh failed")
	// ErrUnknownProvider means no registered provider matches the request.
	ErrUnknownProvider = errors.New("unknown meeting provider")
)

// Connection is the provisioner's view of a stored OAuth credential set.
type Connection struct {
	ID           uint
	UserID       uint
	Provider     string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// TokenStore is the persistence contract for OAuth connections. Lookups
// return ErrNoActiveConnection when no active row exists; SaveTokens rotates
// tokens in place on the given connection.
type TokenStore interface {
	GetActiveConnection(userID uint, provider string) (*Connection, error)
	SaveTokens(connectionID uint, tokens TokenPair) error
}

// Provisioner attaches remote meetings to bookings. Each attempt resolves a
// valid access token first (refreshing near-expiry tokens and persisting the
// rotation before any provider call) and then performs the provider
// operation. Failed attempts are never retried implicitly.
type Provisioner struct {
	store     TokenStore
	providers map[string]Provider
	now       func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex // serializes refreshes per (user, provider)
}

func NewProvisioner(store TokenStore, providers ...Provider) *Provisioner {
	m := make(map[string]Provider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &Provisioner{
		store:     store,
		providers: m,
		now:       time.Now,
		locks:     map[string]*sync.Mutex{},
	}
}

// Provider returns the registered backend for name.
func (pv *Provisioner) Provider(name string) (Provider, error) {
	p, ok := pv.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}

// CreateMeeting provisions a remote meeting for the owner's booking and
// returns the normalized join URL and provider meeting id.
func (pv *Provisioner) CreateMeeting(ownerID uint, providerName string, req MeetingRequest) (*MeetingResult, error) {
	provider, token, err := pv.resolve(ownerID, providerName)
	if err != nil {
		return nil, err
	}
	return provider.CreateMeeting(token, req)
}

// UpdateMeeting moves an existing remote meeting to the booking's new times.
func (pv *Provisioner) UpdateMeeting(ownerID uint, providerName, meetingID string, req MeetingRequest) error {
	provider, token, err := pv.resolve(ownerID, providerName)
	if err != nil {
		return err
	}
	return provider.UpdateMeeting(token, meetingID, req)
}

// DeleteMeeting removes the remote meeting. A meeting that is already gone
// upstream counts as deleted; any other remote failure is returned so the
// caller can log it, but local cancellation must not block on it.
func (pv *Provisioner) DeleteMeeting(ownerID uint, providerName, meetingID string) error {
	provider, token, err := pv.resolve(ownerID, providerName)
	if err != nil {
		return err
	}
	err = provider.DeleteMeeting(token, meetingID)
	var pErr *ProviderError
	if errors.As(err, &pErr) && pErr.Gone() {
		log.Printf("[MEETING] %s meeting %s already gone upstream, treating delete as success", providerName, meetingID)
		return nil
	}
	return err
}

// resolve loads the active connection and returns a token guaranteed to be
// outside the refresh margin. Refreshes for one (user, provider) pair are
// serialized so concurrent bookings cannot race a rotation.
func (pv *Provisioner) resolve(ownerID uint, providerName string) (Provider, string, error) {
	provider, err := pv.Provider(providerName)
	if err != nil {
		return nil, "", err
	}

	lock := pv.connLock(ownerID, providerName)
	lock.Lock()
	defer lock.Unlock()

	conn, err := pv.store.GetActiveConnection(ownerID, providerName)
	if err != nil {
		return nil, "", err
	}

	if pv.now().Add(RefreshMargin).Before(conn.ExpiresAt) || conn.RefreshToken == "" {
		return provider, conn.AccessToken, nil
	}

	tokens, err := provider.RefreshToken(conn.RefreshToken)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrTokenRefreshFailed, err)
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = conn.RefreshToken
	}
	// Persist the rotation before any provider call: a crash after refresh
	// must not lose the only valid token set.
	if err := pv.store.SaveTokens(conn.ID, *tokens); err != nil {
		return nil, "", fmt.Errorf("%w: persisting rotated tokens: %v", ErrTokenRefreshFailed, err)
	}
	return provider, tokens.AccessToken, nil
}

func (pv *Provisioner) connLock(ownerID uint, providerName string) *sync.Mutex {
	key := fmt.Sprintf("%d:%s", ownerID, providerName)
	pv.mu.Lock()
	defer pv.mu.Unlock()
	if l, ok := pv.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	pv.locks[key] = l
	return l
}
