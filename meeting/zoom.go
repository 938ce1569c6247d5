package meeting

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	zoomAuthURL    = "https://zoom.us/oauth/authorize"
	zoomTokenURL   = "https://zoom.us/oauth/token"
	zoomMeetingURL = "https://api.zoom.us/v2"
)

// ZoomProvider creates Zoom meetings through the v2 REST API.
type ZoomProvider struct {
	clientID     string
	clientSecret string
	client       *resty.Client
}

func NewZoomProvider(clientID, clientSecret string) *ZoomProvider {
	return &ZoomProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       resty.New().SetTimeout(15 * time.Second),
	}
}

func (z *ZoomProvider) Name() string {
	return "ZOOM"
}

func (z *ZoomProvider) AuthorizeURL(state, redirectURI string) string {
	q := url.Values{}
	q.Set("client_id", z.clientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("response_type", "code")
	q.Set("state", state)
	return zoomAuthURL + "?" + q.Encode()
}

type zoomTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
}

func (z *ZoomProvider) ExchangeCode(code, redirectURI string) (*TokenPair, error) {
	return z.tokenRequest(map[string]string{
		"grant_type":   "authorization_code",
		"code":         code,
		"redirect_uri": redirectURI,
	})
}

func (z *ZoomProvider) RefreshToken(refreshToken string) (*TokenPair, error) {
	return z.tokenRequest(map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	})
}

func (z *ZoomProvider) tokenRequest(form map[string]string) (*TokenPair, error) {
	resp, err := z.client.R().
		SetBasicAuth(z.clientID, z.clientSecret).
		SetFormData(form).
		Post(zoomTokenURL)
	if err != nil {
		return nil, fmt.Errorf("zoom token request failed: %v", err)
	}
	if resp.StatusCode() != 200 {
		return nil, z.apiError(resp)
	}

	var tokenResp zoomTokenResponse
	if err := json.Unmarshal(resp.Body(), &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse zoom token response: %v", err)
	}
	return &TokenPair{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second),
		Scope:        tokenResp.Scope,
	}, nil
}

type zoomMeetingBody struct {
	Topic     string `json:"topic"`
	Agenda    string `json:"agenda,omitempty"`
	Type      int    `json:"type"` // 2 = scheduled meeting
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"` // minutes
	Timezone  string `json:"timezone,omitempty"`
	Settings  struct {
		JoinBeforeHost bool `json:"join_before_host"`
		WaitingRoom    bool `json:"waiting_room"`
	} `json:"settings"`
}

func (z *ZoomProvider) meetingBody(req MeetingRequest) zoomMeetingBody {
	body := zoomMeetingBody{
		Topic:     req.Title,
		Agenda:    req.Description,
		Type:      2,
		StartTime: req.Start.UTC().Format("2006-01-02T15:04:05Z"),
		Duration:  int(req.End.Sub(req.Start).Minutes()),
		Timezone:  req.Timezone,
	}
	body.Settings.WaitingRoom = true
	return body
}

func (z *ZoomProvider) CreateMeeting(accessToken string, req MeetingRequest) (*MeetingResult, error) {
	resp, err := z.client.R().
		SetAuthToken(accessToken).
		SetBody(z.meetingBody(req)).
		Post(zoomMeetingURL + "/users/me/meetings")
	if err != nil {
		return nil, fmt.Errorf("zoom create meeting failed: %v", err)
	}
	if resp.StatusCode() != 201 {
		return nil, z.apiError(resp)
	}

	var meetingResp struct {
		ID      int64  `json:"id"`
		JoinURL string `json:"join_url"`
	}
	if err := json.Unmarshal(resp.Body(), &meetingResp); err != nil {
		return nil, fmt.Errorf("failed to parse zoom meeting response: %v", err)
	}
	return &MeetingResult{
		JoinURL:   meetingResp.JoinURL,
		MeetingID: strconv.FormatInt(meetingResp.ID, 10),
	}, nil
}

func (z *ZoomProvider) UpdateMeeting(accessToken, meetingID string, req MeetingRequest) error {
	resp, err := z.client.R().
		SetAuthToken(accessToken).
		SetBody(z.meetingBody(req)).
		Patch(zoomMeetingURL + "/meetings/" + meetingID)
	if err != nil {
		return fmt.Errorf("zoom update meeting failed: %v", err)
	}
	if resp.StatusCode() != 204 {
		return z.apiError(resp)
	}
	return nil
}

func (z *ZoomProvider) DeleteMeeting(accessToken, meetingID string) error {
	resp, err := z.client.R().
		SetAuthToken(accessToken).
		Delete(zoomMeetingURL + "/meetings/" + meetingID)
	if err != nil {
		return fmt.Errorf("zoom delete meeting failed: %v", err)
	}
	if resp.StatusCode() != 204 {
		return z.apiError(resp)
	}
	return nil
}

func (z *ZoomProvider) apiError(resp *resty.Response) error {
	apiErr := &ProviderError{Provider: z.Name(), Status: resp.StatusCode(), Message: resp.String()}
	var payload struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err == nil && payload.Message != "" {
		apiErr.Code = strconv.Itoa(payload.Code)
		apiErr.Message = payload.Message
	}
	return apiErr
}
