package meeting

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleCalendarURL = "https://www.googleapis.com/calendar/v3/calendars/primary/events"
	googleScope       = "https://www.googleapis.com/auth/calendar.events"
)

// GoogleProvider creates Google Meet links by inserting Calendar events with
// a conference create request.
type GoogleProvider struct {
	clientID     string
	clientSecret string
	client       *resty.Client
}

func NewGoogleProvider(clientID, clientSecret string) *GoogleProvider {
	return &GoogleProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       resty.New().SetTimeout(15 * time.Second),
	}
}

func (g *GoogleProvider) Name() string {
	return "GOOGLE"
}

func (g *GoogleProvider) AuthorizeURL(state, redirectURI string) string {
	q := url.Values{}
	q.Set("client_id", g.clientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("response_type", "code")
	q.Set("scope", googleScope)
	q.Set("access_type", "offline")
	q.Set("prompt", "consent")
	q.Set("state", state)
	return googleAuthURL + "?" + q.Encode()
}

type googleTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
}

func (g *GoogleProvider) ExchangeCode(code, redirectURI string) (*TokenPair, error) {
	return g.tokenRequest(map[string]string{
		"grant_type":    "authorization_code",
		"code":          code,
		"redirect_uri":  redirectURI,
		"client_id":     g.clientID,
		"client_secret": g.clientSecret,
	})
}

func (g *GoogleProvider) RefreshToken(refreshToken string) (*TokenPair, error) {
	return g.tokenRequest(map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
		"client_id":     g.clientID,
		"client_secret": g.clientSecret,
	})
}

func (g *GoogleProvider) tokenRequest(form map[string]string) (*TokenPair, error) {
	resp, err := g.client.R().
		SetFormData(form).
		Post(googleTokenURL)
	if err != nil {
		return nil, fmt.Errorf("google token request failed: %v", err)
	}
	if resp.StatusCode() != 200 {
		return nil, g.apiError(resp)
	}

	var tokenResp googleTokenResponse
	if err := json.Unmarshal(resp.Body(), &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse google token response: %v", err)
	}
	return &TokenPair{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second),
		Scope:        tokenResp.Scope,
	}, nil
}

type googleEventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

type googleEventBody struct {
	Summary     string          `json:"summary"`
	Description string          `json:"description,omitempty"`
	Start       googleEventTime `json:"start"`
	End         googleEventTime `json:"end"`
	Attendees   []struct {
		Email string `json:"email"`
	} `json:"attendees,omitempty"`
	ConferenceData *struct {
		CreateRequest struct {
			RequestID             string `json:"requestId"`
			ConferenceSolutionKey struct {
				Type string `json:"type"`
			} `json:"conferenceSolutionKey"`
		} `json:"createRequest"`
	} `json:"conferenceData,omitempty"`
}

func (g *GoogleProvider) eventBody(req MeetingRequest, withConference bool) googleEventBody {
	body := googleEventBody{
		Summary:     req.Title,
		Description: req.Description,
		Start:       googleEventTime{DateTime: req.Start.Format(time.RFC3339), TimeZone: req.Timezone},
		End:         googleEventTime{DateTime: req.End.Format(time.RFC3339), TimeZone: req.Timezone},
	}
	for _, email := range req.Attendees {
		body.Attendees = append(body.Attendees, struct {
			Email string `json:"email"`
		}{Email: email})
	}
	if withConference {
		body.ConferenceData = &struct {
			CreateRequest struct {
				RequestID             string `json:"requestId"`
				ConferenceSolutionKey struct {
					Type string `json:"type"`
				} `json:"conferenceSolutionKey"`
			} `json:"createRequest"`
		}{}
		body.ConferenceData.CreateRequest.RequestID = req.RequestID
		body.ConferenceData.CreateRequest.ConferenceSolutionKey.Type = "hangoutsMeet"
	}
	return body
}

func (g *GoogleProvider) CreateMeeting(accessToken string, req MeetingRequest) (*MeetingResult, error) {
	resp, err := g.client.R().
		SetAuthToken(accessToken).
		SetQueryParam("conferenceDataVersion", "1").
		SetBody(g.eventBody(req, true)).
		Post(googleCalendarURL)
	if err != nil {
		return nil, fmt.Errorf("google create meeting failed: %v", err)
	}
	if resp.StatusCode() != 200 {
		return nil, g.apiError(resp)
	}

	var event struct {
		ID          string `json:"id"`
		HangoutLink string `json:"hangoutLink"`
	}
	if err := json.Unmarshal(resp.Body(), &event); err != nil {
		return nil, fmt.Errorf("failed to parse google event response: %v", err)
	}
	return &MeetingResult{JoinURL: event.HangoutLink, MeetingID: event.ID}, nil
}

func (g *GoogleProvider) UpdateMeeting(accessToken, meetingID string, req MeetingRequest) error {
	resp, err := g.client.R().
		SetAuthToken(accessToken).
		SetBody(g.eventBody(req, false)).
		Patch(googleCalendarURL + "/" + meetingID)
	if err != nil {
		return fmt.Errorf("google update meeting failed: %v", err)
	}
	if resp.StatusCode() != 200 {
		return g.apiError(resp)
	}
	return nil
}

func (g *GoogleProvider) DeleteMeeting(accessToken, meetingID string) error {
	resp, err := g.client.R().
		SetAuthToken(accessToken).
		Delete(googleCalendarURL + "/" + meetingID)
	if err != nil {
		return fmt.Errorf("google delete meeting failed: %v", err)
	}
	if resp.StatusCode() != 204 && resp.StatusCode() != 200 {
		return g.apiError(resp)
	}
	return nil
}

func (g *GoogleProvider) apiError(resp *resty.Response) error {
	apiErr := &ProviderError{Provider: g.Name(), Status: resp.StatusCode(), Message: resp.String()}
	var payload struct {
		Error struct {
			Code    int    `json:"code"`
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err == nil && payload.Error.Message != "" {
		apiErr.Code = payload.Error.Status
		apiErr.Message = payload.Error.Message
	}
	return apiErr
}
