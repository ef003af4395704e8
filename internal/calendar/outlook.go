package calendar

import (
	"booking-service/internal/repository"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	graphBaseURL      = "https://graph.microsoft.com/v1.0"
	outlookTokenURL   = "https://login.microsoftonline.com/common/oauth2/v2.0/token"
	outlookTokenID    = "teacher-outlook"
	outlookTimeLayout = "2006-01-02T15:04:05"
)

// OutlookProvider talks to the Microsoft Graph calendar API with tokens the
// admin connect flow stored in the oauth_tokens table. Tokens are refreshed
// on expiry; acquisition itself happens elsewhere.
type OutlookProvider struct {
	client       *http.Client
	tokens       repository.OAuthTokenRepository
	clientID     string
	clientSecret string
}

func NewOutlookProvider(tokens repository.OAuthTokenRepository, clientID, clientSecret string) *OutlookProvider {
	return &OutlookProvider{
		client:       &http.Client{Timeout: 15 * time.Second},
		tokens:       tokens,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphEmailAddress struct {
	Address string `json:"address"`
}

type graphAttendee struct {
	EmailAddress graphEmailAddress `json:"emailAddress"`
	Type         string            `json:"type"`
}

type graphEvent struct {
	ID        string          `json:"id,omitempty"`
	Subject   string          `json:"subject,omitempty"`
	Start     *graphDateTime  `json:"start,omitempty"`
	End       *graphDateTime  `json:"end,omitempty"`
	Attendees []graphAttendee `json:"attendees,omitempty"`
}

func (p *OutlookProvider) CreateEvent(ctx context.Context, event Event) (string, error) {
	body := graphEvent{
		Subject: fmt.Sprintf("Lecție Demo: %s", event.SubjectName),
		Start:   &graphDateTime{DateTime: event.Start.Format(outlookTimeLayout), TimeZone: Timezone},
		End:     &graphDateTime{DateTime: event.End.Format(outlookTimeLayout), TimeZone: Timezone},
	}
	for _, email := range event.Attendees {
		body.Attendees = append(body.Attendees, graphAttendee{
			EmailAddress: graphEmailAddress{Address: email},
			Type:         "required",
		})
	}

	var created graphEvent
	if err := p.do(ctx, http.MethodPost, "/me/events", body, &created); err != nil {
		return "", err
	}

	return created.ID, nil
}

func (p *OutlookProvider) AddAttendees(ctx context.Context, eventID string, attendees []string) error {
	var existing graphEvent
	if err := p.do(ctx, http.MethodGet, "/me/events/"+url.PathEscape(eventID), nil, &existing); err != nil {
		return err
	}

	current := existing.Attendees
	changed := false
	for _, email := range attendees {
		if !hasGraphAttendee(current, email) {
			current = append(current, graphAttendee{
				EmailAddress: graphEmailAddress{Address: email},
				Type:         "required",
			})
			changed = true
		}
	}

	if !changed {
		return nil
	}

	patch := graphEvent{Attendees: current}
	return p.do(ctx, http.MethodPatch, "/me/events/"+url.PathEscape(eventID), patch, nil)
}

func hasGraphAttendee(attendees []graphAttendee, email string) bool {
	for _, a := range attendees {
		if strings.EqualFold(a.EmailAddress.Address, email) {
			return true
		}
	}
	return false
}

func (p *OutlookProvider) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	accessToken, err := p.accessToken(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, graphBaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("graph %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("graph %s %s: status %d: %s", method, path, resp.StatusCode, detail)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (p *OutlookProvider) accessToken(ctx context.Context) (string, error) {
	token, err := p.tokens.FindByID(ctx, outlookTokenID)
	if err != nil {
		return "", fmt.Errorf("load outlook token: %w", err)
	}

	if token == nil {
		return "", fmt.Errorf("outlook is not connected")
	}

	if !token.Expired(time.Now()) {
		return token.AccessToken, nil
	}

	return p.refresh(ctx, token.RefreshToken)
}

func (p *OutlookProvider) refresh(ctx context.Context, refreshToken string) (string, error) {
	form := url.Values{
		"client_id":     {p.clientID},
		"client_secret": {p.clientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"scope":         {"openid profile offline_access https://graph.microsoft.com/Calendars.ReadWrite"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, outlookTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh outlook token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("refresh outlook token: status %d: %s", resp.StatusCode, detail)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	if err := p.tokens.UpdateAccessToken(ctx, outlookTokenID, tokenResp.AccessToken, expiresAt); err != nil {
		return "", fmt.Errorf("store refreshed token: %w", err)
	}

	return tokenResp.AccessToken, nil
}
