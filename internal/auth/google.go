package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

var ErrGoogleNotConfigured = errors.New("auth: google client id is not configured")

// GoogleProfile is the subset of the OpenID userinfo document the backend
// needs to create or find an account.
type GoogleProfile struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// GoogleProvider runs the OAuth2 device authorization flow, which suits a
// terminal: the user approves on another device while the client polls.
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewGoogleProvider(clientID, clientSecret string) (*GoogleProvider, error) {
	return newGoogleProvider(clientID, clientSecret, google.Endpoint, googleUserInfoURL)
}

func newGoogleProvider(clientID, clientSecret string, endpoint oauth2.Endpoint, userInfoURL string) (*GoogleProvider, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, ErrGoogleNotConfigured
	}
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: strings.TrimSpace(clientSecret),
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoint,
		},
		userInfoURL: userInfoURL,
	}, nil
}

// Start requests a device code. The caller shows UserCode and
// VerificationURI, then calls Wait.
func (p *GoogleProvider) Start(ctx context.Context) (*oauth2.DeviceAuthResponse, error) {
	resp, err := p.config.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth: requesting device code: %w", err)
	}
	return resp, nil
}

// Wait polls until the user approves, then fetches the profile.
func (p *GoogleProvider) Wait(ctx context.Context, device *oauth2.DeviceAuthResponse) (*GoogleProfile, error) {
	if device == nil {
		return nil, errors.New("auth: device response is required")
	}
	token, err := p.config.DeviceAccessToken(ctx, device)
	if err != nil {
		return nil, fmt.Errorf("auth: waiting for approval: %w", err)
	}
	return p.profile(ctx, token)
}

func (p *GoogleProvider) profile(ctx context.Context, token *oauth2.Token) (*GoogleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: calling userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: userinfo returned status %d", resp.StatusCode)
	}
	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("auth: decoding userinfo: %w", err)
	}
	if strings.TrimSpace(profile.Email) == "" {
		return nil, errors.New("auth: google returned a profile without email")
	}
	if strings.TrimSpace(profile.Name) == "" {
		profile.Name = strings.SplitN(profile.Email, "@", 2)[0]
	}
	return &profile, nil
}
