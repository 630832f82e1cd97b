package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"tenantdesk/config"
	"tenantdesk/models"

	"golang.org/x/oauth2"
)

// IdentityProvider runs the authorization code flow against the SSO provider.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*models.SSOProfile, error)
}

// OAuth2Provider is an IdentityProvider for any OAuth2 server exposing a
// JSON userinfo endpoint.
type OAuth2Provider struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewOAuth2Provider(cfg config.Config) *OAuth2Provider {
	return &OAuth2Provider{
		config: &oauth2.Config{
			ClientID:     cfg.SSOClientID,
			ClientSecret: cfg.SSOClientSecret,
			RedirectURL:  cfg.SSORedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.SSOAuthURL,
				TokenURL: cfg.SSOTokenURL,
			},
			Scopes: []string{"openid", "email", "profile"},
		},
		userInfoURL: cfg.SSOUserInfoURL,
	}
}

func (p *OAuth2Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *OAuth2Provider) Exchange(ctx context.Context, code string) (*models.SSOProfile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("sso code exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("sso userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read sso userinfo: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sso userinfo returned %d: %s", resp.StatusCode, body)
	}

	var profile models.SSOProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode sso userinfo: %w", err)
	}
	if profile.IdpID == "" || profile.Email == "" {
		return nil, fmt.Errorf("sso userinfo is missing id or email")
	}
	return &profile, nil
}
