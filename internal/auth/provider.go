// Package auth obtains Drive access tokens through Google's OAuth 2.0
// authorization code flow.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
)

var (
	// ErrNotConfigured means no OAuth client credentials were supplied.
	ErrNotConfigured = errors.New("auth provider not configured")
	// ErrInvalidState means the callback state is unknown, reused or expired.
	ErrInvalidState = errors.New("invalid or expired oauth state")
	// ErrMissingCode means the callback carried no authorization code.
	ErrMissingCode = errors.New("missing authorization code")
)

// Config holds the OAuth client registration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	StateTTL     time.Duration

	// Endpoint overrides Google's endpoints; tests point it at a fake.
	Endpoint *oauth2.Endpoint
}

// Token is the validated result of a code exchange.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Expiry      time.Time `json:"expiry,omitzero"`
}

// Provider is the ready-to-use handle for signing users in. Holding one
// means the OAuth client is configured.
type Provider struct {
	oauth  *oauth2.Config
	states *StateStore
}

// NewProvider validates cfg and returns a Provider, or ErrNotConfigured
// when client credentials are absent.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrNotConfigured
	}
	if cfg.RedirectURL == "" {
		return nil, fmt.Errorf("%w: redirect url is required", ErrNotConfigured)
	}
	endpoint := google.Endpoint
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{drive.DriveReadonlyScope},
			Endpoint:     endpoint,
		},
		states: NewStateStore(cfg.StateTTL),
	}, nil
}

// States exposes the state store so the caller can run its cleanup loop.
func (p *Provider) States() *StateStore {
	return p.states
}

// Begin starts a sign-in and returns the URL to send the user to. The
// consent prompt is forced so a refresh of scopes is always shown.
func (p *Provider) Begin() (authURL, state string) {
	state = uuid.NewString()
	p.states.Put(state)
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.SetAuthURLParam("prompt", "consent")), state
}

// Complete checks state and exchanges code for an access token.
func (p *Provider) Complete(ctx context.Context, state, code string) (*Token, error) {
	if !p.states.Consume(state) {
		return nil, ErrInvalidState
	}
	if code == "" {
		return nil, ErrMissingCode
	}
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, errors.New("exchange code: provider returned an empty access token")
	}
	tokenType := tok.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &Token{
		AccessToken: tok.AccessToken,
		TokenType:   tokenType,
		Expiry:      tok.Expiry,
	}, nil
}
