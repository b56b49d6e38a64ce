package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// Config holds what we need to build the oauth2 config for the club backend
type Config struct {
	BaseURL  string
	ClientID string
}

// NewOAuthConfig builds the oauth2 config for the club's token endpoint.
// The club backend issues tokens via the resource-owner password grant:
// members log in with their DNI and password.
func NewOAuthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID: cfg.ClientID,
		Endpoint: oauth2.Endpoint{
			TokenURL: cfg.BaseURL + "/auth/token",
		},
	}
}

// Login exchanges the member's DNI and password for a token
func Login(ctx context.Context, cfg *oauth2.Config, dni, password string) (*oauth2.Token, error) {
	token, err := cfg.PasswordCredentialsToken(ctx, dni, password)
	if err != nil {
		return nil, fmt.Errorf("logging in as %s: %w", dni, err)
	}
	return token, nil
}
