package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"

	"tasktrack/internal/config"
)

// tokenCheckTimeout bounds the refresh attempt made by TokenUsable.
const tokenCheckTimeout = 10 * time.Second

// ErrNoRefreshToken is returned for a stored token that cannot be renewed.
var ErrNoRefreshToken = errors.New("token has no refresh token")

// LoadToken reads an OAuth token written by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.TokenFile, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.TokenFile, err)
	}
	return &token, nil
}

// SaveToken writes token to path with mode 0600.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// TokenUsable reports whether the stored token can still authenticate:
// it must parse, carry a refresh token, and refresh successfully.
func TokenUsable(ctx context.Context, cfg *config.Config) error {
	token, err := LoadToken(cfg.TokenPath())
	if err != nil {
		return err
	}
	if token.RefreshToken == "" {
		return ErrNoRefreshToken
	}
	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, tokenCheckTimeout)
	defer cancel()
	if _, err := oauthConfig.TokenSource(ctx, token).Token(); err != nil {
		return wrapError(err)
	}
	return nil
}
