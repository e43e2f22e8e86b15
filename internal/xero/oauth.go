package xero

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prperemyshlev/jobdesk/internal/domain"
	"golang.org/x/oauth2"
)

// Endpoints are the Xero identity URLs
type Endpoints struct {
	AuthURL  string
	TokenURL string
}

// OAuth builds per-user oauth2 configs. Client credentials belong to each
// user's token record, so no config is shared between users.
type OAuth struct {
	endpoints   Endpoints
	redirectURL string
	scopes      []string
	httpClient  *http.Client
	now         func() time.Time
}

// NewOAuth creates a new OAuth helper
func NewOAuth(endpoints Endpoints, redirectURL string, scopes []string, httpClient *http.Client) *OAuth {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &OAuth{
		endpoints:   endpoints,
		redirectURL: redirectURL,
		scopes:      scopes,
		httpClient:  httpClient,
		now:         time.Now,
	}
}

func (o *OAuth) config(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  o.redirectURL,
		Scopes:       o.scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   o.endpoints.AuthURL,
			TokenURL:  o.endpoints.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

func (o *OAuth) context(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
}

// AuthCodeURL returns the consent page URL for the token's client
func (o *OAuth) AuthCodeURL(tok *domain.XeroToken, state string) string {
	return o.config(tok.ClientID, tok.ClientSecret).AuthCodeURL(state)
}

// Exchange trades an authorization code for a token grant
func (o *OAuth) Exchange(ctx context.Context, tok *domain.XeroToken, code string) (*domain.TokenGrant, error) {
	t, err := o.config(tok.ClientID, tok.ClientSecret).Exchange(o.context(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return o.grant(t), nil
}

// Refresh performs the refresh-token grant. A rejected grant yields
// ErrRefreshFailed.
func (o *OAuth) Refresh(ctx context.Context, tok *domain.XeroToken) (*domain.TokenGrant, error) {
	if tok.RefreshToken == nil || *tok.RefreshToken == "" {
		return nil, ErrNotConnected
	}

	// An empty access token forces the token source to hit the endpoint.
	src := o.config(tok.ClientID, tok.ClientSecret).TokenSource(o.context(ctx), &oauth2.Token{
		RefreshToken: *tok.RefreshToken,
	})

	t, err := src.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, fmt.Errorf("%w: status %d", ErrRefreshFailed, retrieveErr.Response.StatusCode)
		}
		return nil, fmt.Errorf("token refresh request failed: %w", err)
	}

	return o.grant(t), nil
}

// defaultTokenLifetime is Xero's access token lifetime, used when a token
// reply carries no expiry
const defaultTokenLifetime = 30 * time.Minute

func (o *OAuth) grant(t *oauth2.Token) *domain.TokenGrant {
	g := &domain.TokenGrant{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    t.Expiry,
	}

	if secs, ok := expiresIn(t.Extra("expires_in")); ok {
		g.ExpiresAt = o.now().Add(time.Duration(secs) * time.Second)
	}
	if g.ExpiresAt.IsZero() {
		g.ExpiresAt = o.now().Add(defaultTokenLifetime)
	}

	if scope, ok := t.Extra("scope").(string); ok && scope != "" {
		g.Scope = &scope
	}

	return g
}

func expiresIn(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), n > 0
	case json.Number:
		i, err := n.Int64()
		return i, err == nil && i > 0
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil && i > 0
	}
	return 0, false
}
