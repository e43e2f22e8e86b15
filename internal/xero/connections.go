package xero

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/prperemyshlev/jobdesk/internal/domain"
)

// GetConnections returns the organisation the access token is bound to,
// preferring an ORGANISATION tenant over others. A token with no connections
// yields (nil, nil).
func (c *Client) GetConnections(ctx context.Context, accessToken string) (*domain.TenantInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.ConnectionsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	var conns []Connection
	if err := c.send(ctx, req, "connections", &conns); err != nil {
		return nil, err
	}
	for i := range conns {
		if err := c.validate.Struct(conns[i]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	if len(conns) == 0 {
		return nil, nil
	}

	picked := conns[0]
	for _, conn := range conns {
		if conn.TenantType == "ORGANISATION" {
			picked = conn
			break
		}
	}

	return &domain.TenantInfo{ID: picked.TenantID, Name: picked.TenantName, Type: picked.TenantType}, nil
}

// RevokeToken revokes a refresh token at the identity server
func (c *Client) RevokeToken(ctx context.Context, tok *domain.XeroToken) error {
	if tok == nil || tok.RefreshToken == nil || *tok.RefreshToken == "" {
		return nil
	}

	form := url.Values{}
	form.Set("token", *tok.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.RevocationURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(tok.ClientID, tok.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.send(ctx, req, "revocation", nil)
}
