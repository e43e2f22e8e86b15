package domain

import "time"

// XeroToken is the per-user Xero connection record. It starts with client
// credentials only and gains tokens and tenant fields once the OAuth callback
// completes.
type XeroToken struct {
	ID           string     `json:"id" db:"id"`
	UserID       string     `json:"user_id" db:"user_id"`
	ClientID     string     `json:"client_id" db:"client_id"`
	ClientSecret string     `json:"-" db:"client_secret"`
	AccessToken  *string    `json:"-" db:"access_token"`
	RefreshToken *string    `json:"-" db:"refresh_token"`
	ExpiresAt    *time.Time `json:"expires_at" db:"expires_at"`
	Scope        *string    `json:"scope" db:"scope"`
	TenantID     *string    `json:"tenant_id" db:"tenant_id"`
	TenantName   *string    `json:"tenant_name" db:"tenant_name"`
	TenantType   *string    `json:"tenant_type" db:"tenant_type"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// HasTokens reports whether both OAuth tokens are present
func (t *XeroToken) HasTokens() bool {
	return t.AccessToken != nil && *t.AccessToken != "" &&
		t.RefreshToken != nil && *t.RefreshToken != ""
}

// Tenant returns the selected organisation id, or "" when none is selected
func (t *XeroToken) Tenant() string {
	if t.TenantID == nil {
		return ""
	}
	return *t.TenantID
}

// TokenGrant is the result of a token exchange or refresh
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Scope        *string
}

// TenantInfo identifies the remote organisation a token is bound to
type TenantInfo struct {
	ID   string
	Name string
	Type string
}
