package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/jobdesk/internal/domain"
	"github.com/prperemyshlev/jobdesk/internal/utils"
	"github.com/prperemyshlev/jobdesk/pkg/database"
)

// xeroTokenRepository implements XeroTokenRepository interface. The client
// secret is sealed before it is written and opened after it is read.
type xeroTokenRepository struct {
	db  *database.Postgres
	box *utils.SecretBox
}

// NewXeroTokenRepository creates a new Xero token repository
func NewXeroTokenRepository(db *database.Postgres, box *utils.SecretBox) XeroTokenRepository {
	return &xeroTokenRepository{db: db, box: box}
}

const tokenColumns = `id, user_id, client_id, client_secret, access_token, refresh_token, expires_at,
		scope, tenant_id, tenant_name, tenant_type, created_at, updated_at`

// GetByUserID retrieves the connection record for a user
func (r *xeroTokenRepository) GetByUserID(ctx context.Context, userID string) (*domain.XeroToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM xero_tokens WHERE user_id = $1`

	token := &domain.XeroToken{}
	var accessToken, refreshToken, scope, tenantID, tenantName, tenantType sql.NullString
	var expiresAt sql.NullTime
	var sealed string

	err := r.db.DB.QueryRowContext(ctx, query, userID).Scan(
		&token.ID,
		&token.UserID,
		&token.ClientID,
		&sealed,
		&accessToken,
		&refreshToken,
		&expiresAt,
		&scope,
		&tenantID,
		&tenantName,
		&tenantType,
		&token.CreatedAt,
		&token.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("xero token for user %s not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get xero token: %w", err)
	}

	secret, err := r.box.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to open client secret: %w", err)
	}
	token.ClientSecret = secret

	token.AccessToken = nullString(accessToken)
	token.RefreshToken = nullString(refreshToken)
	token.ExpiresAt = nullTime(expiresAt)
	token.Scope = nullString(scope)
	token.TenantID = nullString(tenantID)
	token.TenantName = nullString(tenantName)
	token.TenantType = nullString(tenantType)

	return token, nil
}

// SaveCredentials creates the record or replaces its client credentials
func (r *xeroTokenRepository) SaveCredentials(ctx context.Context, userID, clientID, clientSecret string) (*domain.XeroToken, error) {
	query := `
		INSERT INTO xero_tokens (id, user_id, client_id, client_secret, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			client_id = EXCLUDED.client_id,
			client_secret = EXCLUDED.client_secret,
			access_token = NULL,
			refresh_token = NULL,
			expires_at = NULL,
			scope = NULL,
			tenant_id = NULL,
			tenant_name = NULL,
			tenant_type = NULL,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`

	sealed, err := r.box.Seal(clientSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to seal client secret: %w", err)
	}

	token := &domain.XeroToken{
		UserID:       userID,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}

	err = r.db.DB.QueryRowContext(ctx, query, uuid.New().String(), userID, clientID, sealed, time.Now()).
		Scan(&token.ID, &token.CreatedAt, &token.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save xero credentials: %w", err)
	}

	return token, nil
}

// Update writes the credential and tenant fields of a record
func (r *xeroTokenRepository) Update(ctx context.Context, token *domain.XeroToken) error {
	query := `
		UPDATE xero_tokens
		SET client_id = $2, client_secret = $3, tenant_id = $4, tenant_name = $5, tenant_type = $6, updated_at = $7
		WHERE user_id = $1
	`

	sealed, err := r.box.Seal(token.ClientSecret)
	if err != nil {
		return fmt.Errorf("failed to seal client secret: %w", err)
	}

	token.UpdatedAt = time.Now()
	result, err := r.db.DB.ExecContext(ctx, query,
		token.UserID,
		token.ClientID,
		sealed,
		token.TenantID,
		token.TenantName,
		token.TenantType,
		token.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update xero token: %w", err)
	}

	return expectOne(result, "xero token for user "+token.UserID)
}

// UpdateTokens stores a refreshed token pair
func (r *xeroTokenRepository) UpdateTokens(ctx context.Context, userID string, grant domain.TokenGrant) error {
	query := `
		UPDATE xero_tokens
		SET access_token = $2, refresh_token = $3, expires_at = $4, updated_at = $5
		WHERE user_id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query,
		userID,
		grant.AccessToken,
		grant.RefreshToken,
		grant.ExpiresAt,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update xero tokens: %w", err)
	}

	return expectOne(result, "xero token for user "+userID)
}

// SaveConnection stores the result of a completed authorization in one update.
// A nil tenant clears the organisation fields.
func (r *xeroTokenRepository) SaveConnection(ctx context.Context, userID string, grant domain.TokenGrant, tenant *domain.TenantInfo) error {
	query := `
		UPDATE xero_tokens
		SET access_token = $2, refresh_token = $3, expires_at = $4, scope = $5,
			tenant_id = $6, tenant_name = $7, tenant_type = $8, updated_at = $9
		WHERE user_id = $1
	`

	var tenantID, tenantName, tenantType *string
	if tenant != nil {
		tenantID = utils.StringPtr(tenant.ID)
		tenantName = utils.StringPtr(tenant.Name)
		tenantType = utils.StringPtr(tenant.Type)
	}

	result, err := r.db.DB.ExecContext(ctx, query,
		userID,
		grant.AccessToken,
		grant.RefreshToken,
		grant.ExpiresAt,
		grant.Scope,
		tenantID,
		tenantName,
		tenantType,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save xero connection: %w", err)
	}

	return expectOne(result, "xero token for user "+userID)
}

// Delete removes the connection record for a user
func (r *xeroTokenRepository) Delete(ctx context.Context, userID string) error {
	query := `DELETE FROM xero_tokens WHERE user_id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to delete xero token: %w", err)
	}

	return expectOne(result, "xero token for user "+userID)
}

func expectOne(result sql.Result, what string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s not found: %w", what, ErrNotFound)
	}

	return nil
}
