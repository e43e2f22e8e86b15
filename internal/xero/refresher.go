package xero

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prperemyshlev/jobdesk/internal/domain"
	"github.com/prperemyshlev/jobdesk/pkg/observability"
	"go.uber.org/zap"
)

// RefreshWindow is how close to expiry a cached access token may get before
// it is renewed
const RefreshWindow = 5 * time.Minute

// TokenPersister writes renewed tokens back to the token store
type TokenPersister interface {
	UpdateTokens(ctx context.Context, userID string, grant domain.TokenGrant) error
}

// Refresher hands out valid access tokens, renewing them when needed
type Refresher struct {
	oauth   *OAuth
	store   TokenPersister
	logger  *zap.Logger
	now     func() time.Time
	refresh *observability.Counter
}

// NewRefresher creates a new token refresher
func NewRefresher(oauth *OAuth, store TokenPersister, logger *zap.Logger) *Refresher {
	return &Refresher{
		oauth:   oauth,
		store:   store,
		logger:  logger,
		now:     time.Now,
		refresh: observability.NewCounter("xero_token_refresh_total", "Xero refresh-token grants by outcome"),
	}
}

// EnsureValidAccessToken returns tok's access token, refreshing it first when
// it expires within RefreshWindow. The renewed token is persisted before tok
// is updated and before the new value is handed to the caller.
func (r *Refresher) EnsureValidAccessToken(ctx context.Context, tok *domain.XeroToken) (string, error) {
	if tok == nil || !tok.HasTokens() {
		return "", ErrNotConnected
	}

	if tok.ExpiresAt != nil && tok.ExpiresAt.Sub(r.now()) > RefreshWindow {
		return *tok.AccessToken, nil
	}

	grant, err := r.oauth.Refresh(ctx, tok)
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrRefreshFailed) {
			outcome = "rejected"
		}
		r.refresh.Add(ctx, 1, "outcome", outcome)
		r.logger.Warn("Xero token refresh failed", zap.String("user_id", tok.UserID), zap.Error(err))
		return "", err
	}

	if err := r.store.UpdateTokens(ctx, tok.UserID, *grant); err != nil {
		r.refresh.Add(ctx, 1, "outcome", "persist_failed")
		return "", fmt.Errorf("failed to persist refreshed token: %w", err)
	}
	r.refresh.Add(ctx, 1, "outcome", "refreshed")

	tok.AccessToken = &grant.AccessToken
	tok.RefreshToken = &grant.RefreshToken
	expiresAt := grant.ExpiresAt
	tok.ExpiresAt = &expiresAt

	r.logger.Debug("Xero token refreshed",
		zap.String("user_id", tok.UserID),
		zap.Time("expires_at", expiresAt),
	)

	return grant.AccessToken, nil
}
