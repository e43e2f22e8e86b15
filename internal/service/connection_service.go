package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prperemyshlev/jobdesk/internal/domain"
	"github.com/prperemyshlev/jobdesk/internal/repository"
	"github.com/prperemyshlev/jobdesk/internal/utils"
	"github.com/prperemyshlev/jobdesk/internal/xero"
	"github.com/prperemyshlev/jobdesk/pkg/observability"
	"go.uber.org/zap"
)

// CallbackParams are the query parameters of the OAuth redirect
type CallbackParams struct {
	Code  string
	State string
	Error string
}

// connectionService implements ConnectionService interface
type connectionService struct {
	tokens    repository.XeroTokenRepository
	profiles  repository.ProfileRepository
	signer    *utils.StateSigner
	nonces    NonceStore
	oauth     Authorizer
	api       XeroAPI
	logger    *zap.Logger
	now       func() time.Time
	callbacks *observability.Counter
}

// NewConnectionService creates a new connection service
func NewConnectionService(
	tokens repository.XeroTokenRepository,
	profiles repository.ProfileRepository,
	signer *utils.StateSigner,
	nonces NonceStore,
	oauth Authorizer,
	api XeroAPI,
	logger *zap.Logger,
) ConnectionService {
	return &connectionService{
		tokens:    tokens,
		profiles:  profiles,
		signer:    signer,
		nonces:    nonces,
		oauth:     oauth,
		api:       api,
		logger:    logger,
		now:       time.Now,
		callbacks: observability.NewCounter("xero_oauth_callbacks_total", "Xero OAuth callbacks by outcome"),
	}
}

// AuthorizationURL returns the Xero consent URL for the profile's stored
// client credentials
func (s *connectionService) AuthorizationURL(ctx context.Context, profile *domain.Profile) (string, error) {
	tok, err := s.tokens.GetByUserID(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", xero.ErrNotConnected
		}
		return "", err
	}

	state, err := s.signer.Sign(utils.StatePayload{
		UserID:     profile.ID,
		Provider:   profile.Provider,
		ProviderID: profile.ProviderID,
	})
	if err != nil {
		return "", err
	}

	return s.oauth.AuthCodeURL(tok, state), nil
}

// Callback completes the authorization-code flow. Any failure is a
// *CallbackError naming the abort reason.
func (s *connectionService) Callback(ctx context.Context, params CallbackParams) error {
	err := s.callback(ctx, params)

	outcome := "connected"
	var cbErr *CallbackError
	if errors.As(err, &cbErr) {
		outcome = cbErr.Reason
		s.logger.Warn("Xero callback aborted", zap.String("reason", cbErr.Reason), zap.Error(cbErr.Err))
	}
	s.callbacks.Add(ctx, 1, "outcome", outcome)

	return err
}

func (s *connectionService) callback(ctx context.Context, params CallbackParams) error {
	if params.Error != "" {
		return &CallbackError{Reason: params.Error}
	}
	if params.Code == "" || params.State == "" {
		return &CallbackError{Reason: ReasonMissingParams}
	}

	payload, err := s.signer.Verify(params.State)
	if err != nil {
		return &CallbackError{Reason: ReasonInvalidState, Err: err}
	}

	fresh, err := s.nonces.Consume(ctx, payload.Nonce, payload.ExpiresAt.Sub(s.now()))
	if err != nil {
		return &CallbackError{Reason: ReasonInvalidState, Err: err}
	}
	if !fresh {
		return &CallbackError{Reason: ReasonInvalidState, Err: errors.New("state already used")}
	}

	profile, err := s.profiles.GetByID(ctx, payload.UserID)
	if err != nil {
		return &CallbackError{Reason: ReasonInvalidState, Err: err}
	}
	if profile.Provider != payload.Provider || profile.ProviderID != payload.ProviderID {
		return &CallbackError{Reason: ReasonInvalidState, Err: errors.New("state does not match profile")}
	}

	tok, err := s.tokens.GetByUserID(ctx, payload.UserID)
	if err != nil {
		return &CallbackError{Reason: ReasonTokenNotFound, Err: err}
	}

	grant, err := s.oauth.Exchange(ctx, tok, params.Code)
	if err != nil {
		return &CallbackError{Reason: ReasonTokenExchangeFailed, Err: err}
	}

	tenant, err := s.api.GetConnections(ctx, grant.AccessToken)
	if err != nil {
		s.logger.Warn("Xero organisation lookup failed", zap.String("user_id", payload.UserID), zap.Error(err))
		tenant = nil
	}

	if err := s.tokens.SaveConnection(ctx, payload.UserID, *grant, tenant); err != nil {
		return &CallbackError{Reason: ReasonUpdateFailed, Err: fmt.Errorf("failed to save connection: %w", err)}
	}

	fields := []zap.Field{zap.String("user_id", payload.UserID)}
	if tenant != nil {
		fields = append(fields, zap.String("tenant_id", tenant.ID), zap.String("tenant_name", tenant.Name))
	}
	s.logger.Info("Xero connected", fields...)

	return nil
}
