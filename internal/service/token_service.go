package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/prperemyshlev/jobdesk/internal/domain"
	"github.com/prperemyshlev/jobdesk/internal/dto"
	"github.com/prperemyshlev/jobdesk/internal/repository"
	"github.com/prperemyshlev/jobdesk/internal/utils"
	"github.com/prperemyshlev/jobdesk/internal/xero"
	"go.uber.org/zap"
)

// tokenService implements TokenService interface
type tokenService struct {
	tokens repository.XeroTokenRepository
	api    XeroAPI
	logger *zap.Logger
}

// NewTokenService creates a new token service
func NewTokenService(tokens repository.XeroTokenRepository, api XeroAPI, logger *zap.Logger) TokenService {
	return &tokenService{tokens: tokens, api: api, logger: logger}
}

// Get returns the user's connection record
func (s *tokenService) Get(ctx context.Context, userID string) (*domain.XeroToken, error) {
	tok, err := s.tokens.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("xero token: %w", ErrNotFound)
		}
		return nil, err
	}
	return tok, nil
}

// SaveCredentials creates the record or replaces its client credentials
func (s *tokenService) SaveCredentials(ctx context.Context, userID string, req *dto.XeroCredentialsRequest) (*domain.XeroToken, error) {
	tok, err := s.tokens.SaveCredentials(ctx, userID, req.ClientID, req.ClientSecret)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Xero credentials saved", zap.String("user_id", userID))

	return tok, nil
}

// Update applies the non-nil request fields to the record
func (s *tokenService) Update(ctx context.Context, userID string, req *dto.UpdateXeroTokenRequest) (*domain.XeroToken, error) {
	tok, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.ClientID != nil {
		tok.ClientID = *req.ClientID
	}
	if req.ClientSecret != nil {
		tok.ClientSecret = *req.ClientSecret
	}
	if req.TenantID != nil {
		tok.TenantID = utils.StringPtr(*req.TenantID)
		// A new organisation invalidates the old name and type unless given.
		tok.TenantName, tok.TenantType = nil, nil
	}
	if req.TenantName != nil {
		tok.TenantName = utils.StringPtr(*req.TenantName)
	}
	if req.TenantType != nil {
		tok.TenantType = utils.StringPtr(*req.TenantType)
	}

	if err := s.tokens.Update(ctx, tok); err != nil {
		return nil, err
	}

	return tok, nil
}

// Disconnect revokes the refresh token where possible and deletes the record
func (s *tokenService) Disconnect(ctx context.Context, userID string) error {
	tok, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.api.RevokeToken(ctx, tok); err != nil {
		s.logger.Warn("Xero token revocation failed", zap.String("user_id", userID), zap.Error(err))
	}

	if err := s.tokens.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("xero token: %w", ErrNotFound)
		}
		return err
	}

	s.logger.Info("Xero disconnected", zap.String("user_id", userID))

	return nil
}

// Session loads the record into a request-scoped API session. A missing
// record means the user is not connected.
func (s *tokenService) Session(ctx context.Context, userID string) (*xero.Session, error) {
	tok, err := s.tokens.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, xero.ErrNotConnected
		}
		return nil, err
	}
	return xero.NewSession(tok), nil
}
