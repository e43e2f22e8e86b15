package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prperemyshlev/jobdesk/internal/domain"
	"github.com/prperemyshlev/jobdesk/internal/repository"
	"github.com/prperemyshlev/jobdesk/internal/utils"
	"go.uber.org/zap"
)

// UserInfoEndpoints maps identity providers to their OIDC userinfo URLs
type UserInfoEndpoints map[string]string

type userInfo struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// identityService implements IdentityService interface
type identityService struct {
	profiles   repository.ProfileRepository
	cache      Cache
	endpoints  UserInfoEndpoints
	httpClient *http.Client
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewIdentityService creates a new identity service
func NewIdentityService(
	profiles repository.ProfileRepository,
	cache Cache,
	endpoints UserInfoEndpoints,
	httpClient *http.Client,
	cacheTTL time.Duration,
	logger *zap.Logger,
) IdentityService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &identityService{
		profiles:   profiles,
		cache:      cache,
		endpoints:  endpoints,
		httpClient: httpClient,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// Resolve verifies the bearer with the provider and returns the matching
// profile, creating it on first sign-in
func (s *identityService) Resolve(ctx context.Context, provider, bearer string) (*domain.Profile, error) {
	endpoint, ok := s.endpoints[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
	if bearer == "" {
		return nil, ErrUnauthorized
	}

	info, err := s.userInfo(ctx, provider, endpoint, bearer)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByProvider(ctx, provider, info.Subject)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}

	profile = &domain.Profile{
		Provider:   provider,
		ProviderID: info.Subject,
		Email:      utils.StringPtr(info.Email),
		Name:       utils.StringPtr(info.Name),
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicateProfile) {
			return s.profiles.GetByProvider(ctx, provider, info.Subject)
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.logger.Info("Profile created", zap.String("user_id", profile.ID), zap.String("provider", provider))

	return profile, nil
}

func (s *identityService) userInfo(ctx context.Context, provider, endpoint, bearer string) (*userInfo, error) {
	// Tokens are cached by hash only.
	sum := sha256.Sum256([]byte(bearer))
	cacheKey := "identity:" + provider + ":" + hex.EncodeToString(sum[:])

	if cached, found, err := s.cache.Get(ctx, cacheKey); err != nil {
		s.logger.Warn("Identity cache read failed", zap.Error(err))
	} else if found {
		var info userInfo
		if err := json.Unmarshal([]byte(cached), &info); err == nil && info.Subject != "" {
			return &info, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s userinfo returned %d", ErrUnauthorized, provider, resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if info.Subject == "" {
		return nil, fmt.Errorf("%w: userinfo without subject", ErrUnauthorized)
	}

	if raw, err := json.Marshal(info); err == nil {
		if err := s.cache.Set(ctx, cacheKey, string(raw), s.cacheTTL); err != nil {
			s.logger.Warn("Identity cache write failed", zap.Error(err))
		}
	}

	return &info, nil
}
