package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidState is returned for any OAuth state that fails verification
var ErrInvalidState = errors.New("invalid oauth state")

// StatePayload is the user correlation data carried through the Xero redirect
type StatePayload struct {
	UserID     string `json:"userId"`
	Provider   string `json:"provider"`
	ProviderID string `json:"providerId"`
	Nonce      string `json:"-"`
	ExpiresAt  time.Time
}

type stateClaims struct {
	UserID     string `json:"userId"`
	Provider   string `json:"provider"`
	ProviderID string `json:"providerId"`
	jwt.RegisteredClaims
}

// StateSigner signs and verifies OAuth state parameters as HS256 JWTs
type StateSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewStateSigner creates a new state signer
func NewStateSigner(secret string, ttl time.Duration) *StateSigner {
	return &StateSigner{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Sign produces an opaque state string. A fresh nonce is assigned when the
// payload does not carry one.
func (s *StateSigner) Sign(p StatePayload) (string, error) {
	if p.Nonce == "" {
		p.Nonce = uuid.New().String()
	}

	now := s.now()
	claims := stateClaims{
		UserID:     p.UserID,
		Provider:   p.Provider,
		ProviderID: p.ProviderID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        p.Nonce,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign state: %w", err)
	}

	return signed, nil
}

// Verify checks signature and expiry and returns the payload
func (s *StateSigner) Verify(state string) (*StatePayload, error) {
	var claims stateClaims
	token, err := jwt.ParseWithClaims(state, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if !token.Valid || claims.UserID == "" || claims.ID == "" {
		return nil, ErrInvalidState
	}

	return &StatePayload{
		UserID:     claims.UserID,
		Provider:   claims.Provider,
		ProviderID: claims.ProviderID,
		Nonce:      claims.ID,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}
