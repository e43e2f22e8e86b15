package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/jobdesk/internal/domain"
	"github.com/prperemyshlev/jobdesk/pkg/database"
)

// profileRepository implements ProfileRepository interface
type profileRepository struct {
	db *database.Postgres
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *database.Postgres) ProfileRepository {
	return &profileRepository{db: db}
}

// Create creates a profile for a provider identity
func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, provider, provider_id, email, name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		profile.ID,
		profile.Provider,
		profile.ProviderID,
		profile.Email,
		profile.Name,
		profile.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("profile %s/%s: %w", profile.Provider, profile.ProviderID, ErrDuplicateProfile)
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// GetByProvider retrieves a profile by identity provider and subject
func (r *profileRepository) GetByProvider(ctx context.Context, provider, providerID string) (*domain.Profile, error) {
	query := `
		SELECT id, provider, provider_id, email, name, created_at
		FROM profiles
		WHERE provider = $1 AND provider_id = $2
	`
	return r.scanOne(r.db.DB.QueryRowContext(ctx, query, provider, providerID))
}

// GetByID retrieves a profile by ID
func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `
		SELECT id, provider, provider_id, email, name, created_at
		FROM profiles
		WHERE id = $1
	`
	return r.scanOne(r.db.DB.QueryRowContext(ctx, query, id))
}

func (r *profileRepository) scanOne(row *sql.Row) (*domain.Profile, error) {
	profile := &domain.Profile{}
	var email, name sql.NullString

	err := row.Scan(
		&profile.ID,
		&profile.Provider,
		&profile.ProviderID,
		&email,
		&name,
		&profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.Email = nullString(email)
	profile.Name = nullString(name)

	return profile, nil
}
