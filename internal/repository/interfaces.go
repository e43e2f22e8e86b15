package repository

import (
	"context"

	"github.com/prperemyshlev/jobdesk/internal/domain"
)

// ProfileRepository defines methods for local account rows
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByProvider(ctx context.Context, provider, providerID string) (*domain.Profile, error)
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
}

// XeroTokenRepository defines methods for the per-user Xero connection record
type XeroTokenRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.XeroToken, error)
	// SaveCredentials creates the record or replaces its client credentials,
	// clearing any tokens issued to the previous client.
	SaveCredentials(ctx context.Context, userID, clientID, clientSecret string) (*domain.XeroToken, error)
	Update(ctx context.Context, token *domain.XeroToken) error
	UpdateTokens(ctx context.Context, userID string, grant domain.TokenGrant) error
	SaveConnection(ctx context.Context, userID string, grant domain.TokenGrant, tenant *domain.TenantInfo) error
	Delete(ctx context.Context, userID string) error
}

// PartyRepository defines methods for customer or supplier rows
type PartyRepository interface {
	ListLinked(ctx context.Context, userID string) ([]*domain.Party, error)
	ListUnlinked(ctx context.Context, userID string) ([]*domain.Party, error)
	UpdateFromRemote(ctx context.Context, party *domain.Party) error
	BulkInsert(ctx context.Context, parties []*domain.Party) error
}

// XeroContactRepository defines methods for mirrored default contacts
type XeroContactRepository interface {
	UpsertDefault(ctx context.Context, contact *domain.XeroContact) error
	GetDefault(ctx context.Context, userID string) (*domain.XeroContact, error)
	List(ctx context.Context, userID string) ([]*domain.XeroContact, error)
}

// XeroItemRepository defines methods for mirrored default items
type XeroItemRepository interface {
	UpsertDefault(ctx context.Context, item *domain.XeroItem, role domain.ItemRole) error
	GetDefault(ctx context.Context, userID string, role domain.ItemRole) (*domain.XeroItem, error)
	List(ctx context.Context, userID string) ([]*domain.XeroItem, error)
}

// JobRepository defines the job reads and writes the quote builder needs
type JobRepository interface {
	GetWithLines(ctx context.Context, userID, jobID string) (*domain.Job, error)
	SetQuoteID(ctx context.Context, userID, jobID, quoteID string) error
}
