package service

import (
	"context"
	"time"

	"github.com/prperemyshlev/jobdesk/internal/domain"
	"github.com/prperemyshlev/jobdesk/internal/dto"
	"github.com/prperemyshlev/jobdesk/internal/xero"
)

// IdentityService resolves request credentials to a local profile
type IdentityService interface {
	Resolve(ctx context.Context, provider, bearer string) (*domain.Profile, error)
}

// TokenService manages the per-user Xero connection record
type TokenService interface {
	Get(ctx context.Context, userID string) (*domain.XeroToken, error)
	SaveCredentials(ctx context.Context, userID string, req *dto.XeroCredentialsRequest) (*domain.XeroToken, error)
	Update(ctx context.Context, userID string, req *dto.UpdateXeroTokenRequest) (*domain.XeroToken, error)
	Disconnect(ctx context.Context, userID string) error
	Session(ctx context.Context, userID string) (*xero.Session, error)
}

// ConnectionService drives the OAuth authorization-code flow
type ConnectionService interface {
	AuthorizationURL(ctx context.Context, profile *domain.Profile) (string, error)
	Callback(ctx context.Context, params CallbackParams) error
}

// DefaultsService ensures the well-known Xero contact and items exist
type DefaultsService interface {
	SyncAll(ctx context.Context, userID string) (*dto.DefaultsSyncResponse, error)
	SyncContact(ctx context.Context, userID string) (*domain.XeroContact, error)
	SyncItems(ctx context.Context, userID string) ([]*domain.XeroItem, error)
	ListContacts(ctx context.Context, userID string) ([]*domain.XeroContact, error)
	ListItems(ctx context.Context, userID string) ([]*domain.XeroItem, error)
}

// ReconcileService mirrors Xero contacts into local customers and suppliers
type ReconcileService interface {
	SyncCustomers(ctx context.Context, userID string) (*domain.SyncResult, error)
	SyncSuppliers(ctx context.Context, userID string) (*domain.SyncResult, error)
}

// QuoteService turns a job into a Xero quote
type QuoteService interface {
	CreateFromJob(ctx context.Context, userID, jobID string) (*xero.Quote, error)
}

// XeroAPI is the part of the Xero client the services call
type XeroAPI interface {
	GetContacts(ctx context.Context, s *xero.Session) ([]xero.Contact, error)
	FindContactByName(ctx context.Context, s *xero.Session, name string) (*xero.Contact, error)
	CreateContact(ctx context.Context, s *xero.Session, contact xero.Contact) (*xero.Contact, error)
	GetItemByCode(ctx context.Context, s *xero.Session, code string) (*xero.Item, error)
	CreateItem(ctx context.Context, s *xero.Session, item xero.Item) (*xero.Item, error)
	CreateQuote(ctx context.Context, s *xero.Session, quote xero.Quote) (*xero.Quote, error)
	GetConnections(ctx context.Context, accessToken string) (*domain.TenantInfo, error)
	RevokeToken(ctx context.Context, tok *domain.XeroToken) error
}

// Authorizer builds consent URLs and redeems authorization codes
type Authorizer interface {
	AuthCodeURL(tok *domain.XeroToken, state string) string
	Exchange(ctx context.Context, tok *domain.XeroToken, code string) (*domain.TokenGrant, error)
}

// Locker hands out short-lived exclusive locks. ok is false when the lock is
// already held.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// NonceStore records single-use values. Consume reports false when the
// nonce was seen before.
type NonceStore interface {
	Consume(ctx context.Context, nonce string, ttl time.Duration) (bool, error)
}

// Cache is a string key/value cache with expiry. Get returns found=false on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
