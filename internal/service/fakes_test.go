package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/jobdesk/internal/domain"
	"github.com/prperemyshlev/jobdesk/internal/repository"
	"github.com/prperemyshlev/jobdesk/internal/xero"
)

type fakeAPI struct {
	mu sync.Mutex

	contacts []xero.Contact
	items    map[string]*xero.Item
	quotes   []xero.Quote

	tenant     *domain.TenantInfo
	tenantErr  error
	contactErr error
	revokeErr  error

	getContactsCalls   int
	createContactCalls int
	createItemCalls    int
	connectionsCalls   int
	revoked            []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{items: map[string]*xero.Item{}}
}

func (f *fakeAPI) GetContacts(_ context.Context, s *xero.Session) ([]xero.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getContactsCalls++
	if f.contactErr != nil {
		return nil, f.contactErr
	}
	return append([]xero.Contact(nil), f.contacts...), nil
}

func (f *fakeAPI) FindContactByName(_ context.Context, s *xero.Session, name string) (*xero.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.contactErr != nil {
		return nil, f.contactErr
	}
	for i := range f.contacts {
		if f.contacts[i].Name == name {
			c := f.contacts[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeAPI) CreateContact(_ context.Context, s *xero.Session, contact xero.Contact) (*xero.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createContactCalls++
	contact.ContactID = uuid.New().String()
	f.contacts = append(f.contacts, contact)
	return &contact, nil
}

func (f *fakeAPI) GetItemByCode(_ context.Context, s *xero.Session, code string) (*xero.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if it, ok := f.items[code]; ok {
		c := *it
		return &c, nil
	}
	return nil, nil
}

func (f *fakeAPI) CreateItem(_ context.Context, s *xero.Session, item xero.Item) (*xero.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createItemCalls++
	item.ItemID = uuid.New().String()
	f.items[item.Code] = &item
	c := item
	return &c, nil
}

func (f *fakeAPI) CreateQuote(_ context.Context, s *xero.Session, quote xero.Quote) (*xero.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	quote.QuoteID = uuid.New().String()
	quote.QuoteNumber = fmt.Sprintf("QU-%04d", len(f.quotes)+1)
	for _, l := range quote.LineItems {
		quote.Total += l.Quantity * l.UnitAmount
	}
	f.quotes = append(f.quotes, quote)
	return &quote, nil
}

func (f *fakeAPI) GetConnections(_ context.Context, accessToken string) (*domain.TenantInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectionsCalls++
	return f.tenant, f.tenantErr
}

func (f *fakeAPI) RevokeToken(_ context.Context, tok *domain.XeroToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, tok.UserID)
	return f.revokeErr
}

type fakeTokenRepo struct {
	mu          sync.Mutex
	tokens      map[string]*domain.XeroToken
	saveErr     error
	connections []savedConnection
}

type savedConnection struct {
	userID string
	grant  domain.TokenGrant
	tenant *domain.TenantInfo
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[string]*domain.XeroToken{}}
}

func (f *fakeTokenRepo) put(tok *domain.XeroToken) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[tok.UserID] = tok
}

func (f *fakeTokenRepo) GetByUserID(_ context.Context, userID string) (*domain.XeroToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok, ok := f.tokens[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *tok
	return &c, nil
}

func (f *fakeTokenRepo) SaveCredentials(_ context.Context, userID, clientID, clientSecret string) (*domain.XeroToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok := &domain.XeroToken{ID: uuid.New().String(), UserID: userID, ClientID: clientID, ClientSecret: clientSecret, UpdatedAt: time.Now()}
	f.tokens[userID] = tok
	c := *tok
	return &c, nil
}

func (f *fakeTokenRepo) Update(_ context.Context, token *domain.XeroToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[token.UserID]; !ok {
		return repository.ErrNotFound
	}
	c := *token
	f.tokens[token.UserID] = &c
	return nil
}

func (f *fakeTokenRepo) UpdateTokens(_ context.Context, userID string, grant domain.TokenGrant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok, ok := f.tokens[userID]
	if !ok {
		return repository.ErrNotFound
	}
	exp := grant.ExpiresAt
	tok.AccessToken, tok.RefreshToken, tok.ExpiresAt = &grant.AccessToken, &grant.RefreshToken, &exp
	return nil
}

func (f *fakeTokenRepo) SaveConnection(_ context.Context, userID string, grant domain.TokenGrant, tenant *domain.TenantInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.tokens[userID]; !ok {
		return repository.ErrNotFound
	}
	f.connections = append(f.connections, savedConnection{userID: userID, grant: grant, tenant: tenant})
	return nil
}

func (f *fakeTokenRepo) Delete(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(f.tokens, userID)
	return nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
	creates  int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[string]*domain.Profile{}}
}

func (f *fakeProfileRepo) Create(_ context.Context, p *domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.profiles {
		if existing.Provider == p.Provider && existing.ProviderID == p.ProviderID {
			return repository.ErrDuplicateProfile
		}
	}
	f.creates++
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	c := *p
	f.profiles[p.ID] = &c
	return nil
}

func (f *fakeProfileRepo) GetByProvider(_ context.Context, provider, providerID string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.Provider == provider && p.ProviderID == providerID {
			c := *p
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *p
	return &c, nil
}

type fakePartyRepo struct {
	rows          []*domain.Party
	insertErr     error
	updateErrFor  map[string]error
	inserts       int
	updates       int
	linkedReads   int
	unlinkedReads int
}

// row returns a copy of a stored row for assertions
func (f *fakePartyRepo) row(userID, id string) (*domain.Party, error) {
	for _, p := range f.rows {
		if p.UserID == userID && p.ID == id {
			c := *p
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePartyRepo) ListLinked(_ context.Context, userID string) ([]*domain.Party, error) {
	f.linkedReads++
	var out []*domain.Party
	for _, p := range f.rows {
		if p.UserID == userID && p.XeroContactID != nil {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakePartyRepo) ListUnlinked(_ context.Context, userID string) ([]*domain.Party, error) {
	f.unlinkedReads++
	var out []*domain.Party
	for _, p := range f.rows {
		if p.UserID == userID && p.XeroContactID == nil {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakePartyRepo) UpdateFromRemote(_ context.Context, party *domain.Party) error {
	if err := f.updateErrFor[party.ID]; err != nil {
		return err
	}
	for i, p := range f.rows {
		if p.ID == party.ID {
			c := *party
			f.rows[i] = &c
			f.updates++
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakePartyRepo) BulkInsert(_ context.Context, parties []*domain.Party) error {
	f.inserts++
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, p := range parties {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		c := *p
		f.rows = append(f.rows, &c)
	}
	return nil
}

func (f *fakePartyRepo) byName(name string) []*domain.Party {
	var out []*domain.Party
	for _, p := range f.rows {
		if p.Name == name {
			out = append(out, p)
		}
	}
	return out
}

type fakeContactRepo struct {
	mu   sync.Mutex
	rows []*domain.XeroContact
}

func (f *fakeContactRepo) UpsertDefault(_ context.Context, contact *domain.XeroContact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found *domain.XeroContact
	for _, r := range f.rows {
		if r.UserID != contact.UserID {
			continue
		}
		if r.XeroContactID == contact.XeroContactID {
			found = r
		} else {
			r.IsDefaultCashSale = false
		}
	}
	if found == nil {
		found = &domain.XeroContact{ID: uuid.New().String(), UserID: contact.UserID, XeroContactID: contact.XeroContactID}
		f.rows = append(f.rows, found)
	}
	found.Name = contact.Name
	found.IsDefaultCashSale = true
	contact.ID, contact.IsDefaultCashSale = found.ID, true
	return nil
}

func (f *fakeContactRepo) GetDefault(_ context.Context, userID string) (*domain.XeroContact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.UserID == userID && r.IsDefaultCashSale {
			c := *r
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeContactRepo) List(_ context.Context, userID string) ([]*domain.XeroContact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.XeroContact
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeItemRepo struct {
	mu   sync.Mutex
	rows []*domain.XeroItem
}

func (f *fakeItemRepo) UpsertDefault(_ context.Context, item *domain.XeroItem, role domain.ItemRole) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found *domain.XeroItem
	for _, r := range f.rows {
		if r.UserID != item.UserID {
			continue
		}
		if r.XeroItemID == item.XeroItemID {
			found = r
			continue
		}
		switch role {
		case domain.ItemRoleLabour:
			r.IsDefaultLabour = false
		case domain.ItemRoleMaterials:
			r.IsDefaultMaterials = false
		}
	}
	if found == nil {
		found = &domain.XeroItem{ID: uuid.New().String(), UserID: item.UserID, XeroItemID: item.XeroItemID}
		f.rows = append(f.rows, found)
	}
	found.Code, found.Name = item.Code, item.Name
	switch role {
	case domain.ItemRoleLabour:
		found.IsDefaultLabour = true
	case domain.ItemRoleMaterials:
		found.IsDefaultMaterials = true
	}
	*item = *found
	return nil
}

func (f *fakeItemRepo) GetDefault(_ context.Context, userID string, role domain.ItemRole) (*domain.XeroItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.UserID != userID {
			continue
		}
		if (role == domain.ItemRoleLabour && r.IsDefaultLabour) || (role == domain.ItemRoleMaterials && r.IsDefaultMaterials) {
			c := *r
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeItemRepo) List(_ context.Context, userID string) ([]*domain.XeroItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.XeroItem
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeJobRepo struct {
	jobs     map[string]*domain.Job
	setErr   error
	quoteIDs map[string]string
}

func (f *fakeJobRepo) GetWithLines(_ context.Context, userID, jobID string) (*domain.Job, error) {
	j, ok := f.jobs[jobID]
	if !ok || j.UserID != userID {
		return nil, fmt.Errorf("job %s: %w", jobID, repository.ErrNotFound)
	}
	return j, nil
}

func (f *fakeJobRepo) SetQuoteID(_ context.Context, userID, jobID, quoteID string) error {
	if f.setErr != nil {
		return f.setErr
	}
	if f.quoteIDs == nil {
		f.quoteIDs = map[string]string{}
	}
	f.quoteIDs[jobID] = quoteID
	return nil
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func (f *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(), bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held == nil {
		f.held = map[string]bool{}
	}
	if f.held[key] {
		return func() {}, false, nil
	}
	f.held[key] = true
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.held, key)
	}, true, nil
}

type fakeNonces struct {
	mu   sync.Mutex
	used map[string]bool
}

func (f *fakeNonces) Consume(_ context.Context, nonce string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.used == nil {
		f.used = map[string]bool{}
	}
	if f.used[nonce] {
		return false, nil
	}
	f.used[nonce] = true
	return true, nil
}

type fakeAuthorizer struct {
	exchanges   int
	exchangeErr error
	lastCode    string
}

func (f *fakeAuthorizer) AuthCodeURL(tok *domain.XeroToken, state string) string {
	return "https://login.example/authorize?client_id=" + tok.ClientID + "&state=" + state
}

func (f *fakeAuthorizer) Exchange(_ context.Context, tok *domain.XeroToken, code string) (*domain.TokenGrant, error) {
	f.exchanges++
	f.lastCode = code
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	scope := "openid offline_access"
	return &domain.TokenGrant{
		AccessToken:  "access-" + code,
		RefreshToken: "refresh-" + code,
		ExpiresAt:    time.Now().Add(30 * time.Minute),
		Scope:        &scope,
	}, nil
}

type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
}

func (f *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[key] = value
	return nil
}

var errBoom = errors.New("boom")

func connectedToken(userID string) *domain.XeroToken {
	access, refresh, tenant := "access", "refresh", "tenant-1"
	exp := time.Now().Add(time.Hour)
	return &domain.XeroToken{
		ID:           uuid.New().String(),
		UserID:       userID,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AccessToken:  &access,
		RefreshToken: &refresh,
		ExpiresAt:    &exp,
		TenantID:     &tenant,
	}
}

func strPtr(s string) *string { return &s }
