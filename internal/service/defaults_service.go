package service

import (
	"context"
	"time"

	"github.com/prperemyshlev/jobdesk/internal/domain"
	"github.com/prperemyshlev/jobdesk/internal/dto"
	"github.com/prperemyshlev/jobdesk/internal/repository"
	"github.com/prperemyshlev/jobdesk/internal/xero"
	"github.com/prperemyshlev/jobdesk/pkg/observability"
	"go.uber.org/zap"
)

// Well-known Xero resources every connected account gets
const (
	CashSaleContactName = "Cash Sales"
	LabourItemCode      = "LABOUR"
	MaterialsItemCode   = "MATERIALS"
)

type defaultItem struct {
	role        domain.ItemRole
	code        string
	name        string
	description string
}

var (
	labourItem    = defaultItem{domain.ItemRoleLabour, LabourItemCode, "Labour", "Labour charged on jobs"}
	materialsItem = defaultItem{domain.ItemRoleMaterials, MaterialsItemCode, "Materials", "Materials supplied on jobs"}
)

// AccountCodes are the ledger accounts new items post to
type AccountCodes struct {
	Sales    string
	Purchase string
}

// defaultsService implements DefaultsService interface
type defaultsService struct {
	sessions TokenService
	api      XeroAPI
	contacts repository.XeroContactRepository
	items    repository.XeroItemRepository
	locker   Locker
	lockTTL  time.Duration
	accounts AccountCodes
	logger   *zap.Logger
	ensured  *observability.Counter
}

// NewDefaultsService creates a new defaults service
func NewDefaultsService(
	sessions TokenService,
	api XeroAPI,
	contacts repository.XeroContactRepository,
	items repository.XeroItemRepository,
	locker Locker,
	lockTTL time.Duration,
	accounts AccountCodes,
	logger *zap.Logger,
) DefaultsService {
	return &defaultsService{
		sessions: sessions,
		api:      api,
		contacts: contacts,
		items:    items,
		locker:   locker,
		lockTTL:  lockTTL,
		accounts: accounts,
		logger:   logger,
		ensured:  observability.NewCounter("xero_defaults_ensured_total", "Default Xero resources ensured by result"),
	}
}

// SyncAll ensures the cash-sale contact and both default items
func (s *defaultsService) SyncAll(ctx context.Context, userID string) (*dto.DefaultsSyncResponse, error) {
	release, session, err := s.begin(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	contact, err := s.ensureContact(ctx, session, userID)
	if err != nil {
		return nil, err
	}
	labour, err := s.ensureItem(ctx, session, userID, labourItem)
	if err != nil {
		return nil, err
	}
	materials, err := s.ensureItem(ctx, session, userID, materialsItem)
	if err != nil {
		return nil, err
	}

	return &dto.DefaultsSyncResponse{
		Contact:   ContactResponse(contact),
		Labour:    ItemResponse(labour),
		Materials: ItemResponse(materials),
	}, nil
}

// SyncContact ensures the cash-sale contact
func (s *defaultsService) SyncContact(ctx context.Context, userID string) (*domain.XeroContact, error) {
	release, session, err := s.begin(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.ensureContact(ctx, session, userID)
}

// SyncItems ensures the labour and materials items
func (s *defaultsService) SyncItems(ctx context.Context, userID string) ([]*domain.XeroItem, error) {
	release, session, err := s.begin(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	out := make([]*domain.XeroItem, 0, 2)
	for _, def := range []defaultItem{labourItem, materialsItem} {
		item, err := s.ensureItem(ctx, session, userID, def)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}

	return out, nil
}

// ListContacts returns the locally mirrored contacts
func (s *defaultsService) ListContacts(ctx context.Context, userID string) ([]*domain.XeroContact, error) {
	return s.contacts.List(ctx, userID)
}

// ListItems returns the locally mirrored items
func (s *defaultsService) ListItems(ctx context.Context, userID string) ([]*domain.XeroItem, error) {
	return s.items.List(ctx, userID)
}

// begin takes the user's sync lock and opens an API session
func (s *defaultsService) begin(ctx context.Context, userID string) (func(), *xero.Session, error) {
	release, ok, err := s.locker.Acquire(ctx, "xero-defaults:"+userID, s.lockTTL)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrSyncInProgress
	}

	session, err := s.sessions.Session(ctx, userID)
	if err != nil {
		release()
		return nil, nil, err
	}

	return release, session, nil
}

func (s *defaultsService) ensureContact(ctx context.Context, session *xero.Session, userID string) (*domain.XeroContact, error) {
	remote, err := s.api.FindContactByName(ctx, session, CashSaleContactName)
	if err != nil {
		return nil, err
	}

	result := "found"
	if remote == nil {
		remote, err = s.api.CreateContact(ctx, session, xero.Contact{Name: CashSaleContactName})
		if err != nil {
			return nil, err
		}
		result = "created"
		s.logger.Info("Xero default contact created", zap.String("user_id", userID), zap.String("contact_id", remote.ContactID))
	}
	s.ensured.Add(ctx, 1, "resource", "contact", "result", result)

	local := &domain.XeroContact{
		UserID:        userID,
		XeroContactID: remote.ContactID,
		Name:          remote.Name,
	}
	if err := s.contacts.UpsertDefault(ctx, local); err != nil {
		return nil, err
	}

	return local, nil
}

func (s *defaultsService) ensureItem(ctx context.Context, session *xero.Session, userID string, def defaultItem) (*domain.XeroItem, error) {
	remote, err := s.api.GetItemByCode(ctx, session, def.code)
	if err != nil {
		return nil, err
	}

	result := "found"
	if remote == nil {
		remote, err = s.api.CreateItem(ctx, session, xero.Item{
			Code:            def.code,
			Name:            def.name,
			Description:     def.description,
			IsSold:          true,
			IsPurchased:     true,
			SalesDetails:    &xero.ItemDetails{AccountCode: s.accounts.Sales},
			PurchaseDetails: &xero.ItemDetails{AccountCode: s.accounts.Purchase},
		})
		if err != nil {
			return nil, err
		}
		result = "created"
		s.logger.Info("Xero default item created", zap.String("user_id", userID), zap.String("code", def.code))
	}
	s.ensured.Add(ctx, 1, "resource", string(def.role), "result", result)

	name := remote.Name
	if name == "" {
		name = def.name
	}

	local := &domain.XeroItem{
		UserID:     userID,
		XeroItemID: remote.ItemID,
		Code:       remote.Code,
		Name:       name,
	}
	if err := s.items.UpsertDefault(ctx, local, def.role); err != nil {
		return nil, err
	}

	return local, nil
}
