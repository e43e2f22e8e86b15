package service

import (
	"context"

	"github.com/prperemyshlev/jobdesk/internal/domain"
	"github.com/prperemyshlev/jobdesk/internal/repository"
	"github.com/prperemyshlev/jobdesk/internal/utils"
	"github.com/prperemyshlev/jobdesk/internal/xero"
	"github.com/prperemyshlev/jobdesk/pkg/observability"
	"go.uber.org/zap"
)

// reconcileService implements ReconcileService interface
type reconcileService struct {
	sessions  TokenService
	api       XeroAPI
	customers repository.PartyRepository
	suppliers repository.PartyRepository
	logger    *zap.Logger
	rows      *observability.Counter
}

// NewReconcileService creates a new reconciliation service
func NewReconcileService(
	sessions TokenService,
	api XeroAPI,
	customers repository.PartyRepository,
	suppliers repository.PartyRepository,
	logger *zap.Logger,
) ReconcileService {
	return &reconcileService{
		sessions:  sessions,
		api:       api,
		customers: customers,
		suppliers: suppliers,
		logger:    logger,
		rows:      observability.NewCounter("xero_reconcile_rows_total", "Reconciled Xero contacts by kind and outcome"),
	}
}

// SyncCustomers mirrors Xero customer contacts into local customers
func (s *reconcileService) SyncCustomers(ctx context.Context, userID string) (*domain.SyncResult, error) {
	return s.sync(ctx, userID, domain.PartyCustomer, s.customers, func(c xero.Contact) bool { return c.IsCustomer })
}

// SyncSuppliers mirrors Xero supplier contacts into local suppliers
func (s *reconcileService) SyncSuppliers(ctx context.Context, userID string) (*domain.SyncResult, error) {
	return s.sync(ctx, userID, domain.PartySupplier, s.suppliers, func(c xero.Contact) bool { return c.IsSupplier })
}

// sync matches each remote contact by Xero id first, then by an unlinked
// local row with the same folded name, and queues the rest for one insert
func (s *reconcileService) sync(
	ctx context.Context,
	userID string,
	kind domain.PartyKind,
	repo repository.PartyRepository,
	keep func(xero.Contact) bool,
) (*domain.SyncResult, error) {
	session, err := s.sessions.Session(ctx, userID)
	if err != nil {
		return nil, err
	}

	remote, err := s.api.GetContacts(ctx, session)
	if err != nil {
		return nil, err
	}

	linked, err := repo.ListLinked(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlinked, err := repo.ListUnlinked(ctx, userID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Party, len(linked))
	for _, p := range linked {
		byID[*p.XeroContactID] = p
	}

	byName := make(map[string]*domain.Party, len(unlinked))
	for _, p := range unlinked {
		key := utils.NormalizeName(p.Name)
		if _, taken := byName[key]; !taken {
			byName[key] = p
		}
	}

	result := &domain.SyncResult{}
	seen := make(map[string]bool, len(remote))
	var queued []*domain.Party

	for _, contact := range remote {
		if !keep(contact) || contact.Archived() || seen[contact.ContactID] {
			continue
		}
		seen[contact.ContactID] = true
		result.Total++

		if p, ok := byID[contact.ContactID]; ok {
			s.update(ctx, repo, p, contact, result)
			continue
		}

		key := utils.NormalizeName(contact.Name)
		if p, ok := byName[key]; ok {
			delete(byName, key)
			contactID := contact.ContactID
			p.XeroContactID = &contactID
			s.update(ctx, repo, p, contact, result)
			continue
		}

		p := &domain.Party{UserID: userID, Name: contact.Name}
		contactID := contact.ContactID
		p.XeroContactID = &contactID
		applyContact(p, contact)
		queued = append(queued, p)
	}

	if len(queued) > 0 {
		if err := repo.BulkInsert(ctx, queued); err != nil {
			s.logger.Error("Bulk insert of reconciled contacts failed",
				zap.String("user_id", userID),
				zap.String("kind", string(kind)),
				zap.Int("rows", len(queued)),
				zap.Error(err),
			)
			result.Skipped += len(queued)
		} else {
			result.Created += len(queued)
		}
	}

	s.rows.Add(ctx, int64(result.Created), "kind", string(kind), "outcome", "created")
	s.rows.Add(ctx, int64(result.Updated), "kind", string(kind), "outcome", "updated")
	s.rows.Add(ctx, int64(result.Skipped), "kind", string(kind), "outcome", "skipped")

	s.logger.Info("Xero contacts reconciled",
		zap.String("user_id", userID),
		zap.String("kind", string(kind)),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("total", result.Total),
	)

	return result, nil
}

func (s *reconcileService) update(ctx context.Context, repo repository.PartyRepository, p *domain.Party, contact xero.Contact, result *domain.SyncResult) {
	p.Name = contact.Name
	applyContact(p, contact)

	if err := repo.UpdateFromRemote(ctx, p); err != nil {
		s.logger.Warn("Failed to update reconciled row",
			zap.String("id", p.ID),
			zap.String("contact_id", contact.ContactID),
			zap.Error(err),
		)
		result.Skipped++
		return
	}
	result.Updated++
}

// applyContact copies the denormalised fields Xero has values for
func applyContact(p *domain.Party, c xero.Contact) {
	if v := utils.StringPtr(c.EmailAddress); v != nil {
		p.Email = v
	}
	if v := utils.StringPtr(c.PrimaryPhone()); v != nil {
		p.Phone = v
	}
	if v := utils.StringPtr(c.PrimaryAddress()); v != nil {
		p.Address = v
	}
}
