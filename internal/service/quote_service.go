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
	"go.uber.org/zap"
)

// quoteValidity is how long a new quote stays open
const quoteValidity = 30 * 24 * time.Hour

// quoteService implements QuoteService interface
type quoteService struct {
	sessions TokenService
	defaults DefaultsService
	api      XeroAPI
	jobs     repository.JobRepository
	contacts repository.XeroContactRepository
	items    repository.XeroItemRepository
	accounts AccountCodes
	logger   *zap.Logger
	now      func() time.Time
}

// NewQuoteService creates a new quote service
func NewQuoteService(
	sessions TokenService,
	defaults DefaultsService,
	api XeroAPI,
	jobs repository.JobRepository,
	contacts repository.XeroContactRepository,
	items repository.XeroItemRepository,
	accounts AccountCodes,
	logger *zap.Logger,
) QuoteService {
	return &quoteService{
		sessions: sessions,
		defaults: defaults,
		api:      api,
		jobs:     jobs,
		contacts: contacts,
		items:    items,
		accounts: accounts,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateFromJob creates a draft quote from the job's labour and material
// lines and records its id on the job
func (s *quoteService) CreateFromJob(ctx context.Context, userID, jobID string) (*xero.Quote, error) {
	job, err := s.jobs.GetWithLines(ctx, userID, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	if len(job.Labour) == 0 && len(job.Materials) == 0 {
		return nil, ErrEmptyJob
	}

	// Resolved before the session is loaded: the fallback may run its own
	// session and rotate the refresh token.
	contactID, err := s.contactFor(ctx, job)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Session(ctx, userID)
	if err != nil {
		return nil, err
	}

	labourCode := s.itemCode(ctx, userID, domain.ItemRoleLabour, LabourItemCode)
	materialsCode := s.itemCode(ctx, userID, domain.ItemRoleMaterials, MaterialsItemCode)

	lines := make([]xero.LineItem, 0, len(job.Labour)+len(job.Materials))
	for _, l := range job.Labour {
		lines = append(lines, xero.LineItem{
			Description: l.Description,
			Quantity:    l.Hours,
			UnitAmount:  l.Rate,
			ItemCode:    labourCode,
			AccountCode: s.accounts.Sales,
		})
	}
	for _, m := range job.Materials {
		lines = append(lines, xero.LineItem{
			Description: m.Description,
			Quantity:    m.Quantity,
			UnitAmount:  m.UnitPrice,
			ItemCode:    materialsCode,
			AccountCode: s.accounts.Sales,
		})
	}

	now := s.now()
	quote, err := s.api.CreateQuote(ctx, session, xero.Quote{
		Contact:    xero.ContactRef{ContactID: contactID},
		Date:       now.Format("2006-01-02"),
		ExpiryDate: now.Add(quoteValidity).Format("2006-01-02"),
		Title:      utils.Truncate(job.Title, 100),
		Summary:    utils.Truncate(utils.Deref(job.Description), 3000),
		Reference:  utils.Truncate(job.Title, 255),
		Status:     "DRAFT",
		LineItems:  lines,
	})
	if err != nil {
		return nil, err
	}

	if err := s.jobs.SetQuoteID(ctx, userID, job.ID, quote.QuoteID); err != nil {
		s.logger.Error("Quote created but not recorded on job",
			zap.String("job_id", job.ID),
			zap.String("quote_id", quote.QuoteID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to record quote on job: %w", err)
	}

	s.logger.Info("Xero quote created",
		zap.String("user_id", userID),
		zap.String("job_id", job.ID),
		zap.String("quote_id", quote.QuoteID),
	)

	return quote, nil
}

// contactFor picks the customer's linked contact, falling back to the
// default cash-sale contact
func (s *quoteService) contactFor(ctx context.Context, job *domain.Job) (string, error) {
	if job.Customer != nil && job.Customer.XeroContactID != nil {
		return *job.Customer.XeroContactID, nil
	}

	def, err := s.contacts.GetDefault(ctx, job.UserID)
	if err == nil {
		return def.XeroContactID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	def, err = s.defaults.SyncContact(ctx, job.UserID)
	if err != nil {
		return "", err
	}
	return def.XeroContactID, nil
}

func (s *quoteService) itemCode(ctx context.Context, userID string, role domain.ItemRole, fallback string) string {
	item, err := s.items.GetDefault(ctx, userID, role)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Default item lookup failed", zap.String("role", string(role)), zap.Error(err))
		}
		return fallback
	}
	return item.Code
}
