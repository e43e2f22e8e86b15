package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prperemyshlev/jobdesk/internal/domain"
	"github.com/prperemyshlev/jobdesk/pkg/database"
)

type jobRepository struct {
	db *database.Postgres
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *database.Postgres) JobRepository {
	return &jobRepository{db: db}
}

// GetWithLines loads a job with its customer and its labour and material lines
func (r *jobRepository) GetWithLines(ctx context.Context, userID, jobID string) (*domain.Job, error) {
	query := `
		SELECT id, user_id, customer_id, title, description, xero_quote_id
		FROM jobs
		WHERE user_id = $1 AND id = $2
	`

	job := &domain.Job{}
	var customerID, description, quoteID sql.NullString

	err := r.db.DB.QueryRowContext(ctx, query, userID, jobID).Scan(
		&job.ID,
		&job.UserID,
		&customerID,
		&job.Title,
		&description,
		&quoteID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job %s not found: %w", jobID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	job.CustomerID = nullString(customerID)
	job.Description = nullString(description)
	job.XeroQuoteID = nullString(quoteID)

	if job.CustomerID != nil {
		customerQuery := `SELECT ` + partyColumns + ` FROM customers WHERE user_id = $1 AND id = $2`
		customer, err := scanParty(r.db.DB.QueryRowContext(ctx, customerQuery, userID, *job.CustomerID))
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to get job customer: %w", err)
		}
		job.Customer = customer
	}

	if job.Labour, err = r.labour(ctx, job.ID); err != nil {
		return nil, err
	}
	if job.Materials, err = r.materials(ctx, job.ID); err != nil {
		return nil, err
	}

	return job, nil
}

func (r *jobRepository) labour(ctx context.Context, jobID string) ([]domain.LabourLine, error) {
	query := `SELECT id, description, hours, rate FROM job_labour WHERE job_id = $1 ORDER BY created_at`

	rows, err := r.db.DB.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list job labour: %w", err)
	}
	defer rows.Close()

	var lines []domain.LabourLine
	for rows.Next() {
		var l domain.LabourLine
		if err := rows.Scan(&l.ID, &l.Description, &l.Hours, &l.Rate); err != nil {
			return nil, fmt.Errorf("failed to scan job labour: %w", err)
		}
		lines = append(lines, l)
	}

	return lines, rows.Err()
}

func (r *jobRepository) materials(ctx context.Context, jobID string) ([]domain.MaterialLine, error) {
	query := `SELECT id, description, quantity, unit_price FROM job_materials WHERE job_id = $1 ORDER BY created_at`

	rows, err := r.db.DB.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list job materials: %w", err)
	}
	defer rows.Close()

	var lines []domain.MaterialLine
	for rows.Next() {
		var m domain.MaterialLine
		if err := rows.Scan(&m.ID, &m.Description, &m.Quantity, &m.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan job materials: %w", err)
		}
		lines = append(lines, m)
	}

	return lines, rows.Err()
}

// SetQuoteID records the Xero quote created for a job
func (r *jobRepository) SetQuoteID(ctx context.Context, userID, jobID, quoteID string) error {
	query := `UPDATE jobs SET xero_quote_id = $3, updated_at = NOW() WHERE user_id = $1 AND id = $2`

	result, err := r.db.DB.ExecContext(ctx, query, userID, jobID, quoteID)
	if err != nil {
		return fmt.Errorf("failed to set job quote id: %w", err)
	}

	return expectOne(result, "job "+jobID)
}
