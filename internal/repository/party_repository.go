package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/jobdesk/internal/domain"
	"github.com/prperemyshlev/jobdesk/pkg/database"
)

// partyRepository implements PartyRepository over the customers or the
// suppliers table. Both share one column layout.
type partyRepository struct {
	db    *database.Postgres
	table string
}

// NewPartyRepository creates a party repository for table, which must be
// "customers" or "suppliers"
func NewPartyRepository(db *database.Postgres, table string) PartyRepository {
	switch table {
	case "customers", "suppliers":
	default:
		panic("repository: unknown party table " + table)
	}
	return &partyRepository{db: db, table: table}
}

const partyColumns = `id, user_id, name, email, phone, address, xero_contact_id, created_at, updated_at`

// ListLinked returns rows that carry a Xero contact id
func (r *partyRepository) ListLinked(ctx context.Context, userID string) ([]*domain.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM ` + r.table + ` WHERE user_id = $1 AND xero_contact_id IS NOT NULL`
	return r.list(ctx, query, userID)
}

// ListUnlinked returns rows without a Xero contact id, oldest first
func (r *partyRepository) ListUnlinked(ctx context.Context, userID string) ([]*domain.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM ` + r.table + ` WHERE user_id = $1 AND xero_contact_id IS NULL ORDER BY created_at`
	return r.list(ctx, query, userID)
}

func (r *partyRepository) list(ctx context.Context, query, userID string) ([]*domain.Party, error) {
	rows, err := r.db.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.table, err)
	}
	defer rows.Close()

	var parties []*domain.Party
	for rows.Next() {
		party, err := scanParty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", r.table, err)
		}
		parties = append(parties, party)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", r.table, err)
	}

	return parties, nil
}

// UpdateFromRemote writes the link and the denormalised contact fields
func (r *partyRepository) UpdateFromRemote(ctx context.Context, party *domain.Party) error {
	query := `
		UPDATE ` + r.table + `
		SET xero_contact_id = $3, name = $4, email = $5, phone = $6, address = $7, updated_at = $8
		WHERE user_id = $1 AND id = $2
	`

	party.UpdatedAt = time.Now()
	result, err := r.db.DB.ExecContext(ctx, query,
		party.UserID,
		party.ID,
		party.XeroContactID,
		party.Name,
		party.Email,
		party.Phone,
		party.Address,
		party.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s row: %w", r.table, err)
	}

	return expectOne(result, r.table+" row "+party.ID)
}

// BulkInsert inserts all parties in a single statement. Either every row is
// written or none is.
func (r *partyRepository) BulkInsert(ctx context.Context, parties []*domain.Party) error {
	if len(parties) == 0 {
		return nil
	}

	const cols = 9
	now := time.Now()
	placeholders := make([]string, 0, len(parties))
	args := make([]interface{}, 0, len(parties)*cols)

	for i, p := range parties {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		p.CreatedAt, p.UpdatedAt = now, now

		n := i * cols
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			n+1, n+2, n+3, n+4, n+5, n+6, n+7, n+8, n+9))
		args = append(args, p.ID, p.UserID, p.Name, p.Email, p.Phone, p.Address, p.XeroContactID, p.CreatedAt, p.UpdatedAt)
	}

	query := `INSERT INTO ` + r.table + ` (` + partyColumns + `) VALUES ` + strings.Join(placeholders, ", ")

	if _, err := r.db.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert %d %s rows: %w", len(parties), r.table, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanParty(row rowScanner) (*domain.Party, error) {
	party := &domain.Party{}
	var email, phone, address, xeroContactID sql.NullString

	err := row.Scan(
		&party.ID,
		&party.UserID,
		&party.Name,
		&email,
		&phone,
		&address,
		&xeroContactID,
		&party.CreatedAt,
		&party.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	party.Email = nullString(email)
	party.Phone = nullString(phone)
	party.Address = nullString(address)
	party.XeroContactID = nullString(xeroContactID)

	return party, nil
}
