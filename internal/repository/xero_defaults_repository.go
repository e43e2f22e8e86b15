package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prperemyshlev/jobdesk/internal/domain"
	"github.com/prperemyshlev/jobdesk/pkg/database"
)

type xeroContactRepository struct {
	db *database.Postgres
}

// NewXeroContactRepository creates a new mirrored contact repository
func NewXeroContactRepository(db *database.Postgres) XeroContactRepository {
	return &xeroContactRepository{db: db}
}

// UpsertDefault writes the contact and makes it the user's only default
// cash-sale contact. It always writes, whether or not the row existed.
func (r *xeroContactRepository) UpsertDefault(ctx context.Context, contact *domain.XeroContact) error {
	clearQuery := `
		UPDATE xero_contacts SET is_default_cash_sale = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND xero_contact_id <> $2 AND is_default_cash_sale
	`
	upsertQuery := `
		INSERT INTO xero_contacts (id, user_id, xero_contact_id, name, is_default_cash_sale, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, NOW())
		ON CONFLICT (user_id, xero_contact_id) DO UPDATE SET
			name = EXCLUDED.name,
			is_default_cash_sale = TRUE,
			updated_at = NOW()
		RETURNING id, updated_at
	`

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, clearQuery, contact.UserID, contact.XeroContactID); err != nil {
			return fmt.Errorf("failed to clear default contact: %w", err)
		}

		err := tx.QueryRowContext(ctx, upsertQuery, uuid.New().String(), contact.UserID, contact.XeroContactID, contact.Name).
			Scan(&contact.ID, &contact.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert default contact: %w", err)
		}

		contact.IsDefaultCashSale = true
		return nil
	})
}

// GetDefault returns the user's default cash-sale contact
func (r *xeroContactRepository) GetDefault(ctx context.Context, userID string) (*domain.XeroContact, error) {
	query := `
		SELECT id, user_id, xero_contact_id, name, is_default_cash_sale, updated_at
		FROM xero_contacts
		WHERE user_id = $1 AND is_default_cash_sale
	`

	c := &domain.XeroContact{}
	err := r.db.DB.QueryRowContext(ctx, query, userID).
		Scan(&c.ID, &c.UserID, &c.XeroContactID, &c.Name, &c.IsDefaultCashSale, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("default contact not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get default contact: %w", err)
	}

	return c, nil
}

// List returns all mirrored contacts of the user
func (r *xeroContactRepository) List(ctx context.Context, userID string) ([]*domain.XeroContact, error) {
	query := `
		SELECT id, user_id, xero_contact_id, name, is_default_cash_sale, updated_at
		FROM xero_contacts
		WHERE user_id = $1
		ORDER BY name
	`

	rows, err := r.db.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list xero contacts: %w", err)
	}
	defer rows.Close()

	contacts := []*domain.XeroContact{}
	for rows.Next() {
		c := &domain.XeroContact{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.XeroContactID, &c.Name, &c.IsDefaultCashSale, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan xero contact: %w", err)
		}
		contacts = append(contacts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate xero contacts: %w", err)
	}

	return contacts, nil
}

type xeroItemRepository struct {
	db *database.Postgres
}

// NewXeroItemRepository creates a new mirrored item repository
func NewXeroItemRepository(db *database.Postgres) XeroItemRepository {
	return &xeroItemRepository{db: db}
}

func roleColumn(role domain.ItemRole) (string, error) {
	switch role {
	case domain.ItemRoleLabour:
		return "is_default_labour", nil
	case domain.ItemRoleMaterials:
		return "is_default_materials", nil
	}
	return "", fmt.Errorf("unknown item role %q", role)
}

// UpsertDefault writes the item and makes it the user's only default for role
func (r *xeroItemRepository) UpsertDefault(ctx context.Context, item *domain.XeroItem, role domain.ItemRole) error {
	col, err := roleColumn(role)
	if err != nil {
		return err
	}

	clearQuery := `
		UPDATE xero_items SET ` + col + ` = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND xero_item_id <> $2 AND ` + col
	upsertQuery := `
		INSERT INTO xero_items (id, user_id, xero_item_id, code, name, ` + col + `, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, NOW())
		ON CONFLICT (user_id, xero_item_id) DO UPDATE SET
			code = EXCLUDED.code,
			name = EXCLUDED.name,
			` + col + ` = TRUE,
			updated_at = NOW()
		RETURNING id, is_default_labour, is_default_materials, updated_at
	`

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, clearQuery, item.UserID, item.XeroItemID); err != nil {
			return fmt.Errorf("failed to clear default %s item: %w", role, err)
		}

		err := tx.QueryRowContext(ctx, upsertQuery, uuid.New().String(), item.UserID, item.XeroItemID, item.Code, item.Name).
			Scan(&item.ID, &item.IsDefaultLabour, &item.IsDefaultMaterials, &item.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert default %s item: %w", role, err)
		}

		return nil
	})
}

// GetDefault returns the user's default item for role
func (r *xeroItemRepository) GetDefault(ctx context.Context, userID string, role domain.ItemRole) (*domain.XeroItem, error) {
	col, err := roleColumn(role)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, xero_item_id, code, name, is_default_labour, is_default_materials, updated_at
		FROM xero_items
		WHERE user_id = $1 AND ` + col

	it := &domain.XeroItem{}
	err = r.db.DB.QueryRowContext(ctx, query, userID).
		Scan(&it.ID, &it.UserID, &it.XeroItemID, &it.Code, &it.Name, &it.IsDefaultLabour, &it.IsDefaultMaterials, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("default %s item not found: %w", role, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get default %s item: %w", role, err)
	}

	return it, nil
}

// List returns all mirrored items of the user
func (r *xeroItemRepository) List(ctx context.Context, userID string) ([]*domain.XeroItem, error) {
	query := `
		SELECT id, user_id, xero_item_id, code, name, is_default_labour, is_default_materials, updated_at
		FROM xero_items
		WHERE user_id = $1
		ORDER BY code
	`

	rows, err := r.db.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list xero items: %w", err)
	}
	defer rows.Close()

	items := []*domain.XeroItem{}
	for rows.Next() {
		it := &domain.XeroItem{}
		if err := rows.Scan(&it.ID, &it.UserID, &it.XeroItemID, &it.Code, &it.Name, &it.IsDefaultLabour, &it.IsDefaultMaterials, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan xero item: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate xero items: %w", err)
	}

	return items, nil
}
