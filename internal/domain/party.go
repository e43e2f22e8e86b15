package domain

import "time"

// PartyKind selects the local table a reconciled contact lands in
type PartyKind string

const (
	PartyCustomer PartyKind = "customer"
	PartySupplier PartyKind = "supplier"
)

// Party is a local customer or supplier row. XeroContactID is the
// reconciliation join key; a row with it set is never matched by name.
type Party struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	Name          string    `json:"name" db:"name"`
	Email         *string   `json:"email" db:"email"`
	Phone         *string   `json:"phone" db:"phone"`
	Address       *string   `json:"address" db:"address"`
	XeroContactID *string   `json:"xero_contact_id" db:"xero_contact_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// SyncResult tallies one reconciliation pass
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}
