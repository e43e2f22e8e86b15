package domain

import "time"

// XeroContact is a locally mirrored remote contact used as a quote fallback
type XeroContact struct {
	ID                string    `json:"id" db:"id"`
	UserID            string    `json:"user_id" db:"user_id"`
	XeroContactID     string    `json:"xero_contact_id" db:"xero_contact_id"`
	Name              string    `json:"name" db:"name"`
	IsDefaultCashSale bool      `json:"is_default_cash_sale" db:"is_default_cash_sale"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// XeroItem is a locally mirrored remote item
type XeroItem struct {
	ID                 string    `json:"id" db:"id"`
	UserID             string    `json:"user_id" db:"user_id"`
	XeroItemID         string    `json:"xero_item_id" db:"xero_item_id"`
	Code               string    `json:"code" db:"code"`
	Name               string    `json:"name" db:"name"`
	IsDefaultLabour    bool      `json:"is_default_labour" db:"is_default_labour"`
	IsDefaultMaterials bool      `json:"is_default_materials" db:"is_default_materials"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// ItemRole marks which default flag an item upsert sets
type ItemRole string

const (
	ItemRoleLabour    ItemRole = "labour"
	ItemRoleMaterials ItemRole = "materials"
)
