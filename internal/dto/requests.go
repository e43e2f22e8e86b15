package dto

// XeroCredentialsRequest creates or replaces the user's Xero app credentials
type XeroCredentialsRequest struct {
	ClientID     string `json:"client_id" binding:"required,min=1,max=128" validate:"required"`
	ClientSecret string `json:"client_secret" binding:"required,min=1,max=256" validate:"required"`
}

// UpdateXeroTokenRequest updates credentials and/or the selected organisation.
// Omitted fields are left unchanged.
type UpdateXeroTokenRequest struct {
	ClientID     *string `json:"client_id" binding:"omitempty,min=1,max=128"`
	ClientSecret *string `json:"client_secret" binding:"omitempty,min=1,max=256"`
	TenantID     *string `json:"tenant_id" binding:"omitempty,max=64"`
	TenantName   *string `json:"tenant_name" binding:"omitempty,max=256"`
	TenantType   *string `json:"tenant_type" binding:"omitempty,max=32"`
}

// CreateQuoteRequest asks for a Xero quote built from a job
type CreateQuoteRequest struct {
	JobID string `json:"job_id" binding:"required,uuid"`
}

// XeroTokenResponse describes the connection state without any secrets
type XeroTokenResponse struct {
	Connected  bool    `json:"connected"`
	ClientID   string  `json:"client_id"`
	ExpiresAt  *string `json:"expires_at"`
	Scope      *string `json:"scope"`
	TenantID   *string `json:"tenant_id"`
	TenantName *string `json:"tenant_name"`
	TenantType *string `json:"tenant_type"`
	UpdatedAt  string  `json:"updated_at"`
}

// ConnectResponse carries the consent page URL
type ConnectResponse struct {
	AuthorizationURL string `json:"authorization_url"`
}

// DefaultsSyncResponse lists the ensured default contact and items
type DefaultsSyncResponse struct {
	Contact   XeroContactResponse `json:"contact"`
	Labour    XeroItemResponse    `json:"labour"`
	Materials XeroItemResponse    `json:"materials"`
}

// XeroContactResponse is a mirrored Xero contact
type XeroContactResponse struct {
	ID                string `json:"id"`
	XeroContactID     string `json:"xero_contact_id"`
	Name              string `json:"name"`
	IsDefaultCashSale bool   `json:"is_default_cash_sale"`
}

// XeroItemResponse is a mirrored Xero item
type XeroItemResponse struct {
	ID                 string `json:"id"`
	XeroItemID         string `json:"xero_item_id"`
	Code               string `json:"code"`
	Name               string `json:"name"`
	IsDefaultLabour    bool   `json:"is_default_labour"`
	IsDefaultMaterials bool   `json:"is_default_materials"`
}

// QuoteResponse summarises a created quote
type QuoteResponse struct {
	QuoteID     string  `json:"quote_id"`
	QuoteNumber string  `json:"quote_number"`
	Status      string  `json:"status"`
	Total       float64 `json:"total"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
