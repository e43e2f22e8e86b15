package service

import (
	"time"

	"github.com/prperemyshlev/jobdesk/internal/domain"
	"github.com/prperemyshlev/jobdesk/internal/dto"
	"github.com/prperemyshlev/jobdesk/internal/xero"
)

// TokenResponse describes a connection record without its secrets
func TokenResponse(t *domain.XeroToken) dto.XeroTokenResponse {
	resp := dto.XeroTokenResponse{
		Connected:  t.HasTokens(),
		ClientID:   t.ClientID,
		Scope:      t.Scope,
		TenantID:   t.TenantID,
		TenantName: t.TenantName,
		TenantType: t.TenantType,
		UpdatedAt:  t.UpdatedAt.Format(time.RFC3339),
	}
	if t.ExpiresAt != nil {
		exp := t.ExpiresAt.Format(time.RFC3339)
		resp.ExpiresAt = &exp
	}
	return resp
}

// ContactResponse converts a mirrored contact to its API form
func ContactResponse(c *domain.XeroContact) dto.XeroContactResponse {
	return dto.XeroContactResponse{
		ID:                c.ID,
		XeroContactID:     c.XeroContactID,
		Name:              c.Name,
		IsDefaultCashSale: c.IsDefaultCashSale,
	}
}

// ItemResponse converts a mirrored item to its API form
func ItemResponse(it *domain.XeroItem) dto.XeroItemResponse {
	return dto.XeroItemResponse{
		ID:                 it.ID,
		XeroItemID:         it.XeroItemID,
		Code:               it.Code,
		Name:               it.Name,
		IsDefaultLabour:    it.IsDefaultLabour,
		IsDefaultMaterials: it.IsDefaultMaterials,
	}
}

// QuoteResponse summarises a created quote
func QuoteResponse(q *xero.Quote) dto.QuoteResponse {
	return dto.QuoteResponse{
		QuoteID:     q.QuoteID,
		QuoteNumber: q.QuoteNumber,
		Status:      q.Status,
		Total:       q.Total,
	}
}
