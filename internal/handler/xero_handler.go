package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/jobdesk/internal/domain"
	"github.com/prperemyshlev/jobdesk/internal/dto"
	"github.com/prperemyshlev/jobdesk/internal/service"
	"go.uber.org/zap"
)

// XeroHandler handles default resources and quotes
type XeroHandler struct {
	defaults service.DefaultsService
	quotes   service.QuoteService
	logger   *zap.Logger
}

// NewXeroHandler creates a new Xero handler
func NewXeroHandler(defaults service.DefaultsService, quotes service.QuoteService, logger *zap.Logger) *XeroHandler {
	return &XeroHandler{
		defaults: defaults,
		quotes:   quotes,
		logger:   logger,
	}
}

// SyncDefaults ensures the cash-sale contact and default items exist in Xero
// @Summary Sync default Xero resources
// @Tags xero
// @Produce json
// @Success 200 {object} dto.DefaultsSyncResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 412 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /xero/sync [post]
func (h *XeroHandler) SyncDefaults(c *gin.Context) {
	resp, err := h.defaults.SyncAll(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListContacts returns mirrored contacts
// @Summary List mirrored Xero contacts
// @Tags xero
// @Produce json
// @Success 200 {array} dto.XeroContactResponse
// @Router /xero/contacts [get]
func (h *XeroHandler) ListContacts(c *gin.Context) {
	contacts, err := h.defaults.ListContacts(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]dto.XeroContactResponse, 0, len(contacts))
	for _, contact := range contacts {
		resp = append(resp, service.ContactResponse(contact))
	}
	c.JSON(http.StatusOK, resp)
}

// SyncContact ensures the cash-sale contact
// @Summary Sync cash-sale contact
// @Tags xero
// @Produce json
// @Success 200 {object} dto.XeroContactResponse
// @Router /xero/contacts [post]
func (h *XeroHandler) SyncContact(c *gin.Context) {
	contact, err := h.defaults.SyncContact(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, service.ContactResponse(contact))
}

// ListItems returns mirrored items
// @Summary List mirrored Xero items
// @Tags xero
// @Produce json
// @Success 200 {array} dto.XeroItemResponse
// @Router /xero/items [get]
func (h *XeroHandler) ListItems(c *gin.Context) {
	items, err := h.defaults.ListItems(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, itemResponses(items))
}

// SyncItems ensures the labour and materials items
// @Summary Sync default items
// @Tags xero
// @Produce json
// @Success 200 {array} dto.XeroItemResponse
// @Router /xero/items [post]
func (h *XeroHandler) SyncItems(c *gin.Context) {
	items, err := h.defaults.SyncItems(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, itemResponses(items))
}

// CreateQuote creates a draft Xero quote from a job
// @Summary Create quote from job
// @Tags xero
// @Accept json
// @Produce json
// @Param request body dto.CreateQuoteRequest true "Job to quote"
// @Success 201 {object} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /xero/quotes [post]
func (h *XeroHandler) CreateQuote(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	quote, err := h.quotes.CreateFromJob(c.Request.Context(), currentUserID(c), req.JobID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, service.QuoteResponse(quote))
}

func itemResponses(items []*domain.XeroItem) []dto.XeroItemResponse {
	resp := make([]dto.XeroItemResponse, 0, len(items))
	for _, it := range items {
		resp = append(resp, service.ItemResponse(it))
	}
	return resp
}
