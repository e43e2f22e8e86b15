package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/jobdesk/internal/domain"
	"github.com/prperemyshlev/jobdesk/internal/service"
	"go.uber.org/zap"
)

// SyncHandler reconciles Xero contacts into customers and suppliers
type SyncHandler struct {
	reconcile service.ReconcileService
	logger    *zap.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(reconcile service.ReconcileService, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		reconcile: reconcile,
		logger:    logger,
	}
}

// SyncCustomers pulls Xero customers into the local customer list
// @Summary Sync customers from Xero
// @Tags sync
// @Produce json
// @Success 200 {object} domain.SyncResult
// @Failure 401 {object} dto.ErrorResponse
// @Failure 412 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /customers/sync-xero [post]
func (h *SyncHandler) SyncCustomers(c *gin.Context) {
	h.run(c, h.reconcile.SyncCustomers)
}

// SyncSuppliers pulls Xero suppliers into the local supplier list
// @Summary Sync suppliers from Xero
// @Tags sync
// @Produce json
// @Success 200 {object} domain.SyncResult
// @Failure 401 {object} dto.ErrorResponse
// @Failure 412 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /suppliers/sync-xero [post]
func (h *SyncHandler) SyncSuppliers(c *gin.Context) {
	h.run(c, h.reconcile.SyncSuppliers)
}

func (h *SyncHandler) run(c *gin.Context, sync func(context.Context, string) (*domain.SyncResult, error)) {
	result, err := sync(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
