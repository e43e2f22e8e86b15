package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/jobdesk/internal/dto"
	"github.com/prperemyshlev/jobdesk/internal/service"
	"github.com/prperemyshlev/jobdesk/internal/xero"
	"go.uber.org/zap"
)

// respondError maps service and Xero errors to a JSON error response
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var apiErr *xero.RemoteAPIError

	switch {
	case errors.Is(err, xero.ErrNotConnected):
		c.JSON(http.StatusPreconditionFailed, dto.ErrorResponse{
			Error:   "not_connected",
			Message: "Xero is not connected. Save your app credentials and connect first.",
		})
	case errors.Is(err, xero.ErrRefreshFailed):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "reconnect_required",
			Message: "Xero authorization has expired. Please reconnect.",
		})
	case errors.Is(err, xero.ErrTenantNotSelected):
		c.JSON(http.StatusPreconditionFailed, dto.ErrorResponse{
			Error:   "tenant_not_selected",
			Message: "Select a Xero organisation first.",
		})
	case errors.As(err, &apiErr):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{
			Error:   "xero_api_error",
			Message: apiErr.Detail,
			Details: gin.H{"status": apiErr.StatusCode},
		})
	case errors.Is(err, xero.ErrInvalidResponse):
		logger.Warn("Invalid Xero response", zap.Error(err))
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{
			Error:   "xero_invalid_response",
			Message: "Xero returned an unexpected response",
		})
	case errors.Is(err, service.ErrSyncInProgress):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   "sync_in_progress",
			Message: "A Xero sync is already running for this account",
		})
	case errors.Is(err, service.ErrJobNotFound), errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrEmptyJob):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error:   "empty_job",
			Message: err.Error(),
		})
	default:
		logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("user_id", currentUserID(c)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: "Internal server error",
		})
	}
}

func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "Validation failed",
		Message: err.Error(),
	})
}
