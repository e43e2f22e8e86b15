package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/jobdesk/internal/dto"
	"github.com/prperemyshlev/jobdesk/internal/service"
	"go.uber.org/zap"
)

// ConnectionHandler handles the Xero credentials record and OAuth flow
type ConnectionHandler struct {
	tokens      service.TokenService
	connections service.ConnectionService
	frontendURL string
	logger      *zap.Logger
}

// NewConnectionHandler creates a new connection handler
func NewConnectionHandler(tokens service.TokenService, connections service.ConnectionService, frontendURL string, logger *zap.Logger) *ConnectionHandler {
	return &ConnectionHandler{
		tokens:      tokens,
		connections: connections,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
}

// GetToken returns the connection state
// @Summary Get Xero connection
// @Tags xero
// @Produce json
// @Success 200 {object} dto.XeroTokenResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /xero/token [get]
func (h *ConnectionHandler) GetToken(c *gin.Context) {
	tok, err := h.tokens.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, service.TokenResponse(tok))
}

// SaveCredentials stores the user's Xero app credentials
// @Summary Save Xero app credentials
// @Description Creates or replaces the client id and secret. Any existing tokens are cleared.
// @Tags xero
// @Accept json
// @Produce json
// @Param request body dto.XeroCredentialsRequest true "Credentials"
// @Success 201 {object} dto.XeroTokenResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /xero/token [post]
func (h *ConnectionHandler) SaveCredentials(c *gin.Context) {
	var req dto.XeroCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	tok, err := h.tokens.SaveCredentials(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, service.TokenResponse(tok))
}

// UpdateToken updates credentials or the selected organisation
// @Summary Update Xero connection
// @Tags xero
// @Accept json
// @Produce json
// @Param request body dto.UpdateXeroTokenRequest true "Fields to change"
// @Success 200 {object} dto.XeroTokenResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /xero/token [put]
func (h *ConnectionHandler) UpdateToken(c *gin.Context) {
	var req dto.UpdateXeroTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	tok, err := h.tokens.Update(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, service.TokenResponse(tok))
}

// Disconnect revokes and removes the connection
// @Summary Disconnect Xero
// @Tags xero
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /xero/token [delete]
func (h *ConnectionHandler) Disconnect(c *gin.Context) {
	if err := h.tokens.Disconnect(c.Request.Context(), currentUserID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Xero disconnected",
	})
}

// Connect returns the consent page URL
// @Summary Start Xero authorization
// @Tags xero
// @Produce json
// @Success 200 {object} dto.ConnectResponse
// @Failure 412 {object} dto.ErrorResponse
// @Router /xero/connect [get]
func (h *ConnectionHandler) Connect(c *gin.Context) {
	authURL, err := h.connections.AuthorizationURL(c.Request.Context(), currentProfile(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ConnectResponse{AuthorizationURL: authURL})
}

// Callback completes the authorization-code flow and redirects to the frontend
// @Summary Xero OAuth redirect
// @Tags xero
// @Param code query string false "Authorization code"
// @Param state query string false "Signed state"
// @Param error query string false "Provider error"
// @Success 302
// @Router /xero/callback [get]
func (h *ConnectionHandler) Callback(c *gin.Context) {
	err := h.connections.Callback(c.Request.Context(), service.CallbackParams{
		Code:  c.Query("code"),
		State: c.Query("state"),
		Error: c.Query("error"),
	})
	if err == nil {
		c.Redirect(http.StatusFound, h.frontendURL+"/settings?xero=connected")
		return
	}

	reason := "internal_error"
	var cbErr *service.CallbackError
	if errors.As(err, &cbErr) {
		reason = cbErr.Reason
	} else {
		h.logger.Error("Xero callback failed", zap.Error(err))
	}

	c.Redirect(http.StatusFound, h.frontendURL+"/settings?xero=error&reason="+url.QueryEscape(reason))
}
