package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/jobdesk/internal/domain"
	"github.com/prperemyshlev/jobdesk/internal/dto"
	"github.com/prperemyshlev/jobdesk/internal/service"
)

// Identity headers sent by the frontend on every API call
const (
	HeaderAuthToken    = "X-Auth-Token"
	HeaderAuthProvider = "X-Auth-Provider"
)

const (
	ctxUserID  = "user_id"
	ctxProfile = "profile"
)

// AuthMiddleware resolves the identity headers to a profile and adds it to context
func AuthMiddleware(identity service.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(HeaderAuthToken))
		provider := strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderAuthProvider)))

		if token == "" || provider == "" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: HeaderAuthToken + " and " + HeaderAuthProvider + " headers are required",
			})
			c.Abort()
			return
		}

		profile, err := identity.Resolve(c.Request.Context(), provider, token)
		if err != nil {
			status, message := http.StatusUnauthorized, "Invalid or expired token"
			switch {
			case errors.Is(err, service.ErrUnsupportedProvider):
				message = "Unsupported auth provider"
			case !errors.Is(err, service.ErrUnauthorized):
				status, message = http.StatusServiceUnavailable, "Identity provider unavailable"
			}
			c.JSON(status, dto.ErrorResponse{
				Error:   http.StatusText(status),
				Message: message,
			})
			c.Abort()
			return
		}

		c.Set(ctxUserID, profile.ID)
		c.Set(ctxProfile, profile)

		c.Next()
	}
}

func currentProfile(c *gin.Context) *domain.Profile {
	v, ok := c.Get(ctxProfile)
	if !ok {
		return nil
	}
	profile, _ := v.(*domain.Profile)
	return profile
}

func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}
