package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/whitelabel-hq/auth-service/internal/domain"
	"github.com/whitelabel-hq/auth-service/internal/dto"
	"github.com/whitelabel-hq/auth-service/internal/repository"
	"github.com/whitelabel-hq/auth-service/internal/service"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID    = "user_id"
	ContextEmail     = "email"
	ContextCompanyID = "company_id"
	ContextClaims    = "claims"
)

// AuthMiddleware validates the bearer token and adds claims to the context.
func AuthMiddleware(sessions service.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error: "Authorization header is required",
				Key:   "authorization_required",
			})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error: "Invalid authorization header format",
				Key:   "malformed_token",
			})
			return
		}

		claims, err := sessions.ValidateAccessToken(c.Request.Context(), parts[1])
		if err != nil {
			status, key := http.StatusUnauthorized, "malformed_token"
			var authErr *domain.AuthError
			if errors.As(err, &authErr) {
				status, key = authErr.Status, authErr.Key
			}
			c.AbortWithStatusJSON(status, dto.ErrorResponse{
				Error: "Invalid or expired token",
				Key:   key,
			})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextCompanyID, claims.CompanyID)
		c.Set(ContextClaims, claims)

		c.Next()
	}
}

// RequireCompanyID rejects tenant-scoped calls missing the Company-Id header.
func RequireCompanyID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(CompanyIDHeader) == "" {
			c.AbortWithStatusJSON(domain.ErrTenantRequired.Status, dto.ErrorResponse{
				Error: domain.ErrTenantRequired.Message,
				Key:   domain.ErrTenantRequired.Key,
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin allows only admin or owner users past. It also pins the
// request to the caller's own tenant: the Company-Id header must match the
// token's company claim.
func RequireAdmin(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		companyID := c.GetString(ContextCompanyID)

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error: "Unauthorized",
				Key:   "unauthorized",
			})
			return
		}

		if c.GetHeader(CompanyIDHeader) != companyID || user.CompanyID != companyID || !user.Type.IsAdmin() {
			c.AbortWithStatusJSON(domain.ErrForbidden.Status, dto.ErrorResponse{
				Error: domain.ErrForbidden.Message,
				Key:   domain.ErrForbidden.Key,
			})
			return
		}

		c.Next()
	}
}
