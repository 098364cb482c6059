package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/whitelabel-hq/auth-service/internal/domain"
	"github.com/whitelabel-hq/auth-service/internal/dto"
)

// respondError writes the failure envelope. Known auth errors keep their
// status and stable key; anything else is an opaque 500.
func respondError(c *gin.Context, err error) {
	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		c.JSON(authErr.Status, dto.ErrorResponse{
			Error: authErr.Message,
			Key:   authErr.Key,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "Unexpected error occurred",
		Key:   "internal_error",
	})
}

// respondValidationError writes the envelope for request binding failures.
func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: err.Error(),
		Key:   "validation_failed",
	})
}

func userInfo(user *domain.User) dto.UserInfo {
	return dto.UserInfo{
		ID:        user.ID,
		CompanyID: user.CompanyID,
		Email:     user.Email,
		FullName:  user.FullName,
		Type:      string(user.Type),
		IsActive:  user.IsActive,
		IsBanned:  user.IsBanned,
	}
}
