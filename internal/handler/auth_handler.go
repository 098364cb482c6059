package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/whitelabel-hq/auth-service/internal/domain"
	"github.com/whitelabel-hq/auth-service/internal/dto"
	"github.com/whitelabel-hq/auth-service/internal/repository"
	"github.com/whitelabel-hq/auth-service/internal/service"
	"github.com/whitelabel-hq/auth-service/internal/utils"
)

const (
	// CompanyIDHeader scopes tenant-bound API calls.
	CompanyIDHeader = "Company-Id"

	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// AuthHandler handles the authentication lifecycle endpoints.
type AuthHandler struct {
	sessions      service.SessionManager
	users         repository.UserRepository
	secureCookies bool
}

// NewAuthHandler creates a new auth handler. secureCookies marks session
// cookies Secure so browsers only send them over HTTPS.
func NewAuthHandler(sessions service.SessionManager, users repository.UserRepository, secureCookies bool) *AuthHandler {
	return &AuthHandler{sessions: sessions, users: users, secureCookies: secureCookies}
}

func requestMeta(c *gin.Context) service.RequestMeta {
	origin := c.GetHeader("Origin")
	if origin == "" {
		origin = "unknown"
	}
	return service.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Origin:    origin,
	}
}

func (h *AuthHandler) setSessionCookies(c *gin.Context, pair *domain.TokenPair) {
	c.SetCookie(accessTokenCookie, pair.AccessToken, int(utils.AccessTokenTTL.Seconds()), "/", "", h.secureCookies, true)
	c.SetCookie(refreshTokenCookie, pair.RefreshToken, int(utils.RefreshTokenTTL.Seconds()), "/", "", h.secureCookies, true)
}

func (h *AuthHandler) clearSessionCookies(c *gin.Context) {
	c.SetCookie(accessTokenCookie, "", -1, "/", "", h.secureCookies, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", h.secureCookies, true)
}

// Login handles email/password login for a tenant.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password, c.GetHeader(CompanyIDHeader), requestMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookies(c, result.Pair)
	c.JSON(http.StatusOK, dto.LoginResponse{
		User: userInfo(result.User),
		Token: dto.TokenInfo{
			AccessToken:  result.Pair.AccessToken,
			RefreshToken: result.Pair.RefreshToken,
		},
	})
}

// GoogleLogin handles OAuth login via an authorization code.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req dto.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := h.sessions.LoginWithGoogle(c.Request.Context(), req.Code, c.GetHeader(CompanyIDHeader), requestMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookies(c, result.Pair)
	c.JSON(http.StatusOK, dto.LoginResponse{
		User: userInfo(result.User),
		Token: dto.TokenInfo{
			AccessToken:  result.Pair.AccessToken,
			RefreshToken: result.Pair.RefreshToken,
		},
	})
}

// Signup handles user registration within a tenant.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := h.sessions.Signup(c.Request.Context(), service.SignupParams{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	}, c.GetHeader(CompanyIDHeader), requestMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": userInfo(user)})
}

// Refresh rotates a refresh token and returns the new pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		respondError(c, domain.ErrMissingRefreshToken)
		return
	}

	pair, err := h.sessions.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookies(c, pair)
	c.JSON(http.StatusOK, dto.RefreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout clears the stored tokens and session cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	accessToken, err := c.Cookie(accessTokenCookie)
	if err != nil || accessToken == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "No tokens provided",
			Key:   "missing_tokens",
		})
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), accessToken, requestMeta(c)); err != nil {
		respondError(c, err)
		return
	}

	h.clearSessionCookies(c)
	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Logout successful"})
}

// RequestPasswordReset issues a reset token for the user's email.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req dto.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	_, err := h.sessions.RequestPasswordReset(c.Request.Context(), req.Email, c.GetHeader(CompanyIDHeader), requestMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Password reset email sent"})
}

// ValidateResetToken checks a reset token without consuming it.
func (h *AuthHandler) ValidateResetToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Token is required",
			Key:   "missing_token",
		})
		return
	}

	if err := h.sessions.ValidateResetToken(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Token is valid"})
}

// ChangePassword consumes a reset token and sets the new password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.sessions.ChangePassword(c.Request.Context(), req.Token, req.NewPassword, requestMeta(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Password changed successfully"})
}

// SendActivation issues an activation token for an inactive account.
func (h *AuthHandler) SendActivation(c *gin.Context) {
	var req dto.SendActivationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	_, err := h.sessions.SendActivation(c.Request.Context(), req.Email, c.GetHeader(CompanyIDHeader))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Activation email sent"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.GetString(ContextUserID))
	if err != nil {
		respondError(c, domain.ErrUserNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userInfo(user)})
}

// Activate verifies an activation token and activates the account.
func (h *AuthHandler) Activate(c *gin.Context) {
	var req dto.ActivationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.sessions.Activate(c.Request.Context(), req.ActivationToken, requestMeta(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Account activated successfully"})
}
