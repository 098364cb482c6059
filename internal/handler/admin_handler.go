package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/whitelabel-hq/auth-service/internal/domain"
	"github.com/whitelabel-hq/auth-service/internal/dto"
	"github.com/whitelabel-hq/auth-service/internal/repository"
	"github.com/whitelabel-hq/auth-service/internal/service"
)

// AdminHandler serves tenant-scoped user management for admins.
type AdminHandler struct {
	users service.UserAdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(users service.UserAdminService) *AdminHandler {
	return &AdminHandler{users: users}
}

// ListUsers returns a paginated, searchable user listing for the tenant.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	companyID := c.GetHeader(CompanyIDHeader)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", "10"))
	sortField := c.DefaultQuery("sortField", "created_at")
	sortOrder := strings.ToLower(c.DefaultQuery("sortOrder", "asc"))

	params := repository.ListUsersParams{
		Page:      page,
		PerPage:   perPage,
		SortField: sortField,
		SortDesc:  sortOrder == "desc",
		Search:    c.Query("search"),
	}

	users, total, err := h.users.List(c.Request.Context(), companyID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	data := make([]dto.UserInfo, 0, len(users))
	for _, user := range users {
		data = append(data, userInfo(user))
	}

	totalPages := (total + params.PerPage - 1) / params.PerPage

	c.JSON(http.StatusOK, dto.UserListResponse{
		Data: data,
		Pagination: dto.Pagination{
			Page:       params.Page,
			PerPage:    params.PerPage,
			Total:      total,
			TotalPages: totalPages,
			SortField:  params.SortField,
			SortOrder:  sortOrder,
		},
	})
}

// CreateUser provisions a user in the tenant.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := h.users.Create(c.Request.Context(), c.GetHeader(CompanyIDHeader), service.CreateUserParams{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Type:     domain.UserType(req.Type),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": userInfo(user)})
}

// UpdateUser applies partial updates, including bans and deactivation.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	params := service.UpdateUserParams{
		FullName: req.FullName,
		IsActive: req.IsActive,
		IsBanned: req.IsBanned,
	}
	if req.Type != nil {
		userType := domain.UserType(*req.Type)
		params.Type = &userType
	}

	user, err := h.users.Update(c.Request.Context(), c.GetHeader(CompanyIDHeader), c.Param("id"), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userInfo(user)})
}
