package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/whitelabel-hq/auth-service/internal/dto"
	"github.com/whitelabel-hq/auth-service/internal/service"
)

// CompanyHandler resolves tenants for the public-facing app.
type CompanyHandler struct {
	tenants service.TenantResolver
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(tenants service.TenantResolver) *CompanyHandler {
	return &CompanyHandler{tenants: tenants}
}

// Lookup resolves a company by slug or domain.
func (h *CompanyHandler) Lookup(c *gin.Context) {
	var req dto.CompanyLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if req.Slug == "" && req.Domain == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Slug or domain are required",
			Key:   "missing_slug_or_domain",
		})
		return
	}

	company, err := h.tenants.ResolveSlugOrDomain(c.Request.Context(), req.Slug, req.Domain)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, company)
}
