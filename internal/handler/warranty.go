package handler

import (
	"net/http"

	"warranty-platform/internal/model"
	"warranty-platform/internal/service"

	"github.com/gin-gonic/gin"
)

// WarrantyHandler serves coverage plans and inspection-linked warranties.
type WarrantyHandler struct {
	coveragePlans service.CoveragePlanService
	warranties    service.WarrantyService
}

// NewWarrantyHandler creates a warranty handler.
func NewWarrantyHandler(coveragePlans service.CoveragePlanService, warranties service.WarrantyService) *WarrantyHandler {
	return &WarrantyHandler{coveragePlans: coveragePlans, warranties: warranties}
}

// ListCoveragePlans returns the duration-based plans.
func (h *WarrantyHandler) ListCoveragePlans(c *gin.Context) {
	plans, err := h.coveragePlans.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// CreateCoveragePlan adds a duration-based plan.
func (h *WarrantyHandler) CreateCoveragePlan(c *gin.Context) {
	var req model.CoveragePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	plan, err := h.coveragePlans.Create(c.Request.Context(), &req, actorName(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// Issue creates a warranty against an inspection report.
func (h *WarrantyHandler) Issue(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req model.IssueWarrantyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	warranty, err := h.warranties.Issue(c.Request.Context(), &req, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, warranty)
}

// scopedFilters limits shop owners to their own shop's warranties.
func scopedFilters(c *gin.Context, user *model.User) service.WarrantyFilters {
	filters := service.WarrantyFilters{
		ShopOwnerID:   c.Query("shopOwnerId"),
		CustomerPhone: c.Query("phone"),
	}
	if user.Role == model.RoleShopOwner {
		filters.ShopOwnerID = user.ID
	}
	return filters
}

// List returns every warranty visible to the caller, complete or not.
func (h *WarrantyHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	warranties, err := h.warranties.List(c.Request.Context(), scopedFilters(c, user))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, warranties)
}

// Invoices returns only warranties complete enough to bill.
func (h *WarrantyHandler) Invoices(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	warranties, err := h.warranties.ListBillable(c.Request.Context(), scopedFilters(c, user))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, warranties)
}

// Get returns one warranty.
func (h *WarrantyHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	warranty, err := h.warranties.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if user.Role == model.RoleShopOwner &&
		(warranty.InspectionReport == nil || warranty.InspectionReport.ShopOwnerID != user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}
	c.JSON(http.StatusOK, warranty)
}
