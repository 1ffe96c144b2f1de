package handler

import (
	"net/http"
	"strconv"

	"warranty-platform/internal/model"
	"warranty-platform/internal/service"

	"github.com/gin-gonic/gin"
)

// WarrantyPlanHandler serves the price-band plan catalog.
type WarrantyPlanHandler struct {
	plans service.WarrantyPlanService
}

// NewWarrantyPlanHandler creates a plan catalog handler.
func NewWarrantyPlanHandler(plans service.WarrantyPlanService) *WarrantyPlanHandler {
	return &WarrantyPlanHandler{plans: plans}
}

// List returns every plan.
func (h *WarrantyPlanHandler) List(c *gin.Context) {
	plans, err := h.plans.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// Create adds a plan.
func (h *WarrantyPlanHandler) Create(c *gin.Context) {
	var req model.WarrantyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	plan, err := h.plans.Create(c.Request.Context(), &req, actorName(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// Update replaces a plan's range and prices.
func (h *WarrantyPlanHandler) Update(c *gin.Context) {
	var req model.WarrantyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	plan, err := h.plans.Update(c.Request.Context(), c.Param("id"), &req, actorName(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Delete removes a plan.
func (h *WarrantyPlanHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.plans.Delete(c.Request.Context(), id, actorName(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Warranty plan deleted", "id": id})
}

// Lookup returns the plans whose band covers ?price=.
func (h *WarrantyPlanHandler) Lookup(c *gin.Context) {
	price, err := strconv.ParseInt(c.Query("price"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be an integer"})
		return
	}

	plans, err := h.plans.Lookup(c.Request.Context(), price)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}
