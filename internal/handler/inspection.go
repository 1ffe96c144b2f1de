package handler

import (
	"net/http"

	"warranty-platform/internal/model"
	"warranty-platform/internal/service"

	"github.com/gin-gonic/gin"
)

// InspectionHandler serves inspection reports and the fines raised from
// them.
type InspectionHandler struct {
	inspections service.InspectionService
	fines       service.FineService
}

// NewInspectionHandler creates an inspection handler.
func NewInspectionHandler(inspections service.InspectionService, fines service.FineService) *InspectionHandler {
	return &InspectionHandler{inspections: inspections, fines: fines}
}

// Create files a report as the calling phone checker.
func (h *InspectionHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req model.InspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	report, err := h.inspections.Create(c.Request.Context(), &req, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// List returns reports; checkers and shop owners see only their own.
func (h *InspectionHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	filters := service.InspectionFilters{
		PhoneCheckerID: c.Query("phoneCheckerId"),
		ShopOwnerID:    c.Query("shopOwnerId"),
	}
	switch user.Role {
	case model.RolePhoneChecker:
		filters.PhoneCheckerID = user.ID
	case model.RoleShopOwner:
		filters.ShopOwnerID = user.ID
	}

	reports, err := h.inspections.List(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// Get returns one report. Checkers and shop owners may only read reports
// they are party to.
func (h *InspectionHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	report, err := h.inspections.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	switch {
	case user.Role == model.RolePhoneChecker && report.PhoneCheckerID != user.ID,
		user.Role == model.RoleShopOwner && report.ShopOwnerID != user.ID:
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// IssueFine charges a phone checker.
func (h *InspectionHandler) IssueFine(c *gin.Context) {
	var req model.IssueFineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	fine, err := h.fines.Issue(c.Request.Context(), &req, actorName(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fine)
}

// ListFines returns fines; a phone checker only sees their own.
func (h *InspectionHandler) ListFines(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	filters := service.FineFilters{
		PhoneCheckerID: c.Query("phoneCheckerId"),
		Status:         model.FineStatus(c.Query("status")),
	}
	if user.Role == model.RolePhoneChecker {
		filters.PhoneCheckerID = user.ID
	}

	fines, err := h.fines.List(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fines)
}

// PayFine records the client-reported checkout outcome for a fine.
func (h *InspectionHandler) PayFine(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req model.PayFineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	fineID := c.Param("fineId")
	if user.Role == model.RolePhoneChecker {
		fine, err := h.fines.Get(c.Request.Context(), fineID)
		if err != nil {
			respondError(c, err)
			return
		}
		if fine.PhoneCheckerID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
	}

	fine, err := h.fines.MarkFinePaid(c.Request.Context(), fineID, req.OrderID, req.Status, user.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fine)
}
