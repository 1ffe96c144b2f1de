package handler

import (
	"net/http"

	"warranty-platform/internal/model"
	"warranty-platform/internal/service"

	"github.com/gin-gonic/gin"
)

// DirectWarrantyHandler serves landing-page warranty purchases.
type DirectWarrantyHandler struct {
	records service.DirectWarrantyService
}

// NewDirectWarrantyHandler creates a direct warranty handler.
func NewDirectWarrantyHandler(records service.DirectWarrantyService) *DirectWarrantyHandler {
	return &DirectWarrantyHandler{records: records}
}

// Add stores a purchase snapshot.
func (h *DirectWarrantyHandler) Add(c *gin.Context) {
	var req model.DirectWarrantyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	record, err := h.records.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// List returns every purchase, or one page when ?limit= is given.
func (h *DirectWarrantyHandler) List(c *gin.Context) {
	paging := pagingFromQuery(c)
	if !paging.Enabled() {
		records, err := h.records.ListAll(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, records)
		return
	}

	page, err := h.records.ListPage(c.Request.Context(), paging)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ByPhone returns purchases for ?phone=; no match is an empty array.
func (h *DirectWarrantyHandler) ByPhone(c *gin.Context) {
	records, err := h.records.SearchByPhone(c.Request.Context(), c.Query("phone"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
