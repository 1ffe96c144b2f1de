package handler

import (
	"net/http"

	"warranty-platform/internal/model"
	"warranty-platform/internal/service"

	"github.com/gin-gonic/gin"
)

// PartnerHandler serves the partner directory.
type PartnerHandler struct {
	partners service.PartnerService
}

// NewPartnerHandler creates a partner handler.
func NewPartnerHandler(partners service.PartnerService) *PartnerHandler {
	return &PartnerHandler{partners: partners}
}

func (h *PartnerHandler) List(c *gin.Context) {
	partners, err := h.partners.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, partners)
}

func (h *PartnerHandler) Get(c *gin.Context) {
	partner, err := h.partners.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, partner)
}

func (h *PartnerHandler) Create(c *gin.Context) {
	var req model.PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	partner, err := h.partners.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, partner)
}

func (h *PartnerHandler) Update(c *gin.Context) {
	var req model.PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	partner, err := h.partners.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, partner)
}

func (h *PartnerHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.partners.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Partner deleted", "id": id})
}
