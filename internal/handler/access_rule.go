package handler

import (
	"net/http"

	"warranty-platform/internal/model"
	"warranty-platform/internal/service"

	"github.com/gin-gonic/gin"
)

// AccessRuleHandler manages the role policy at runtime.
type AccessRuleHandler struct {
	rules *service.AccessRuleService
}

// NewAccessRuleHandler creates an access rule handler.
func NewAccessRuleHandler(rules *service.AccessRuleService) *AccessRuleHandler {
	return &AccessRuleHandler{rules: rules}
}

func (h *AccessRuleHandler) List(c *gin.Context) {
	rules, err := h.rules.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

func (h *AccessRuleHandler) Create(c *gin.Context) {
	var req model.AccessRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	rule, err := h.rules.Add(c.Request.Context(), &req, actorName(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

func (h *AccessRuleHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.rules.Delete(c.Request.Context(), id, actorName(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Access rule deleted", "id": id})
}
