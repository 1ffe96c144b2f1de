package handler

import (
	"net/http"

	"warranty-platform/internal/model"
	"warranty-platform/internal/service"

	"github.com/gin-gonic/gin"
)

// PaymentHandler opens and verifies gateway checkout sessions.
type PaymentHandler struct {
	fines   service.FineService
	landing service.LandingPaymentService
}

// NewPaymentHandler creates a payment handler.
func NewPaymentHandler(fines service.FineService, landing service.LandingPaymentService) *PaymentHandler {
	return &PaymentHandler{fines: fines, landing: landing}
}

// CreateFineOrder opens a checkout session for a fine.
func (h *PaymentHandler) CreateFineOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req model.CreateFineOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session, err := h.fines.CreateFineOrder(c.Request.Context(), req.FineID, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// CreateLandingOrder opens a checkout session for a landing-page purchase.
func (h *PaymentHandler) CreateLandingOrder(c *gin.Context) {
	var req model.LandingOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session, err := h.landing.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// VerifyLandingOrder reports the gateway's view of a landing-page order.
func (h *PaymentHandler) VerifyLandingOrder(c *gin.Context) {
	order, err := h.landing.VerifyOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
