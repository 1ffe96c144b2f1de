package handler

import (
	"net/http"
	"strconv"

	"warranty-platform/internal/apperror"
	"warranty-platform/internal/middleware"
	"warranty-platform/internal/model"
	"warranty-platform/internal/service"

	"github.com/gin-gonic/gin"
)

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindUpstream:
		return http.StatusBadGateway
	case apperror.KindPaymentFailed:
		return http.StatusPaymentRequired
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with the status of its kind. Internal details are
// attached to the gin context for the request logger, not sent to clients.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	kind := apperror.KindOf(err)
	body := gin.H{"error": apperror.Message(err), "kind": kind.String()}
	if kind == apperror.KindInternal {
		body["error"] = "internal error"
	}
	c.JSON(statusFor(kind), body)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}

// currentUser returns the authenticated caller or writes 401.
func currentUser(c *gin.Context) (*model.User, bool) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return nil, false
	}
	return user, true
}

func actorName(c *gin.Context) string {
	if user, ok := middleware.GetUserFromContext(c); ok {
		return user.Username
	}
	return "anonymous"
}

// pagingFromQuery reads optional page/limit parameters. Zero Limit means
// the caller wants the whole listing.
func pagingFromQuery(c *gin.Context) service.Paging {
	var paging service.Paging
	if page := c.Query("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			paging.Page = p
		}
	}
	if limit := c.Query("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			paging.Limit = l
		}
	}
	return paging
}
