// Package router assembles the HTTP API.
package router

import (
	"net/http"

	"warranty-platform/internal/auth"
	"warranty-platform/internal/handler"
	"warranty-platform/internal/middleware"
	"warranty-platform/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services is everything the API needs.
type Services struct {
	Tokens          *auth.Service
	Authentication  *service.AuthenticationService
	Authorization   *service.AuthorizationService
	Users           service.UserService
	Plans           service.WarrantyPlanService
	CoveragePlans   service.CoveragePlanService
	Warranties      service.WarrantyService
	Inspections     service.InspectionService
	DirectWarranty  service.DirectWarrantyService
	Fines           service.FineService
	LandingPayments service.LandingPaymentService
	Partners        service.PartnerService
	Audit           service.AuditLog
	AccessRules     *service.AccessRuleService
	RateLimiter     *middleware.RateLimiter
	Logger          *zap.Logger
}

// New builds the gin engine with every route registered.
func New(s Services) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(s.Logger), middleware.RequestLogger(s.Logger), middleware.CORS())

	authHandler := handler.NewAuthHandler(s.Authentication, s.Users)
	planHandler := handler.NewWarrantyPlanHandler(s.Plans)
	warrantyHandler := handler.NewWarrantyHandler(s.CoveragePlans, s.Warranties)
	inspectionHandler := handler.NewInspectionHandler(s.Inspections, s.Fines)
	paymentHandler := handler.NewPaymentHandler(s.Fines, s.LandingPayments)
	directHandler := handler.NewDirectWarrantyHandler(s.DirectWarranty)
	partnerHandler := handler.NewPartnerHandler(s.Partners)
	auditHandler := handler.NewAuditHandler(s.Audit, s.Logger)
	ruleHandler := handler.NewAccessRuleHandler(s.AccessRules)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authenticated := middleware.AuthMiddleware(s.Tokens)
	can := func(resource, action string) gin.HandlerFunc {
		return middleware.RequirePermission(s.Authorization, resource, action)
	}

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/me", authenticated, authHandler.Me)
		authGroup.GET("/users", authenticated, can(service.ResourceUsers, service.ActionRead), authHandler.ListUsers)
		authGroup.POST("/users", authenticated, can(service.ResourceUsers, service.ActionWrite), authHandler.CreateUser)
	}

	plans := api.Group("/direct-warranty")
	{
		plans.GET("", planHandler.List)
		plans.GET("/lookup", planHandler.Lookup)
		plans.POST("", authenticated, can(service.ResourcePlans, service.ActionWrite), planHandler.Create)
		plans.PUT("/:id", authenticated, can(service.ResourcePlans, service.ActionWrite), planHandler.Update)
		plans.DELETE("/:id", authenticated, can(service.ResourcePlans, service.ActionDelete), planHandler.Delete)
	}

	landing := api.Group("/landing-payment")
	{
		landing.POST("/create-order", paymentHandler.CreateLandingOrder)
		landing.GET("/verify/:orderId", paymentHandler.VerifyLandingOrder)
		landing.POST("/add/direct-warranty", directHandler.Add)
		landing.GET("/get/direct-warranties/by-phone", s.RateLimiter.Middleware(), directHandler.ByPhone)
		landing.GET("/get/direct-warranties", authenticated,
			can(service.ResourceDirectWarranties, service.ActionRead), directHandler.List)
	}

	coverage := api.Group("/coverage-plans", authenticated)
	{
		coverage.GET("", can(service.ResourceCoveragePlans, service.ActionRead), warrantyHandler.ListCoveragePlans)
		coverage.POST("", can(service.ResourceCoveragePlans, service.ActionWrite), warrantyHandler.CreateCoveragePlan)
	}

	warranties := api.Group("/warranties", authenticated)
	{
		warranties.GET("", can(service.ResourceWarranties, service.ActionRead), warrantyHandler.List)
		warranties.GET("/invoices", can(service.ResourceWarranties, service.ActionRead), warrantyHandler.Invoices)
		warranties.GET("/:id", can(service.ResourceWarranties, service.ActionRead), warrantyHandler.Get)
		warranties.POST("", can(service.ResourceWarranties, service.ActionWrite), warrantyHandler.Issue)
	}

	inspection := api.Group("/inspection", authenticated)
	{
		inspection.GET("", can(service.ResourceInspections, service.ActionRead), inspectionHandler.List)
		inspection.POST("", can(service.ResourceInspections, service.ActionWrite), inspectionHandler.Create)
		inspection.GET("/fines", can(service.ResourceFines, service.ActionRead), inspectionHandler.ListFines)
		inspection.POST("/fine", can(service.ResourceFines, service.ActionWrite), inspectionHandler.IssueFine)
		inspection.PATCH("/payFine/:fineId", can(service.ResourceFines, service.ActionPay), inspectionHandler.PayFine)
		inspection.GET("/:id", can(service.ResourceInspections, service.ActionRead), inspectionHandler.Get)
	}

	api.POST("/payment/create-fine-order", authenticated,
		can(service.ResourcePayments, service.ActionWrite), paymentHandler.CreateFineOrder)

	partners := api.Group("/partners", authenticated)
	{
		partners.GET("", can(service.ResourcePartners, service.ActionRead), partnerHandler.List)
		partners.GET("/:id", can(service.ResourcePartners, service.ActionRead), partnerHandler.Get)
		partners.POST("", can(service.ResourcePartners, service.ActionWrite), partnerHandler.Create)
		partners.PUT("/:id", can(service.ResourcePartners, service.ActionWrite), partnerHandler.Update)
		partners.DELETE("/:id", can(service.ResourcePartners, service.ActionDelete), partnerHandler.Delete)
	}

	api.GET("/audit-log", authenticated, can(service.ResourceAudit, service.ActionRead), auditHandler.List)

	rules := api.Group("/access-rules", authenticated)
	{
		rules.GET("", can(service.ResourceAccessRules, service.ActionRead), ruleHandler.List)
		rules.POST("", can(service.ResourceAccessRules, service.ActionWrite), ruleHandler.Create)
		rules.DELETE("/:id", can(service.ResourceAccessRules, service.ActionDelete), ruleHandler.Delete)
	}

	return r
}
