package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"warranty-platform/internal/auth"
	"warranty-platform/internal/config"
	"warranty-platform/internal/infrastructure"
	"warranty-platform/internal/middleware"
	"warranty-platform/internal/model"
	"warranty-platform/internal/payment"
	"warranty-platform/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testAPI struct {
	engine  *gin.Engine
	gateway *payment.SandboxGateway
	users   service.UserService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := infrastructure.ConnectDatabase(config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "api.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, infrastructure.MigrateAllSchemas(db))

	ctx := context.Background()
	logger := zap.NewNop()
	store := service.NewDatabaseAccessStore(db)
	users := service.NewUserService(db)
	plans := service.NewWarrantyPlanService(db, store, logger)
	coverage := service.NewCoveragePlanService(db, store, logger)
	require.NoError(t, infrastructure.NewSeedDataManager(db, users, store, plans, coverage, logger).
		SeedAll(ctx, "admin", "admin123"))

	authz, err := service.NewAuthorizationService(ctx, store, logger)
	require.NoError(t, err)

	tokens := auth.NewService("router-test-secret", time.Hour)
	gw := payment.NewSandboxGateway()

	engine := New(Services{
		Tokens:          tokens,
		Authentication:  service.NewAuthenticationService(users, tokens),
		Authorization:   authz,
		Users:           users,
		Plans:           plans,
		CoveragePlans:   coverage,
		Warranties:      service.NewWarrantyService(db, logger),
		Inspections:     service.NewInspectionService(db, logger),
		DirectWarranty:  service.NewDirectWarrantyService(db, logger),
		Fines:           service.NewFineService(db, gw, store, logger, "INR"),
		LandingPayments: service.NewLandingPaymentService(db, gw, logger, "INR"),
		Partners:        service.NewPartnerService(db),
		Audit:           store,
		AccessRules:     service.NewAccessRuleService(store, authz, store, logger),
		RateLimiter:     middleware.NewRateLimiter(100, 100),
		Logger:          logger,
	})

	return &testAPI{engine: engine, gateway: gw, users: users}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testAPI) login(t *testing.T, username, password string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp model.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func (a *testAPI) createUser(t *testing.T, username, role string) *model.User {
	t.Helper()
	user, err := a.users.CreateUser(context.Background(), &service.CreateUserRequest{
		Username: username,
		Password: "password123",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := api.login(t, "admin", "admin123")
	w = api.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[model.User](t, w)
	assert.Equal(t, "admin", me.Username)
	assert.Empty(t, me.Password)
}

func TestWarrantyPlanRoutes(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "admin", "admin123")
	api.createUser(t, "shop", model.RoleShopOwner)
	owner := api.login(t, "shop", "password123")

	body := gin.H{
		"range":                 gin.H{"start": 200001, "end": 300000},
		"extendedWarranty1Year": 4999,
		"extendedWarranty2Year": 7999,
		"screenProtection1Year": 1999,
	}

	w := api.do(t, http.MethodPost, "/api/direct-warranty", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodPost, "/api/direct-warranty", owner, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodPost, "/api/direct-warranty", admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]interface{}](t, w)
	assert.Equal(t, "₹200001 – ₹300000", created["range"])

	reversed := gin.H{
		"range":                 gin.H{"start": 5000, "end": 100},
		"extendedWarranty1Year": 1,
		"extendedWarranty2Year": 1,
		"screenProtection1Year": 1,
	}
	w = api.do(t, http.MethodPost, "/api/direct-warranty", admin, reversed)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/direct-warranty", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, w), 6)

	w = api.do(t, http.MethodGet, "/api/direct-warranty/lookup?price=250000", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, w), 1)

	w = api.do(t, http.MethodDelete, "/api/direct-warranty/missing", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodDelete, "/api/direct-warranty/"+created["id"].(string), admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDirectWarrantyRoutes(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "admin", "admin123")

	w := api.do(t, http.MethodPost, "/api/landing-payment/create-order", "", gin.H{
		"amount":          2499,
		"customerDetails": gin.H{"customerName": "Meera", "customerPhone": "9876543210"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	session := decode[model.PaymentSessionResponse](t, w)
	assert.NotEmpty(t, session.PaymentSessionID)

	record := gin.H{
		"paymentOrderId":  session.OrderID,
		"deviceDetails":   gin.H{"deviceName": "Pixel 8", "purchaseDate": "2024-05-01", "devicePrice": 59999},
		"customerDetails": gin.H{"customerName": "Meera", "customerPhone": "9876543210"},
		"planDetails":     gin.H{"planType": "extendedWarranty1Year", "planPrice": 2499},
	}
	w = api.do(t, http.MethodPost, "/api/landing-payment/add/direct-warranty", "", record)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(t, http.MethodGet, "/api/landing-payment/get/direct-warranties/by-phone?phone=9876543210", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.DirectWarranty](t, w), 1)

	w = api.do(t, http.MethodGet, "/api/landing-payment/get/direct-warranties/by-phone?phone=9000000000", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = api.do(t, http.MethodGet, "/api/landing-payment/get/direct-warranties", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodGet, "/api/landing-payment/get/direct-warranties", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.DirectWarranty](t, w), 1)

	w = api.do(t, http.MethodGet, "/api/landing-payment/get/direct-warranties?page=1&limit=10", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[service.PagedResult[model.DirectWarranty]](t, w)
	assert.Equal(t, 1, page.TotalItems)

	require.NoError(t, api.gateway.Settle(session.OrderID, true))
	w = api.do(t, http.MethodGet, "/api/landing-payment/verify/"+session.OrderID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.PaymentOrderPaid, decode[model.PaymentOrder](t, w).Status)
}

func TestFinePaymentRoutes(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "admin", "admin123")
	checkerUser := api.createUser(t, "checker", model.RolePhoneChecker)
	checker := api.login(t, "checker", "password123")

	w := api.do(t, http.MethodPost, "/api/inspection/fine", checker, gin.H{"phoneCheckerId": checkerUser.ID, "amount": 500})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodPost, "/api/inspection/fine", admin, gin.H{
		"phoneCheckerId": checkerUser.ID,
		"inspectionId":   "insp-9",
		"amount":         500,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodPost, "/api/inspection/fine", admin, gin.H{"phoneCheckerId": "nobody", "amount": 500})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodPost, "/api/inspection", checker, gin.H{
		"shopOwnerId": "owner-1",
		"deviceModel": "iPhone 12",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	report := decode[model.InspectionReport](t, w)

	w = api.do(t, http.MethodPost, "/api/inspection/fine", admin, gin.H{
		"phoneCheckerId": checkerUser.ID,
		"inspectionId":   report.ID,
		"model":          "iPhone 12",
		"amount":         500,
		"comment":        "late report",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	fine := decode[model.Fine](t, w)
	assert.Equal(t, model.FineStatusUnpaid, fine.Status)

	w = api.do(t, http.MethodGet, "/api/inspection/fines", checker, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Fine](t, w), 1)

	w = api.do(t, http.MethodPost, "/api/payment/create-fine-order", checker, gin.H{"fineId": fine.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[model.PaymentSessionResponse](t, w)

	w = api.do(t, http.MethodPost, "/api/payment/create-fine-order", checker, gin.H{"fineId": fine.ID})
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[model.PaymentSessionResponse](t, w)

	w = api.do(t, http.MethodPatch, "/api/inspection/payFine/"+fine.ID, checker, gin.H{"status": "Failed", "orderId": first.OrderID})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	require.NoError(t, api.gateway.Settle(second.OrderID, true))
	w = api.do(t, http.MethodPatch, "/api/inspection/payFine/"+fine.ID, checker, gin.H{"status": "Paid", "orderId": second.OrderID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	paid := decode[model.Fine](t, w)
	assert.Equal(t, model.FineStatusPaid, paid.Status)

	w = api.do(t, http.MethodPatch, "/api/inspection/payFine/"+fine.ID, checker, gin.H{"status": "Paid", "orderId": first.OrderID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(t, http.MethodPatch, "/api/inspection/payFine/missing", admin, gin.H{"status": "Paid", "orderId": second.OrderID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodGet, "/api/audit-log", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	types := []string{}
	for _, e := range decode[[]model.AuditEntry](t, w) {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, "fine_issue")
	assert.Contains(t, types, "fine_paid")

	w = api.do(t, http.MethodGet, "/api/audit-log", checker, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWarrantyRoutes(t *testing.T) {
	api := newTestAPI(t)
	ownerUser := api.createUser(t, "shop", model.RoleShopOwner)
	owner := api.login(t, "shop", "password123")
	api.createUser(t, "checker", model.RolePhoneChecker)
	checker := api.login(t, "checker", "password123")

	w := api.do(t, http.MethodPost, "/api/inspection", checker, gin.H{
		"shopOwnerId": ownerUser.ID,
		"deviceModel": "Galaxy A54",
		"imei":        "490154203237518",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	report := decode[model.InspectionReport](t, w)

	w = api.do(t, http.MethodGet, "/api/inspection/"+report.ID, owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(t, http.MethodGet, "/api/inspection/"+report.ID, checker, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	api.createUser(t, "checker2", model.RolePhoneChecker)
	otherChecker := api.login(t, "checker2", "password123")
	w = api.do(t, http.MethodGet, "/api/inspection/"+report.ID, otherChecker, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	api.createUser(t, "shop2", model.RoleShopOwner)
	otherOwner := api.login(t, "shop2", "password123")
	w = api.do(t, http.MethodGet, "/api/inspection/"+report.ID, otherOwner, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodGet, "/api/coverage-plans", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	plans := decode[[]model.CoveragePlan](t, w)
	require.NotEmpty(t, plans)

	issue := func(name string) *httptest.ResponseRecorder {
		return api.do(t, http.MethodPost, "/api/warranties", owner, gin.H{
			"customer":           gin.H{"customerName": name, "customerPhone": "9123456780"},
			"inspectionReportId": report.ID,
			"warrantyPlanId":     plans[0].ID,
		})
	}
	w = issue("Kiran")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = issue("")
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.do(t, http.MethodPost, "/api/warranties", checker, gin.H{})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodGet, "/api/warranties", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Warranty](t, w), 2)

	w = api.do(t, http.MethodGet, "/api/warranties/invoices", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	invoices := decode[[]model.Warranty](t, w)
	require.Len(t, invoices, 1)
	assert.Equal(t, "Kiran", invoices[0].Customer.CustomerName)
	assert.NotNil(t, invoices[0].ExpiryDate)
}

func TestPartnerRoutes(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "admin", "admin123")

	partner := gin.H{"name": "Fixit Labs", "email": "ops@fixit.example"}
	w := api.do(t, http.MethodPost, "/api/partners", admin, partner)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Partner](t, w)

	w = api.do(t, http.MethodPost, "/api/partners", admin, partner)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(t, http.MethodPost, "/api/partners", admin, gin.H{"name": "No Mail", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/partners/"+created.ID, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodDelete, "/api/partners/"+created.ID, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/api/partners/"+created.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAccessRuleRoutes(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "admin", "admin123")
	api.createUser(t, "shop", model.RoleShopOwner)
	owner := api.login(t, "shop", "password123")

	w := api.do(t, http.MethodGet, "/api/access-rules", owner, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = api.do(t, http.MethodGet, "/api/partners", owner, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodGet, "/api/access-rules", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var wildcard model.AccessRule
	for _, rule := range decode[[]model.AccessRule](t, w) {
		if rule.Role == model.RoleAdmin && rule.Resource == "*" {
			wildcard = rule
		}
	}
	require.NotEmpty(t, wildcard.ID)

	w = api.do(t, http.MethodPost, "/api/access-rules", admin, gin.H{
		"role": model.RoleShopOwner, "resource": service.ResourcePartners, "action": service.ActionRead,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	granted := decode[model.AccessRule](t, w)
	assert.Equal(t, "admin", granted.CreatedBy)

	w = api.do(t, http.MethodGet, "/api/partners", owner, nil)
	assert.Equal(t, http.StatusOK, w.Code, "new rule applies without a restart")

	w = api.do(t, http.MethodPost, "/api/access-rules", admin, gin.H{
		"role": "guest", "resource": service.ResourcePartners, "action": service.ActionRead,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodDelete, "/api/access-rules/"+granted.ID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = api.do(t, http.MethodGet, "/api/partners", owner, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodDelete, "/api/access-rules/"+granted.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = api.do(t, http.MethodDelete, "/api/access-rules/"+wildcard.ID, admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/audit-log", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	types := []string{}
	for _, e := range decode[[]model.AuditEntry](t, w) {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, "access_rule_add")
	assert.Contains(t, types, "access_rule_delete")
}
