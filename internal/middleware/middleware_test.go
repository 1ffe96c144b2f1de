package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"warranty-platform/internal/auth"
	"warranty-platform/internal/model"
	"warranty-platform/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticRules []model.AccessRule

func (r staticRules) LoadRules(context.Context) ([]model.AccessRule, error) { return r, nil }
func (r staticRules) SaveRule(context.Context, model.AccessRule) error     { return nil }
func (r staticRules) DeleteRule(context.Context, string) error             { return nil }

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewService("test-secret", time.Hour)
	token, err := tokens.GenerateToken(&model.User{ID: "u1", Username: "asha", Role: model.RoleShopOwner})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens), func(c *gin.Context) {
		user, ok := GetUserFromContext(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": user.ID, "role": user.Role})
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"raw token", token, http.StatusOK},
		{"bearer token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"garbage token", "not-a-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"id":"u1"`)
			}
		})
	}
}

func TestRequirePermission(t *testing.T) {
	authz, err := service.NewAuthorizationService(context.Background(), staticRules{
		{Role: model.RolePhoneChecker, Resource: service.ResourceFines, Action: service.ActionPay},
	}, zap.NewNop())
	require.NoError(t, err)

	newRouter := func(user *model.User) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			if user != nil {
				c.Set(userContextKey, user)
			}
		})
		r.PATCH("/fines", RequirePermission(authz, service.ResourceFines, service.ActionPay), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
		return r
	}

	cases := []struct {
		name string
		user *model.User
		want int
	}{
		{"allowed", &model.User{Role: model.RolePhoneChecker}, http.StatusNoContent},
		{"denied", &model.User{Role: model.RoleShopOwner}, http.StatusForbidden},
		{"anonymous", nil, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newRouter(tc.user).ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/fines", nil))
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	r := gin.New()
	r.GET("/lookup", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/lookup", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1234"), "other clients keep their own bucket")
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.limiterFor("10.0.0.1")
	now = now.Add(visitorIdleTimeout + time.Second)
	rl.limiterFor("10.0.0.2")
	rl.sweep()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.visitors, "10.0.0.1")
	assert.Contains(t, rl.visitors, "10.0.0.2")
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.POST("/api/partners", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/partners", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
