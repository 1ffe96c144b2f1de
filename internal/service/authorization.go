package service

import (
	"context"
	"fmt"
	"sync"

	"warranty-platform/internal/model"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	"go.uber.org/zap"
)

// Resources guarded by the access policy.
const (
	ResourcePlans            = "plans"
	ResourceCoveragePlans    = "coverage_plans"
	ResourceWarranties       = "warranties"
	ResourceDirectWarranties = "direct_warranties"
	ResourceInspections      = "inspections"
	ResourceFines            = "fines"
	ResourcePayments         = "payments"
	ResourcePartners         = "partners"
	ResourceAudit            = "audit"
	ResourceUsers            = "users"
	ResourceAccessRules      = "access_rules"
)

// Actions checked against resources.
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
	ActionPay    = "pay"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// DefaultAccessRules is the policy seeded into an empty database.
func DefaultAccessRules() []model.AccessRule {
	rule := func(role, resource, action string) model.AccessRule {
		return model.AccessRule{Role: role, Resource: resource, Action: action, CreatedBy: "system"}
	}
	return []model.AccessRule{
		rule(model.RoleAdmin, "*", "*"),

		rule(model.RoleShopOwner, ResourcePlans, ActionRead),
		rule(model.RoleShopOwner, ResourceCoveragePlans, ActionRead),
		rule(model.RoleShopOwner, ResourceWarranties, ActionRead),
		rule(model.RoleShopOwner, ResourceWarranties, ActionWrite),
		rule(model.RoleShopOwner, ResourceInspections, ActionRead),

		rule(model.RolePhoneChecker, ResourceCoveragePlans, ActionRead),
		rule(model.RolePhoneChecker, ResourceInspections, ActionRead),
		rule(model.RolePhoneChecker, ResourceInspections, ActionWrite),
		rule(model.RolePhoneChecker, ResourceFines, ActionRead),
		rule(model.RolePhoneChecker, ResourceFines, ActionPay),
		rule(model.RolePhoneChecker, ResourcePayments, ActionWrite),
	}
}

// AuthorizationService decides role permissions with a casbin enforcer.
type AuthorizationService struct {
	enforcer *casbin.SyncedEnforcer
	store    AccessRuleStore
	logger   *zap.Logger

	mu     sync.Mutex
	loaded map[policyKey]struct{}
}

type policyKey struct {
	role, resource, action string
}

// NewAuthorizationService builds the enforcer and loads rules from store.
func NewAuthorizationService(ctx context.Context, store AccessRuleStore, logger *zap.Logger) (*AuthorizationService, error) {
	m, err := casbinmodel.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse access model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize enforcer: %w", err)
	}

	s := &AuthorizationService{
		enforcer: enforcer,
		store:    store,
		logger:   logger,
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload brings the in-memory policy in line with the stored rules. Rules
// present both before and after stay in force throughout.
func (s *AuthorizationService) Reload(ctx context.Context) error {
	rules, err := s.store.LoadRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to load access rules: %w", err)
	}

	next := make(map[policyKey]struct{}, len(rules))
	for _, rule := range rules {
		next[policyKey{rule.Role, rule.Resource, rule.Action}] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range next {
		if _, ok := s.loaded[key]; ok {
			continue
		}
		if _, err := s.enforcer.AddPolicy(key.role, key.resource, key.action); err != nil {
			return fmt.Errorf("failed to add access rule %s/%s/%s: %w", key.role, key.resource, key.action, err)
		}
	}
	for key := range s.loaded {
		if _, ok := next[key]; ok {
			continue
		}
		if _, err := s.enforcer.RemovePolicy(key.role, key.resource, key.action); err != nil {
			return fmt.Errorf("failed to remove access rule %s/%s/%s: %w", key.role, key.resource, key.action, err)
		}
	}
	s.loaded = next

	s.logger.Info("access policy loaded", zap.Int("rules", len(rules)))
	return nil
}

// CheckPermission reports whether the user's role may perform action on
// resource.
func (s *AuthorizationService) CheckPermission(user *model.User, resource, action string) (bool, error) {
	allowed, err := s.enforcer.Enforce(user.Role, resource, action)
	if err != nil {
		return false, fmt.Errorf("permission check failed: %w", err)
	}

	s.logger.Debug("permission checked",
		zap.String("user", user.Username),
		zap.String("role", user.Role),
		zap.String("resource", resource),
		zap.String("action", action),
		zap.Bool("allowed", allowed))

	return allowed, nil
}
