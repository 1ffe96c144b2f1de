package service

import (
	"context"
	"errors"
	"strings"

	"warranty-platform/internal/apperror"
	"warranty-platform/internal/model"

	"go.uber.org/zap"
)

var (
	knownRoles = map[string]bool{
		model.RoleAdmin:        true,
		model.RoleShopOwner:    true,
		model.RolePhoneChecker: true,
	}
	knownResources = map[string]bool{
		"*":                      true,
		ResourcePlans:            true,
		ResourceCoveragePlans:    true,
		ResourceWarranties:       true,
		ResourceDirectWarranties: true,
		ResourceInspections:      true,
		ResourceFines:            true,
		ResourcePayments:         true,
		ResourcePartners:         true,
		ResourceAudit:            true,
		ResourceUsers:            true,
		ResourceAccessRules:      true,
	}
	knownActions = map[string]bool{
		"*":          true,
		ActionRead:   true,
		ActionWrite:  true,
		ActionDelete: true,
		ActionPay:    true,
	}
)

// AccessRuleService manages the stored role policy at runtime. Every change
// is written to the store, loaded into the enforcer and audited.
type AccessRuleService struct {
	store  AccessRuleStore
	authz  *AuthorizationService
	audit  AuditLog
	logger *zap.Logger
}

// NewAccessRuleService creates the access rule service.
func NewAccessRuleService(store AccessRuleStore, authz *AuthorizationService, audit AuditLog, logger *zap.Logger) *AccessRuleService {
	return &AccessRuleService{store: store, authz: authz, audit: audit, logger: logger}
}

func (s *AccessRuleService) List(ctx context.Context) ([]model.AccessRule, error) {
	rules, err := s.store.LoadRules(ctx)
	if err != nil {
		return nil, apperror.Internal("list access rules", err)
	}
	return rules, nil
}

// Add stores the rule, or returns the existing identical one.
func (s *AccessRuleService) Add(ctx context.Context, req *model.AccessRuleRequest, actor string) (*model.AccessRule, error) {
	const op = "add access rule"

	rule := model.AccessRule{
		Role:      strings.TrimSpace(req.Role),
		Resource:  strings.TrimSpace(req.Resource),
		Action:    strings.TrimSpace(req.Action),
		CreatedBy: actor,
	}
	switch {
	case !knownRoles[rule.Role]:
		return nil, apperror.Validation(op, "unknown role: "+rule.Role)
	case !knownResources[rule.Resource]:
		return nil, apperror.Validation(op, "unknown resource: "+rule.Resource)
	case !knownActions[rule.Action]:
		return nil, apperror.Validation(op, "unknown action: "+rule.Action)
	}

	if err := s.store.SaveRule(ctx, rule); err != nil {
		return nil, apperror.Internal(op, err)
	}
	if err := s.authz.Reload(ctx); err != nil {
		return nil, apperror.Internal(op, err)
	}

	stored, err := s.find(ctx, func(r model.AccessRule) bool {
		return r.Role == rule.Role && r.Resource == rule.Resource && r.Action == rule.Action
	})
	if err != nil {
		return nil, apperror.Internal(op, err)
	}
	if stored == nil {
		return nil, apperror.Internal(op, errors.New("saved access rule not found"))
	}

	s.logger.Info("access rule added",
		zap.String("role", stored.Role),
		zap.String("resource", stored.Resource),
		zap.String("action", stored.Action),
		zap.String("actor", actor))
	recordAudit(ctx, s.audit, s.logger, model.AuditEntry{
		Type:      "access_rule_add",
		After:     stored,
		ChangedBy: actor,
	})
	return stored, nil
}

// Delete removes a rule. The admin wildcard rule is permanent so the policy
// can always be repaired.
func (s *AccessRuleService) Delete(ctx context.Context, id, actor string) error {
	const op = "delete access rule"

	existing, err := s.find(ctx, func(r model.AccessRule) bool { return r.ID == id })
	if err != nil {
		return apperror.Internal(op, err)
	}
	if existing == nil {
		return apperror.NotFound(op, "access rule", id)
	}
	if existing.Role == model.RoleAdmin && existing.Resource == "*" && existing.Action == "*" {
		return apperror.Validation(op, "the admin wildcard rule cannot be removed")
	}

	if err := s.store.DeleteRule(ctx, id); err != nil {
		if errors.Is(err, ErrAccessRuleNotFound) {
			return apperror.NotFound(op, "access rule", id)
		}
		return apperror.Internal(op, err)
	}
	if err := s.authz.Reload(ctx); err != nil {
		return apperror.Internal(op, err)
	}

	s.logger.Info("access rule deleted", zap.String("rule_id", id), zap.String("actor", actor))
	recordAudit(ctx, s.audit, s.logger, model.AuditEntry{
		Type:      "access_rule_delete",
		Before:    existing,
		ChangedBy: actor,
	})
	return nil
}

func (s *AccessRuleService) find(ctx context.Context, match func(model.AccessRule) bool) (*model.AccessRule, error) {
	rules, err := s.store.LoadRules(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rules {
		if match(rules[i]) {
			return &rules[i], nil
		}
	}
	return nil, nil
}
