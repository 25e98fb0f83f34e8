package authz

import (
	"fmt"

	"github.com/bazaar-next/internal/constants"
	"github.com/bazaar-next/internal/logger"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// orderParticipantRole 买家与卖家共享的订单查询权限
const orderParticipantRole = "order_participant"

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: orderParticipantRole,
			Policies: []Policy{
				{Object: "/orders", Action: "GET"},
				{Object: "/orders/history", Action: "GET"},
				{Object: "/orders/:id", Action: "GET"},
			},
		},
		{
			Role:     constants.RoleBuyer,
			Inherits: []string{orderParticipantRole},
			Policies: []Policy{
				{Object: "/cart", Action: "GET"},
				{Object: "/cart", Action: "DELETE"},
				{Object: "/cart/items", Action: "POST"},
				{Object: "/cart/items/:id", Action: "PATCH"},
				{Object: "/cart/items/:id", Action: "DELETE"},
				{Object: "/checkout", Action: "POST"},
				{Object: "/orders/:id/done", Action: "PATCH"},
				{Object: "/orders/:id/cancel", Action: "PATCH"},
			},
		},
		{
			Role:     constants.RoleSeller,
			Inherits: []string{orderParticipantRole},
			Policies: []Policy{
				{Object: "/seller/listings", Action: "*"},
				{Object: "/seller/listings/:id", Action: "*"},
				{Object: "/seller/products", Action: "POST"},
				{Object: "/seller/products/:id", Action: "DELETE"},
				{Object: "/seller/orders/:id/:action", Action: "PATCH"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略（幂等）
// 预置角色上不在矩阵内的直连策略会被撤销，保证路由升级后旧授权失效
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}
		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}
		wanted := make(map[string]struct{}, len(seed.Policies))
		for _, policy := range seed.Policies {
			if err := s.GrantRolePolicy(role, policy.Object, policy.Action); err != nil {
				return err
			}
			wanted[policyKey(policy.Object, policy.Action)] = struct{}{}
		}
		if err := s.revokeStalePolicies(role, wanted); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) revokeStalePolicies(role string, wanted map[string]struct{}) error {
	current, err := s.GetRolePolicies(role)
	if err != nil {
		return err
	}
	for _, policy := range current {
		if _, ok := wanted[policyKey(policy.Object, policy.Action)]; ok {
			continue
		}
		if err := s.RevokeRolePolicy(role, policy.Object, policy.Action); err != nil {
			return err
		}
		logger.Infow("authz_stale_policy_revoked",
			"role", role,
			"object", policy.Object,
			"action", policy.Action,
		)
	}
	return nil
}

func policyKey(object, action string) string {
	return NormalizeObject(object) + " " + NormalizeAction(action)
}
