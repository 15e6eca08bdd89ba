package authz

import (
	"context"
)

// ロールは1ユーザ複数保持あり（user_roles テーブル）
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

func ValidRole(r string) bool {
	return r == RoleEmployee || r == RoleManager || r == RoleAdmin
}

// RoleChecker: user_roles の存在判定。identity.Store が実装する。
type RoleChecker interface {
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

// Authorizer: 認可の唯一のプリミティブ has_role をロール横断で合成する
type Authorizer struct {
	roles RoleChecker
}

func New(roles RoleChecker) *Authorizer {
	return &Authorizer{roles: roles}
}

// IsPrivileged: manager OR admin
func (a *Authorizer) IsPrivileged(ctx context.Context, userID string) (bool, error) {
	return a.HasAnyRole(ctx, userID, RoleManager, RoleAdmin)
}

// CanActOn: 本人 OR manager/admin（勤怠の参照・更新の基本形）
func (a *Authorizer) CanActOn(ctx context.Context, actorID, ownerID string) (bool, error) {
	if actorID == ownerID {
		return true, nil
	}
	return a.IsPrivileged(ctx, actorID)
}

func (a *Authorizer) HasAnyRole(ctx context.Context, userID string, roles ...string) (bool, error) {
	for _, r := range roles {
		ok, err := a.roles.HasRole(ctx, userID, r)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
