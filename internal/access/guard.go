// Package access resolves who is calling and whether they may act.
package access

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"salesdesk/internal/domain"
)

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*domain.Identity, error)
}

// RoleResolver 提权只读能力：按 id 读取角色与启用状态
type RoleResolver interface {
	ResolveRole(ctx context.Context, id string) (domain.RoleInfo, bool, error)
}

type Caller struct {
	ID     string
	Email  string
	Role   string
	Active bool
}

type Guard struct {
	cookieName string
	session    TokenVerifier // 会话 cookie（本地校验）
	bearer     TokenVerifier // Authorization 头（身份服务校验）
	roles      RoleResolver
	log        *zap.Logger
}

func NewGuard(cookieName string, session, bearer TokenVerifier, roles RoleResolver, l *zap.Logger) *Guard {
	return &Guard{cookieName: cookieName, session: session, bearer: bearer, roles: roles, log: l}
}

func (g *Guard) CookieName() string { return g.cookieName }

// Identify 先看会话 cookie，再看 bearer token
func (g *Guard) Identify(r *http.Request) (*domain.Identity, error) {
	ctx := r.Context()
	if ck, err := r.Cookie(g.cookieName); err == nil && ck.Value != "" {
		id, err := g.session.VerifyToken(ctx, ck.Value)
		if err == nil {
			return id, nil
		}
		g.log.Debug("session cookie rejected", zap.Error(err))
	}
	ah := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(ah, "Bearer "); ok && strings.TrimSpace(token) != "" {
		id, err := g.bearer.VerifyToken(ctx, strings.TrimSpace(token))
		if err == nil {
			return id, nil
		}
		if domain.IsKind(err, domain.KindAuthProvider) {
			// 身份服务不可达时同样无法确认调用方
			g.log.Warn("bearer verification unavailable", zap.Error(err))
			return nil, domain.E(domain.KindUnauthorized, "Unauthorized", err)
		}
		g.log.Debug("bearer token rejected", zap.Error(err))
	}
	return nil, domain.E(domain.KindUnauthorized, "Unauthorized", nil)
}

// Authorize 查角色；requireRole 为空时只要求账号存在且启用
func (g *Guard) Authorize(ctx context.Context, id *domain.Identity, requireRole string) (*Caller, error) {
	info, found, err := g.roles.ResolveRole(ctx, id.ID)
	if err != nil {
		g.log.Error("resolve role failed", zap.String("uid", id.ID), zap.Error(err))
		return nil, domain.E(domain.KindStoreWrite, "failed to resolve caller role", err)
	}
	if !found || !info.Active {
		return nil, domain.E(domain.KindForbidden, "Forbidden", nil)
	}
	if requireRole != "" && info.Role != requireRole {
		return nil, domain.E(domain.KindForbidden, "Forbidden", nil)
	}
	return &Caller{ID: id.ID, Email: id.Email, Role: info.Role, Active: info.Active}, nil
}

// Check = Identify + Authorize
func (g *Guard) Check(r *http.Request, requireRole string) (*Caller, error) {
	id, err := g.Identify(r)
	if err != nil {
		return nil, err
	}
	return g.Authorize(r.Context(), id, requireRole)
}
