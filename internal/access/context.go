package access

import (
	"context"

	"salesdesk/internal/domain"
)

type callerKey struct{}

func WithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

func CallerFrom(ctx context.Context) (*Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(*Caller)
	return c, ok && c != nil
}

// RequireRole 服务层二次校验；role 为空时只要求已登录
func RequireRole(ctx context.Context, role string) (*Caller, error) {
	c, ok := CallerFrom(ctx)
	if !ok {
		return nil, domain.E(domain.KindUnauthorized, "Unauthorized", nil)
	}
	if role != "" && c.Role != role {
		return nil, domain.E(domain.KindForbidden, "Forbidden", nil)
	}
	return c, nil
}
