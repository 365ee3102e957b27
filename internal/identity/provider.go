package identity

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"salesdesk/internal/core/auth"
	"salesdesk/internal/core/config"
	"salesdesk/internal/domain"
)

// Provider 身份服务：管理能力 + 登录 + 令牌校验
type Provider interface {
	domain.AuthStore
	domain.PasswordSignIn
	VerifyToken(ctx context.Context, token string) (*domain.Identity, error)
}

var (
	_ Provider = (*GoTrue)(nil)
	_ Provider = (*Memory)(nil)
)

// FromConfig 按 identity.driver 选择实现
func FromConfig(c config.Identity, j *auth.JWTer, l *zap.Logger) (Provider, error) {
	switch c.Driver {
	case "memory":
		l.Warn("using in-memory identity provider; accounts are lost on restart")
		return NewMemory(j), nil
	case "gotrue", "":
		if c.URL == "" || c.ServiceKey == "" {
			return nil, fmt.Errorf("identity: url and serviceKey are required for driver %q", "gotrue")
		}
		return NewGoTrue(GoTrueOptions{
			BaseURL:    c.URL,
			AnonKey:    c.AnonKey,
			ServiceKey: c.ServiceKey,
			Timeout:    time.Duration(c.TimeoutSec) * time.Second,
		}, l.Named("gotrue")), nil
	default:
		return nil, fmt.Errorf("identity: unsupported driver %q", c.Driver)
	}
}

// LocalVerifier 用共享密钥本地校验身份服务签发的 access token
type LocalVerifier struct{ JWT *auth.JWTer }

func (v LocalVerifier) VerifyToken(_ context.Context, token string) (*domain.Identity, error) {
	c, err := v.JWT.Parse(token)
	if err != nil {
		return nil, domain.E(domain.KindUnauthorized, "Unauthorized", err)
	}
	if c.UID() == "" {
		return nil, domain.E(domain.KindUnauthorized, "Unauthorized", nil)
	}
	return &domain.Identity{ID: c.UID(), Email: c.Email}, nil
}
