package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"salesdesk/internal/domain"
)

const listPageSize = 200

// GoTrue 托管身份服务的 REST 客户端。管理接口使用 service key，令牌校验使用 anon key。
// 不做重试：每次调用只发一次。
type GoTrue struct {
	http    *resty.Client
	anonKey string
	log     *zap.Logger
}

type GoTrueOptions struct {
	BaseURL    string
	AnonKey    string
	ServiceKey string
	Timeout    time.Duration
}

func NewGoTrue(o GoTrueOptions, l *zap.Logger) *GoTrue {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(o.BaseURL, "/")+"/auth/v1").
		SetTimeout(o.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("apikey", o.ServiceKey).
		SetAuthToken(o.ServiceKey)
	return &GoTrue{http: c, anonKey: o.AnonKey, log: l}
}

type apiError struct {
	Code             int    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *apiError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

type userList struct {
	Users []domain.AuthUser `json:"users"`
}

type tokenResponse struct {
	AccessToken string          `json:"access_token"`
	ExpiresIn   int             `json:"expires_in"`
	User        domain.AuthUser `json:"user"`
}

// check 把 HTTP 失败映射为领域错误
func (g *GoTrue) check(op string, resp *resty.Response, err error) error {
	if err != nil {
		g.log.Error("identity provider call failed", zap.String("op", op), zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.E(domain.KindAuthProvider, "identity provider timed out", err)
		}
		return domain.E(domain.KindAuthProvider, "identity provider unavailable", err)
	}
	if !resp.IsError() {
		return nil
	}
	msg := ""
	if ae, ok := resp.Error().(*apiError); ok && ae != nil {
		msg = ae.text()
	}
	if msg == "" {
		msg = fmt.Sprintf("identity provider error (status %d)", resp.StatusCode())
	}
	g.log.Warn("identity provider rejected request",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode()),
		zap.String("msg", msg),
	)
	switch resp.StatusCode() {
	case http.StatusNotFound:
		return domain.E(domain.KindNotFound, "user not found", errors.New(msg))
	case http.StatusUnauthorized, http.StatusForbidden:
		if op == "verify_token" || op == "sign_in" {
			return domain.E(domain.KindUnauthorized, msg, nil)
		}
	}
	return domain.E(domain.KindAuthProvider, msg, nil)
}

func (g *GoTrue) FindUserByEmail(ctx context.Context, email string) (*domain.AuthUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for page := 1; ; page++ {
		var out userList
		resp, err := g.http.R().
			SetContext(ctx).
			SetQueryParam("page", fmt.Sprint(page)).
			SetQueryParam("per_page", fmt.Sprint(listPageSize)).
			SetResult(&out).
			SetError(&apiError{}).
			Get("/admin/users")
		if err := g.check("list_users", resp, err); err != nil {
			return nil, err
		}
		for i := range out.Users {
			if strings.EqualFold(out.Users[i].Email, email) {
				u := out.Users[i]
				return &u, nil
			}
		}
		if len(out.Users) < listPageSize {
			return nil, nil
		}
	}
}

func (g *GoTrue) CreateUser(ctx context.Context, in domain.CreateAuthUser) (*domain.AuthUser, error) {
	var out domain.AuthUser
	resp, err := g.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"email":         in.Email,
			"password":      in.Password,
			"email_confirm": in.EmailConfirm,
			"user_metadata": in.Metadata,
		}).
		SetResult(&out).
		SetError(&apiError{}).
		Post("/admin/users")
	if err := g.check("create_user", resp, err); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, domain.E(domain.KindAuthProvider, "Failed to create auth user.", nil)
	}
	return &out, nil
}

func (g *GoTrue) updateUser(ctx context.Context, op, id string, body map[string]any) error {
	resp, err := g.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetBody(body).
		SetError(&apiError{}).
		Put("/admin/users/{id}")
	return g.check(op, resp, err)
}

func (g *GoTrue) UpdatePassword(ctx context.Context, id, password string) error {
	return g.updateUser(ctx, "update_password", id, map[string]any{"password": password})
}

func (g *GoTrue) UpdateMetadata(ctx context.Context, id string, metadata map[string]any) error {
	return g.updateUser(ctx, "update_metadata", id, map[string]any{"user_metadata": metadata})
}

func (g *GoTrue) DeleteUser(ctx context.Context, id string) error {
	resp, err := g.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetError(&apiError{}).
		Delete("/admin/users/{id}")
	return g.check("delete_user", resp, err)
}

// VerifyToken 由身份服务校验 bearer token（等价于 GET /user）
func (g *GoTrue) VerifyToken(ctx context.Context, token string) (*domain.Identity, error) {
	var out domain.AuthUser
	resp, err := g.http.R().
		SetContext(ctx).
		SetHeader("apikey", g.anonKey).
		SetAuthToken(token).
		SetResult(&out).
		SetError(&apiError{}).
		Get("/user")
	if err := g.check("verify_token", resp, err); err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, domain.E(domain.KindUnauthorized, "Unauthorized", err)
		}
		return nil, err
	}
	if out.ID == "" {
		return nil, domain.E(domain.KindUnauthorized, "Unauthorized", nil)
	}
	return &domain.Identity{ID: out.ID, Email: out.Email}, nil
}

func (g *GoTrue) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	var out tokenResponse
	resp, err := g.http.R().
		SetContext(ctx).
		SetHeader("apikey", g.anonKey).
		SetAuthToken(g.anonKey).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		SetError(&apiError{}).
		Post("/token")
	if err := g.check("sign_in", resp, err); err != nil {
		// 密码错误时身份服务返回 400 invalid_grant
		if resp != nil && resp.StatusCode() == http.StatusBadRequest {
			return nil, domain.E(domain.KindUnauthorized, err.Error(), nil)
		}
		return nil, err
	}
	return &domain.Session{AccessToken: out.AccessToken, ExpiresIn: out.ExpiresIn, User: out.User}, nil
}
