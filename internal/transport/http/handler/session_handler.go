package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salesdesk/internal/access"
	"salesdesk/internal/domain"
	"salesdesk/internal/transport/http/ez"
	resp "salesdesk/internal/transport/http/response"
)

type CookieOptions struct {
	Name   string
	Secure bool
}

// SessionHandler 登录/登出：令牌写入 HttpOnly cookie，同时返回给 bearer 客户端
type SessionHandler struct {
	signIn domain.PasswordSignIn
	roles  access.RoleResolver
	cookie CookieOptions
	log    *zap.Logger
}

func NewSessionHandler(signIn domain.PasswordSignIn, roles access.RoleResolver, cookie CookieOptions, l *zap.Logger) *SessionHandler {
	return &SessionHandler{signIn: signIn, roles: roles, cookie: cookie, log: l.Named("session")}
}

type loginBody struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginOut struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	Role        string `json:"role"`
}

func (h *SessionHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}

func (h *SessionHandler) MountPublic(g *gin.RouterGroup) {
	e := ez.New(g)

	ez.RegisterAction(e, ez.Action[loginBody, loginOut]{
		Method: http.MethodPost,
		Path:   "/auth/session",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginBody) (loginOut, error) {
			ctx := c.Request.Context()
			sess, err := h.signIn.SignInWithPassword(ctx, strings.ToLower(strings.TrimSpace(in.Email)), in.Password)
			if err != nil {
				return loginOut{}, err
			}
			info, found, err := h.roles.ResolveRole(ctx, sess.User.ID)
			if err != nil {
				h.log.Error("resolve role failed", zap.String("uid", sess.User.ID), zap.Error(err))
				return loginOut{}, domain.E(domain.KindStoreWrite, "failed to resolve caller role", err)
			}
			if !found || !info.Active {
				return loginOut{}, domain.E(domain.KindForbidden, "Your account has been deactivated.", nil)
			}
			h.setCookie(c, sess.AccessToken, sess.ExpiresIn)
			h.log.Info("signed in", zap.String("uid", sess.User.ID), zap.String("role", info.Role))
			return loginOut{Success: true, AccessToken: sess.AccessToken, ExpiresIn: sess.ExpiresIn, Role: info.Role}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, resp.Success]{
		Method: http.MethodDelete,
		Path:   "/auth/session",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Success, error) {
			h.setCookie(c, "", -1)
			return resp.OK(), nil
		},
	})
}
