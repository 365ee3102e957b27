package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"salesdesk/internal/domain"
	"salesdesk/internal/service"
	"salesdesk/internal/transport/http/ez"
	resp "salesdesk/internal/transport/http/response"
)

// AccountHandler 账号管理：JSON 接口（/accounts）与表单动作（/users）共用同一个 service
type AccountHandler struct{ svc *service.AccountService }

func NewAccountHandler(svc *service.AccountService) *AccountHandler { return &AccountHandler{svc: svc} }

func (h *AccountHandler) Priority() int { return 10 }

func missingID() error { return domain.E(domain.KindInvalidInput, "Missing ID", nil) }

type accountListQuery struct {
	Q      string `form:"q"`
	Offset int    `form:"offset"`
	Limit  int    `form:"limit"`
}

type accountCreateBody struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Name     string `json:"name" form:"name"`
	Role     string `json:"role" form:"role"`
	Phone    string `json:"phone" form:"phone"`
}

func (b accountCreateBody) input() service.CreateAccountInput {
	return service.CreateAccountInput{
		Email: b.Email, Password: b.Password, FullName: b.Name, Role: b.Role, Phone: b.Phone,
	}
}

type accountPatchBody struct {
	ID       string  `json:"id"`
	Active   *bool   `json:"active"`
	Password *string `json:"password"`
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Phone    *string `json:"phone"`
}

type accountDeleteQuery struct {
	ID string `form:"id"`
}

type toggleForm struct {
	Active *bool `form:"active"`
}

type passwordForm struct {
	Password string `form:"password"`
}

func (h *AccountHandler) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g)

	// --- JSON 接口 ---
	ez.RegisterAction(e, ez.Action[accountListQuery, []domain.Profile]{
		Method: http.MethodGet,
		Path:   "/accounts",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *accountListQuery) ([]domain.Profile, error) {
			ps, total, err := h.svc.List(c.Request.Context(), domain.ListFilter{Q: in.Q, Offset: in.Offset, Limit: in.Limit})
			if err != nil {
				return nil, err
			}
			c.Header("X-Total-Count", strconv.FormatInt(total, 10))
			if ps == nil {
				ps = []domain.Profile{}
			}
			return ps, nil
		},
	})

	ez.RegisterAction(e, ez.Action[accountCreateBody, resp.Success]{
		Method: http.MethodPost,
		Path:   "/accounts",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *accountCreateBody) (resp.Success, error) {
			return resp.OK(), h.svc.Create(c.Request.Context(), in.input())
		},
	})

	ez.RegisterAction(e, ez.Action[accountPatchBody, resp.Success]{
		Method: http.MethodPatch,
		Path:   "/accounts",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *accountPatchBody) (resp.Success, error) {
			if strings.TrimSpace(in.ID) == "" {
				return resp.Success{}, missingID()
			}
			// 空密码视为不修改
			if in.Password != nil && *in.Password == "" {
				in.Password = nil
			}
			return resp.OK(), h.svc.Update(c.Request.Context(), in.ID, service.AccountPatch{
				Active:   in.Active,
				FullName: in.Name,
				Role:     in.Role,
				Phone:    in.Phone,
				Password: in.Password,
			})
		},
	})

	ez.RegisterAction(e, ez.Action[accountDeleteQuery, resp.Success]{
		Method: http.MethodDelete,
		Path:   "/accounts",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *accountDeleteQuery) (resp.Success, error) {
			if strings.TrimSpace(in.ID) == "" {
				return resp.Success{}, missingID()
			}
			return resp.OK(), h.svc.Delete(c.Request.Context(), in.ID)
		},
	})

	// --- 表单动作 ---
	ez.RegisterAction(e, ez.Action[accountCreateBody, resp.Success]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: ez.BindForm,
		Handler: func(c *gin.Context, in *accountCreateBody) (resp.Success, error) {
			if in.Email == "" || in.Password == "" || in.Name == "" || in.Phone == "" || in.Role == "" {
				return resp.Success{}, domain.E(domain.KindInvalidInput, "All fields are required.", nil)
			}
			return resp.OK(), h.svc.Create(c.Request.Context(), in.input())
		},
	})

	ez.RegisterAction(e, ez.Action[toggleForm, resp.Success]{
		Method: http.MethodPost,
		Path:   "/users/:id/toggle",
		Binder: ez.BindForm,
		Handler: func(c *gin.Context, in *toggleForm) (resp.Success, error) {
			if in.Active == nil {
				return resp.Success{}, domain.E(domain.KindInvalidInput, "Missing active flag", nil)
			}
			return resp.OK(), h.svc.SetActive(c.Request.Context(), c.Param("id"), *in.Active)
		},
	})

	ez.RegisterAction(e, ez.Action[passwordForm, resp.Success]{
		Method: http.MethodPost,
		Path:   "/users/:id/password",
		Binder: ez.BindForm,
		Handler: func(c *gin.Context, in *passwordForm) (resp.Success, error) {
			return resp.OK(), h.svc.ResetPassword(c.Request.Context(), c.Param("id"), in.Password)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, resp.Success]{
		Method: http.MethodPost,
		Path:   "/users/:id/delete",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Success, error) {
			return resp.OK(), h.svc.Delete(c.Request.Context(), c.Param("id"))
		},
	})
}
