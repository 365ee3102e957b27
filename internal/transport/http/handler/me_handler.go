package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salesdesk/internal/access"
	"salesdesk/internal/domain"
	"salesdesk/internal/transport/http/ez"
)

// MeHandler 前端身份变化时主动重新拉取当前账号
type MeHandler struct{ profiles domain.ProfileStore }

func NewMeHandler(profiles domain.ProfileStore) *MeHandler { return &MeHandler{profiles: profiles} }

func (h *MeHandler) Priority() int { return 1 }

func (h *MeHandler) MountAPI(g *gin.RouterGroup) {
	ez.RegisterAction(ez.New(g), ez.Action[struct{}, *domain.Profile]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Profile, error) {
			caller, err := access.RequireRole(c.Request.Context(), "")
			if err != nil {
				return nil, err
			}
			p, err := h.profiles.FindByID(c.Request.Context(), caller.ID)
			if err != nil {
				return nil, domain.E(domain.KindStoreWrite, err.Error(), err)
			}
			if p == nil {
				return nil, domain.E(domain.KindNotFound, "user not found", nil)
			}
			return p, nil
		},
	})
}
