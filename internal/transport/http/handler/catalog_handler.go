package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salesdesk/internal/domain"
	"salesdesk/internal/service"
	"salesdesk/internal/transport/http/ez"
)

type CatalogHandler struct{ svc *service.CatalogService }

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler { return &CatalogHandler{svc: svc} }

func (h *CatalogHandler) MountAPI(g *gin.RouterGroup) {
	ez.RegisterAction(ez.New(g), ez.Action[productQuery, []domain.Product]{
		Method: http.MethodGet,
		Path:   "/catalog",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *productQuery) ([]domain.Product, error) {
			ps, err := h.svc.List(c.Request.Context(), in.Q)
			if ps == nil && err == nil {
				ps = []domain.Product{}
			}
			return ps, err
		},
	})
}
