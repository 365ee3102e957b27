package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salesdesk/internal/domain"
	"salesdesk/internal/service"
	"salesdesk/internal/transport/http/ez"
	resp "salesdesk/internal/transport/http/response"
)

type ProductHandler struct{ svc *service.ProductService }

func NewProductHandler(svc *service.ProductService) *ProductHandler { return &ProductHandler{svc: svc} }

func (h *ProductHandler) Priority() int { return 20 }

type productQuery struct {
	Q string `form:"q"`
}

type productBody struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Price       float64              `json:"price"`
	TaxPercent  float64              `json:"tax_percent"`
	Active      bool                 `json:"active"`
	ImageURL    string               `json:"image_url"`
	ImageFormat string               `json:"image_format"`
	SKU         string               `json:"sku"`
	Category    string               `json:"category"`
	Specs       []domain.ProductSpec `json:"specs"`
}

type productSaved struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type activeBody struct {
	Active *bool `json:"active" form:"active"`
}

func (h *ProductHandler) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g)

	ez.RegisterAction(e, ez.Action[productQuery, []domain.Product]{
		Method: http.MethodGet,
		Path:   "/products",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *productQuery) ([]domain.Product, error) {
			return h.svc.List(c.Request.Context(), in.Q)
		},
	})

	ez.RegisterAction(e, ez.Action[productBody, productSaved]{
		Method: http.MethodPost,
		Path:   "/products",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *productBody) (productSaved, error) {
			id, err := h.svc.Upsert(c.Request.Context(), service.ProductInput{
				ID:          in.ID,
				Name:        in.Name,
				Description: in.Description,
				Price:       in.Price,
				TaxPercent:  in.TaxPercent,
				Active:      in.Active,
				ImageURL:    in.ImageURL,
				ImageFormat: in.ImageFormat,
				SKU:         in.SKU,
				Category:    in.Category,
				Specs:       in.Specs,
			})
			if err != nil {
				return productSaved{}, err
			}
			return productSaved{Success: true, ID: id}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[activeBody, resp.Success]{
		Method: http.MethodPost,
		Path:   "/products/:id/active",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *activeBody) (resp.Success, error) {
			if in.Active == nil {
				return resp.Success{}, domain.E(domain.KindInvalidInput, "Missing active flag", nil)
			}
			return resp.OK(), h.svc.SetActive(c.Request.Context(), c.Param("id"), *in.Active)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, resp.Success]{
		Method: http.MethodDelete,
		Path:   "/products/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Success, error) {
			return resp.OK(), h.svc.Delete(c.Request.Context(), c.Param("id"))
		},
	})
}
