package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"salesdesk/internal/domain"
	"salesdesk/internal/service"
	"salesdesk/internal/transport/http/ez"
)

// QuotationHandler 列表/详情走通用只读 Crud（按 created_by 归属），创建走 service 计算金额
type QuotationHandler struct {
	db  *gorm.DB
	svc *service.QuotationService
}

func NewQuotationHandler(db *gorm.DB, svc *service.QuotationService) *QuotationHandler {
	return &QuotationHandler{db: db, svc: svc}
}

func (h *QuotationHandler) Priority() int { return 50 }

func (h *QuotationHandler) MountAPI(g *gin.RouterGroup) {
	ez.RegisterAction(ez.New(g), ez.Action[service.CreateQuotationInput, *domain.Quotation]{
		Method: http.MethodPost,
		Path:   "/quotations",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.CreateQuotationInput) (*domain.Quotation, error) {
			return h.svc.Create(c.Request.Context(), *in)
		},
	})

	ez.Crud(ez.CrudConfig[domain.Quotation]{
		DB:         h.db,
		Group:      g,
		Path:       "/quotations",
		New:        func() *domain.Quotation { return &domain.Quotation{} },
		AllowList:  true,
		AllowGet:   true,
		OwnerField: "CreatedBy",
		OrderBy:    "created_at DESC",
		Hooks: ez.CrudHooks[domain.Quotation]{
			ScopeList: func(c *gin.Context, q *gorm.DB) *gorm.DB {
				s := strings.TrimSpace(c.Query("q"))
				if s == "" {
					return q
				}
				like := "%" + strings.ToLower(s) + "%"
				return q.Where("LOWER(customer_name) LIKE ? OR LOWER(quotation_number) LIKE ?", like, like)
			},
		},
	})
}
