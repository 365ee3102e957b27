package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"salesdesk/internal/access"
	"salesdesk/internal/domain"
	"salesdesk/pkg/utils"
)

type QuotationItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CreateQuotationInput struct {
	CustomerName  string               `json:"customer_name"`
	CustomerEmail string               `json:"customer_email"`
	CustomerPhone string               `json:"customer_phone"`
	Items         []QuotationItemInput `json:"items"`
	PDFURL        string               `json:"pdf_url"`
}

// QuotationService 报价单：单价与税率以数据库中的在售商品为准
type QuotationService struct {
	products   domain.ProductStore
	quotations domain.QuotationStore
	log        *zap.Logger
	now        func() time.Time
}

func NewQuotationService(p domain.ProductStore, q domain.QuotationStore, l *zap.Logger) *QuotationService {
	return &QuotationService{products: p, quotations: q, log: l.Named("quotations"), now: time.Now}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// quotationNumber QT-YYYYMMDD-XXXXXX
func quotationNumber(t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(utils.NewID(), "-", ""))[:6]
	return "QT-" + t.Format("20060102") + "-" + suffix
}

func (s *QuotationService) Create(ctx context.Context, in CreateQuotationInput) (*domain.Quotation, error) {
	caller, err := access.RequireRole(ctx, "")
	if err != nil {
		return nil, err
	}
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	if in.CustomerName == "" {
		return nil, domain.E(domain.KindInvalidInput, "Customer name is required.", nil)
	}
	if len(in.Items) == 0 {
		return nil, domain.E(domain.KindInvalidInput, "At least one item is required.", nil)
	}

	ids := make([]string, 0, len(in.Items))
	seen := map[string]bool{}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, domain.E(domain.KindInvalidInput, "Quantity must be at least 1.", nil)
		}
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	ps, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr(domain.KindStoreWrite, err)
	}
	byID := make(map[string]domain.Product, len(ps))
	for _, p := range ps {
		byID[p.ID] = p
	}

	q := &domain.Quotation{
		ID:            utils.NewID(),
		CustomerName:  in.CustomerName,
		CustomerEmail: strings.TrimSpace(in.CustomerEmail),
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
		CreatedBy:     caller.ID,
	}
	for _, it := range in.Items {
		p, ok := byID[it.ProductID]
		if !ok || !p.Active {
			return nil, domain.E(domain.KindInvalidInput, fmt.Sprintf("Product %s is not available.", it.ProductID), nil)
		}
		line := round2(p.Price * float64(it.Quantity))
		q.Items = append(q.Items, domain.QuotationItem{
			ProductID:  p.ID,
			Name:       p.Name,
			SKU:        p.SKU,
			Quantity:   it.Quantity,
			UnitPrice:  p.Price,
			TaxPercent: p.TaxPercent,
			LineTotal:  line,
		})
		q.Subtotal += line
		q.TaxTotal += round2(line * p.TaxPercent / 100)
	}
	q.Subtotal = round2(q.Subtotal)
	q.TaxTotal = round2(q.TaxTotal)
	q.GrandTotal = round2(q.Subtotal + q.TaxTotal)
	if u := strings.TrimSpace(in.PDFURL); u != "" {
		q.PDFURL = &u
	}
	q.QuotationNumber = quotationNumber(s.now())

	if err := s.quotations.Create(ctx, q); err != nil {
		return nil, storeErr(domain.KindStoreWrite, err)
	}
	s.log.Info("quotation created",
		zap.String("number", q.QuotationNumber),
		zap.String("by", caller.ID),
		zap.Float64("grand_total", q.GrandTotal),
	)
	return q, nil
}
