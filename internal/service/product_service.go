package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"salesdesk/internal/access"
	"salesdesk/internal/domain"
	"salesdesk/pkg/utils"
)

type ProductInput struct {
	ID          string
	Name        string
	Description string
	Price       float64
	TaxPercent  float64
	Active      bool
	ImageURL    string
	ImageFormat string
	SKU         string
	Category    string
	Specs       []domain.ProductSpec
}

type catalogInvalidator interface {
	Invalidate(ctx context.Context)
}

// ProductService 商品维护，仅 admin
type ProductService struct {
	products domain.ProductStore
	catalog  catalogInvalidator
	log      *zap.Logger
}

func NewProductService(p domain.ProductStore, catalog catalogInvalidator, l *zap.Logger) *ProductService {
	return &ProductService{products: p, catalog: catalog, log: l.Named("products")}
}

func (s *ProductService) List(ctx context.Context, q string) ([]domain.Product, error) {
	if _, err := access.RequireRole(ctx, domain.RoleAdmin); err != nil {
		return nil, err
	}
	ps, err := s.products.List(ctx, domain.ProductFilter{Q: q})
	if err != nil {
		return nil, storeErr(domain.KindStoreWrite, err)
	}
	return ps, nil
}

func validateProduct(in *ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.ImageFormat = strings.TrimSpace(in.ImageFormat)
	if in.Name == "" {
		return domain.E(domain.KindInvalidInput, "Name is required.", nil)
	}
	if in.Price < 0 {
		return domain.E(domain.KindInvalidInput, "Price cannot be negative.", nil)
	}
	if in.TaxPercent < 0 || in.TaxPercent > 100 {
		return domain.E(domain.KindInvalidInput, "Tax must be between 0 and 100.", nil)
	}
	if in.ImageFormat == "" {
		in.ImageFormat = "wide"
	}
	// 空的规格行丢弃
	specs := make([]domain.ProductSpec, 0, len(in.Specs))
	for _, sp := range in.Specs {
		sp.Label, sp.Value = strings.TrimSpace(sp.Label), strings.TrimSpace(sp.Value)
		if sp.Label == "" && sp.Value == "" {
			continue
		}
		specs = append(specs, sp)
	}
	in.Specs = specs
	return nil
}

// Upsert ID 为空时新建，否则整行更新；返回商品 id
func (s *ProductService) Upsert(ctx context.Context, in ProductInput) (string, error) {
	if _, err := access.RequireRole(ctx, domain.RoleAdmin); err != nil {
		return "", err
	}
	if err := validateProduct(&in); err != nil {
		return "", err
	}
	p := &domain.Product{
		ID:          strings.TrimSpace(in.ID),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		TaxPercent:  in.TaxPercent,
		Active:      in.Active,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		ImageFormat: in.ImageFormat,
		SKU:         strings.TrimSpace(in.SKU),
		Category:    strings.TrimSpace(in.Category),
		Specs:       in.Specs,
	}
	if p.ID == "" {
		p.ID = utils.NewID()
		if err := s.products.Create(ctx, p); err != nil {
			return "", storeErr(domain.KindStoreWrite, err)
		}
	} else {
		cur, err := s.products.FindByID(ctx, p.ID)
		if err != nil {
			return "", storeErr(domain.KindStoreWrite, err)
		}
		if cur == nil {
			return "", domain.E(domain.KindNotFound, "product not found", nil)
		}
		if _, err := s.products.Save(ctx, p); err != nil {
			return "", storeErr(domain.KindStoreWrite, err)
		}
	}
	s.catalog.Invalidate(ctx)
	return p.ID, nil
}

func (s *ProductService) SetActive(ctx context.Context, id string, active bool) error {
	if _, err := access.RequireRole(ctx, domain.RoleAdmin); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return domain.E(domain.KindInvalidInput, "Missing ID", nil)
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return storeErr(domain.KindStoreWrite, err)
	}
	if p == nil {
		return domain.E(domain.KindNotFound, "product not found", nil)
	}
	if _, err := s.products.SetActive(ctx, id, active); err != nil {
		return storeErr(domain.KindStoreWrite, err)
	}
	s.catalog.Invalidate(ctx)
	return nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if _, err := access.RequireRole(ctx, domain.RoleAdmin); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return domain.E(domain.KindInvalidInput, "Missing ID", nil)
	}
	n, err := s.products.Delete(ctx, id)
	if err != nil {
		return storeErr(domain.KindStoreWrite, err)
	}
	if n == 0 {
		return domain.E(domain.KindNotFound, "product not found", nil)
	}
	s.log.Info("product deleted", zap.String("id", id))
	s.catalog.Invalidate(ctx)
	return nil
}
