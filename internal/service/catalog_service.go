package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"salesdesk/internal/access"
	"salesdesk/internal/core/cache"
	"salesdesk/internal/domain"
)

const catalogKey = "catalog:active"

// CatalogService 销售端可见的在售商品。cache 为 nil 时直接查库。
type CatalogService struct {
	products domain.ProductStore
	cache    *cache.Cache
	ttl      time.Duration
	log      *zap.Logger
}

func NewCatalogService(p domain.ProductStore, c *cache.Cache, ttl time.Duration, l *zap.Logger) *CatalogService {
	return &CatalogService{products: p, cache: c, ttl: ttl, log: l.Named("catalog")}
}

func (s *CatalogService) active(ctx context.Context) ([]domain.Product, error) {
	return cache.GetOrLoadJSON(ctx, s.cache, catalogKey, s.ttl, func(ctx context.Context) ([]domain.Product, error) {
		return s.products.List(ctx, domain.ProductFilter{ActiveOnly: true})
	})
}

// List 任何已登录账号可用；q 按名称/SKU/分类过滤
func (s *CatalogService) List(ctx context.Context, q string) ([]domain.Product, error) {
	if _, err := access.RequireRole(ctx, ""); err != nil {
		return nil, err
	}
	ps, err := s.active(ctx)
	if err != nil {
		return nil, storeErr(domain.KindStoreWrite, err)
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return ps, nil
	}
	out := make([]domain.Product, 0, len(ps))
	for _, p := range ps {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.SKU), q) ||
			strings.Contains(strings.ToLower(p.Category), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Invalidate 商品变更后调用；失败只记日志，等 TTL 过期
func (s *CatalogService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(context.WithoutCancel(ctx), catalogKey); err != nil {
		s.log.Warn("catalog cache invalidate failed", zap.Error(err))
	}
}
