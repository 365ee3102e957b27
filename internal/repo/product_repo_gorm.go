package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"salesdesk/internal/core/database"
	"salesdesk/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Save 整行覆盖（created_at 除外），返回受影响行数
func (r *ProductRepo) Save(ctx context.Context, p *domain.Product) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", p.ID).
		Select("name", "description", "price", "tax_percent", "active",
			"image_url", "image_format", "sku", "category", "features").
		Updates(p)
	return affected(res)
}

func (r *ProductRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if missing(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ps []domain.Product
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ps).Error
	if database.IsInvalidText(err) {
		return nil, nil
	}
	return ps, err
}

func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	q := r.db.WithContext(ctx).Model(&domain.Product{})
	if f.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	if s := strings.TrimSpace(f.Q); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(category) LIKE ?", like, like, like)
	}
	var ps []domain.Product
	if err := q.Order("name ASC").Find(&ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}

func (r *ProductRepo) SetActive(ctx context.Context, id string, active bool) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Update("active", active)
	return affected(res)
}

func (r *ProductRepo) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{})
	return affected(res)
}
