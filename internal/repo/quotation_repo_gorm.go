package repo

import (
	"context"

	"gorm.io/gorm"

	"salesdesk/internal/domain"
)

type QuotationRepo struct{ db *gorm.DB }

func NewQuotationRepo(db *gorm.DB) *QuotationRepo { return &QuotationRepo{db: db} }

func (r *QuotationRepo) Create(ctx context.Context, q *domain.Quotation) error {
	return r.db.WithContext(ctx).Create(q).Error
}

// Models 需要自动迁移的表
func Models() []any {
	return []any{&domain.Profile{}, &domain.Product{}, &domain.Quotation{}}
}
