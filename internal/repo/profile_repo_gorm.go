package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"salesdesk/internal/domain"
)

type ProfileRepo struct{ db *gorm.DB }

func NewProfileRepo(db *gorm.DB) *ProfileRepo { return &ProfileRepo{db: db} }

func (r *ProfileRepo) Insert(ctx context.Context, p *domain.Profile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProfileRepo) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if missing(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepo) List(ctx context.Context, f domain.ListFilter) ([]domain.Profile, int64, error) {
	f = f.Normalize()
	q := r.db.WithContext(ctx).Model(&domain.Profile{})
	if f.Q != "" {
		like := "%" + strings.ToLower(f.Q) + "%"
		q = q.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ps []domain.Profile
	if err := q.Order("created_at DESC").Offset(f.Offset).Limit(f.Limit).Find(&ps).Error; err != nil {
		return nil, 0, err
	}
	return ps, total, nil
}

func (r *ProfileRepo) Update(ctx context.Context, id string, patch domain.ProfilePatch) (int64, error) {
	if patch.Empty() {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&domain.Profile{}).Where("id = ?", id).Updates(patch.Columns())
	return affected(res)
}

func (r *ProfileRepo) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Profile{})
	return affected(res)
}
