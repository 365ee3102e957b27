package repo

import (
	"context"

	"gorm.io/gorm"

	"salesdesk/internal/domain"
)

// RoleResolver 使用服务凭据（绕过行级限制）读取调用方角色。
// 只读、只查 profiles 表的 role/active 两列，不对外提供其它查询。
type RoleResolver struct{ db *gorm.DB }

func NewRoleResolver(serviceDB *gorm.DB) *RoleResolver { return &RoleResolver{db: serviceDB} }

func (r *RoleResolver) ResolveRole(ctx context.Context, id string) (domain.RoleInfo, bool, error) {
	var row struct {
		Role   string
		Active bool
	}
	err := r.db.WithContext(ctx).
		Table(domain.Profile{}.TableName()).
		Select("role", "active").
		Where("id = ?", id).
		Take(&row).Error
	if missing(err) {
		return domain.RoleInfo{}, false, nil
	}
	if err != nil {
		return domain.RoleInfo{}, false, err
	}
	return domain.RoleInfo{Role: row.Role, Active: row.Active}, true, nil
}
