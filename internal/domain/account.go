package domain

import (
	"context"
	"strings"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleSales = "sales"
)

func ValidRole(r string) bool { return r == RoleAdmin || r == RoleSales }

// Profile 对应 profiles 表；id 与身份服务中的用户 id 相同
type Profile struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	FullName  string    `gorm:"column:full_name;size:128;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Active    bool      `gorm:"not null" json:"active"`
	Phone     *string   `gorm:"size:32" json:"phone"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Profile) TableName() string { return "profiles" }

// ProfilePatch 只写非 nil 字段
type ProfilePatch struct {
	Active   *bool
	FullName *string
	Role     *string
	Phone    *string
}

func (p ProfilePatch) Empty() bool {
	return p.Active == nil && p.FullName == nil && p.Role == nil && p.Phone == nil
}

// Columns 转成列名 → 值，零值（false/""）同样写入
func (p ProfilePatch) Columns() map[string]any {
	m := map[string]any{}
	if p.Active != nil {
		m["active"] = *p.Active
	}
	if p.FullName != nil {
		m["full_name"] = *p.FullName
	}
	if p.Role != nil {
		m["role"] = *p.Role
	}
	if p.Phone != nil {
		m["phone"] = *p.Phone
	}
	return m
}

type ListFilter struct {
	Q      string
	Offset int
	Limit  int
}

// Normalize 限制分页参数
func (f ListFilter) Normalize() ListFilter {
	f.Q = strings.TrimSpace(f.Q)
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 200
	}
	return f
}

type ProfileStore interface {
	Insert(ctx context.Context, p *Profile) error
	FindByID(ctx context.Context, id string) (*Profile, error) // 不存在返回 nil, nil
	List(ctx context.Context, f ListFilter) ([]Profile, int64, error)
	Update(ctx context.Context, id string, patch ProfilePatch) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// AuthUser 身份服务中的凭据记录
type AuthUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

type CreateAuthUser struct {
	Email        string
	Password     string
	EmailConfirm bool
	Metadata     map[string]any
}

// AuthStore 托管身份服务的管理能力。找不到用户时返回 KindNotFound。
type AuthStore interface {
	FindUserByEmail(ctx context.Context, email string) (*AuthUser, error) // 不存在返回 nil, nil
	CreateUser(ctx context.Context, in CreateAuthUser) (*AuthUser, error)
	UpdatePassword(ctx context.Context, id, password string) error
	UpdateMetadata(ctx context.Context, id string, metadata map[string]any) error
	DeleteUser(ctx context.Context, id string) error
}

// Session 登录成功后的令牌
type Session struct {
	AccessToken string
	ExpiresIn   int
	User        AuthUser
}

// PasswordSignIn 用户名密码登录
type PasswordSignIn interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
}

// RoleInfo 鉴权所需的最小字段
type RoleInfo struct {
	Role   string
	Active bool
}

// Identity 由令牌解析出的调用方身份
type Identity struct {
	ID    string
	Email string
}
