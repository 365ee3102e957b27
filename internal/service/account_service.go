package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"salesdesk/internal/access"
	"salesdesk/internal/domain"
)

type CreateAccountInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
	Role     string
}

// AccountPatch nil 字段不修改
type AccountPatch struct {
	Active   *bool
	FullName *string
	Role     *string
	Phone    *string
	Password *string
}

// AccountService 账号管理：身份服务（凭据）与 profiles 表同步写入。
// 两个存储没有共享事务，写入按固定顺序串行执行，失败时补偿或上报不一致。
type AccountService struct {
	auth        domain.AuthStore
	profiles    domain.ProfileStore
	log         *zap.Logger
	callTimeout time.Duration
}

func NewAccountService(a domain.AuthStore, p domain.ProfileStore, l *zap.Logger, callTimeout time.Duration) *AccountService {
	return &AccountService{auth: a, profiles: p, log: l.Named("accounts"), callTimeout: callTimeout}
}

// step 给单次存储调用加超时
func (s *AccountService) step(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}
	return fn(ctx)
}

func (s *AccountService) reportInconsistent(op, id, detail string, err error) {
	s.log.Error("inconsistent account",
		zap.String("condition", "inconsistent_account"),
		zap.String("op", op),
		zap.String("uid", id),
		zap.String("detail", detail),
		zap.Error(err),
	)
	accountInconsistencies.WithLabelValues(op).Inc()
}

// storeErr 包装存储层原始错误；已分类的错误原样返回
func storeErr(kind domain.Kind, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.E(kind, err.Error(), err)
}

func authErr(err error) error { return storeErr(domain.KindAuthProvider, err) }

func (s *AccountService) findProfile(ctx context.Context, id string) (*domain.Profile, error) {
	var p *domain.Profile
	err := s.step(ctx, func(ctx context.Context) (e error) {
		p, e = s.profiles.FindByID(ctx, id)
		return e
	})
	if err != nil {
		return nil, storeErr(domain.KindStoreWrite, err)
	}
	return p, nil
}

func (s *AccountService) mustFindProfile(ctx context.Context, id string) (*domain.Profile, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.E(domain.KindInvalidInput, "Missing ID", nil)
	}
	p, err := s.findProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.E(domain.KindNotFound, "user not found", nil)
	}
	return p, nil
}

func (s *AccountService) List(ctx context.Context, f domain.ListFilter) ([]domain.Profile, int64, error) {
	if _, err := access.RequireRole(ctx, domain.RoleAdmin); err != nil {
		return nil, 0, err
	}
	var (
		ps    []domain.Profile
		total int64
	)
	err := s.step(ctx, func(ctx context.Context) (e error) {
		ps, total, e = s.profiles.List(ctx, f)
		return e
	})
	if err != nil {
		return nil, 0, storeErr(domain.KindStoreWrite, err)
	}
	return ps, total, nil
}

func (s *AccountService) Create(ctx context.Context, in CreateAccountInput) error {
	caller, err := access.RequireRole(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Role = strings.TrimSpace(in.Role)
	if in.Email == "" || in.Password == "" || in.FullName == "" || in.Role == "" {
		return domain.E(domain.KindInvalidInput, "Email, password, name and role are required.", nil)
	}
	if !domain.ValidRole(in.Role) {
		return domain.E(domain.KindInvalidInput, "Role must be admin or sales.", nil)
	}

	// 1) 邮箱查重
	var existing *domain.AuthUser
	err = s.step(ctx, func(ctx context.Context) (e error) {
		existing, e = s.auth.FindUserByEmail(ctx, in.Email)
		return e
	})
	if err != nil {
		return authErr(err)
	}
	if existing != nil {
		return domain.E(domain.KindDuplicateEmail, domain.MsgDuplicateEmail, nil)
	}

	// 2) 创建凭据
	meta := map[string]any{"full_name": in.FullName, "role": in.Role}
	if in.Phone != "" {
		meta["phone"] = in.Phone
	}
	var u *domain.AuthUser
	err = s.step(ctx, func(ctx context.Context) (e error) {
		u, e = s.auth.CreateUser(ctx, domain.CreateAuthUser{
			Email:        in.Email,
			Password:     in.Password,
			EmailConfirm: true,
			Metadata:     meta,
		})
		return e
	})
	if err != nil {
		return authErr(err)
	}

	// 3) 写 profile；失败则删掉刚建的凭据
	p := &domain.Profile{
		ID:       u.ID,
		FullName: in.FullName,
		Email:    in.Email,
		Role:     in.Role,
		Active:   true,
	}
	if in.Phone != "" {
		p.Phone = &in.Phone
	}
	err = s.step(ctx, func(ctx context.Context) error { return s.profiles.Insert(ctx, p) })
	if err != nil {
		s.log.Warn("profile insert failed, deleting auth user", zap.String("uid", u.ID), zap.Error(err))
		// 请求已超时也要补偿
		cctx := context.WithoutCancel(ctx)
		if cerr := s.step(cctx, func(ctx context.Context) error { return s.auth.DeleteUser(ctx, u.ID) }); cerr != nil {
			accountCompensations.WithLabelValues("create", "failed").Inc()
			s.reportInconsistent("create", u.ID, "auth user exists without profile", cerr)
		} else {
			accountCompensations.WithLabelValues("create", "ok").Inc()
		}
		return storeErr(domain.KindProfileWrite, err)
	}

	s.log.Info("account created",
		zap.String("uid", u.ID),
		zap.String("role", in.Role),
		zap.String("by", caller.ID),
	)
	return nil
}

// SetActive 只改 profiles.active，不影响已有会话
func (s *AccountService) SetActive(ctx context.Context, id string, active bool) error {
	if _, err := access.RequireRole(ctx, domain.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.mustFindProfile(ctx, id); err != nil {
		return err
	}
	err := s.step(ctx, func(ctx context.Context) error {
		_, e := s.profiles.Update(ctx, id, domain.ProfilePatch{Active: &active})
		return e
	})
	if err != nil {
		return storeErr(domain.KindStoreWrite, err)
	}
	return nil
}

func (s *AccountService) ResetPassword(ctx context.Context, id, newPassword string) error {
	if _, err := access.RequireRole(ctx, domain.RoleAdmin); err != nil {
		return err
	}
	if newPassword == "" {
		return domain.E(domain.KindInvalidInput, "Password cannot be empty.", nil)
	}
	if _, err := s.mustFindProfile(ctx, id); err != nil {
		return err
	}
	err := s.step(ctx, func(ctx context.Context) error { return s.auth.UpdatePassword(ctx, id, newPassword) })
	if err != nil {
		return authErr(err)
	}
	return nil
}

// Delete 先删凭据再删 profile：凭据删除失败时账号保持完整可用
func (s *AccountService) Delete(ctx context.Context, id string) error {
	caller, err := access.RequireRole(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return domain.E(domain.KindInvalidInput, "Missing ID", nil)
	}
	p, err := s.findProfile(ctx, id)
	if err != nil {
		return err
	}

	err = s.step(ctx, func(ctx context.Context) error { return s.auth.DeleteUser(ctx, id) })
	switch {
	case err == nil:
	case domain.IsKind(err, domain.KindNotFound) && p != nil:
		// 凭据早已不存在，只剩 profile：继续删，修复孤儿行
		s.log.Warn("auth user already gone, removing orphaned profile", zap.String("uid", id))
	case domain.IsKind(err, domain.KindNotFound):
		return domain.E(domain.KindNotFound, "user not found", nil)
	default:
		return authErr(err)
	}

	if p == nil {
		// 只有凭据没有 profile 的孤儿已被清掉
		s.log.Warn("deleted auth user that had no profile", zap.String("uid", id))
		return nil
	}
	err = s.step(context.WithoutCancel(ctx), func(ctx context.Context) error {
		_, e := s.profiles.Delete(ctx, id)
		return e
	})
	if err != nil {
		s.reportInconsistent("delete", id, "auth user deleted but profile remains", err)
		return storeErr(domain.KindProfileWrite, err)
	}
	s.log.Info("account deleted", zap.String("uid", id), zap.String("by", caller.ID))
	return nil
}

// Update 先改密码（身份服务），再改 profile，最后尽力同步元数据
func (s *AccountService) Update(ctx context.Context, id string, patch AccountPatch) error {
	if _, err := access.RequireRole(ctx, domain.RoleAdmin); err != nil {
		return err
	}
	if patch.Password != nil && *patch.Password == "" {
		return domain.E(domain.KindInvalidInput, "Password cannot be empty.", nil)
	}
	if patch.Role != nil && !domain.ValidRole(*patch.Role) {
		return domain.E(domain.KindInvalidInput, "Role must be admin or sales.", nil)
	}
	if patch.FullName != nil {
		name := strings.TrimSpace(*patch.FullName)
		if name == "" {
			return domain.E(domain.KindInvalidInput, "Name cannot be empty.", nil)
		}
		patch.FullName = &name
	}
	if _, err := s.mustFindProfile(ctx, id); err != nil {
		return err
	}

	passwordChanged := false
	if patch.Password != nil {
		err := s.step(ctx, func(ctx context.Context) error { return s.auth.UpdatePassword(ctx, id, *patch.Password) })
		if err != nil {
			return authErr(err)
		}
		passwordChanged = true
	}

	pp := domain.ProfilePatch{
		Active:   patch.Active,
		FullName: patch.FullName,
		Role:     patch.Role,
		Phone:    patch.Phone,
	}
	if pp.Empty() {
		return nil
	}
	err := s.step(ctx, func(ctx context.Context) error {
		_, e := s.profiles.Update(ctx, id, pp)
		return e
	})
	if err != nil {
		if passwordChanged {
			s.reportInconsistent("update", id, "password changed but profile update failed", err)
		}
		return storeErr(domain.KindProfileWrite, err)
	}

	meta := map[string]any{}
	if patch.Role != nil {
		meta["role"] = *patch.Role
	}
	if patch.FullName != nil {
		meta["full_name"] = *patch.FullName
	}
	if patch.Phone != nil {
		// 清空电话时删除该 key（nil 值在身份服务中表示删除）
		if *patch.Phone == "" {
			meta["phone"] = nil
		} else {
			meta["phone"] = *patch.Phone
		}
	}
	if len(meta) > 0 {
		err := s.step(ctx, func(ctx context.Context) error { return s.auth.UpdateMetadata(ctx, id, meta) })
		if err != nil {
			// profile 已写入，不回滚
			s.reportInconsistent("update_metadata", id, "auth metadata drifted from profile", err)
		}
	}
	return nil
}
