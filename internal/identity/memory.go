package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"salesdesk/internal/core/auth"
	"salesdesk/internal/domain"
	"salesdesk/pkg/utils"
)

const minPasswordLen = 6

type memUser struct {
	domain.AuthUser
	hash string
}

// Memory 进程内身份服务，用于本地开发与测试；令牌由 JWTer 签发
type Memory struct {
	mu    sync.RWMutex
	users map[string]*memUser
	jwt   *auth.JWTer
}

func NewMemory(j *auth.JWTer) *Memory {
	return &Memory{users: map[string]*memUser{}, jwt: j}
}

func (m *Memory) findByEmail(email string) *memUser {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (m *Memory) FindUserByEmail(_ context.Context, email string) (*domain.AuthUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u := m.findByEmail(strings.TrimSpace(email)); u != nil {
		out := u.AuthUser
		return &out, nil
	}
	return nil, nil
}

func (m *Memory) CreateUser(_ context.Context, in domain.CreateAuthUser) (*domain.AuthUser, error) {
	if len(in.Password) < minPasswordLen {
		return nil, domain.E(domain.KindAuthProvider, "Password should be at least 6 characters.", nil)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findByEmail(in.Email) != nil {
		return nil, domain.E(domain.KindAuthProvider, "A user with this email address has already been registered", nil)
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, domain.E(domain.KindAuthProvider, "Password is too long.", err)
	}
	u := &memUser{
		AuthUser: domain.AuthUser{
			ID:           uuid.NewString(),
			Email:        strings.ToLower(strings.TrimSpace(in.Email)),
			UserMetadata: copyMeta(in.Metadata),
			CreatedAt:    time.Now().UTC(),
		},
		hash: hash,
	}
	m.users[u.ID] = u
	out := u.AuthUser
	return &out, nil
}

func (m *Memory) UpdatePassword(_ context.Context, id, password string) error {
	if len(password) < minPasswordLen {
		return domain.E(domain.KindAuthProvider, "Password should be at least 6 characters.", nil)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return domain.E(domain.KindAuthProvider, "Password is too long.", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.E(domain.KindNotFound, "user not found", nil)
	}
	u.hash = hash
	return nil
}

func (m *Memory) UpdateMetadata(_ context.Context, id string, metadata map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.E(domain.KindNotFound, "user not found", nil)
	}
	if u.UserMetadata == nil {
		u.UserMetadata = map[string]any{}
	}
	// 与托管服务一致：按 key 合并，nil 值删除该 key
	for k, v := range metadata {
		if v == nil {
			delete(u.UserMetadata, k)
			continue
		}
		u.UserMetadata[k] = v
	}
	return nil
}

func (m *Memory) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.E(domain.KindNotFound, "user not found", nil)
	}
	delete(m.users, id)
	return nil
}

// User 按 id 读取（测试断言用）
func (m *Memory) User(id string) (*domain.AuthUser, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, false
	}
	out := u.AuthUser
	out.UserMetadata = copyMeta(u.UserMetadata)
	return &out, true
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

func (m *Memory) VerifyToken(_ context.Context, token string) (*domain.Identity, error) {
	c, err := m.jwt.Parse(token)
	if err != nil {
		return nil, domain.E(domain.KindUnauthorized, "Unauthorized", err)
	}
	m.mu.RLock()
	u, ok := m.users[c.UID()]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.E(domain.KindUnauthorized, "Unauthorized", nil)
	}
	return &domain.Identity{ID: u.ID, Email: u.Email}, nil
}

func (m *Memory) SignInWithPassword(_ context.Context, email, password string) (*domain.Session, error) {
	m.mu.RLock()
	u := m.findByEmail(strings.TrimSpace(email))
	m.mu.RUnlock()
	if u == nil || !utils.CheckPassword(password, u.hash) {
		return nil, domain.E(domain.KindUnauthorized, "Invalid login credentials", nil)
	}
	tok, err := m.jwt.Issue(u.ID, u.Email)
	if err != nil {
		return nil, domain.E(domain.KindAuthProvider, "issue token failed", err)
	}
	return &domain.Session{
		AccessToken: tok,
		ExpiresIn:   int(m.jwt.TTL / time.Second),
		User:        u.AuthUser,
	}, nil
}

func copyMeta(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
