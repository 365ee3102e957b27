package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"salesdesk/internal/access"
	"salesdesk/internal/domain"
)

func asAdmin() context.Context {
	return access.WithCaller(context.Background(), &access.Caller{ID: "admin-1", Role: domain.RoleAdmin, Active: true})
}

func asSales() context.Context {
	return access.WithCaller(context.Background(), &access.Caller{ID: "sales-1", Role: domain.RoleSales, Active: true})
}

type MockAuth struct{ mock.Mock }

func (m *MockAuth) FindUserByEmail(ctx context.Context, email string) (*domain.AuthUser, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthUser), args.Error(1)
}

func (m *MockAuth) CreateUser(ctx context.Context, in domain.CreateAuthUser) (*domain.AuthUser, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthUser), args.Error(1)
}

func (m *MockAuth) UpdatePassword(ctx context.Context, id, password string) error {
	return m.Called(ctx, id, password).Error(0)
}

func (m *MockAuth) UpdateMetadata(ctx context.Context, id string, metadata map[string]any) error {
	return m.Called(ctx, id, metadata).Error(0)
}

func (m *MockAuth) DeleteUser(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockProfiles struct{ mock.Mock }

func (m *MockProfiles) Insert(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfiles) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfiles) List(ctx context.Context, f domain.ListFilter) ([]domain.Profile, int64, error) {
	args := m.Called(ctx, f)
	ps, _ := args.Get(0).([]domain.Profile)
	return ps, args.Get(1).(int64), args.Error(2)
}

func (m *MockProfiles) Update(ctx context.Context, id string, patch domain.ProfilePatch) (int64, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProfiles) Delete(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// memProfiles 内存版 profiles 表
type memProfiles struct {
	mu   sync.Mutex
	rows map[string]domain.Profile
	seq  int
}

func newMemProfiles() *memProfiles { return &memProfiles{rows: map[string]domain.Profile{}} }

func (s *memProfiles) Insert(_ context.Context, p *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.Email == p.Email {
			return domain.E(domain.KindStoreWrite, "duplicate key value violates unique constraint", nil)
		}
	}
	s.seq++
	p.CreatedAt = time.Unix(int64(s.seq), 0)
	s.rows[p.ID] = *p
	return nil
}

func (s *memProfiles) FindByID(_ context.Context, id string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *memProfiles) List(_ context.Context, f domain.ListFilter) ([]domain.Profile, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f = f.Normalize()
	out := []domain.Profile{}
	for _, r := range s.rows {
		q := strings.ToLower(f.Q)
		if q == "" || strings.Contains(strings.ToLower(r.Email), q) || strings.Contains(strings.ToLower(r.FullName), q) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (s *memProfiles) Update(_ context.Context, id string, patch domain.ProfilePatch) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return 0, nil
	}
	if patch.Active != nil {
		r.Active = *patch.Active
	}
	if patch.FullName != nil {
		r.FullName = *patch.FullName
	}
	if patch.Role != nil {
		r.Role = *patch.Role
	}
	if patch.Phone != nil {
		v := *patch.Phone
		r.Phone = &v
	}
	s.rows[id] = r
	return 1, nil
}

func (s *memProfiles) Delete(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return 0, nil
	}
	delete(s.rows, id)
	return 1, nil
}

func (s *memProfiles) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// memProducts 内存版 products 表
type memProducts struct {
	mu    sync.Mutex
	rows  map[string]domain.Product
	lists int
}

func newMemProducts(ps ...domain.Product) *memProducts {
	s := &memProducts{rows: map[string]domain.Product{}}
	for _, p := range ps {
		s.rows[p.ID] = p
	}
	return s
}

func (s *memProducts) Create(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[p.ID] = *p
	return nil
}

func (s *memProducts) Save(_ context.Context, p *domain.Product) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[p.ID]; !ok {
		return 0, nil
	}
	s.rows[p.ID] = *p
	return 1, nil
}

func (s *memProducts) FindByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *memProducts) FindByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Product
	for _, id := range ids {
		if p, ok := s.rows[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memProducts) List(_ context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	out := []domain.Product{}
	for _, p := range s.rows {
		if f.ActiveOnly && !p.Active {
			continue
		}
		if f.Q != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Q)) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memProducts) SetActive(_ context.Context, id string, active bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	if !ok {
		return 0, nil
	}
	p.Active = active
	s.rows[id] = p
	return 1, nil
}

func (s *memProducts) Delete(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return 0, nil
	}
	delete(s.rows, id)
	return 1, nil
}

type memQuotations struct {
	mu   sync.Mutex
	rows []domain.Quotation
	err  error
}

func (s *memQuotations) Create(_ context.Context, q *domain.Quotation) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, *q)
	return nil
}
