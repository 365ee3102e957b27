package router

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"

	"salesdesk/internal/domain"
)

// profileTable 内存版 profiles 表，同时充当角色解析
type profileTable struct {
	mu   sync.Mutex
	rows map[string]domain.Profile
}

func newProfileTable() *profileTable { return &profileTable{rows: map[string]domain.Profile{}} }

func (t *profileTable) Insert(_ context.Context, p *domain.Profile) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[p.ID] = *p
	return nil
}

func (t *profileTable) FindByID(_ context.Context, id string) (*domain.Profile, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.rows[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (t *profileTable) List(_ context.Context, _ domain.ListFilter) ([]domain.Profile, int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Profile, 0, len(t.rows))
	for _, p := range t.rows {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (t *profileTable) Update(_ context.Context, id string, patch domain.ProfilePatch) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.rows[id]
	if !ok {
		return 0, nil
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	if patch.FullName != nil {
		p.FullName = *patch.FullName
	}
	if patch.Role != nil {
		p.Role = *patch.Role
	}
	if patch.Phone != nil {
		v := *patch.Phone
		p.Phone = &v
	}
	t.rows[id] = p
	return 1, nil
}

func (t *profileTable) Delete(_ context.Context, id string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return 0, nil
	}
	delete(t.rows, id)
	return 1, nil
}

func (t *profileTable) ResolveRole(ctx context.Context, id string) (domain.RoleInfo, bool, error) {
	p, _ := t.FindByID(ctx, id)
	if p == nil {
		return domain.RoleInfo{}, false, nil
	}
	return domain.RoleInfo{Role: p.Role, Active: p.Active}, true, nil
}

type productTable struct {
	mu   sync.Mutex
	rows []domain.Product
}

func (t *productTable) Create(_ context.Context, p *domain.Product) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, *p)
	return nil
}

func (t *productTable) Save(_ context.Context, p *domain.Product) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rows {
		if t.rows[i].ID == p.ID {
			t.rows[i] = *p
			return 1, nil
		}
	}
	return 0, nil
}

func (t *productTable) FindByID(_ context.Context, id string) (*domain.Product, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.rows {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (t *productTable) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		if p, _ := t.FindByID(ctx, id); p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (t *productTable) List(_ context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := []domain.Product{}
	for _, p := range t.rows {
		if f.ActiveOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (t *productTable) SetActive(_ context.Context, id string, active bool) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rows {
		if t.rows[i].ID == id {
			t.rows[i].Active = active
			return 1, nil
		}
	}
	return 0, nil
}

func (t *productTable) Delete(_ context.Context, id string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rows {
		if t.rows[i].ID == id {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

type mountRec struct {
	name  string
	prio  int
	order *[]string
}

func (m mountRec) Priority() int { return m.prio }
func (m mountRec) MountAPI(*gin.RouterGroup) {
	*m.order = append(*m.order, m.name)
}

type plainMod struct{ order *[]string }

func (m plainMod) MountAPI(*gin.RouterGroup) { *m.order = append(*m.order, "plain") }
