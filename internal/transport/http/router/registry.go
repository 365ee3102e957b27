package router

import (
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
)

// 模块可选择实现其中一个或多个接口
type APIModule interface{ MountAPI(*gin.RouterGroup) }       // /api/v1，需登录
type PublicModule interface{ MountPublic(*gin.RouterGroup) } // /api/v1，无需登录
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }   // /admin/v1，需 admin

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

type Registry struct {
	mu     sync.RWMutex
	api    []APIModule
	public []PublicModule
	admin  []AdminModule
}

func NewRegistry(mods ...any) *Registry {
	r := &Registry{}
	for _, m := range mods {
		r.Register(m)
	}
	return r
}

// Register 根据类型断言分发；一个模块可以同时挂到多处
func (r *Registry) Register(mod any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := mod.(APIModule); ok {
		r.api = append(r.api, m)
	}
	if m, ok := mod.(PublicModule); ok {
		r.public = append(r.public, m)
	}
	if m, ok := mod.(AdminModule); ok {
		r.admin = append(r.admin, m)
	}
}

func sorted[T any](mods []T) []T {
	out := append([]T(nil), mods...)
	sort.SliceStable(out, func(i, j int) bool {
		return priorityOf(out[i]) < priorityOf(out[j])
	})
	return out
}

func (r *Registry) MountAllAPI(api *gin.RouterGroup) {
	r.mu.RLock()
	mods := sorted(r.api)
	r.mu.RUnlock()
	for _, m := range mods {
		m.MountAPI(api)
	}
}

func (r *Registry) MountAllPublic(api *gin.RouterGroup) {
	r.mu.RLock()
	mods := sorted(r.public)
	r.mu.RUnlock()
	for _, m := range mods {
		m.MountPublic(api)
	}
}

func (r *Registry) MountAllAdmin(admin *gin.RouterGroup) {
	r.mu.RLock()
	mods := sorted(r.admin)
	r.mu.RUnlock()
	for _, m := range mods {
		m.MountAdmin(admin)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
