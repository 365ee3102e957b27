package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salesdesk/internal/access"
	"salesdesk/internal/domain"
	mdw "salesdesk/internal/transport/http/middleware"
)

func NewAdminEngine(l *zap.Logger, o Options, guard *access.Guard, reg *Registry) *gin.Engine {
	r := newEngine(l, o)

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(mdw.Guard(guard, domain.RoleAdmin))
	reg.MountAllAdmin(admin)

	return r
}
