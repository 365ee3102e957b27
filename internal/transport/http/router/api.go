package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"salesdesk/internal/access"
	mdw "salesdesk/internal/transport/http/middleware"
)

func NewAPIEngine(l *zap.Logger, o Options, guard *access.Guard, reg *Registry) *gin.Engine {
	r := newEngine(l, o)

	api := r.Group("/api/v1")

	// 公共分组：登录接口按 IP 限速
	public := api.Group("")
	public.Use(mdw.RateLimitPerIP(rate.Limit(1), 10))
	reg.MountAllPublic(public)

	// 鉴权分组：任何启用账号
	authed := api.Group("")
	authed.Use(mdw.Guard(guard, ""))
	reg.MountAllAPI(authed)

	return r
}
