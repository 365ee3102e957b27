package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"salesdesk/internal/core/server"
	mdw "salesdesk/internal/transport/http/middleware"
)

type Options struct {
	Name        string // admin | api，用作指标标签
	CORSOrigins []string
	Timeout     time.Duration
}

// newEngine 两个进程共用的中间件链与 /health、/metrics
func newEngine(l *zap.Logger, o Options) *gin.Engine {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	r := server.NewRouter(l, o.CORSOrigins)
	r.Use(
		mdw.Recovery(l),
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(o.Timeout),
		mdw.Metrics(o.Name),
		mdw.AccessLog(l),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
