package middleware

import (
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type respWriter struct {
	gin.ResponseWriter
	status int
	size   int
}

func (w *respWriter) WriteHeader(code int) { w.status = code; w.ResponseWriter.WriteHeader(code) }
func (w *respWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = 200
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// 账号管理的表单/查询里可能出现的敏感 key
var sensitiveKeys = map[string]struct{}{
	"password": {}, "new_password": {}, "pwd": {},
	"token": {}, "access_token": {}, "refresh_token": {},
	"authorization": {}, "apikey": {}, "secret": {},
}

func maskValues(kv url.Values) map[string][]string {
	out := make(map[string][]string, len(kv))
	for k, v := range kv {
		if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
			out[k] = []string{"****"}
			continue
		}
		out[k] = v
	}
	return out
}

// accessLevel 5xx 记 error，401/403 记 warn（守卫拒绝），其余 info
func accessLevel(status int) zapcore.Level {
	switch {
	case status >= 500:
		return zapcore.ErrorLevel
	case status == 401 || status == 403:
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}

// AccessLog 每个请求一行摘要；表单动作（/users 等）已解析的表单也按 key 脱敏输出
func AccessLog(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		w := &respWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		fields := []zap.Field{
			zap.String("rid", c.GetString(KeyRequestID)),
			zap.String("uid", c.GetString(KeyUserID)),
			zap.String("role", c.GetString(KeyRole)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", w.status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("ua", c.Request.UserAgent()),
			zap.Any("query", maskValues(c.Request.URL.Query())),
			zap.Int("size", w.size),
		}
		if c.Request.PostForm != nil && len(c.Request.PostForm) > 0 {
			fields = append(fields, zap.Any("form", maskValues(c.Request.PostForm)))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if ce := l.Check(accessLevel(w.status), "HTTP"); ce != nil {
			ce.Write(fields...)
		}
	}
}
