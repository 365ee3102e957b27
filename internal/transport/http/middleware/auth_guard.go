package middleware

import (
	"github.com/gin-gonic/gin"

	"salesdesk/internal/access"
	resp "salesdesk/internal/transport/http/response"
)

const (
	KeyUserID = "userId"
	KeyRole   = "role"
)

// Guard 识别调用方并校验角色；requireRole 为空表示任何启用账号。
// 通过后调用方写入 gin key 与请求 context，service 层据此二次校验。
func Guard(g *access.Guard, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := g.Check(c.Request, requireRole)
		if err != nil {
			status, body := resp.Fail(err)
			c.AbortWithStatusJSON(status, body)
			return
		}
		c.Set(KeyUserID, caller.ID)
		c.Set(KeyRole, caller.Role)
		c.Request = c.Request.WithContext(access.WithCaller(c.Request.Context(), caller))
		c.Next()
	}
}
