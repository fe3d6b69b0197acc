package http

import (
	nethttp "net/http"
	"strings"

	"Dominion/internal/shared/security"
	"Dominion/internal/shared/transport"

	"github.com/gin-gonic/gin"
)

const (
	ctxKingdomID = "kingdom_id"
	ctxRole      = "role"
	// DevKingdomHeader 和 DevRoleHeader 只在未配置 jwt secret 时生效，方便本地联调。
	DevKingdomHeader = "X-Kingdom-Id"
	DevRoleHeader    = "X-Role"
)

// Auth 从 Bearer token 中取 kid 和 role 写入 gin 上下文；verifier 为空时退回到开发头。
func Auth(v *security.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var kid, role string
		if v == nil {
			kid = strings.TrimSpace(c.GetHeader(DevKingdomHeader))
			role = strings.TrimSpace(c.GetHeader(DevRoleHeader))
		} else {
			raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
			if ok {
				if claims, err := v.Parse(strings.TrimSpace(raw)); err == nil {
					kid, role = claims.KingdomID, claims.Role
				}
			}
		}
		if kid == "" {
			c.AbortWithStatusJSON(nethttp.StatusUnauthorized, Response{Code: transport.Unauthorized, Msg: "未登录或 token 无效"})
			return
		}
		c.Set(ctxKingdomID, kid)
		c.Set(ctxRole, role)
		c.Next()
	}
}

// AdminOnly 必须挂在 Auth 之后。
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxRole) != security.RoleAdmin {
			c.AbortWithStatusJSON(nethttp.StatusForbidden, Response{Code: transport.Forbidden, Msg: "需要管理员权限"})
			return
		}
		c.Next()
	}
}

func kingdomOf(c *gin.Context) string {
	return c.GetString(ctxKingdomID)
}
