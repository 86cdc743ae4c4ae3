package middleware

import (
	"context"
	"strings"

	"github.com/haierkeys/memo-sync-service/pkg/app"
	"github.com/haierkeys/memo-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// TokenRevokedFunc 根据 JWT ID 判断令牌是否已注销
type TokenRevokedFunc func(ctx context.Context, jti string) (bool, error)

// UserAuthTokenWithConfig 用户 Token 认证中间件（使用注入的密钥）
// 按顺序读取 Authorization 头（支持 Bearer 前缀）、token 头、token 查询参数
// revoked 为 nil 时不检查注销状态
func UserAuthTokenWithConfig(secretKey string, revoked TokenRevokedFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := app.NewResponse(c)

		token := c.GetHeader("Authorization")
		if token == "" {
			token = c.GetHeader("Token")
		}
		if token == "" {
			token = c.Query("token")
		}
		token = strings.TrimSpace(token)
		if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
			token = strings.TrimSpace(token[7:])
		}

		if token == "" {
			response.ToResponse(code.ErrorNotUserAuthToken)
			c.Abort()
			return
		}

		user, err := app.ParseTokenWithKey(token, secretKey)
		if err != nil || user.UID <= 0 {
			response.ToResponse(code.ErrorInvalidUserAuthToken)
			c.Abort()
			return
		}
		if revoked != nil {
			isRevoked, err := revoked(c.Request.Context(), user.ID)
			if err != nil {
				response.ToResponse(code.ErrorDBQuery)
				c.Abort()
				return
			}
			if isRevoked {
				response.ToResponse(code.ErrorInvalidUserAuthToken)
				c.Abort()
				return
			}
		}
		c.Set(app.UserTokenKey, user)

		c.Next()
	}
}
