package middleware

import (
	"github.com/haierkeys/memo-sync-service/pkg/app"
	"github.com/haierkeys/memo-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// RequireHTTPS 拒绝非 HTTPS 请求
// trustProxy 为 true 时以反向代理传入的 X-Forwarded-Proto 为准
func RequireHTTPS(enabled, trustProxy bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if enabled && app.GetRequestScheme(c, trustProxy) != "https" {
			app.NewResponse(c).ToResponse(code.ErrorHTTPSRequired)
			c.Abort()
			return
		}
		c.Next()
	}
}
