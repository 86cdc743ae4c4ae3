// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"

	"github.com/haierkeys/memo-sync-service/internal/app"
	"github.com/haierkeys/memo-sync-service/internal/middleware"
	apperrors "github.com/haierkeys/memo-sync-service/pkg/errors"
	"github.com/haierkeys/memo-sync-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// errorResponse 输出 Service 层返回的错误，携带 Trace ID；非 *code.Code 的错误按服务器内部错误处理
func (h *Handler) errorResponse(c *gin.Context, err error) {
	apperrors.ErrorResponse(c, err)
}

// logError records error log, including Trace ID
// logError 记录错误日志，包含 Trace ID
func (h *Handler) logError(ctx context.Context, method string, err error) {
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String(logger.FieldTraceID, middleware.GetTraceID(ctx)),
	)
}
