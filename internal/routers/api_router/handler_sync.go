package api_router

import (
	"net/http"

	"github.com/haierkeys/memo-sync-service/internal/app"
	"github.com/haierkeys/memo-sync-service/internal/dto"
	pkgapp "github.com/haierkeys/memo-sync-service/pkg/app"
	"github.com/haierkeys/memo-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SyncHandler memo sync API router handler
// SyncHandler 备忘录同步 API 路由处理器
// Success bodies use the raw sync wire format, errors use the coded envelope
// 成功时直接输出同步协议 JSON，失败时输出统一错误结构
type SyncHandler struct {
	*Handler
}

// NewSyncHandler creates SyncHandler instance
// NewSyncHandler 创建 SyncHandler 实例
func NewSyncHandler(a *app.App) *SyncHandler {
	return &SyncHandler{
		Handler: NewHandler(a),
	}
}

// Sync reconciles the client's memos and deletions with the server copy
func (h *SyncHandler) Sync(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.SyncRequest{}

	if err := c.ShouldBindJSON(params); err != nil {
		h.App.Logger().Warn("SyncHandler.Sync.ShouldBindJSON err", zap.Error(err))
		response.ToResponse(code.ErrorSyncPayload.WithDetails(err.Error()))
		return
	}

	h.sync(c, params)
}

// Memos returns every memo and tombstone, as a sync with an empty request
func (h *SyncHandler) Memos(c *gin.Context) {
	h.sync(c, &dto.SyncRequest{})
}

func (h *SyncHandler) sync(c *gin.Context, params *dto.SyncRequest) {
	response := pkgapp.NewResponse(c)

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorNotUserAuthToken)
		return
	}

	ctx := c.Request.Context()
	resp, err := h.App.SyncService.Sync(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "SyncHandler.Sync", err)
		h.errorResponse(c, err)
		return
	}

	response.ToRaw(http.StatusOK, resp)
}

// Export downloads the full snapshot
func (h *SyncHandler) Export(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorNotUserAuthToken)
		return
	}

	ctx := c.Request.Context()
	resp, err := h.App.SyncService.Export(ctx, uid)
	if err != nil {
		h.logError(ctx, "SyncHandler.Export", err)
		h.errorResponse(c, err)
		return
	}

	if c.Query("download") != "" {
		c.Header("Content-Disposition", `attachment; filename="memos-`+resp.ExportedAt.Format("20060102")+`.json"`)
	}
	response.ToRaw(http.StatusOK, resp)
}
