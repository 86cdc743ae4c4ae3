package routers

import (
	"time"

	"github.com/haierkeys/memo-sync-service/internal/app"
	"github.com/haierkeys/memo-sync-service/internal/middleware"
	"github.com/haierkeys/memo-sync-service/internal/routers/api_router"
	"github.com/haierkeys/memo-sync-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// newMethodLimiter 登录与注册接口的限流桶
func newMethodLimiter() limiter.Face {
	return limiter.NewMethodLimiter().AddBuckets(
		limiter.BucketRule{
			Key:          "/api/user",
			FillInterval: time.Second,
			Capacity:     10,
			Quantum:      10,
		},
	)
}

// NewRouter 创建公开 HTTP 路由
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()
	lg := appContainer.Logger()

	r := gin.New()

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfoWithConfig(app.Name, appContainer.Version().Version))
		api.Use(middleware.TraceMiddlewareWithConfig(cfg.IsTracerEnabled(), cfg.Tracer.Header)) // Trace ID 中间件
		api.Use(middleware.RateLimiter(newMethodLimiter()))
		api.Use(middleware.ContextTimeout(cfg.GetContextTimeout()))
		api.Use(middleware.Cors(cfg.Cors.AllowOrigin, cfg.Cors.MaxAge))
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLogWithLogger(lg))
		api.Use(middleware.RecoveryWithLogger(lg))
		api.Use(middleware.RequireHTTPS(cfg.IsRequireHTTPS(), cfg.IsTrustProxy()))

		// 创建 Handlers（注入 App Container）
		userHandler := api_router.NewUserHandler(appContainer)
		syncHandler := api_router.NewSyncHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)
		versionHandler := api_router.NewVersionHandler(appContainer)

		api.POST("/user/register", userHandler.Register)
		api.POST("/user/login", userHandler.Login)

		// 无需认证
		api.GET("/version", versionHandler.ServerVersion)
		api.GET("/health", healthHandler.Check)

		auth := api.Group("", middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey, appContainer.UserService.IsTokenRevoked))
		auth.GET("/user/info", userHandler.UserInfo)
		auth.POST("/user/logout", userHandler.Logout)
		auth.POST("/sync", syncHandler.Sync)
		auth.GET("/memos", syncHandler.Memos)
		auth.GET("/export", syncHandler.Export)
	}

	r.Use(middleware.Cors(cfg.Cors.AllowOrigin, cfg.Cors.MaxAge))
	r.NoRoute(middleware.NoFound())

	return r
}
