package middleware

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/haierkeys/memo-sync-service/pkg/app"
	"github.com/haierkeys/memo-sync-service/pkg/code"
	"github.com/haierkeys/memo-sync-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeRes(t *testing.T, rec *httptest.ResponseRecorder) app.Res {
	t.Helper()
	var res app.Res
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestCorsPreflight(t *testing.T) {
	r := gin.New()
	r.Use(Cors("https://memo.example", 600))
	r.POST("/api/sync", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/sync", nil)
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "X-Custom, Authorization")
	rec := serve(r, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://memo.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "X-Custom, Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))

	rec = serve(r, httptest.NewRequest(http.MethodPost, "/api/sync", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, corsAllowHeaders, rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestUserAuthToken(t *testing.T) {
	tm := app.NewTokenManager(app.TokenConfig{SecretKey: "k1"})
	token, err := tm.Generate(42, "alice", "")
	require.NoError(t, err)

	r := gin.New()
	r.Use(UserAuthTokenWithConfig("k1", nil))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": app.GetUID(c)})
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, code.ErrorNotUserAuthToken.Code(), decodeRes(t, rec).Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, code.ErrorInvalidUserAuthToken.Code(), decodeRes(t, rec).Code)

	for _, set := range []func(*http.Request){
		func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
		func(r *http.Request) { r.Header.Set("Authorization", token) },
		func(r *http.Request) { r.Header.Set("Token", token) },
		func(r *http.Request) { r.URL.RawQuery = "token=" + token },
	} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		set(req)
		rec := serve(r, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"uid":42}`, rec.Body.String())
	}

	other := app.NewTokenManager(app.TokenConfig{SecretKey: "k2"})
	foreign, err := other.Generate(42, "alice", "")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", foreign)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

func TestUserAuthTokenRevoked(t *testing.T) {
	tm := app.NewTokenManager(app.TokenConfig{SecretKey: "k1"})
	token, err := tm.Generate(42, "alice", "")
	require.NoError(t, err)
	claims, err := tm.Parse(token)
	require.NoError(t, err)

	revokedIDs := map[string]bool{}
	var checkErr error
	r := gin.New()
	r.Use(UserAuthTokenWithConfig("k1", func(_ context.Context, jti string) (bool, error) {
		return revokedIDs[jti], checkErr
	}))
	r.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return serve(r, req)
	}

	assert.Equal(t, http.StatusOK, call().Code)

	revokedIDs[claims.ID] = true
	rec := call()
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, code.ErrorInvalidUserAuthToken.Code(), decodeRes(t, rec).Code)

	checkErr = errors.New("db down")
	rec = call()
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, code.ErrorDBQuery.Code(), decodeRes(t, rec).Code)
}

func TestRequireHTTPS(t *testing.T) {
	newRouter := func(enabled, trustProxy bool) *gin.Engine {
		r := gin.New()
		r.Use(RequireHTTPS(enabled, trustProxy))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}
	request := func(forwarded string, secure bool) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if forwarded != "" {
			req.Header.Set("X-Forwarded-Proto", forwarded)
		}
		if secure {
			req.TLS = &tls.ConnectionState{}
		}
		return req
	}

	tests := []struct {
		name       string
		enabled    bool
		trustProxy bool
		forwarded  string
		secure     bool
		want       int
	}{
		{"disabled", false, false, "", false, http.StatusOK},
		{"plain http", true, false, "", false, http.StatusForbidden},
		{"direct tls", true, false, "", true, http.StatusOK},
		{"untrusted forwarded header", true, false, "https", false, http.StatusForbidden},
		{"trusted forwarded header", true, true, "https", false, http.StatusOK},
		{"trusted proxy chain", true, true, "HTTPS, http", false, http.StatusOK},
		{"trusted proxy reports http", true, true, "http", true, http.StatusForbidden},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newRouter(tt.enabled, tt.trustProxy), request(tt.forwarded, tt.secure))
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusForbidden {
				assert.Equal(t, code.ErrorHTTPSRequired.Code(), decodeRes(t, rec).Code)
			}
		})
	}
}

func TestTraceMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddlewareWithConfig(true, ""))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetTraceID(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DefaultTraceIDHeader, "abc")
	rec := serve(r, req)
	assert.Equal(t, "abc", rec.Body.String())
	assert.Equal(t, "abc", rec.Header().Get(DefaultTraceIDHeader))

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Body.String(), 36)
	assert.Equal(t, rec.Body.String(), rec.Header().Get(DefaultTraceIDHeader))
}

func TestTraceMiddlewareDisabled(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddlewareWithConfig(false, "X-Request-ID"))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetTraceIDFromGin(c)) })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Request-ID"))
}

func TestRateLimiter(t *testing.T) {
	l := limiter.NewMethodLimiter().AddBuckets(limiter.BucketRule{
		Key: "/api/user", FillInterval: time.Hour, Capacity: 1, Quantum: 1,
	})
	r := gin.New()
	r.Use(RateLimiter(l))
	r.POST("/api/user/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/sync", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodPost, "/api/user/login", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, httptest.NewRequest(http.MethodPost, "/api/user/login", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodPost, "/api/sync", nil)).Code)
}

func TestRecoveryAndLang(t *testing.T) {
	r := gin.New()
	r.Use(LangWithTranslator(nil), RecoveryWithLogger(zap.NewNop()))
	r.GET("/panic", func(c *gin.Context) { panic(errors.New("boom")) })
	r.GET("/lang", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(app.LangKey)) })
	r.NoRoute(NoFound())

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set("lang", "zh-CN")
	rec := serve(r, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	res := decodeRes(t, rec)
	assert.Equal(t, code.ErrorServerInternal.Code(), res.Code)
	assert.Equal(t, "服务器内部错误", res.Message)
	assert.Equal(t, "boom", res.Details)

	req = httptest.NewRequest(http.MethodGet, "/lang", nil)
	req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9")
	assert.Equal(t, "zh_cn", serve(r, req).Body.String())
	assert.Equal(t, "en", serve(r, httptest.NewRequest(http.MethodGet, "/lang?lang=fr", nil)).Body.String())

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContextTimeout(t *testing.T) {
	r := gin.New()
	r.Use(ContextTimeout(time.Minute))
	r.GET("/", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": ok})
	})
	assert.JSONEq(t, `{"deadline":true}`, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String())

	r = gin.New()
	r.Use(ContextTimeout(0))
	r.GET("/", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": ok})
	})
	assert.JSONEq(t, `{"deadline":false}`, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String())
}
