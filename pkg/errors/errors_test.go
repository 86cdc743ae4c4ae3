package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haierkeys/memo-sync-service/internal/middleware"
	"github.com/haierkeys/memo-sync-service/pkg/app"
	"github.com/haierkeys/memo-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var errDiskFull = errors.New("disk full")

func respond(t *testing.T, err error, lang string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	r := gin.New()
	r.Use(middleware.TraceMiddlewareWithConfig(true, ""))
	r.GET("/", func(c *gin.Context) {
		if lang != "" {
			c.Set(app.LangKey, lang)
		}
		ErrorResponse(c, err)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.DefaultTraceIDHeader, "trace-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestAppErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("sync: %w", NewAppError(code.ErrorSyncPersist, errDiskFull))

	var c *code.Code
	require.ErrorAs(t, err, &c)
	assert.Equal(t, code.ErrorSyncPersist.Code(), c.Code())
	assert.ErrorIs(t, err, errDiskFull)
	assert.True(t, IsAppError(err))
	assert.Equal(t, http.StatusServiceUnavailable, GetAppError(err).StatusCode())
	assert.Contains(t, err.Error(), "disk full")

	assert.Nil(t, GetAppError(errDiskFull))
}

func TestErrorResponseAppError(t *testing.T) {
	rec, body := respond(t, NewAppError(code.ErrorSyncPersist, errDiskFull).WithDetails("user_1"), "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.EqualValues(t, code.ErrorSyncPersist.Code(), body["code"])
	assert.Equal(t, false, body["status"])
	assert.Equal(t, "trace-1", body["traceId"])
	assert.Equal(t, []any{"user_1"}, body["details"])
	assert.NotEmpty(t, body["timestamp"])
	assert.NotContains(t, body, "cause")
}

func TestErrorResponseCode(t *testing.T) {
	rec, body := respond(t, code.ErrorUserAlreadyExists, "zh-cn")

	assert.Equal(t, code.ErrorUserAlreadyExists.StatusCode(), rec.Code)
	assert.EqualValues(t, code.ErrorUserAlreadyExists.Code(), body["code"])
	assert.Equal(t, code.ErrorUserAlreadyExists.MsgIn("zh-cn"), body["message"])
	assert.Equal(t, "trace-1", body["traceId"])
}

func TestErrorResponseUnknown(t *testing.T) {
	rec, body := respond(t, errDiskFull, "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.EqualValues(t, code.ErrorServerInternal.Code(), body["code"])
	assert.Equal(t, "trace-1", body["traceId"])
}
