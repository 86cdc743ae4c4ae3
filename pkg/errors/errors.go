package errors

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haierkeys/memo-sync-service/internal/middleware"
	"github.com/haierkeys/memo-sync-service/pkg/app"
	"github.com/haierkeys/memo-sync-service/pkg/code"
)

// AppError 统一应用错误结构体
// 包含错误码、消息、详情、追踪ID和时间戳
type AppError struct {
	// Code 错误码
	Code int `json:"code"`
	// Status 固定为 false，与成功响应的 Res 结构保持一致
	Status bool `json:"status"`
	// Message 错误消息
	Message string `json:"message"`
	// Data 附加数据（可选）
	Data interface{} `json:"data,omitempty"`
	// Details 错误详情（可选）
	Details []string `json:"details,omitempty"`
	// TraceID 请求追踪ID
	TraceID string `json:"traceId,omitempty"`
	// Cause 原始错误（不序列化到JSON）
	Cause error `json:"-"`
	// Timestamp 错误发生时间
	Timestamp time.Time `json:"timestamp"`

	code *code.Code
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap 同时暴露错误码与原始错误，errors.As(*code.Code) 与 errors.Is(cause) 均可命中
func (e *AppError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.code != nil {
		out = append(out, e.code)
	}
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	return out
}

// StatusCode 返回错误码对应的 HTTP 状态
func (e *AppError) StatusCode() int {
	if e.code != nil {
		return e.code.StatusCode()
	}
	return code.ErrorServerInternal.StatusCode()
}

// NewAppError 从 Code 对象创建 AppError
func NewAppError(c *code.Code, cause error) *AppError {
	return &AppError{
		Code:      c.Code(),
		Message:   c.Msg(),
		Data:      c.Data(),
		Details:   c.Details(),
		Cause:     cause,
		Timestamp: time.Now(),
		code:      c,
	}
}

// WithTraceID 设置 TraceID 并返回自身（链式调用）
func (e *AppError) WithTraceID(traceID string) *AppError {
	e.TraceID = traceID
	return e
}

// WithDetails 设置详情并返回自身（链式调用）
func (e *AppError) WithDetails(details ...string) *AppError {
	e.Details = details
	return e
}

// ErrorResponse 统一错误响应处理
// 从请求上下文获取 TraceID，将错误转换为 AppError 并以错误码对应的 HTTP 状态返回
func ErrorResponse(c *gin.Context, err error) {
	appErr := GetAppError(err)
	if appErr == nil {
		var codeErr *code.Code
		if !errors.As(err, &codeErr) {
			codeErr = code.ErrorServerInternal
		}
		appErr = NewAppError(codeErr, err)
	}

	if lang := c.GetString(app.LangKey); lang != "" && appErr.code != nil {
		appErr.Message = appErr.code.MsgIn(lang)
	}
	appErr.TraceID = middleware.GetTraceID(c.Request.Context())
	if appErr.TraceID == "" {
		appErr.TraceID = middleware.GetTraceIDFromGin(c)
	}

	status := appErr.StatusCode()
	c.Set("status_code", status)
	c.JSON(status, appErr)
}

// IsAppError 检查错误是否为 AppError 类型
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 从错误链中获取 AppError
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
