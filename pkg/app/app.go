package app

import (
	"strings"

	"github.com/haierkeys/memo-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// LangKey is the gin context key holding the negotiated response language.
// LangKey gin 上下文中保存响应语言的键
const LangKey = "lang"

type Response struct {
	Ctx *gin.Context
}

// Res is the unified response structure: Code/Status/Msg/Data
// Res 是统一的响应结构：Code/Status/Msg/Data
type Res struct {
	Code    int         `json:"code"`
	Status  bool        `json:"status"`
	Message interface{} `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func NewResponse(ctx *gin.Context) *Response {
	return &Response{
		Ctx: ctx,
	}
}

// GetRequestIP gets the request IP
// GetRequestIP 获取ip
func GetRequestIP(c *gin.Context) string {
	reqIP := c.ClientIP()
	if reqIP == "::1" {
		reqIP = "127.0.0.1"
	}
	return reqIP
}

func GetAccessHost(c *gin.Context) string {
	return GetRequestScheme(c, true) + "://" + c.Request.Host
}

// GetRequestScheme returns "https" or "http". X-Forwarded-Proto is only honoured when trustProxy is set.
// GetRequestScheme 获取请求协议，仅在 trustProxy 时读取 X-Forwarded-Proto
func GetRequestScheme(c *gin.Context, trustProxy bool) string {
	if trustProxy {
		if proto := c.Request.Header.Get("X-Forwarded-Proto"); proto != "" {
			// 多级代理时取第一个
			proto, _, _ = strings.Cut(proto, ",")
			return strings.ToLower(strings.TrimSpace(proto))
		}
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}

// ToResponse writes the coded envelope using the code's HTTP status.
// ToResponse 输出到浏览器：统一使用 Res
func (r *Response) ToResponse(codeObj *code.Code) {
	r.Ctx.Set("status_code", codeObj.StatusCode())

	content := Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.MsgIn(r.Ctx.GetString(LangKey)),
		Data:    codeObj.Data(),
	}

	if codeObj.HaveDetails() {
		content.Details = strings.Join(codeObj.Details(), ",")
	}

	r.send(codeObj.StatusCode(), content)
}

// ToRaw writes a payload without the envelope, for endpoints with a fixed wire format.
// ToRaw 直接输出数据，不包装响应结构
func (r *Response) ToRaw(statusCode int, payload interface{}) {
	r.Ctx.Set("status_code", statusCode)
	r.send(statusCode, payload)
}

func (r *Response) send(statusCode int, content interface{}) {
	r.Ctx.JSON(statusCode, content)
}
