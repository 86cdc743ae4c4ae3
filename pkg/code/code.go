package code

import (
	"fmt"
	"net/http"
)

// Code is a response code carrying a bilingual message, an HTTP status and optional payload.
// Code 响应码，包含双语消息、HTTP 状态以及可选的数据
type Code struct {
	// 状态码
	code int
	// 状态
	status bool
	// HTTP 状态码
	httpStatus int
	// 错误消息
	Lang lang
	// 数据
	data interface{}
	// 是否含有Data
	haveData bool
	// 错误详细信息
	details []string
	// 是否含有详情
	haveDetails bool
}

var codes = map[int]string{}
var sussCodes = map[int]string{}

// NewError registers a failure code. Registering the same code twice panics.
// NewError 注册一个错误码，重复注册会 panic
func NewError(code int, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("错误码 %d 已经存在，请更换一个", code))
	}
	codes[code] = l.Message(FALLBACK_LNG)

	return &Code{code: code, status: false, httpStatus: http.StatusOK, Lang: l}
}

// NewSuss registers a success code.
// NewSuss 注册一个成功码
func NewSuss(code int, l lang) *Code {
	if _, ok := sussCodes[code]; ok {
		panic(fmt.Sprintf("成功码 %d 已经存在，请更换一个", code))
	}
	sussCodes[code] = l.Message(FALLBACK_LNG)

	return &Code{code: code, status: true, httpStatus: http.StatusOK, Lang: l}
}

// withHTTPStatus sets the HTTP status at definition time.
func (e *Code) withHTTPStatus(status int) *Code {
	e.httpStatus = status
	return e
}

// Clone 创建一个新的 Code 副本
func (e *Code) Clone() *Code {
	return &Code{
		code:       e.code,
		status:     e.status,
		httpStatus: e.httpStatus,
		Lang:       e.Lang,
		data:       e.data,
		haveData:   e.haveData,
		details:    append([]string(nil), e.details...),

		haveDetails: e.haveDetails,
	}
}

func (e *Code) Error() string {
	return e.Msg()
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

// Msg returns the message in the fallback language.
func (e *Code) Msg() string {
	return e.Lang.Message(FALLBACK_LNG)
}

// MsgIn returns the message in the given language.
// MsgIn 返回指定语言的消息
func (e *Code) MsgIn(language string) string {
	return e.Lang.Message(language)
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) HaveData() bool {
	return e.haveData
}

// WithData returns a copy carrying data; the registered code is never mutated.
// WithData 返回携带数据的副本，不修改已注册的码
func (e *Code) WithData(data interface{}) *Code {
	c := e.Clone()
	c.haveData = true
	c.data = data
	return c
}

// WithDetails returns a copy carrying details.
// WithDetails 返回携带详情的副本
func (e *Code) WithDetails(details ...string) *Code {
	c := e.Clone()
	c.haveDetails = true
	c.details = append([]string{}, details...)
	return c
}

func (e *Code) StatusCode() int {
	return e.httpStatus
}
