package code

import "net/http"

var (
	Success = NewSuss(1, lang{en: "Operation Success", zh_cn: "操作成功"})

	ErrorServerInternal   = NewError(500, lang{en: "Server Internal Error", zh_cn: "服务器内部错误"}).withHTTPStatus(http.StatusInternalServerError)
	ErrorNotFoundAPI      = NewError(404, lang{en: "API not found", zh_cn: "找不到API"}).withHTTPStatus(http.StatusNotFound)
	ErrorInvalidParams    = NewError(400, lang{en: "Invalid parameters", zh_cn: "参数验证失败"}).withHTTPStatus(http.StatusBadRequest)
	ErrorTooManyRequests  = NewError(429, lang{en: "Too many requests", zh_cn: "请求过多"}).withHTTPStatus(http.StatusTooManyRequests)
	ErrorRequestTimeout   = NewError(408, lang{en: "Request timed out", zh_cn: "请求超时"}).withHTTPStatus(http.StatusRequestTimeout)
	ErrorNotUserAuthToken = NewError(401, lang{en: "Authorization token not found", zh_cn: "缺少授权令牌"}).withHTTPStatus(http.StatusUnauthorized)

	ErrorInvalidUserAuthToken = NewError(402, lang{en: "Invalid authorization token", zh_cn: "授权令牌无效"}).withHTTPStatus(http.StatusUnauthorized)

	ErrorDBQuery          = NewError(505, lang{en: "Database query failed", zh_cn: "数据库查询失败"}).withHTTPStatus(http.StatusInternalServerError)
	ErrorTokenGenerate    = NewError(506, lang{en: "Failed to generate token", zh_cn: "生成令牌失败"}).withHTTPStatus(http.StatusInternalServerError)
	ErrorPasswordNotValid = NewError(507, lang{en: "Invalid username or password", zh_cn: "用户名或密码错误"}).withHTTPStatus(http.StatusUnauthorized)

	ErrorUserRegisterIsDisable = NewError(508, lang{en: "User registration is closed", zh_cn: "用户注册已关闭"}).withHTTPStatus(http.StatusForbidden)
	ErrorUserAlreadyExists     = NewError(509, lang{en: "Username already exists", zh_cn: "用户名已存在"}).withHTTPStatus(http.StatusConflict)
	ErrorUserNotFound          = NewError(510, lang{en: "User not found", zh_cn: "用户不存在"}).withHTTPStatus(http.StatusNotFound)
	ErrorHTTPSRequired         = NewError(511, lang{en: "HTTPS is required", zh_cn: "必须使用 HTTPS 访问"}).withHTTPStatus(http.StatusForbidden)

	ErrorSyncPayload     = NewError(600, lang{en: "Malformed sync payload", zh_cn: "同步请求格式错误"}).withHTTPStatus(http.StatusBadRequest)
	ErrorSyncTooManyMemo = NewError(601, lang{en: "Too many memos in one sync request", zh_cn: "单次同步的备忘录数量过多"}).withHTTPStatus(http.StatusRequestEntityTooLarge)
	ErrorSyncPersist     = NewError(602, lang{en: "Sync could not be saved, please retry", zh_cn: "同步结果保存失败，请重试"}).withHTTPStatus(http.StatusServiceUnavailable)
	ErrorSyncLoad        = NewError(603, lang{en: "Memo store could not be loaded", zh_cn: "备忘录存储加载失败"}).withHTTPStatus(http.StatusServiceUnavailable)
	ErrorSyncInternal    = NewError(604, lang{en: "Sync failed on an inconsistent memo", zh_cn: "同步遇到不一致的备忘录"}).withHTTPStatus(http.StatusInternalServerError)
)
