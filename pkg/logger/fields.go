package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldUID 用户 ID 字段
	FieldUID = "uid"

	// FieldAction 操作类型字段
	FieldAction = "action"

	// FieldMemoID 备忘录 ID 字段
	FieldMemoID = "memoId"

	// FieldStatus 同步结果状态字段
	FieldStatus = "status"

	// FieldBackend 持久化后端字段
	FieldBackend = "backend"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldError 错误信息字段
	FieldError = "error"

	// FieldCount 数量字段
	FieldCount = "count"

	// FieldFileKey 文件键字段
	FieldFileKey = "fileKey"
)
