// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	User UserServiceConfig // User related config // 用户相关配置
	Sync SyncServiceConfig // Sync related config // 同步相关配置
}

// UserServiceConfig user service configuration
// UserServiceConfig 用户服务配置
type UserServiceConfig struct {
	RegisterIsEnable bool // Whether registration is enabled // 注册是否启用
}

// SyncServiceConfig sync service configuration
// SyncServiceConfig 同步服务配置
type SyncServiceConfig struct {
	MaxMemosPerRequest int // Upper bound of memos plus deletions per request, 0 for unlimited // 单次请求的备忘录与删除条目上限，0 表示不限制
}
