// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import "time"

// UserRegisterRequest User registration request parameters
// 用户注册请求参数
type UserRegisterRequest struct {
	Username        string `json:"username" form:"username" binding:"required,username"`                     // User name // 用户名
	Password        string `json:"password" form:"password" binding:"required,min=6,max=128"`                // User password // 用户密码
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" binding:"required,eqfield=Password"` // Confirm password // 校验密码
}

// UserLoginRequest User login request parameters
// 用户登录请求参数
type UserLoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"` // User name // 用户名
	Password string `json:"password" form:"password" binding:"required"` // Password // 密码
}

// ---------------- DTO / Response ----------------

// UserDTO User data transfer object
// UserDTO 用户数据传输对象
type UserDTO struct {
	UID       int64     `json:"uid"`             // User ID (primary key) // 用户唯一标识（主键）
	Username  string    `json:"username"`        // Username // 用户名
	Token     string    `json:"token,omitempty"` // Authentication Token // 认证 Token
	UpdatedAt time.Time `json:"updatedAt"`       // Last updated time // 最后更新时间
	CreatedAt time.Time `json:"createdAt"`       // Account created time // 账号创建时间
}
