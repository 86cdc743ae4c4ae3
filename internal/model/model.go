// Package model 定义数据库模型
package model

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表
type User struct {
	UID       int64     `gorm:"column:uid;primaryKey;autoIncrement" json:"uid"`
	Username  string    `gorm:"column:username;size:64;uniqueIndex" json:"username"`
	Password  string    `gorm:"column:password;size:255" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// Memo 备忘录表，payload 为备忘录的完整 JSON
type Memo struct {
	UID     int64  `gorm:"column:uid;primaryKey;autoIncrement:false"`
	MemoID  string `gorm:"column:memo_id;primaryKey;size:191"`
	Payload string `gorm:"column:payload"`
}

// MemoTombstone 删除标记表
type MemoTombstone struct {
	UID       int64     `gorm:"column:uid;primaryKey;autoIncrement:false"`
	MemoID    string    `gorm:"column:memo_id;primaryKey;size:191"`
	DeletedAt time.Time `gorm:"column:deleted_at"`
}

// RevokedToken 已注销的令牌，过期后可清理
type RevokedToken struct {
	JTI       string    `gorm:"column:jti;primaryKey;size:64"`
	UID       int64     `gorm:"column:uid;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// AutoMigrate 创建或更新所有表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Memo{}, &MemoTombstone{}, &RevokedToken{})
}
