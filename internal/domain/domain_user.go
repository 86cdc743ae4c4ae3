package domain

import "time"

// User 用户领域模型
type User struct {
	UID       int64
	Username  string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
