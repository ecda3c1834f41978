package db

import "time"

// 条目状态常量
const (
	StatusActive   = "active"
	StatusComplete = "complete"
	StatusPastDue  = "pastdue"
)

// User 用户实体，密码只在登录校验时查出
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// List 清单实体，created_by在创建后不可变更
type List struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Item 条目实体，同一清单下名称唯一
type Item struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	Notes     string     `json:"notes,omitempty"`
	Due       *time.Time `json:"due,omitempty"`
	CreatedBy string     `json:"created_by"`
	ListID    string     `json:"list_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ListPayload 清单的创建/更新请求体，nil表示未提供该字段
// 不含所有者字段，所有者一律由引擎按调用者身份注入
type ListPayload struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// ItemPayload 条目的创建/更新请求体，nil表示未提供该字段
type ItemPayload struct {
	Name   *string    `json:"name"`
	Status *string    `json:"status"`
	Notes  *string    `json:"notes"`
	Due    *time.Time `json:"due"`
	ListID *string    `json:"list_id"`
}
