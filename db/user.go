package db

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserStore 用户存储，服务于注册、登录和认证中间件的身份解析
type UserStore struct {
	db *Database
}

// NewUserStore 创建用户存储
func NewUserStore(db *Database) *UserStore {
	return &UserStore{db: db}
}

// 生成密码哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// 验证密码
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Create 创建新用户，密码以哈希形式入库
func (s *UserStore) Create(ctx context.Context, email, password string) (*User, error) {
	hashed, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &User{
		ID:        uuid.NewString(),
		Email:     strings.TrimSpace(email),
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
	INSERT INTO users (id, email, password, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	`
	_, err = s.db.sql.ExecContext(ctx, query,
		user.ID, user.Email, hashed, timeToString(now), timeToString(now),
	)
	if err != nil {
		return nil, classify(err)
	}

	return user, nil
}

// FindByEmail 按邮箱查找用户，包含密码哈希，仅供登录校验使用
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
	SELECT id, email, password, created_at, updated_at
	FROM users
	WHERE email = ?
	`

	var user User
	var createdAtStr, updatedAtStr string

	err := s.db.sql.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.Password, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, classify(err)
	}

	if user.CreatedAt, err = stringToTime(createdAtStr); err != nil {
		return nil, err
	}
	if user.UpdatedAt, err = stringToTime(updatedAtStr); err != nil {
		return nil, err
	}

	return &user, nil
}

// FindByID 按ID查找用户，密码字段不在查询列里
func (s *UserStore) FindByID(ctx context.Context, id string) (*User, error) {
	query := `
	SELECT id, email, created_at, updated_at
	FROM users
	WHERE id = ?
	`

	var user User
	var createdAtStr, updatedAtStr string

	err := s.db.sql.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Email, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, classify(err)
	}

	if user.CreatedAt, err = stringToTime(createdAtStr); err != nil {
		return nil, err
	}
	if user.UpdatedAt, err = stringToTime(updatedAtStr); err != nil {
		return nil, err
	}

	return &user, nil
}
