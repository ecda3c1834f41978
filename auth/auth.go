package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"TaskLists/crud"
	"TaskLists/db"

	"go.uber.org/zap"
)

// 登录失败的统一提示，邮箱不存在和密码错误返回完全相同的响应，避免探测注册邮箱
const invalidCredentialsMessage = "Invalid email and passoword combination"

// Service 认证服务：注册、登录和保护中间件
type Service struct {
	users  *db.UserStore
	tokens *TokenService
	log    *zap.Logger
}

// NewService 创建认证服务
func NewService(users *db.UserStore, tokens *TokenService, log *zap.Logger) *Service {
	return &Service{users: users, tokens: tokens, log: log}
}

type userKey struct{}

// CurrentUser 从context读取中间件解析出的用户
func CurrentUser(ctx context.Context) (*db.User, bool) {
	user, ok := ctx.Value(userKey{}).(*db.User)
	return user, ok
}

// Protect 认证中间件，每个受保护的接口都经过这里
// 按顺序执行：提取Bearer token → 验证 → 解析用户 → 绑定到context，任一步失败即401
func (s *Service) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 获取Authorization头
		bearer := r.Header.Get("Authorization")
		if !strings.HasPrefix(bearer, "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(bearer, "Bearer "))
		if tokenString == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		// 验证token
		userID, err := s.tokens.VerifyToken(tokenString)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		// 解析用户，token有效但用户已不存在同样拒绝
		user, err := s.users.FindByID(r.Context(), userID)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		// 将用户身份绑定到context供后续处理使用
		ctx := context.WithValue(r.Context(), userKey{}, user)
		ctx = crud.WithOwner(ctx, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup 用户注册，成功后直接签发token
func (s *Service) Signup(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		s.respondMessage(w, http.StatusBadRequest, "need email and password")
		return
	}

	// 验证输入
	if creds.Email == "" || creds.Password == "" {
		s.respondMessage(w, http.StatusBadRequest, "need email and password")
		return
	}

	user, err := s.users.Create(r.Context(), creds.Email, creds.Password)
	if err != nil {
		// 存储层失败（包括邮箱重复）不向客户端暴露细节
		s.log.Error("创建用户失败", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	token, err := s.tokens.NewToken(user.ID)
	if err != nil {
		s.log.Error("签发token失败", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	s.respondToken(w, token)
}

// Signin 用户登录
func (s *Service) Signin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		s.respondMessage(w, http.StatusBadRequest, "need email and password")
		return
	}

	// 验证输入
	if creds.Email == "" || creds.Password == "" {
		s.respondMessage(w, http.StatusBadRequest, "need email and password")
		return
	}

	// 登录校验需要查出密码哈希
	user, err := s.users.FindByEmail(r.Context(), creds.Email)
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			s.respondMessage(w, http.StatusUnauthorized, invalidCredentialsMessage)
			return
		}
		s.log.Error("查询用户失败", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// 验证密码
	if !db.CheckPassword(creds.Password, user.Password) {
		s.respondMessage(w, http.StatusUnauthorized, invalidCredentialsMessage)
		return
	}

	token, err := s.tokens.NewToken(user.ID)
	if err != nil {
		s.log.Error("签发token失败", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	s.respondToken(w, token)
}

func (s *Service) respondToken(w http.ResponseWriter, token string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token": token,
	})
}

func (s *Service) respondMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": message,
	})
}
