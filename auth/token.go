package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid 对调用方不区分过期、篡改和格式错误，统一归为无效token
var ErrTokenInvalid = errors.New("无效的token")

// TokenService 签发和验证JWT token，密钥和有效期来自进程配置
type TokenService struct {
	secret []byte
	exp    time.Duration
}

// NewTokenService 创建token服务
func NewTokenService(secret []byte, exp time.Duration) *TokenService {
	return &TokenService{secret: secret, exp: exp}
}

// NewToken 为指定用户签发带有效期的token，载荷只携带用户ID
func (s *TokenService) NewToken(userID string) (string, error) {
	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.exp)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken 验证token的签名和有效期，返回其中携带的用户ID
func (s *TokenService) VerifyToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}
