package main

import (
	"time"

	"github.com/spf13/viper"
)

// Config 进程配置，全部来自环境变量，未设置时使用默认值
type Config struct {
	Addr      string        // 监听地址
	DBPath    string        // SQLite数据库文件路径
	JWTSecret string        // token签名密钥
	JWTExp    time.Duration // token有效期
}

// LoadConfig 读取TASKLISTS_*环境变量
func LoadConfig() Config {
	v := viper.New()
	v.SetEnvPrefix("tasklists")
	v.AutomaticEnv()

	v.SetDefault("addr", ":8080")
	v.SetDefault("db_path", "./data/tasklists.db")
	// 默认密钥仅供本地开发，生产环境必须通过环境变量覆盖
	v.SetDefault("jwt_secret", "default_secret_key_for_development")
	v.SetDefault("jwt_exp", "240h")

	return Config{
		Addr:      v.GetString("addr"),
		DBPath:    v.GetString("db_path"),
		JWTSecret: v.GetString("jwt_secret"),
		JWTExp:    v.GetDuration("jwt_exp"),
	}
}
