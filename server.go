package main

import (
	"net/http"

	"TaskLists/auth"
	"TaskLists/crud"
	"TaskLists/db"

	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// Server 组装认证服务、各资源的CRUD引擎和路由
type Server struct {
	router chi.Router
}

// NewServer 创建服务端，所有依赖显式注入
func NewServer(cfg Config, database *db.Database, log *zap.Logger) *Server {
	users := db.NewUserStore(database)
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.JWTExp)
	authService := auth.NewService(users, tokens, log)

	// 每种资源实例化一个引擎，新增资源只需要在这里多挂一行
	lists := crud.NewEngine[db.List, db.ListPayload](db.NewListStore(database), log)
	items := crud.NewEngine[db.Item, db.ItemPayload](db.NewItemStore(database), log)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		// 认证相关路由（不需要验证）
		r.Post("/auth/signup", authService.Signup)
		r.Post("/auth/signin", authService.Signin)

		// 资源路由（需要验证）
		r.Group(func(r chi.Router) {
			r.Use(authService.Protect)
			r.Mount("/list", lists.Routes())
			r.Mount("/item", items.Routes())
		})
	})

	return &Server{router: r}
}

// Handler 返回完整的HTTP处理器
func (s *Server) Handler() http.Handler {
	return s.router
}
