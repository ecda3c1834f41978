package crud

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// 存储层错误分类，引擎据此映射响应
var (
	ErrNotFound   = errors.New("记录不存在")
	ErrValidation = errors.New("数据校验失败")
)

// Store 按所有者隔离的五个存储操作，每种资源实现一次
// 所有读写都以 (ownerID, id) 为作用域，越权访问和不存在一律返回 ErrNotFound
type Store[T any, P any] interface {
	GetOne(ctx context.Context, ownerID, id string) (*T, error)
	GetMany(ctx context.Context, ownerID string) ([]T, error)
	CreateOne(ctx context.Context, ownerID string, payload P) (*T, error)
	UpdateOne(ctx context.Context, ownerID, id string, payload P) (*T, error)
	RemoveOne(ctx context.Context, ownerID, id string) (*T, error)
}

// 调用者身份通过context传递，由认证中间件写入
type ownerKey struct{}

// WithOwner 将调用者的用户ID绑定到context
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// OwnerFromContext 从context读取调用者的用户ID
func OwnerFromContext(ctx context.Context) (string, bool) {
	ownerID, ok := ctx.Value(ownerKey{}).(string)
	return ownerID, ok
}

// Engine 通用CRUD控制器，按资源类型实例化一次
// 所有权约束只在这里编码一次，各资源适配器不再重复实现
type Engine[T any, P any] struct {
	store Store[T, P]
	log   *zap.Logger
}

// NewEngine 创建绑定到某个存储适配器的CRUD引擎
func NewEngine[T any, P any](store Store[T, P], log *zap.Logger) *Engine[T, P] {
	return &Engine[T, P]{store: store, log: log}
}

// Routes 挂载五个标准路由
func (e *Engine[T, P]) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", e.GetMany)
	r.Post("/", e.CreateOne)
	r.Get("/{id}", e.GetOne)
	r.Put("/{id}", e.UpdateOne)
	r.Delete("/{id}", e.RemoveOne)
	return r
}

// GetOne 获取单条记录
func (e *Engine[T, P]) GetOne(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	doc, err := e.store.GetOne(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		e.fail(w, err)
		return
	}

	e.respond(w, http.StatusOK, doc)
}

// GetMany 获取调用者的全部记录
func (e *Engine[T, P]) GetMany(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	docs, err := e.store.GetMany(r.Context(), ownerID)
	if err != nil {
		e.fail(w, err)
		return
	}

	// 空结果返回空数组而不是null
	if docs == nil {
		docs = []T{}
	}

	e.respond(w, http.StatusOK, docs)
}

// CreateOne 创建记录，所有者一律取自调用者身份，请求体里的所有者字段无效
func (e *Engine[T, P]) CreateOne(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var payload P
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	doc, err := e.store.CreateOne(r.Context(), ownerID, payload)
	if err != nil {
		e.fail(w, err)
		return
	}

	e.respond(w, http.StatusCreated, doc)
}

// UpdateOne 更新 (owner, id) 匹配的记录，返回更新后的状态
func (e *Engine[T, P]) UpdateOne(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var payload P
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	doc, err := e.store.UpdateOne(r.Context(), ownerID, chi.URLParam(r, "id"), payload)
	if err != nil {
		e.fail(w, err)
		return
	}

	e.respond(w, http.StatusOK, doc)
}

// RemoveOne 删除 (owner, id) 匹配的记录，返回删除前的最后状态
func (e *Engine[T, P]) RemoveOne(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	doc, err := e.store.RemoveOne(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		e.fail(w, err)
		return
	}

	e.respond(w, http.StatusOK, doc)
}

// 统一的失败出口：一律400空响应体，未预期的错误只记日志不改变响应
func (e *Engine[T, P]) fail(w http.ResponseWriter, err error) {
	if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrValidation) {
		e.log.Error("存储操作失败", zap.Error(err))
	}
	w.WriteHeader(http.StatusBadRequest)
}

func (e *Engine[T, P]) respond(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": v,
	})
}
