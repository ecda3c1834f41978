package crud

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type widget struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
	Text  string `json:"text"`
}

type widgetPayload struct {
	Text *string `json:"text"`
}

// fakeStore 可编程的存储替身，记录引擎传入的参数
type fakeStore struct {
	gotOwner   string
	gotID      string
	gotPayload widgetPayload

	doc  *widget
	docs []widget
	err  error
}

func (f *fakeStore) GetOne(ctx context.Context, ownerID, id string) (*widget, error) {
	f.gotOwner, f.gotID = ownerID, id
	return f.doc, f.err
}

func (f *fakeStore) GetMany(ctx context.Context, ownerID string) ([]widget, error) {
	f.gotOwner = ownerID
	return f.docs, f.err
}

func (f *fakeStore) CreateOne(ctx context.Context, ownerID string, p widgetPayload) (*widget, error) {
	f.gotOwner, f.gotPayload = ownerID, p
	return f.doc, f.err
}

func (f *fakeStore) UpdateOne(ctx context.Context, ownerID, id string, p widgetPayload) (*widget, error) {
	f.gotOwner, f.gotID, f.gotPayload = ownerID, id, p
	return f.doc, f.err
}

func (f *fakeStore) RemoveOne(ctx context.Context, ownerID, id string) (*widget, error) {
	f.gotOwner, f.gotID = ownerID, id
	return f.doc, f.err
}

// 挂上引擎路由，并模拟认证中间件注入调用者身份
func newTestHandler(t *testing.T, store *fakeStore, ownerID string) http.Handler {
	t.Helper()
	engine := NewEngine[widget, widgetPayload](store, zaptest.NewLogger(t))

	r := chi.NewRouter()
	if ownerID != "" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), ownerID)))
			})
		})
	}
	r.Mount("/", engine.Routes())
	return r
}

func TestEngineRequiresOwner(t *testing.T) {
	handler := newTestHandler(t, &fakeStore{}, "")

	requests := []struct {
		method, path string
	}{
		{"GET", "/"},
		{"POST", "/"},
		{"GET", "/abc"},
		{"PUT", "/abc"},
		{"DELETE", "/abc"},
	}
	for _, tc := range requests {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
		require.Empty(t, rec.Body.String())
	}
}

func TestEngineGetOne(t *testing.T) {
	store := &fakeStore{doc: &widget{ID: "w1", Owner: "alice", Text: "hi"}}
	handler := newTestHandler(t, store, "alice")

	req := httptest.NewRequest("GET", "/w1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "alice", store.gotOwner)
	require.Equal(t, "w1", store.gotID)
	require.JSONEq(t, `{"data":{"id":"w1","owner":"alice","text":"hi"}}`, rec.Body.String())
}

func TestEngineGetManyEmpty(t *testing.T) {
	// 空结果返回空数组而不是null
	handler := newTestHandler(t, &fakeStore{docs: nil}, "alice")

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestEngineCreate(t *testing.T) {
	store := &fakeStore{doc: &widget{ID: "w1", Owner: "alice", Text: "hi"}}
	handler := newTestHandler(t, store, "alice")

	// 请求体里伪造的所有者字段不会进入载荷类型，所有者只来自调用者身份
	body := `{"text":"hi","owner":"evil"}`
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "alice", store.gotOwner)
	require.NotNil(t, store.gotPayload.Text)
	require.Equal(t, "hi", *store.gotPayload.Text)
}

func TestEngineCreateBadJSON(t *testing.T) {
	store := &fakeStore{}
	handler := newTestHandler(t, store, "alice")

	req := httptest.NewRequest("POST", "/", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, rec.Body.String())
}

func TestEngineUpdate(t *testing.T) {
	store := &fakeStore{doc: &widget{ID: "w1", Owner: "alice", Text: "after"}}
	handler := newTestHandler(t, store, "alice")

	req := httptest.NewRequest("PUT", "/w1", strings.NewReader(`{"text":"after"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "w1", store.gotID)

	var resp struct {
		Data widget `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "after", resp.Data.Text)
}

func TestEngineRemoveReturnsLastState(t *testing.T) {
	store := &fakeStore{doc: &widget{ID: "w1", Owner: "alice", Text: "bye"}}
	handler := newTestHandler(t, store, "alice")

	req := httptest.NewRequest("DELETE", "/w1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":{"id":"w1","owner":"alice","text":"bye"}}`, rec.Body.String())
}

func TestEngineErrorMapping(t *testing.T) {
	// 不存在、校验失败和未预期的错误一律映射为400空响应体
	for _, err := range []error{ErrNotFound, ErrValidation, errors.New("磁盘损坏")} {
		store := &fakeStore{err: err}
		handler := newTestHandler(t, store, "alice")

		req := httptest.NewRequest("GET", "/w1", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code, "err %v", err)
		require.Empty(t, rec.Body.String())
	}
}
