package db

import (
	"context"
	"testing"

	"TaskLists/crud"

	"github.com/stretchr/testify/require"
)

func createTestUser(t *testing.T, d *Database, email string) *User {
	t.Helper()
	user, err := NewUserStore(d).Create(context.Background(), email, "p")
	require.NoError(t, err)
	return user
}

func TestListCreateStampsOwner(t *testing.T) {
	d := newTestDB(t)
	store := NewListStore(d)
	ctx := context.Background()
	owner := createTestUser(t, d, "a@x.com")

	list, err := store.CreateOne(ctx, owner.ID, ListPayload{Name: ptr("购物")})
	require.NoError(t, err)
	require.NotEmpty(t, list.ID)
	require.Equal(t, owner.ID, list.CreatedBy)
	require.False(t, list.CreatedAt.IsZero())

	found, err := store.GetOne(ctx, owner.ID, list.ID)
	require.NoError(t, err)
	require.Equal(t, "购物", found.Name)
	require.Equal(t, owner.ID, found.CreatedBy)
}

func TestListOwnershipIsolation(t *testing.T) {
	d := newTestDB(t)
	store := NewListStore(d)
	ctx := context.Background()
	alice := createTestUser(t, d, "alice@x.com")
	bob := createTestUser(t, d, "bob@x.com")

	list, err := store.CreateOne(ctx, alice.ID, ListPayload{Name: ptr("private")})
	require.NoError(t, err)

	// 他人的记录和不存在的记录表现完全一致
	_, err = store.GetOne(ctx, bob.ID, list.ID)
	require.ErrorIs(t, err, crud.ErrNotFound)

	_, err = store.UpdateOne(ctx, bob.ID, list.ID, ListPayload{Name: ptr("stolen")})
	require.ErrorIs(t, err, crud.ErrNotFound)

	_, err = store.RemoveOne(ctx, bob.ID, list.ID)
	require.ErrorIs(t, err, crud.ErrNotFound)

	lists, err := store.GetMany(ctx, bob.ID)
	require.NoError(t, err)
	require.Empty(t, lists)

	// 原记录未被越权操作改动
	found, err := store.GetOne(ctx, alice.ID, list.ID)
	require.NoError(t, err)
	require.Equal(t, "private", found.Name)
}

func TestListUpdateReturnsNewState(t *testing.T) {
	d := newTestDB(t)
	store := NewListStore(d)
	ctx := context.Background()
	owner := createTestUser(t, d, "a@x.com")

	list, err := store.CreateOne(ctx, owner.ID, ListPayload{Name: ptr("before"), Description: ptr("desc")})
	require.NoError(t, err)

	updated, err := store.UpdateOne(ctx, owner.ID, list.ID, ListPayload{Name: ptr("after")})
	require.NoError(t, err)
	require.Equal(t, "after", updated.Name)
	// 未出现在请求体里的字段保持原值
	require.Equal(t, "desc", updated.Description)
}

func TestListCreateMissingName(t *testing.T) {
	d := newTestDB(t)
	store := NewListStore(d)
	owner := createTestUser(t, d, "a@x.com")

	_, err := store.CreateOne(context.Background(), owner.ID, ListPayload{})
	require.ErrorIs(t, err, crud.ErrValidation)

	// 纯空白名称同样拒绝
	_, err = store.CreateOne(context.Background(), owner.ID, ListPayload{Name: ptr("   ")})
	require.ErrorIs(t, err, crud.ErrValidation)
}

func TestListRemoveReturnsLastState(t *testing.T) {
	d := newTestDB(t)
	store := NewListStore(d)
	ctx := context.Background()
	owner := createTestUser(t, d, "a@x.com")

	list, err := store.CreateOne(ctx, owner.ID, ListPayload{Name: ptr("done")})
	require.NoError(t, err)

	removed, err := store.RemoveOne(ctx, owner.ID, list.ID)
	require.NoError(t, err)
	require.Equal(t, "done", removed.Name)

	_, err = store.GetOne(ctx, owner.ID, list.ID)
	require.ErrorIs(t, err, crud.ErrNotFound)

	_, err = store.RemoveOne(ctx, owner.ID, list.ID)
	require.ErrorIs(t, err, crud.ErrNotFound)
}
