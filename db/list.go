package db

import (
	"context"
	"strings"
	"time"

	"TaskLists/crud"

	"github.com/google/uuid"
)

// ListStore 清单存储适配器，实现引擎的五个按所有者隔离的操作
type ListStore struct {
	db *Database
}

var _ crud.Store[List, ListPayload] = (*ListStore)(nil)

// NewListStore 创建清单存储
func NewListStore(db *Database) *ListStore {
	return &ListStore{db: db}
}

// GetOne 获取 (owner, id) 匹配的清单
func (s *ListStore) GetOne(ctx context.Context, ownerID, id string) (*List, error) {
	query := `
	SELECT id, name, description, created_by, created_at, updated_at
	FROM lists
	WHERE created_by = ? AND id = ?
	`
	row := s.db.sql.QueryRowContext(ctx, query, ownerID, id)
	return scanList(row)
}

// GetMany 获取调用者的全部清单
func (s *ListStore) GetMany(ctx context.Context, ownerID string) ([]List, error) {
	query := `
	SELECT id, name, description, created_by, created_at, updated_at
	FROM lists
	WHERE created_by = ?
	`
	rows, err := s.db.sql.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []List
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, *list)
	}
	return lists, rows.Err()
}

// CreateOne 创建清单，所有者由调用者身份决定
func (s *ListStore) CreateOne(ctx context.Context, ownerID string, p ListPayload) (*List, error) {
	now := time.Now()
	list := &List{
		ID:        uuid.NewString(),
		CreatedBy: ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// 未提供的必填字段以NULL入库，由表约束拒绝
	var name interface{}
	if p.Name != nil {
		list.Name = strings.TrimSpace(*p.Name)
		name = list.Name
	}
	if p.Description != nil {
		list.Description = *p.Description
	}

	query := `
	INSERT INTO lists (id, name, description, created_by, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.sql.ExecContext(ctx, query,
		list.ID, name, list.Description, ownerID, timeToString(now), timeToString(now),
	)
	if err != nil {
		return nil, classify(err)
	}

	return list, nil
}

// UpdateOne 更新 (owner, id) 匹配的清单，只改动请求体里出现的字段，返回更新后的状态
func (s *ListStore) UpdateOne(ctx context.Context, ownerID, id string, p ListPayload) (*List, error) {
	now := time.Now()
	sets := []string{"updated_at = ?"}
	args := []interface{}{timeToString(now)}

	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, strings.TrimSpace(*p.Name))
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}

	args = append(args, ownerID, id)
	query := "UPDATE lists SET " + strings.Join(sets, ", ") + " WHERE created_by = ? AND id = ?"

	result, err := s.db.sql.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, crud.ErrNotFound
	}

	return s.GetOne(ctx, ownerID, id)
}

// RemoveOne 删除 (owner, id) 匹配的清单，返回删除前的状态
func (s *ListStore) RemoveOne(ctx context.Context, ownerID, id string) (*List, error) {
	list, err := s.GetOne(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	result, err := s.db.sql.ExecContext(ctx,
		"DELETE FROM lists WHERE created_by = ? AND id = ?", ownerID, id,
	)
	if err != nil {
		return nil, classify(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, crud.ErrNotFound
	}

	return list, nil
}

// 行扫描接口，QueryRow和Rows都满足
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanList(row rowScanner) (*List, error) {
	var list List
	var descriptionStr *string
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&list.ID, &list.Name, &descriptionStr, &list.CreatedBy, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, classify(err)
	}

	if descriptionStr != nil {
		list.Description = *descriptionStr
	}
	if list.CreatedAt, err = stringToTime(createdAtStr); err != nil {
		return nil, err
	}
	if list.UpdatedAt, err = stringToTime(updatedAtStr); err != nil {
		return nil, err
	}

	return &list, nil
}
