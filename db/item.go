package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TaskLists/crud"

	"github.com/google/uuid"
)

// ItemStore 条目存储适配器
// 除了五个标准操作之外，还在创建和变更清单引用时校验清单归属
type ItemStore struct {
	db *Database
}

var _ crud.Store[Item, ItemPayload] = (*ItemStore)(nil)

// NewItemStore 创建条目存储
func NewItemStore(db *Database) *ItemStore {
	return &ItemStore{db: db}
}

// GetOne 获取 (owner, id) 匹配的条目
func (s *ItemStore) GetOne(ctx context.Context, ownerID, id string) (*Item, error) {
	query := `
	SELECT id, name, status, notes, due, created_by, list_id, created_at, updated_at
	FROM items
	WHERE created_by = ? AND id = ?
	`
	row := s.db.sql.QueryRowContext(ctx, query, ownerID, id)
	return scanItem(row)
}

// GetMany 获取调用者的全部条目
func (s *ItemStore) GetMany(ctx context.Context, ownerID string) ([]Item, error) {
	query := `
	SELECT id, name, status, notes, due, created_by, list_id, created_at, updated_at
	FROM items
	WHERE created_by = ?
	`
	rows, err := s.db.sql.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// CreateOne 创建条目，状态缺省为active，所有者由调用者身份决定
func (s *ItemStore) CreateOne(ctx context.Context, ownerID string, p ItemPayload) (*Item, error) {
	now := time.Now()
	item := &Item{
		ID:        uuid.NewString(),
		Status:    StatusActive,
		CreatedBy: ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// 未提供的必填字段以NULL入库，由表约束拒绝
	var name, listID interface{}
	if p.Name != nil {
		item.Name = strings.TrimSpace(*p.Name)
		name = item.Name
	}
	if p.Status != nil {
		item.Status = *p.Status
	}
	if p.Notes != nil {
		item.Notes = *p.Notes
	}
	if p.Due != nil {
		due := *p.Due
		item.Due = &due
	}
	if p.ListID != nil {
		// 条目只能挂在调用者自己的清单下
		if err := s.checkListOwner(ctx, ownerID, *p.ListID); err != nil {
			return nil, err
		}
		item.ListID = *p.ListID
		listID = item.ListID
	}

	var due interface{}
	if item.Due != nil {
		due = timeToString(*item.Due)
	}

	query := `
	INSERT INTO items (id, name, status, notes, due, created_by, list_id, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.sql.ExecContext(ctx, query,
		item.ID, name, item.Status, item.Notes, due,
		ownerID, listID, timeToString(now), timeToString(now),
	)
	if err != nil {
		return nil, classify(err)
	}

	return item, nil
}

// UpdateOne 更新 (owner, id) 匹配的条目，只改动请求体里出现的字段，返回更新后的状态
func (s *ItemStore) UpdateOne(ctx context.Context, ownerID, id string, p ItemPayload) (*Item, error) {
	now := time.Now()
	sets := []string{"updated_at = ?"}
	args := []interface{}{timeToString(now)}

	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, strings.TrimSpace(*p.Name))
	}
	if p.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *p.Status)
	}
	if p.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *p.Notes)
	}
	if p.Due != nil {
		sets = append(sets, "due = ?")
		args = append(args, timeToString(*p.Due))
	}
	if p.ListID != nil {
		// 变更清单引用同样需要校验归属
		if err := s.checkListOwner(ctx, ownerID, *p.ListID); err != nil {
			return nil, err
		}
		sets = append(sets, "list_id = ?")
		args = append(args, *p.ListID)
	}

	args = append(args, ownerID, id)
	query := "UPDATE items SET " + strings.Join(sets, ", ") + " WHERE created_by = ? AND id = ?"

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

// RemoveOne 删除 (owner, id) 匹配的条目，返回删除前的状态
func (s *ItemStore) RemoveOne(ctx context.Context, ownerID, id string) (*Item, error) {
	item, err := s.GetOne(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	result, err := s.db.sql.ExecContext(ctx,
		"DELETE FROM items WHERE created_by = ? AND id = ?", ownerID, id,
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

	return item, nil
}

// checkListOwner 校验清单存在且属于调用者，不满足时按校验失败处理
func (s *ItemStore) checkListOwner(ctx context.Context, ownerID, listID string) error {
	var count int
	err := s.db.sql.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM lists WHERE created_by = ? AND id = ?", ownerID, listID,
	).Scan(&count)
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: 清单不存在或不属于当前用户", crud.ErrValidation)
	}
	return nil
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	var notesStr, dueStr *string
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&item.ID, &item.Name, &item.Status, &notesStr, &dueStr,
		&item.CreatedBy, &item.ListID, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, classify(err)
	}

	if notesStr != nil {
		item.Notes = *notesStr
	}
	if dueStr != nil {
		due, err := stringToTime(*dueStr)
		if err != nil {
			return nil, err
		}
		item.Due = &due
	}
	if item.CreatedAt, err = stringToTime(createdAtStr); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = stringToTime(updatedAtStr); err != nil {
		return nil, err
	}

	return &item, nil
}
